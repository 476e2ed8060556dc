package cli

import (
	"context"

	"github.com/opencode-ai/faultgen/internal/db"
	"github.com/opencode-ai/faultgen/internal/logging"
)

// openDatabase opens the ledger from config and applies pending migrations.
func openDatabase() (*db.DB, error) {
	cfg := configOrDefault()

	database, err := db.Open(db.Config{
		Path:   cfg.Database.Path,
		Logger: logging.Component("db"),
	})
	if err != nil {
		return nil, &PreflightError{
			Message:  err.Error(),
			Hint:     "Check database.path in your config or FAULTGEN_DATABASE_PATH",
			NextStep: "faultgen init",
		}
	}

	if _, err := database.MigrateUp(context.Background()); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}
