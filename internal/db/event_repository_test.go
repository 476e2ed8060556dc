package db

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencode-ai/faultgen/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	_, err = database.MigrateUp(context.Background())
	require.NoError(t, err)
	return database
}

func generationEvent(t *testing.T, eventType models.EventType, source, checksum string, at time.Time) *models.Event {
	t.Helper()
	payload, err := json.Marshal(models.GenerationPayload{Declaration: "StorageError", Checksum: checksum, Variants: 4})
	require.NoError(t, err)
	return &models.Event{
		Timestamp:  at,
		Type:       eventType,
		EntityType: models.EntityTypeDeclaration,
		EntityID:   source,
		Payload:    payload,
	}
}

func TestMigrateUpIsIdempotent(t *testing.T) {
	ctx := context.Background()
	database, err := OpenInMemory()
	require.NoError(t, err)
	defer database.Close()

	applied, err := database.MigrateUp(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)

	applied, err = database.MigrateUp(ctx)
	require.NoError(t, err)
	assert.Zero(t, applied)
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "faultgen.db")
	database, err := Open(Config{Path: path, Logger: zerolog.Nop()})
	require.NoError(t, err)
	defer database.Close()

	assert.Equal(t, path, database.Path())
	_, err = database.MigrateUp(context.Background())
	require.NoError(t, err)
	assert.FileExists(t, path)

	_, err = Open(Config{})
	require.Error(t, err)
}

func TestEventRepositoryCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository(setupTestDB(t))

	event := generationEvent(t, models.EventTypeGenerationCompleted, "faults/storage.yaml", "abc", time.Time{})
	event.Metadata = map[string]string{"output": "storage_error_faultgen.go"}
	require.NoError(t, repo.Create(ctx, event))
	assert.NotEmpty(t, event.ID)
	assert.False(t, event.Timestamp.IsZero())

	got, err := repo.Get(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EventTypeGenerationCompleted, got.Type)
	assert.Equal(t, "faults/storage.yaml", got.EntityID)
	assert.Equal(t, "storage_error_faultgen.go", got.Metadata["output"])
	assert.JSONEq(t, string(event.Payload), string(got.Payload))

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestEventRepositoryAppendRejectsInvalid(t *testing.T) {
	repo := NewEventRepository(setupTestDB(t))
	err := repo.Append(context.Background(), &models.Event{Type: models.EventTypeCheckPassed})
	assert.ErrorIs(t, err, ErrInvalidEvent)
}

func TestEventRepositoryQuery(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository(setupTestDB(t))
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		eventType := models.EventTypeCheckPassed
		if i%2 == 0 {
			eventType = models.EventTypeGenerationCompleted
		}
		require.NoError(t, repo.Create(ctx, generationEvent(t, eventType, "faults/storage.yaml", "c", base.Add(time.Duration(i)*time.Minute))))
	}

	generated := models.EventTypeGenerationCompleted
	page, err := repo.Query(ctx, EventQuery{Type: &generated})
	require.NoError(t, err)
	assert.Len(t, page.Events, 3)
	assert.Empty(t, page.NextCursor)

	page, err = repo.Query(ctx, EventQuery{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Events, 2)
	require.NotEmpty(t, page.NextCursor)

	next, err := repo.Query(ctx, EventQuery{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, next.Events, 2)
	assert.True(t, next.Events[0].Timestamp.After(page.Events[1].Timestamp))

	since := base.Add(3 * time.Minute)
	page, err = repo.Query(ctx, EventQuery{Since: &since})
	require.NoError(t, err)
	assert.Len(t, page.Events, 2)
}

func TestEventRepositoryLatestChecksum(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository(setupTestDB(t))
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	source := "faults/storage.yaml"

	checksum, err := repo.LatestChecksum(ctx, source)
	require.NoError(t, err)
	assert.Empty(t, checksum)

	require.NoError(t, repo.Create(ctx, generationEvent(t, models.EventTypeGenerationCompleted, source, "first", base)))
	require.NoError(t, repo.Create(ctx, generationEvent(t, models.EventTypeGenerationCompleted, source, "second", base.Add(time.Minute))))
	// check events never count as generations
	require.NoError(t, repo.Create(ctx, generationEvent(t, models.EventTypeCheckPassed, source, "third", base.Add(2*time.Minute))))
	require.NoError(t, repo.Create(ctx, generationEvent(t, models.EventTypeGenerationCompleted, "faults/other.yaml", "other", base.Add(3*time.Minute))))

	checksum, err = repo.LatestChecksum(ctx, source)
	require.NoError(t, err)
	assert.Equal(t, "second", checksum)

	// same second: insertion order breaks the tie
	require.NoError(t, repo.Create(ctx, generationEvent(t, models.EventTypeGenerationSkipped, source, "fourth", base.Add(time.Minute))))
	checksum, err = repo.LatestChecksum(ctx, source)
	require.NoError(t, err)
	assert.Equal(t, "fourth", checksum)
}

func TestEventRepositorySummarizeAndPrune(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository(setupTestDB(t))
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, generationEvent(t, models.EventTypeGenerationCompleted, "a.yaml", "1", base)))
	require.NoError(t, repo.Create(ctx, generationEvent(t, models.EventTypeGenerationCompleted, "b.yaml", "2", base.Add(time.Hour))))
	require.NoError(t, repo.Create(ctx, generationEvent(t, models.EventTypeCheckFailed, "b.yaml", "2", base.Add(2*time.Hour))))

	summary, err := repo.Summarize(ctx, nil, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 3, summary.Total)
	assert.EqualValues(t, 2, summary.ByType[models.EventTypeGenerationCompleted])
	assert.EqualValues(t, 1, summary.ByType[models.EventTypeCheckFailed])
	assert.Equal(t, base, summary.First)
	assert.Equal(t, base.Add(2*time.Hour), summary.Last)

	deleted, err := repo.DeleteOlderThan(ctx, base.Add(90*time.Minute), 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	summary, err = repo.Summarize(ctx, nil, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, summary.Total)
}
