package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/opencode-ai/faultgen/internal/catalog"
	"github.com/opencode-ai/faultgen/internal/db"
	"github.com/opencode-ai/faultgen/internal/models"
)

var (
	historySource      string
	historyType        string
	historySince       string
	historyLimit       int
	historySummary     bool
	historyPruneBefore string
	historyID          string
)

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historySource, "source", "", "only events for this declaration file (or builtin:<Name>)")
	historyCmd.Flags().StringVar(&historyType, "type", "", "only events of this type (e.g. generation.completed)")
	historyCmd.Flags().StringVar(&historySince, "since", "", "only events newer than this duration (e.g. 24h)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 50, "max events to show")
	historyCmd.Flags().BoolVar(&historySummary, "summary", false, "show counts per event type")
	historyCmd.Flags().StringVar(&historyID, "id", "", "show a single event with its full payload")
	historyCmd.Flags().StringVar(&historyPruneBefore, "prune-before", "", "delete events older than this duration (e.g. 720h)")
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the generation ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()
		events := db.NewEventRepository(database)

		if historyPruneBefore != "" {
			return pruneHistory(ctx, events, historyPruneBefore)
		}
		if historyID != "" {
			event, err := lookupEvent(ctx, events, historyID)
			if err != nil {
				return err
			}
			if IsJSONOutput() || IsJSONLOutput() {
				return WriteOutput(os.Stdout, event)
			}
			return printEvent(event)
		}

		since, err := parseSince(historySince)
		if err != nil {
			return err
		}

		if historySummary {
			summary, err := events.Summarize(ctx, since, nil)
			if err != nil {
				return err
			}
			if IsJSONOutput() || IsJSONLOutput() {
				return WriteOutput(os.Stdout, summary)
			}
			return printSummary(summary)
		}

		list, more, err := listHistory(ctx, events, since)
		if err != nil {
			return err
		}

		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(os.Stdout, list)
		}
		if len(list) == 0 {
			fmt.Println("No events recorded.")
			return nil
		}

		rows := make([][]string, 0, len(list))
		for _, event := range list {
			rows = append(rows, []string{
				event.Timestamp.Local().Format("2006-01-02 15:04:05"),
				formatEventType(event.Type),
				sourceLabel(event.EntityID),
				eventDetail(event),
			})
		}
		if err := writeTable(os.Stdout, []string{"TIME", "EVENT", "SOURCE", "DETAIL"}, rows); err != nil {
			return err
		}
		if more {
			fmt.Printf("\nShowing %d events; raise --limit for more.\n", len(list))
		}
		return nil
	},
}

// listHistory applies the history filters. A bare --source reads the
// declaration's own event stream.
func listHistory(ctx context.Context, events *db.EventRepository, since *time.Time) ([]*models.Event, bool, error) {
	var source string
	if historySource != "" {
		source = historySource
		if !strings.HasPrefix(source, catalog.BuiltinSource+":") {
			if abs, err := filepath.Abs(source); err == nil {
				source = abs
			}
		}
		if historyType == "" && since == nil {
			list, err := events.ListByEntity(ctx, models.EntityTypeDeclaration, source, historyLimit)
			return list, false, err
		}
	}

	query := db.EventQuery{Since: since, Limit: historyLimit}
	if source != "" {
		entityType := models.EntityTypeDeclaration
		query.EntityType = &entityType
		query.EntityID = &source
	}
	if historyType != "" {
		eventType := models.EventType(historyType)
		query.Type = &eventType
	}

	page, err := events.Query(ctx, query)
	if err != nil {
		return nil, false, err
	}
	return page.Events, page.NextCursor != "", nil
}

func lookupEvent(ctx context.Context, events *db.EventRepository, id string) (*models.Event, error) {
	event, err := events.Get(ctx, id)
	if errors.Is(err, db.ErrEventNotFound) {
		return nil, &PreflightError{
			Message:  fmt.Sprintf("event %s not found", id),
			Hint:     "Event ids are listed by faultgen history --json",
			NextStep: "faultgen history --json",
		}
	}
	return event, err
}

func printEvent(event *models.Event) error {
	rows := [][]string{
		{"ID", event.ID},
		{"Time", event.Timestamp.Local().Format(time.RFC3339)},
		{"Event", formatEventType(event.Type)},
		{"Source", event.EntityID},
		{"Detail", eventDetail(event)},
	}
	for key, value := range event.Metadata {
		rows = append(rows, []string{"Meta " + key, value})
	}
	if err := writeTable(os.Stdout, nil, rows); err != nil {
		return err
	}
	if len(event.Payload) > 0 {
		fmt.Printf("\nPayload: %s\n", event.Payload)
	}
	return nil
}

func parseSince(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return nil, fmt.Errorf("invalid --since %q: %w", value, err)
	}
	since := time.Now().Add(-d)
	return &since, nil
}

func pruneHistory(ctx context.Context, events *db.EventRepository, value string) error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid --prune-before %q: %w", value, err)
	}
	before := time.Now().Add(-d)

	var total int64
	for {
		deleted, err := events.DeleteOlderThan(ctx, before, 1000)
		if err != nil {
			return err
		}
		total += deleted
		if deleted < 1000 {
			break
		}
	}
	logger.Info().Int64("deleted", total).Time("before", before).Msg("pruned ledger")

	if IsJSONOutput() || IsJSONLOutput() {
		return WriteOutput(os.Stdout, map[string]any{"deleted": total, "before": before.UTC()})
	}
	fmt.Printf("Deleted %d events older than %s\n", total, before.Format(time.RFC3339))
	return nil
}

func printSummary(summary *models.EventSummary) error {
	if summary.Total == 0 {
		fmt.Println("No events recorded.")
		return nil
	}
	rows := make([][]string, 0, len(summary.ByType))
	for _, eventType := range []models.EventType{
		models.EventTypeGenerationCompleted,
		models.EventTypeGenerationSkipped,
		models.EventTypeCheckPassed,
		models.EventTypeCheckFailed,
	} {
		if count, ok := summary.ByType[eventType]; ok {
			rows = append(rows, []string{formatEventType(eventType), fmt.Sprintf("%d", count)})
		}
	}
	if err := writeTable(os.Stdout, []string{"EVENT", "COUNT"}, rows); err != nil {
		return err
	}
	fmt.Printf("\n%d events between %s and %s\n", summary.Total,
		summary.First.Local().Format(time.RFC3339), summary.Last.Local().Format(time.RFC3339))
	return nil
}

func eventDetail(event *models.Event) string {
	switch event.Type {
	case models.EventTypeGenerationCompleted, models.EventTypeGenerationSkipped:
		var payload models.GenerationPayload
		if err := event.DecodePayload(&payload); err != nil {
			return ""
		}
		detail := payload.Declaration
		if payload.Output != "" {
			detail += " -> " + payload.Output
		}
		if payload.Reason != "" {
			detail += " (" + payload.Reason + ")"
		}
		return truncate(detail, 80)
	case models.EventTypeCheckPassed, models.EventTypeCheckFailed:
		var payload models.CheckPayload
		if err := event.DecodePayload(&payload); err != nil {
			return ""
		}
		if payload.Error != "" {
			return truncate(payload.Declaration+": "+payload.Error, 80)
		}
		return payload.Declaration
	default:
		return ""
	}
}
