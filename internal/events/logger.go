// Package events records generation ledger events.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/opencode-ai/faultgen/internal/models"
)

// Repository is the minimal interface needed to write events.
type Repository interface {
	Append(ctx context.Context, event *models.Event) error
}

// LogGeneration records a generation.completed or generation.skipped event
// for the declaration identified by entityID.
func LogGeneration(ctx context.Context, repo Repository, eventType models.EventType, entityID string, payload models.GenerationPayload, metadata map[string]string) error {
	switch eventType {
	case models.EventTypeGenerationCompleted, models.EventTypeGenerationSkipped:
	default:
		return fmt.Errorf("not a generation event: %q", eventType)
	}
	return logEvent(ctx, repo, eventType, entityID, payload, metadata)
}

// LogCheck records check.passed, or check.failed when payload carries an error.
func LogCheck(ctx context.Context, repo Repository, entityID string, payload models.CheckPayload, metadata map[string]string) error {
	eventType := models.EventTypeCheckPassed
	if payload.Error != "" {
		eventType = models.EventTypeCheckFailed
	}
	return logEvent(ctx, repo, eventType, entityID, payload, metadata)
}

func logEvent(ctx context.Context, repo Repository, eventType models.EventType, entityID string, payload any, metadata map[string]string) error {
	if repo == nil {
		return fmt.Errorf("event repository is required")
	}
	if entityID == "" {
		return fmt.Errorf("entity id is required")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}

	event := &models.Event{
		Type:       eventType,
		EntityType: models.EntityTypeDeclaration,
		EntityID:   entityID,
		Payload:    data,
		Metadata:   metadata,
	}

	return repo.Append(ctx, event)
}
