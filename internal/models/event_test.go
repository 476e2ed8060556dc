package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventValidate(t *testing.T) {
	event := &Event{}
	err := event.Validate()
	require.Error(t, err)

	var validation *ValidationErrors
	require.ErrorAs(t, err, &validation)
	assert.Len(t, validation.Errors, 3)
	assert.Contains(t, err.Error(), "entity_id")

	event = &Event{Type: EventTypeCheckPassed, EntityType: EntityTypeDeclaration, EntityID: "faults/storage.yaml"}
	assert.NoError(t, event.Validate())
}

func TestEventDecodePayload(t *testing.T) {
	data, err := json.Marshal(GenerationPayload{Declaration: "StorageError", Checksum: "abc", Variants: 4})
	require.NoError(t, err)

	event := &Event{Payload: data}
	var payload GenerationPayload
	require.NoError(t, event.DecodePayload(&payload))
	assert.Equal(t, "StorageError", payload.Declaration)
	assert.Equal(t, 4, payload.Variants)

	empty := &Event{}
	assert.NoError(t, empty.DecodePayload(&payload))
}
