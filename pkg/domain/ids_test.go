package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "proofwall/pkg/domain-errors"
)

// TestParseContentID validates the trust-boundary parsing invariant:
// IDs must be non-empty, well-formed UUIDs.
func TestParseContentID(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseContentID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseContentID("doc-1")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts nil UUID so lookups can report not found", func(t *testing.T) {
		id, err := ParseContentID(uuid.Nil.String())
		require.NoError(t, err)
		assert.True(t, id.IsNil())
	})

	t.Run("round trips a valid UUID", func(t *testing.T) {
		raw := uuid.New()
		id, err := ParseContentID(raw.String())
		require.NoError(t, err)
		assert.Equal(t, ContentID(raw), id)
		assert.Equal(t, raw.String(), id.String())
	})
}

func TestIDsEncodeAsJSONStrings(t *testing.T) {
	id := NewContentID()
	data, err := json.Marshal(map[string]ContentID{"id": id})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"`+id.String()+`"}`, string(data))

	var decoded struct {
		ID ContentID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, id, decoded.ID)
}
