package stream

import (
	"encoding/json"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritext/veritext/internal/models"
)

func TestParseSubmission(t *testing.T) {
	t.Run("json payload field", func(t *testing.T) {
		payload, err := json.Marshal(models.Submission{
			DocumentID: "doc-1",
			Title:      "Essay",
			Author:     "someone",
			Content:    "body text",
		})
		require.NoError(t, err)

		sub, err := parseSubmission(&redis.XMessage{
			ID:     "1-0",
			Values: map[string]interface{}{"payload": string(payload)},
		})
		require.NoError(t, err)
		assert.Equal(t, "doc-1", sub.DocumentID)
		assert.Equal(t, "Essay", sub.Title)
		assert.Equal(t, "someone", sub.Author)
		assert.Equal(t, "body text", sub.Content)
	})

	t.Run("flat fields", func(t *testing.T) {
		sub, err := parseSubmission(&redis.XMessage{
			ID: "1-1",
			Values: map[string]interface{}{
				"documentId": "doc-2",
				"title":      "Flat",
				"content":    "flat body",
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "doc-2", sub.DocumentID)
		assert.Equal(t, "Flat", sub.Title)
		assert.Equal(t, "flat body", sub.Content)
	})

	t.Run("invalid payload json", func(t *testing.T) {
		_, err := parseSubmission(&redis.XMessage{
			ID:     "1-2",
			Values: map[string]interface{}{"payload": "{not json"},
		})
		assert.Error(t, err)
	})

	t.Run("missing title", func(t *testing.T) {
		_, err := parseSubmission(&redis.XMessage{
			ID:     "1-3",
			Values: map[string]interface{}{"content": "untitled"},
		})
		assert.Error(t, err)
	})
}
