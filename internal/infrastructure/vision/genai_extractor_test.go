package vision

import (
	"testing"

	"github.com/npl/backend/internal/domain/etl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFieldResults(t *testing.T) {
	t.Run("parses well-formed output", func(t *testing.T) {
		raw := []byte(`[
			{"field": "as_is_value", "value": "185000", "confidence": 0.92, "page": 1},
			{"field": "vendor_name", "value": "Clear Capital", "confidence": 0.85, "page": 2}
		]`)

		results, err := parseFieldResults(raw, 1, 10)

		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, etl.FieldAsIsValue, results[0].Field)
		assert.Equal(t, "185000", results[0].Value)
		assert.Equal(t, 0.92, results[0].Confidence)
	})

	t.Run("drops observations outside the page range", func(t *testing.T) {
		raw := []byte(`[
			{"field": "as_is_value", "value": "185000", "confidence": 0.92, "page": 3},
			{"field": "arv_value", "value": "240000", "confidence": 0.80, "page": 14}
		]`)

		results, err := parseFieldResults(raw, 1, 10)

		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, etl.FieldAsIsValue, results[0].Field)
	})

	t.Run("drops malformed confidence", func(t *testing.T) {
		raw := []byte(`[
			{"field": "occupancy", "value": "Vacant", "confidence": 1.7, "page": 2}
		]`)

		results, err := parseFieldResults(raw, 1, 10)

		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("rejects non-JSON output", func(t *testing.T) {
		_, err := parseFieldResults([]byte("I could not read the document"), 1, 10)
		assert.Error(t, err)
	})
}

func TestNewGenAIVisionExtractor_RequiresAPIKey(t *testing.T) {
	_, err := NewGenAIVisionExtractor(t.Context(), "", "gemini-2.0-flash", nil)
	assert.Error(t, err)
}
