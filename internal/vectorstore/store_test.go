package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abdulachik/postgen/internal/post"
)

func TestPayloadRoundTrip(t *testing.T) {
	p := post.EnrichedPost{
		Text:     "Landing your first job",
		Language: "English",
		Length:   post.Short,
		Tags:     []string{"Career Advice", "Job Search"},
	}

	var sr SearchResult
	fromPayload(&sr, payload(7, p))

	assert.Equal(t, 7, sr.Position)
	assert.Equal(t, p.Text, sr.Text)
	assert.Equal(t, "English", sr.Language)
	assert.Equal(t, post.Short, sr.Length)
	assert.Equal(t, p.Tags, sr.Tags)
}

func TestFromPayload(t *testing.T) {
	t.Run("decoded numbers", func(t *testing.T) {
		var sr SearchResult
		fromPayload(&sr, map[string]any{"position": float64(3)})
		assert.Equal(t, 3, sr.Position)

		fromPayload(&sr, map[string]any{"position": int64(4)})
		assert.Equal(t, 4, sr.Position)
	})

	t.Run("no tags", func(t *testing.T) {
		var sr SearchResult
		fromPayload(&sr, payload(0, post.EnrichedPost{Text: "x"}))
		assert.Nil(t, sr.Tags)
	})

	t.Run("nil payload", func(t *testing.T) {
		var sr SearchResult
		fromPayload(&sr, nil)
		assert.Equal(t, SearchResult{}, sr)
	})
}
