package corpus

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdulachik/postgen/internal/post"
)

func TestLive(t *testing.T) {
	first := New([]post.EnrichedPost{{Text: "a", LineCount: intPtr(1), Language: "English", Tags: []string{"X"}}}, nil)
	second := New(nil, nil)

	l := NewLive(first)
	assert.Len(t, l.FilteredPosts(post.Short, post.English, "X", 3), 1)

	l.Swap(second)
	assert.Same(t, second, l.Index())
	assert.Empty(t, l.FilteredPosts(post.Short, post.English, "X", 3))
}

func TestReloader_Check(t *testing.T) {
	path := writeCorpus(t, sampleCorpus)
	idx, err := Load(path, nil)
	require.NoError(t, err)

	live := NewLive(idx)
	var reloads []error
	r := NewReloader(ReloaderConfig{
		Live:     live,
		Path:     path,
		Interval: time.Hour,
		OnReload: func(_ *Index, err error) { reloads = append(reloads, err) },
	})

	t.Run("unchanged file", func(t *testing.T) {
		assert.False(t, r.Check())
		assert.Empty(t, reloads)
	})

	t.Run("changed file is swapped in", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte(`[{"text": "new", "line_count": 1, "language": "English", "tags": ["Fresh"]}]`), 0o644))
		bump(t, path, time.Minute)

		assert.True(t, r.Check())
		assert.Equal(t, 1, live.Index().Len())
		assert.Equal(t, []string{"Fresh"}, live.Index().UniqueTags())
		require.Len(t, reloads, 1)
		assert.NoError(t, reloads[0])
	})

	t.Run("broken file keeps current index", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte(`[{`), 0o644))
		bump(t, path, 2*time.Minute)

		assert.False(t, r.Check())
		assert.Equal(t, []string{"Fresh"}, live.Index().UniqueTags())
		require.Len(t, reloads, 2)
		assert.ErrorIs(t, reloads[1], ErrCorpusInvalid)
	})

	t.Run("missing file keeps current index", func(t *testing.T) {
		require.NoError(t, os.Remove(path))
		assert.False(t, r.Check())
		assert.Equal(t, 1, live.Index().Len())
	})
}

func TestReloader_RunStopsOnCancel(t *testing.T) {
	path := writeCorpus(t, `[]`)
	r := NewReloader(ReloaderConfig{Live: NewLive(New(nil, nil)), Path: path, Interval: time.Millisecond})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Run(ctx), context.DeadlineExceeded)
}

// bump moves the file's modification time forward so the change is seen on
// filesystems with coarse timestamps.
func bump(t *testing.T, path string, by time.Duration) {
	t.Helper()
	mod := time.Now().Add(by)
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func intPtr(n int) *int { return &n }
