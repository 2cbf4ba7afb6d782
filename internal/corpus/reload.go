package corpus

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/abdulachik/postgen/internal/post"
	"github.com/abdulachik/postgen/internal/tags"
)

// Live holds the current Index. Readers always see a complete Index; a
// reload replaces it in one step.
type Live struct {
	idx atomic.Pointer[Index]
}

// NewLive creates a Live serving idx.
func NewLive(idx *Index) *Live {
	l := &Live{}
	l.idx.Store(idx)
	return l
}

// Index returns the current Index.
func (l *Live) Index() *Index { return l.idx.Load() }

// Swap replaces the current Index.
func (l *Live) Swap(idx *Index) { l.idx.Store(idx) }

// FilteredPosts queries the current Index.
func (l *Live) FilteredPosts(length post.Length, language post.Language, tag string, limit int) []post.EnrichedPost {
	return l.Index().FilteredPosts(length, language, tag, limit)
}

// ReloaderConfig holds configuration for the Reloader.
type ReloaderConfig struct {
	Live        *Live
	Path        string
	Categorizer *tags.Categorizer
	Interval    time.Duration
	// OnReload is called after every reload attempt.
	OnReload func(idx *Index, err error)
}

// Reloader swaps in a fresh Index when the corpus file changes on disk, so
// a long-running server picks up the output of a new preprocessing run.
type Reloader struct {
	live        *Live
	path        string
	categorizer *tags.Categorizer
	interval    time.Duration
	onReload    func(*Index, error)

	lastMod time.Time
}

// NewReloader creates a Reloader. The file's current modification time is
// taken as already loaded.
func NewReloader(cfg ReloaderConfig) *Reloader {
	r := &Reloader{
		live:        cfg.Live,
		path:        cfg.Path,
		categorizer: cfg.Categorizer,
		interval:    cfg.Interval,
		onReload:    cfg.OnReload,
	}
	if info, err := os.Stat(cfg.Path); err == nil {
		r.lastMod = info.ModTime()
	}
	return r
}

// Run checks the file every interval until ctx is done.
func (r *Reloader) Run(ctx context.Context) error {
	slog.Info("watching corpus for changes", "path", r.path, "interval", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.Check()
		}
	}
}

// Check reloads the corpus if its modification time changed. A corpus that
// fails to load leaves the current Index in place. It reports whether a new
// Index was swapped in.
func (r *Reloader) Check() bool {
	info, err := os.Stat(r.path)
	if err != nil {
		slog.Warn("corpus stat failed", "path", r.path, "error", err)
		return false
	}
	if info.ModTime().Equal(r.lastMod) {
		return false
	}

	idx, err := Load(r.path, r.categorizer)
	if r.onReload != nil {
		r.onReload(idx, err)
	}
	if err != nil {
		slog.Warn("corpus reload failed, keeping current index", "path", r.path, "error", err)
		return false
	}

	r.lastMod = info.ModTime()
	r.live.Swap(idx)
	slog.Info("corpus reloaded", "path", r.path, "posts", idx.Len())
	return true
}
