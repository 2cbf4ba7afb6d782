// Package corpus loads the enriched corpus and answers example lookups.
package corpus

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"

	"github.com/abdulachik/postgen/internal/normalize"
	"github.com/abdulachik/postgen/internal/post"
	"github.com/abdulachik/postgen/internal/tags"
)

var (
	// ErrCorpusNotFound means the enriched corpus file does not exist.
	ErrCorpusNotFound = errors.New("corpus not found")
	// ErrCorpusInvalid means the enriched corpus is not a JSON array of posts.
	ErrCorpusInvalid = errors.New("invalid corpus")
)

// Index is the in-memory enriched corpus. It is never modified after New
// returns and may be shared between goroutines.
type Index struct {
	posts      []post.EnrichedPost
	uniqueTags []string
	categories map[string][]string
	names      []string
}

// Load reads the enriched corpus at path. A nil categorizer uses the
// default rules.
func Load(path string, categorizer *tags.Categorizer) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrCorpusNotFound, path)
		}
		return nil, fmt.Errorf("read corpus: %w", err)
	}

	var posts []post.EnrichedPost
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorpusInvalid, path, err)
	}

	idx := New(posts, categorizer)
	slog.Debug("loaded corpus", "path", path, "posts", idx.Len(), "tags", len(idx.uniqueTags))
	return idx, nil
}

// New builds an Index. Texts are re-cleaned and lengths re-derived from the
// line count, so the index does not trust either field on disk.
func New(posts []post.EnrichedPost, categorizer *tags.Categorizer) *Index {
	if categorizer == nil {
		categorizer = tags.NewCategorizer(nil)
	}

	idx := &Index{posts: make([]post.EnrichedPost, len(posts))}
	var all []string
	for i, p := range posts {
		p.Text = normalize.Clean(p.Text)
		p.Length = post.CategorizeCount(p.LineCount)
		p.Tags = slices.Clone(p.Tags)
		idx.posts[i] = p
		all = append(all, p.Tags...)
	}

	slices.Sort(all)
	idx.uniqueTags = slices.Compact(all)
	if idx.uniqueTags == nil {
		idx.uniqueTags = []string{}
	}
	idx.categories = categorizer.Group(idx.uniqueTags)
	idx.names = categorizer.Names()
	return idx
}

// Len returns the number of posts.
func (idx *Index) Len() int { return len(idx.posts) }

// Posts returns a copy of the posts in corpus order.
func (idx *Index) Posts() []post.EnrichedPost {
	return slices.Clone(idx.posts)
}

// UniqueTags returns the sorted distinct tags.
func (idx *Index) UniqueTags() []string {
	return slices.Clone(idx.uniqueTags)
}

// TagCategories returns tags grouped by category. Empty categories are
// absent.
func (idx *Index) TagCategories() map[string][]string {
	out := make(map[string][]string, len(idx.categories))
	for k, v := range idx.categories {
		out[k] = slices.Clone(v)
	}
	return out
}

// CategoryNames returns every category name in rule order, whether or not
// it holds tags.
func (idx *Index) CategoryNames() []string {
	return slices.Clone(idx.names)
}

// FilteredPosts returns up to limit posts, in corpus order, whose length,
// language and tag all match exactly. It never fails: rows that cannot be
// matched are skipped.
func (idx *Index) FilteredPosts(length post.Length, language post.Language, tag string, limit int) []post.EnrichedPost {
	out := []post.EnrichedPost{}
	if limit <= 0 {
		return out
	}

	skipped := 0
	for _, p := range idx.posts {
		if len(p.Tags) == 0 {
			skipped++
			continue
		}
		if p.Length != length || p.Language != string(language) || !p.HasTag(tag) {
			continue
		}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}

	if skipped > 0 {
		slog.Debug("skipped untagged posts", "count", skipped)
	}
	return out
}
