// Package vectorstore indexes enriched posts in VecLite for semantic lookup.
package vectorstore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abdul-hamid-achik/veclite"

	"github.com/abdulachik/postgen/internal/post"
)

const postsCollection = "posts"

// Config holds configuration for the PostStore.
type Config struct {
	// Path to the VecLite database file (e.g., "data/posts.veclite").
	Path string

	// ConfigPath is the path to veclite.yaml. If empty, ./veclite.yaml and
	// ~/.veclite/config.yaml are searched.
	ConfigPath string
}

// PostStore wraps a VecLite collection of enriched posts.
type PostStore struct {
	vecdb    *veclite.DB
	coll     *veclite.Collection
	embedder veclite.Embedder
}

// SearchResult is one post returned by a search.
type SearchResult struct {
	ID         uint64
	Position   int // index of the post in the corpus file
	Text       string
	Language   string
	Length     post.Length
	Tags       []string
	Similarity float32
}

// New opens the store, creating the posts collection on first use.
func New(cfg Config) (*PostStore, error) {
	vecliteCfg, err := veclite.LoadConfig(cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load veclite config: %w", err)
	}

	embedder, err := veclite.NewEmbedderFromConfig(vecliteCfg.Embedder)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}

	vecdb, err := veclite.Open(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open veclite db: %w", err)
	}

	coll, err := vecdb.CreateCollection(postsCollection,
		veclite.WithDimension(embedder.Dimension()),
		veclite.WithDistanceType(veclite.DistanceCosine),
		veclite.WithHNSW(16, 200),
		veclite.WithTextIndex("text", "tags"),
		veclite.WithEmbedder(embedder),
	)
	if err != nil {
		// already created by an earlier run
		coll, err = vecdb.GetCollection(postsCollection)
		if err != nil {
			vecdb.Close()
			return nil, fmt.Errorf("get collection: %w", err)
		}
	}

	slog.Debug("opened post store",
		"path", cfg.Path,
		"provider", vecliteCfg.Embedder.Provider,
		"dimension", embedder.Dimension(),
	)

	return &PostStore{
		vecdb:    vecdb,
		coll:     coll,
		embedder: embedder,
	}, nil
}

// Close closes the VecLite database.
func (s *PostStore) Close() error {
	if s.vecdb != nil {
		return s.vecdb.Close()
	}
	return nil
}

// InsertPost embeds and stores p. position is its index in the corpus.
func (s *PostStore) InsertPost(ctx context.Context, position int, p post.EnrichedPost) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	id, err := s.coll.InsertText(p.Text, payload(position, p))
	if err != nil {
		return 0, fmt.Errorf("insert post %d: %w", position, err)
	}
	return id, nil
}

// IndexPosts inserts every post with a non-empty text and persists the
// collection. It returns the number of posts inserted.
func (s *PostStore) IndexPosts(ctx context.Context, posts []post.EnrichedPost) (int, error) {
	inserted := 0
	for i, p := range posts {
		if p.Text == "" {
			continue
		}
		if _, err := s.InsertPost(ctx, i, p); err != nil {
			return inserted, err
		}
		inserted++

		if inserted%50 == 0 {
			slog.Info("embedding posts", "done", inserted, "total", len(posts))
		}
	}

	if err := s.Sync(); err != nil {
		return inserted, fmt.Errorf("sync: %w", err)
	}
	return inserted, nil
}

// Search finds posts similar to query.
func (s *PostStore) Search(ctx context.Context, query string, k int) ([]SearchResult, error) {
	results, err := s.coll.SearchText(query, veclite.TopK(k))
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return convertResults(results), nil
}

// SearchByLanguage finds posts similar to query written in language.
func (s *PostStore) SearchByLanguage(ctx context.Context, query string, language post.Language, k int) ([]SearchResult, error) {
	queryVec, err := s.embedder.Embed(query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := s.coll.Search(queryVec,
		veclite.TopK(k),
		veclite.WithFilter(veclite.Equal("language", string(language))),
	)
	if err != nil {
		return nil, fmt.Errorf("search by language: %w", err)
	}
	return convertResults(results), nil
}

// HybridSearch combines vector similarity with BM25 over text and tags.
func (s *PostStore) HybridSearch(ctx context.Context, query string, k int) ([]SearchResult, error) {
	queryVec, err := s.embedder.Embed(query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := s.coll.HybridSearch(queryVec, query,
		veclite.TopK(k),
		veclite.WithVectorWeight(0.7),
		veclite.WithTextWeight(0.3),
	)
	if err != nil {
		return nil, fmt.Errorf("hybrid search: %w", err)
	}
	return convertResults(results), nil
}

// Count returns the number of posts in the store.
func (s *PostStore) Count() int {
	return s.coll.Count()
}

// Stats returns statistics about the collection.
func (s *PostStore) Stats() veclite.CollectionStats {
	return s.coll.Stats()
}

// Sync persists pending changes to disk.
func (s *PostStore) Sync() error {
	return s.vecdb.Sync()
}

func payload(position int, p post.EnrichedPost) map[string]any {
	return map[string]any{
		"position": position,
		"text":     p.Text,
		"language": p.Language,
		"length":   string(p.Length),
		"tags":     strings.Join(p.Tags, ", "),
	}
}

func convertResults(results []veclite.Result) []SearchResult {
	out := make([]SearchResult, 0, len(results))
	for _, r := range results {
		sr := SearchResult{
			ID:         r.Record.ID,
			Similarity: r.Score,
		}
		fromPayload(&sr, r.Record.Payload)
		if sr.Text == "" {
			sr.Text = r.Record.Content
		}
		out = append(out, sr)
	}
	return out
}

func fromPayload(sr *SearchResult, p map[string]any) {
	if p == nil {
		return
	}
	// numbers come back as int, int64 or float64 depending on the codec
	switch v := p["position"].(type) {
	case int:
		sr.Position = v
	case int64:
		sr.Position = int(v)
	case float64:
		sr.Position = int(v)
	}
	if v, ok := p["text"].(string); ok {
		sr.Text = v
	}
	if v, ok := p["language"].(string); ok {
		sr.Language = v
	}
	if v, ok := p["length"].(string); ok {
		sr.Length = post.Length(v)
	}
	if v, ok := p["tags"].(string); ok && v != "" {
		sr.Tags = strings.Split(v, ", ")
	}
}
