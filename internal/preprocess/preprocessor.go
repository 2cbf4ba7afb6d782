// Package preprocess turns a raw post corpus into the enriched corpus used for
// few-shot examples.
//
// Output is not reproducible across runs: metadata and tag mappings come from
// a non-deterministic LLM, so two runs over the same input may differ.
package preprocess

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/abdulachik/postgen/internal/normalize"
	"github.com/abdulachik/postgen/internal/post"
	"github.com/abdulachik/postgen/internal/tags"
)

// Extractor extracts metadata for one post.
type Extractor interface {
	Extract(ctx context.Context, text string) (post.Metadata, error)
}

// Unifier maps raw tags to canonical tags.
type Unifier interface {
	Unify(ctx context.Context, rawTags []string) map[string]string
}

// Progress is reported after each post's metadata extraction.
type Progress struct {
	Done               int
	Total              int
	ExtractionFailures int
}

// Report summarizes one preprocessing run.
type Report struct {
	Posts              int
	ExtractionFailures int
	RawTags            int // distinct tags before unification
	MappedTags         int // distinct raw tags the unifier mapped
	CanonicalTags      int
	DroppedTags        int // tag occurrences removed for lack of a mapping
}

// Config holds configuration for the preprocessor.
type Config struct {
	Extractor  Extractor
	Unifier    Unifier
	OnProgress func(Progress)
}

// Preprocessor runs extraction, unification and cleaning over a corpus.
type Preprocessor struct {
	extractor  Extractor
	unifier    Unifier
	onProgress func(Progress)
}

// New creates a new Preprocessor.
func New(cfg Config) *Preprocessor {
	return &Preprocessor{
		extractor:  cfg.Extractor,
		unifier:    cfg.Unifier,
		onProgress: cfg.OnProgress,
	}
}

// Run enriches raw posts in input order. Extraction and unification failures
// degrade the output and are counted in the Report; the only error returned
// is context cancellation.
func (p *Preprocessor) Run(ctx context.Context, raw []post.RawPost) ([]post.EnrichedPost, Report, error) {
	report := Report{Posts: len(raw)}

	metas := make([]post.Metadata, len(raw))
	for i, rp := range raw {
		if err := ctx.Err(); err != nil {
			return nil, report, err
		}

		extracted, err := p.extractor.Extract(ctx, rp.Text)
		if err != nil {
			if ctx.Err() != nil {
				return nil, report, ctx.Err()
			}
			report.ExtractionFailures++
			slog.Warn("metadata extraction failed", "post", i, "error", err)
		}

		meta := post.MetadataFromRaw(rp).Merge(extracted)
		meta.Tags = cleanTags(meta.Tags)
		metas[i] = meta

		slog.Debug("extracted metadata", "post", i+1, "total", len(raw), "tags", meta.Tags)
		if p.onProgress != nil {
			p.onProgress(Progress{Done: i + 1, Total: len(raw), ExtractionFailures: report.ExtractionFailures})
		}
	}

	var rawTags []string
	for _, m := range metas {
		rawTags = append(rawTags, m.Tags...)
	}
	slices.Sort(rawTags)
	rawTags = slices.Compact(rawTags)
	report.RawTags = len(rawTags)

	mapping := p.unifier.Unify(ctx, rawTags)
	if err := ctx.Err(); err != nil {
		return nil, report, err
	}
	for _, tag := range rawTags {
		if _, ok := mapping[tag]; ok {
			report.MappedTags++
		}
	}
	report.CanonicalTags = len(tags.Canonical(mapping))

	enriched := make([]post.EnrichedPost, len(raw))
	for i, rp := range raw {
		meta := metas[i]
		unified, dropped := tags.Apply(mapping, meta.Tags)
		report.DroppedTags += dropped

		ep := post.EnrichedPost{
			Text:      normalize.Clean(rp.Text),
			LineCount: meta.LineCount,
			Tags:      unified,
			Length:    post.CategorizeCount(meta.LineCount),
			Extra:     post.ExtraFields(rp.Fields),
		}
		if meta.Language != nil {
			ep.Language = *meta.Language
		}
		enriched[i] = ep
	}

	if report.DroppedTags > 0 {
		slog.Warn("dropped unmapped tags", "occurrences", report.DroppedTags)
	}
	return enriched, report, nil
}

// ProcessFile reads a raw corpus from rawPath, enriches it and writes the
// result to outPath, replacing any previous file.
func (p *Preprocessor) ProcessFile(ctx context.Context, rawPath, outPath string) (Report, error) {
	raw, err := ReadRaw(rawPath)
	if err != nil {
		return Report{}, err
	}

	slog.Info("preprocessing corpus", "input", rawPath, "posts", len(raw))

	enriched, report, err := p.Run(ctx, raw)
	if err != nil {
		return report, err
	}

	if err := WriteEnriched(outPath, enriched); err != nil {
		return report, err
	}

	slog.Info("preprocessing complete",
		"output", outPath,
		"posts", report.Posts,
		"extraction_failures", report.ExtractionFailures,
		"raw_tags", report.RawTags,
		"canonical_tags", report.CanonicalTags,
		"dropped_tags", report.DroppedTags,
	)
	return report, nil
}

// ReadRaw reads a JSON array of raw posts.
func ReadRaw(path string) ([]post.RawPost, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read raw corpus: %w", err)
	}

	var raw []post.RawPost
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse raw corpus %s: %w", path, err)
	}
	return raw, nil
}

// WriteEnriched writes posts as an indented JSON array without HTML escaping.
// The file is written to a temporary name first and renamed into place.
func WriteEnriched(path string, posts []post.EnrichedPost) error {
	if posts == nil {
		posts = []post.EnrichedPost{}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".enriched-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(posts); err != nil {
		tmp.Close()
		return fmt.Errorf("encode enriched corpus: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

func cleanTags(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, tag := range in {
		if tag = normalize.Clean(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
