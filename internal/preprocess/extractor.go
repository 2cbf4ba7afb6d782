package preprocess

import (
	"context"
	"fmt"

	"github.com/abdulachik/postgen/internal/llm"
	"github.com/abdulachik/postgen/internal/normalize"
	"github.com/abdulachik/postgen/internal/post"
)

// MetadataExtractor asks the LLM for line count, language and tags of a post.
type MetadataExtractor struct {
	llm llm.Completer
}

// NewMetadataExtractor creates a new MetadataExtractor.
func NewMetadataExtractor(c llm.Completer) *MetadataExtractor {
	return &MetadataExtractor{llm: c}
}

// Extract returns the metadata of one post. The reply must be a single JSON
// object, optionally inside a code fence. On any failure the returned
// Metadata is empty.
func (e *MetadataExtractor) Extract(ctx context.Context, text string) (post.Metadata, error) {
	prompt := fmt.Sprintf(ExtractionPrompt, normalize.StripSurrogates(text))

	response, err := e.llm.Complete(ctx, prompt)
	if err != nil {
		return post.Metadata{}, fmt.Errorf("complete: %w", err)
	}

	meta, err := post.DecodeMetadata([]byte(llm.StripCodeFence(response)))
	if err != nil {
		return post.Metadata{}, fmt.Errorf("parse response: %w", err)
	}
	return meta, nil
}
