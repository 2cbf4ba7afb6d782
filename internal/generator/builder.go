// Package generator builds few-shot prompts and turns LLM replies into posts.
package generator

import (
	"fmt"
	"strings"

	"github.com/abdulachik/postgen/internal/post"
)

// DefaultExampleLimit is the number of few-shot examples per prompt.
const DefaultExampleLimit = 3

// LengthDescription returns the line and word range for a length bucket.
// Unknown values get the Medium description.
func LengthDescription(l post.Length) string {
	switch l {
	case post.Short:
		return "1 to 5 lines (50-100 words)"
	case post.Long:
		return "11 to 15 lines (200-300 words)"
	default:
		return "6 to 10 lines (100-200 words)"
	}
}

// ExampleSource supplies few-shot examples. *corpus.Index implements it.
type ExampleSource interface {
	FilteredPosts(length post.Length, language post.Language, tag string, limit int) []post.EnrichedPost
}

// Builder assembles generation prompts.
type Builder struct {
	examples ExampleSource
	limit    int
}

// NewBuilder creates a Builder. A nil source yields prompts without
// examples; limit <= 0 means DefaultExampleLimit.
func NewBuilder(examples ExampleSource, limit int) *Builder {
	if limit <= 0 {
		limit = DefaultExampleLimit
	}
	return &Builder{examples: examples, limit: limit}
}

// Examples returns the posts Build would embed for req.
func (b *Builder) Examples(req post.Request) []post.EnrichedPost {
	if b.examples == nil {
		return nil
	}
	return b.examples.FilteredPosts(req.Length, req.Language, req.Tag, b.limit)
}

// Build returns the prompt for req. The examples section is omitted entirely
// when the corpus has no matching posts.
func (b *Builder) Build(req post.Request) string {
	tone := req.Tone
	if tone == "" {
		tone = post.Professional
	}

	return fmt.Sprintf(GenerationPrompt,
		req.Tag,
		LengthDescription(req.Length),
		req.Language,
		tone,
		examplesSection(b.Examples(req)),
	)
}

func examplesSection(examples []post.EnrichedPost) string {
	if len(examples) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(ExamplesHeader)
	for i, ex := range examples {
		fmt.Fprintf(&sb, exampleBlock, i+1, ex.Text)
	}
	return sb.String()
}
