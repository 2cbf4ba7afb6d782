package generator

import (
	"context"
	"log/slog"

	"github.com/abdulachik/postgen/internal/llm"
	"github.com/abdulachik/postgen/internal/post"
)

// FallbackMessage is returned instead of a post when the LLM call fails.
const FallbackMessage = "Sorry, there was an error generating your post. Please try again."

// MaxVariants caps GenerateVariants.
const MaxVariants = 5

// Generator produces posts for generation requests.
type Generator struct {
	builder *Builder
	llm     llm.Completer
}

// Config holds configuration for the generator.
type Config struct {
	LLM          llm.Completer
	Examples     ExampleSource
	ExampleLimit int
}

// New creates a new Generator.
func New(cfg Config) *Generator {
	return &Generator{
		builder: NewBuilder(cfg.Examples, cfg.ExampleLimit),
		llm:     cfg.LLM,
	}
}

// Builder returns the prompt builder.
func (g *Generator) Builder() *Builder { return g.builder }

// Generate returns one post for req. It never fails: an LLM error is logged
// and FallbackMessage returned.
func (g *Generator) Generate(ctx context.Context, req post.Request) string {
	content, err := g.TryGenerate(ctx, req)
	if err != nil {
		slog.ErrorContext(ctx, "post generation failed",
			"tag", req.Tag,
			"length", req.Length,
			"language", req.Language,
			"error", err,
		)
		return FallbackMessage
	}
	return content
}

// TryGenerate is Generate without the fallback: the LLM error is returned
// to the caller.
func (g *Generator) TryGenerate(ctx context.Context, req post.Request) (string, error) {
	prompt := g.builder.Build(req)

	response, err := g.llm.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}

	content := ExtractPostContent(response)
	slog.DebugContext(ctx, "generated post", "tag", req.Tag, "chars", len(content))
	return content, nil
}

// GenerateVariants returns n independent posts for req, generated one after
// another. n is clamped to 1..MaxVariants. Generation stops early when ctx is
// done.
func (g *Generator) GenerateVariants(ctx context.Context, req post.Request, n int) []string {
	n = max(1, min(n, MaxVariants))

	out := make([]string, 0, n)
	for range n {
		if ctx.Err() != nil && len(out) > 0 {
			break
		}
		out = append(out, g.Generate(ctx, req))
	}
	return out
}
