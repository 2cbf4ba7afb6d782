// Package app wires configuration into the corpus, the LLM client and the
// generator.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abdulachik/postgen/internal/config"
	"github.com/abdulachik/postgen/internal/corpus"
	"github.com/abdulachik/postgen/internal/generator"
	"github.com/abdulachik/postgen/internal/llm"
	"github.com/abdulachik/postgen/internal/tags"
)

// App is the main application container holding all dependencies.
type App struct {
	Config      *config.Config
	LLM         llm.Completer
	Categorizer *tags.Categorizer
	Corpus      *corpus.Live
	Generator   *generator.Generator
}

// New loads the corpus and creates the LLM client and the generator.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	idx, categorizer, err := LoadCorpus(cfg)
	if err != nil {
		return nil, err
	}

	client, err := llm.New(ctx, cfg.LLMConfig())
	if err != nil {
		return nil, fmt.Errorf("create llm client: %w", err)
	}

	live := corpus.NewLive(idx)
	return &App{
		Config:      cfg,
		LLM:         client,
		Categorizer: categorizer,
		Corpus:      live,
		Generator: generator.New(generator.Config{
			LLM:          client,
			Examples:     live,
			ExampleLimit: cfg.ExampleLimit,
		}),
	}, nil
}

// NewCategorizer returns the categorizer for cfg: the rules in
// CATEGORIES_PATH when set, the built-in rules otherwise.
func NewCategorizer(cfg *config.Config) (*tags.Categorizer, error) {
	if cfg.CategoriesPath == "" {
		return tags.NewCategorizer(nil), nil
	}
	rules, err := tags.LoadRules(cfg.CategoriesPath)
	if err != nil {
		return nil, err
	}
	slog.Debug("loaded category rules", "path", cfg.CategoriesPath, "rules", len(rules))
	return tags.NewCategorizer(rules), nil
}

// LoadCorpus loads the enriched corpus without creating an LLM client.
func LoadCorpus(cfg *config.Config) (*corpus.Index, *tags.Categorizer, error) {
	categorizer, err := NewCategorizer(cfg)
	if err != nil {
		return nil, nil, err
	}

	idx, err := corpus.Load(cfg.CorpusPath, categorizer)
	if err != nil {
		return nil, nil, err
	}
	return idx, categorizer, nil
}

// Reloader returns a corpus reloader feeding a.Corpus, or nil when
// CORPUS_RELOAD_INTERVAL is zero.
func (a *App) Reloader(onReload func(*corpus.Index, error)) *corpus.Reloader {
	if a.Config.CorpusReloadInterval <= 0 {
		return nil
	}
	return corpus.NewReloader(corpus.ReloaderConfig{
		Live:        a.Corpus,
		Path:        a.Config.CorpusPath,
		Categorizer: a.Categorizer,
		Interval:    a.Config.CorpusReloadInterval,
		OnReload:    onReload,
	})
}

// Close releases the LLM client.
func (a *App) Close() error {
	if a.LLM != nil {
		return llm.Close(a.LLM)
	}
	return nil
}
