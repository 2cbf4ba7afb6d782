package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdulachik/postgen/internal/config"
	"github.com/abdulachik/postgen/internal/corpus"
	"github.com/abdulachik/postgen/internal/tags"
)

const testCorpus = `[
	{"text": "Landed my first job", "line_count": 2, "language": "English", "tags": ["Job Search"]},
	{"text": "Phishing again", "line_count": 3, "language": "English", "tags": ["Phishing"]}
]`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNew(t *testing.T) {
	cfg := &config.Config{
		CorpusPath:   writeFile(t, "posts.json", testCorpus),
		LLMProvider:  "openai",
		OpenAIAPIKey: "sk-test",
		ExampleLimit: 2,
	}

	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, 2, a.Corpus.Index().Len())
	assert.NotNil(t, a.Generator)
	assert.NotNil(t, a.LLM)
	assert.Nil(t, a.Reloader(nil))

	cfg.CorpusReloadInterval = time.Second
	assert.NotNil(t, a.Reloader(nil))
}

func TestNew_Errors(t *testing.T) {
	t.Run("missing corpus", func(t *testing.T) {
		_, err := New(context.Background(), &config.Config{CorpusPath: filepath.Join(t.TempDir(), "none.json")})
		assert.ErrorIs(t, err, corpus.ErrCorpusNotFound)
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := New(context.Background(), &config.Config{
			CorpusPath:  writeFile(t, "posts.json", testCorpus),
			LLMProvider: "ollama",
		})
		assert.ErrorContains(t, err, "unknown llm provider")
	})
}

func TestLoadCorpus_CustomCategories(t *testing.T) {
	rules := writeFile(t, "categories.yaml", `categories:
  - name: Security
    keywords: [phishing, scam]
`)
	cfg := &config.Config{
		CorpusPath:     writeFile(t, "posts.json", testCorpus),
		CategoriesPath: rules,
	}

	idx, categorizer, err := LoadCorpus(cfg)
	require.NoError(t, err)
	assert.Equal(t, "Security", categorizer.Category("Phishing"))
	assert.Equal(t, []string{"Security", tags.OtherCategory}, idx.CategoryNames())
	assert.Equal(t, []string{"Phishing"}, idx.TagCategories()["Security"])
}

func TestNewCategorizer_BadFile(t *testing.T) {
	_, err := NewCategorizer(&config.Config{CategoriesPath: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}
