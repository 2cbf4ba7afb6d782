package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/abdulachik/postgen/internal/app"
	"github.com/abdulachik/postgen/internal/config"
	"github.com/abdulachik/postgen/internal/db"
	"github.com/abdulachik/postgen/internal/vectorstore"
)

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Embed the enriched corpus into VecLite",
	Long: `Generate vector embeddings for the enriched corpus and store them in VecLite
so 'postgen similar' can search it.

Uses the embedding provider configured in veclite.yaml (VECLITE_CONFIG).`,
	RunE: runEmbed,
}

var embedForce bool

func init() {
	embedCmd.Flags().BoolVar(&embedForce, "force", false, "rebuild the collection even if the corpus was already embedded")
	rootCmd.AddCommand(embedCmd)
}

func runEmbed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig((*config.Config).ValidateForVecLite)
	if err != nil {
		return err
	}

	idx, _, err := app.LoadCorpus(cfg)
	if err != nil {
		return err
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	prev, err := store.GetEmbeddedCorpus(ctx, cfg.CorpusPath)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("get embedding record: %w", err)
	case !embedForce && prev.VecLitePath == cfg.VecLitePath:
		slog.Info("corpus already embedded, use --force to rebuild",
			"corpus", cfg.CorpusPath,
			"posts", prev.Posts,
			"embedded_at", prev.EmbeddedAt,
		)
		return nil
	}

	if embedForce {
		if err := os.Remove(cfg.VecLitePath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove veclite db: %w", err)
		}
	}

	postStore, err := vectorstore.New(vectorstore.Config{
		Path:       cfg.VecLitePath,
		ConfigPath: cfg.VecLiteConfig,
	})
	if err != nil {
		return fmt.Errorf("create post store: %w", err)
	}
	defer postStore.Close()

	if n := postStore.Count(); n > 0 && !embedForce {
		return fmt.Errorf("veclite collection already holds %d posts; use --force to rebuild", n)
	}

	slog.Info("embedding posts", "corpus", cfg.CorpusPath, "posts", idx.Len())
	start := time.Now()

	inserted, err := postStore.IndexPosts(ctx, idx.Posts())
	if err != nil {
		return fmt.Errorf("index posts (%d inserted): %w", inserted, err)
	}

	if err := store.UpsertEmbeddedCorpus(ctx, db.UpsertEmbeddedCorpusParams{
		CorpusPath:  cfg.CorpusPath,
		VecLitePath: cfg.VecLitePath,
		Posts:       int64(inserted),
	}); err != nil {
		return fmt.Errorf("record embedding: %w", err)
	}

	elapsed := time.Since(start)
	slog.Info("embedding complete",
		"embedded", inserted,
		"duration", elapsed.Round(time.Second),
		"rate", fmt.Sprintf("%.1f/sec", float64(inserted)/elapsed.Seconds()),
	)
	return nil
}
