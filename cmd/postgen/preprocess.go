package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/abdulachik/postgen/internal/config"
	"github.com/abdulachik/postgen/internal/db"
	"github.com/abdulachik/postgen/internal/llm"
	"github.com/abdulachik/postgen/internal/preprocess"
	"github.com/abdulachik/postgen/internal/tags"
)

var preprocessCmd = &cobra.Command{
	Use:   "preprocess",
	Short: "Enrich the raw corpus with LLM metadata",
	Long: `Extract line count, language and tags for every raw post, unify the tags
into a small canonical set and write the enriched corpus.

Each run is recorded in the ledger database; see 'postgen runs'.
The output differs between runs because the LLM is not deterministic.`,
	RunE: runPreprocess,
}

var (
	preprocessInput  string
	preprocessOutput string
)

// progressEvery is how many posts pass between ledger progress writes.
const progressEvery = 10

func init() {
	preprocessCmd.Flags().StringVarP(&preprocessInput, "input", "i", "", "raw corpus (default RAW_CORPUS_PATH)")
	preprocessCmd.Flags().StringVarP(&preprocessOutput, "output", "o", "", "enriched corpus (default CORPUS_PATH)")
	rootCmd.AddCommand(preprocessCmd)
}

func runPreprocess(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig((*config.Config).ValidateForPreprocess)
	if err != nil {
		return err
	}
	input := cmp.Or(preprocessInput, cfg.RawCorpusPath)
	output := cmp.Or(preprocessOutput, cfg.CorpusPath)

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	client, err := llm.New(ctx, cfg.LLMConfig())
	if err != nil {
		return fmt.Errorf("create llm client: %w", err)
	}
	defer llm.Close(client)

	run, err := store.CreateRun(ctx, db.CreateRunParams{RawPath: input, OutputPath: output})
	if err != nil {
		return err
	}
	slog.Info("started preprocessing run", "run", run.ID, "provider", cfg.LLMProvider)

	p := preprocess.New(preprocess.Config{
		Extractor:  preprocess.NewMetadataExtractor(client),
		Unifier:    tags.NewUnifier(client),
		OnProgress: progressRecorder(ctx, store, run.ID),
	})

	start := time.Now()
	report, err := p.ProcessFile(ctx, input, output)
	if err != nil {
		// The run context may already be cancelled; the ledger write must
		// still go through.
		failCtx := context.WithoutCancel(ctx)
		if ferr := store.FailRun(failCtx, db.FailRunParams{ID: run.ID, ErrorMessage: err.Error()}); ferr != nil {
			slog.Warn("failed to record run failure", "run", run.ID, "error", ferr)
		}
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("preprocessing interrupted: %w", err)
		}
		return fmt.Errorf("preprocess: %w", err)
	}

	if err := store.CompleteRun(ctx, db.CompleteRunParams{
		ID:                 run.ID,
		TotalPosts:         int64(report.Posts),
		ExtractionFailures: int64(report.ExtractionFailures),
		RawTags:            int64(report.RawTags),
		CanonicalTags:      int64(report.CanonicalTags),
		DroppedTags:        int64(report.DroppedTags),
	}); err != nil {
		return fmt.Errorf("complete run: %w", err)
	}

	fmt.Printf("Run %s completed in %s\n", run.ID, time.Since(start).Round(time.Second))
	fmt.Printf("  Posts:               %d\n", report.Posts)
	fmt.Printf("  Extraction failures: %d\n", report.ExtractionFailures)
	fmt.Printf("  Tags:                %d raw -> %d canonical\n", report.RawTags, report.CanonicalTags)
	fmt.Printf("  Dropped tags:        %d\n", report.DroppedTags)
	fmt.Printf("  Output:              %s\n", output)
	return nil
}

// progressRecorder writes extraction progress to the ledger every
// progressEvery posts and after the last one.
func progressRecorder(ctx context.Context, store *db.Store, runID string) func(preprocess.Progress) {
	return func(p preprocess.Progress) {
		if p.Done%progressEvery != 0 && p.Done != p.Total {
			return
		}
		slog.Info("progress", "done", p.Done, "total", p.Total, "extraction_failures", p.ExtractionFailures)
		err := store.UpdateRunProgress(ctx, db.UpdateRunProgressParams{
			ID:                 runID,
			TotalPosts:         int64(p.Total),
			ProcessedPosts:     int64(p.Done),
			ExtractionFailures: int64(p.ExtractionFailures),
		})
		if err != nil {
			slog.Warn("failed to record progress", "run", runID, "error", err)
		}
	}
}
