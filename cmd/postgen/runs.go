package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/abdulachik/postgen/internal/config"
	"github.com/abdulachik/postgen/internal/db"
)

var runsCmd = &cobra.Command{
	Use:   "runs [id]",
	Short: "Show preprocessing runs",
	Long:  `List recent preprocessing runs, or show the details of one run.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRuns,
}

var runsLimit int

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 10, "number of runs to list")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig((*config.Config).Validate)
	if err != nil {
		return err
	}
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if len(args) == 1 {
		run, err := store.GetRun(ctx, args[0])
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("run %s not found", args[0])
		}
		if err != nil {
			return fmt.Errorf("get run: %w", err)
		}
		printRun(run)
		return nil
	}

	runs, err := store.ListRuns(ctx, int64(runsLimit))
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("No preprocessing runs yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tSTARTED\tPOSTS\tFAILURES\tTAGS\tDURATION")
	now := time.Now()
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%d\t%d\t%s\n",
			r.ID,
			r.Status,
			r.StartedAt.Local().Format(time.DateTime),
			r.ProcessedPosts, r.TotalPosts,
			r.ExtractionFailures,
			r.CanonicalTags,
			r.Duration(now).Round(time.Second),
		)
	}
	return w.Flush()
}

func printRun(r db.PreprocessRun) {
	fmt.Printf("Run %s\n", r.ID)
	fmt.Printf("  Status:              %s\n", r.Status)
	fmt.Printf("  Input:               %s\n", r.RawPath)
	fmt.Printf("  Output:              %s\n", r.OutputPath)
	fmt.Printf("  Started:             %s\n", r.StartedAt.Local().Format(time.DateTime))
	if r.CompletedAt.Valid {
		fmt.Printf("  Finished:            %s\n", r.CompletedAt.Time.Local().Format(time.DateTime))
	}
	fmt.Printf("  Duration:            %s\n", r.Duration(time.Now()).Round(time.Second))
	fmt.Printf("  Posts:               %d/%d\n", r.ProcessedPosts, r.TotalPosts)
	fmt.Printf("  Extraction failures: %d\n", r.ExtractionFailures)
	fmt.Printf("  Tags:                %d raw -> %d canonical (%d dropped)\n", r.RawTags, r.CanonicalTags, r.DroppedTags)
	if r.ErrorMessage.Valid {
		fmt.Printf("  Error:               %s\n", r.ErrorMessage.String)
	}
}
