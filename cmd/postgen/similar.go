package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abdulachik/postgen/internal/config"
	"github.com/abdulachik/postgen/internal/post"
	"github.com/abdulachik/postgen/internal/vectorstore"
)

var similarCmd = &cobra.Command{
	Use:   "similar [text]",
	Short: "Find corpus posts similar to a text",
	Long: `Search the embedded corpus for posts similar to the given text.
Run 'postgen embed' first.

Example:
  postgen similar "layoffs and job hunting" --language English --limit 3`,
	Args: cobra.ExactArgs(1),
	RunE: runSimilar,
}

var (
	similarLanguage string
	similarLimit    int
	similarHybrid   bool
)

func init() {
	similarCmd.Flags().StringVar(&similarLanguage, "language", "", "only return posts in this language")
	similarCmd.Flags().IntVar(&similarLimit, "limit", 5, "number of results")
	similarCmd.Flags().BoolVar(&similarHybrid, "hybrid", false, "combine vector and keyword search")
	rootCmd.AddCommand(similarCmd)
}

func runSimilar(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	query := args[0]

	if similarLanguage != "" && similarHybrid {
		return fmt.Errorf("--language and --hybrid cannot be combined")
	}

	cfg, err := loadConfig((*config.Config).ValidateForVecLite)
	if err != nil {
		return err
	}

	postStore, err := vectorstore.New(vectorstore.Config{
		Path:       cfg.VecLitePath,
		ConfigPath: cfg.VecLiteConfig,
	})
	if err != nil {
		return fmt.Errorf("create post store: %w", err)
	}
	defer postStore.Close()

	if postStore.Count() == 0 {
		return fmt.Errorf("no posts embedded in %s; run 'postgen embed' first", cfg.VecLitePath)
	}

	var results []vectorstore.SearchResult
	switch {
	case similarHybrid:
		results, err = postStore.HybridSearch(ctx, query, similarLimit)
	case similarLanguage != "":
		results, err = postStore.SearchByLanguage(ctx, query, post.Language(similarLanguage), similarLimit)
	default:
		results, err = postStore.Search(ctx, query, similarLimit)
	}
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("No similar posts found.")
		return nil
	}
	for i, r := range results {
		fmt.Printf("%d. [%.3f] #%d %s, %s, tags: %s\n", i+1, r.Similarity, r.Position, r.Length, r.Language, strings.Join(r.Tags, ", "))
		fmt.Printf("   %s\n\n", preview(r.Text, 200))
	}
	return nil
}

// preview returns the first n runes of s on one line.
func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > n {
		return string(r[:n]) + "..."
	}
	return s
}
