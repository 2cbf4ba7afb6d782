package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdulachik/postgen/internal/app"
	"github.com/abdulachik/postgen/internal/config"
	"github.com/abdulachik/postgen/internal/corpus"
	"github.com/abdulachik/postgen/internal/generator"
	"github.com/abdulachik/postgen/internal/post"
)

var examplesCmd = &cobra.Command{
	Use:   "examples",
	Short: "Show the corpus posts used as examples for a request",
	RunE:  runExamples,
}

var (
	exLength   string
	exLanguage string
	exTag      string
	exLimit    int
)

func init() {
	examplesCmd.Flags().StringVar(&exLength, "length", string(post.Medium), "Short, Medium or Long")
	examplesCmd.Flags().StringVar(&exLanguage, "language", string(post.English), "English, Hinglish, Hindi or Marathi")
	examplesCmd.Flags().StringVar(&exTag, "tag", "", "topic tag")
	examplesCmd.Flags().IntVar(&exLimit, "limit", generator.DefaultExampleLimit, "maximum number of posts")
	_ = examplesCmd.MarkFlagRequired("tag")
	rootCmd.AddCommand(examplesCmd)
}

func runExamples(cmd *cobra.Command, args []string) error {
	req := post.Request{Length: post.Length(exLength), Language: post.Language(exLanguage), Tag: exTag}
	if err := req.Validate(); err != nil {
		return err
	}

	cfg, err := loadConfig((*config.Config).Validate)
	if err != nil {
		return err
	}
	idx, _, err := app.LoadCorpus(cfg)
	if err != nil {
		return err
	}

	examples := newBuilder(idx, exLimit).Examples(req)
	if len(examples) == 0 {
		fmt.Println("No matching posts.")
		return nil
	}
	for i, p := range examples {
		fmt.Printf("--- Example %d (%d lines, tags: %v) ---\n", i+1, lineCount(p), p.Tags)
		fmt.Println(p.Text)
		fmt.Println()
	}
	return nil
}

func newBuilder(idx *corpus.Index, limit int) *generator.Builder {
	return generator.NewBuilder(idx, limit)
}

func lineCount(p post.EnrichedPost) int {
	if p.LineCount == nil {
		return 0
	}
	return *p.LineCount
}
