package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abdulachik/postgen/internal/app"
	"github.com/abdulachik/postgen/internal/config"
	"github.com/abdulachik/postgen/internal/post"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a post",
	Long: `Generate one or more posts for a topic using matching corpus posts as
few-shot examples.

Example:
  postgen generate --tag "Job Search" --length Short --language English --tone Casual`,
	RunE: runGenerate,
}

var (
	genLength     string
	genLanguage   string
	genTag        string
	genTone       string
	genVariants   int
	genShowPrompt bool
)

func init() {
	generateCmd.Flags().StringVar(&genLength, "length", string(post.Medium), "Short, Medium or Long")
	generateCmd.Flags().StringVar(&genLanguage, "language", string(post.English), "English, Hinglish, Hindi or Marathi")
	generateCmd.Flags().StringVar(&genTag, "tag", "", "topic tag (see 'postgen tags')")
	generateCmd.Flags().StringVar(&genTone, "tone", string(post.Professional), "Professional, Casual, Inspirational, Humorous or Opinionated")
	generateCmd.Flags().IntVarP(&genVariants, "variants", "n", 1, "number of posts to generate (max 5)")
	generateCmd.Flags().BoolVar(&genShowPrompt, "show-prompt", false, "print the prompt instead of calling the LLM")
	_ = generateCmd.MarkFlagRequired("tag")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	req := post.Request{
		Length:   post.Length(genLength),
		Language: post.Language(genLanguage),
		Tag:      genTag,
		Tone:     post.Tone(genTone),
	}
	if err := req.Validate(); err != nil {
		return err
	}

	validate := (*config.Config).ValidateForGeneration
	if genShowPrompt {
		validate = (*config.Config).Validate
	}
	cfg, err := loadConfig(validate)
	if err != nil {
		return err
	}

	if genShowPrompt {
		idx, _, err := app.LoadCorpus(cfg)
		if err != nil {
			return err
		}
		fmt.Println(newBuilder(idx, cfg.ExampleLimit).Build(req))
		return nil
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if examples := a.Generator.Builder().Examples(req); len(examples) == 0 {
		fmt.Printf("No %s %s posts tagged %q in the corpus; generating without examples.\n\n",
			req.Length, req.Language, req.Tag)
	}

	posts := a.Generator.GenerateVariants(ctx, req, genVariants)
	for i, p := range posts {
		if len(posts) > 1 {
			fmt.Printf("=== Variant %d ===\n", i+1)
		}
		fmt.Println(strings.TrimSpace(p))
		if i < len(posts)-1 {
			fmt.Println()
		}
	}
	return nil
}
