package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdulachik/postgen/internal/app"
	"github.com/abdulachik/postgen/internal/config"
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List the corpus tags",
	RunE:  runTags,
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the corpus tags grouped by category",
	Long: `List the corpus tags grouped by category. Categories come from
CATEGORIES_PATH when set, otherwise from the built-in rules.`,
	RunE: runCategories,
}

func init() {
	rootCmd.AddCommand(tagsCmd)
	rootCmd.AddCommand(categoriesCmd)
}

func runTags(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig((*config.Config).Validate)
	if err != nil {
		return err
	}
	idx, _, err := app.LoadCorpus(cfg)
	if err != nil {
		return err
	}

	for _, tag := range idx.UniqueTags() {
		fmt.Println(tag)
	}
	return nil
}

func runCategories(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig((*config.Config).Validate)
	if err != nil {
		return err
	}
	idx, _, err := app.LoadCorpus(cfg)
	if err != nil {
		return err
	}

	grouped := idx.TagCategories()
	for _, name := range idx.CategoryNames() {
		tags, ok := grouped[name]
		if !ok {
			continue
		}
		fmt.Printf("%s (%d)\n", name, len(tags))
		for _, tag := range tags {
			fmt.Printf("  %s\n", tag)
		}
	}
	return nil
}
