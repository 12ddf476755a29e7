package main

import (
	"bibled/internal/di"
	"bibled/internal/services"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	searchTranslationFlag string
	searchMaxAgeFlag      time.Duration
)

var searchCmd = &cobra.Command{
	Use:   "search [query words...]",
	Short: "Search sampled chapters of a translation for verses matching the query",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) < 1 {
			return errors.New("requires a query")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		tools, cleanup, err := di.InitTools(&flags)
		if err != nil {
			return err
		}
		defer cleanup()

		if err = tools.Scheduler.Restore(); err != nil {
			return fmt.Errorf("restore cache: %w", err)
		}

		translation := searchTranslationFlag
		if translation == "" {
			translation = tools.Config.Provider.DefaultTranslation
		}

		ctx := cmd.Context()
		if searchMaxAgeFlag > 0 {
			ctx = services.WithMaxAge(ctx, searchMaxAgeFlag)
		}

		results, err := tools.Search.Search(ctx, strings.Join(args, " "), translation)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		if err = tools.Scheduler.Persist(); err != nil {
			return fmt.Errorf("persist cache: %w", err)
		}

		if len(results) == 0 {
			fmt.Println("No matching verses found.")
			return nil
		}
		fmt.Printf("Found %d matching verses:\n", len(results))
		for _, r := range results {
			fmt.Printf("[%d] %s  %s\n", r.Score, r.Reference, r.Text)
		}
		return nil
	},
}

func initSearchCmd() {
	searchCmd.Flags().StringVarP(&searchTranslationFlag, "translation", "t", "", "Translation id (defaults to provider.defaultTranslation)")
	searchCmd.Flags().DurationVar(&searchMaxAgeFlag, "max-age", 0, "Override the cache max age for this search")
}
