package main

import (
	"bibled/internal/di"
	"fmt"

	"github.com/spf13/cobra"
)

var cachePrefixFlag string

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the on-disk content cache snapshot",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cached entries whose key starts with --prefix (all entries when empty)",
	Long: `Loads the cache snapshot, removes matching entries and writes the snapshot back.
Run it while the server is stopped; a running server overwrites the snapshot on its next save.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tools, cleanup, err := di.InitTools(&flags)
		if err != nil {
			return err
		}
		defer cleanup()

		if err = tools.Scheduler.Restore(); err != nil {
			return fmt.Errorf("restore cache: %w", err)
		}
		removed := tools.Cache.Clear(cachePrefixFlag)
		if err = tools.Scheduler.Persist(); err != nil {
			return fmt.Errorf("persist cache: %w", err)
		}
		fmt.Printf("Removed %d entries\n", removed)
		return nil
	},
}

func initCacheCmd() {
	cacheClearCmd.Flags().StringVarP(&cachePrefixFlag, "prefix", "p", "", "Key prefix, e.g. KJV: or KJV:GEN:")
	cacheCmd.AddCommand(cacheClearCmd)
}
