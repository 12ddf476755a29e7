package main

import (
	"bibled/internal/di"
	"bibled/internal/structures"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is overridden at build time with -ldflags "-X main.Version=...".
var Version = "dev"

var flags structures.CliFlags

var rootCmd = &cobra.Command{
	Use:     "bibled",
	Short:   "Scripture search and cache daemon with journal streak tracking",
	Version: Version,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, cleanup, err := di.InitApp(&flags)
		if err != nil {
			return err
		}
		defer cleanup()
		return app.Run()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of bibled",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(Version)
	},
}

func initCmd() {
	rootCmd.PersistentFlags().StringVarP(&flags.ConfigPath, "config", "c", "config/config.yaml", "Path to the YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&flags.DebugMode, "debug", "d", false, "Enable debug logging to stderr")

	initSearchCmd()
	initCacheCmd()
	rootCmd.AddCommand(serveCmd, versionCmd, searchCmd, cacheCmd)
}

func main() {
	initCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
