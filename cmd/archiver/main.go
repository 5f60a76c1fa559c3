package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "archiver",
	Short: "Archive public Sharkey and Misskey posts locally",
	Long: `Sharkey Archiver saves public posts from any Sharkey or Misskey instance
into a local SQLite archive, together with their media and a rendered
screenshot, using only the instances' public APIs.

No API key is required; only public posts can be archived.

Running with no subcommand starts the web UI and API server.`,
	Version: Version,
	RunE:    runServe,
}

func init() {
	// Set version template
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"Sharkey Archiver version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Sharkey Archiver version %s\nCommit: %s\nBuilt: %s\n", Version, Commit, BuildTime)
	},
}
