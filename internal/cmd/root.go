// Package cmd implements the pagecrate command-line interface.
package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/3leaps/pagecrate/internal/observability"
)

var rootCmd = &cobra.Command{
	Use:   "pagecrate",
	Short: "Serve a Notion workspace as an S3-compatible bucket",
	Long: `pagecrate projects a Notion page or database tree onto a flat,
S3-compatible object namespace.

The serve command runs an HTTP server exposing ListObjects-style bucket
listings and presigned-URL redirects for file retrieval. The crawl
command runs a one-shot export of the projected namespace as JSONL
records.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		observability.InitCLILogger(rootLogLevel, rootLogJSON)
	},
}

var (
	rootConfigPath string
	rootLogLevel   string
	rootLogJSON    bool
)

// versionInfo holds build-time version metadata injected via ldflags.
var versionInfo = struct {
	Version   string
	Commit    string
	BuildDate string
}{
	Version:   "dev",
	Commit:    "HEAD",
	BuildDate: "unknown",
}

// SetVersionInfo records build metadata for the version command and the
// server's /version endpoint.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "info", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().BoolVar(&rootLogJSON, "log-json", false, "Emit logs as JSON")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("pagecrate %s (commit %s, built %s)\n",
			versionInfo.Version, versionInfo.Commit, versionInfo.BuildDate)
	},
}

// Execute runs the root command with the given context.
func Execute(ctx context.Context) error {
	defer observability.Sync()
	return rootCmd.ExecuteContext(ctx)
}
