// Command pagecrate serves a Notion workspace as an S3-compatible
// bucket and runs one-shot namespace exports.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/3leaps/pagecrate/internal/cmd"
)

// Build-time metadata, injected via ldflags.
var (
	version   = "dev"
	commit    = "HEAD"
	buildDate = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, commit, buildDate)

	if err := cmd.Execute(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
