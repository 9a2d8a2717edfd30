package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/3leaps/pagecrate/pkg/output"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <export.jsonl>",
	Short: "Summarize a crawl export",
	Long: `Read a JSONL crawl export and print per-type record counts and the
final summary, if present.

Example:
  pagecrate inspect results.jsonl
  pagecrate crawl --job crawl.yaml --output results.jsonl && pagecrate inspect results.jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open export: %w", err)
	}
	defer func() { _ = f.Close() }()

	return inspectExport(cmd.OutOrStdout(), f)
}

// inspectExport tallies record envelopes and reports the trailing
// summary when the export carries one.
func inspectExport(out io.Writer, r io.Reader) error {
	d := output.NewDecoder(r)

	counts := map[string]int64{}
	var summary *output.SummaryRecord
	var jobID, root string

	for {
		rec, err := d.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("decode export: %w", err)
		}

		counts[rec.Type]++
		if jobID == "" {
			jobID = rec.JobID
			root = rec.Root
		}

		if rec.Type == output.TypeSummary {
			var s output.SummaryRecord
			if err := rec.DecodeData(&s); err != nil {
				return fmt.Errorf("decode summary: %w", err)
			}
			summary = &s
		}
	}

	fmt.Fprintf(out, "Job:      %s\n", jobID)
	fmt.Fprintf(out, "Root:     %s\n", root)
	fmt.Fprintf(out, "Folders:  %d\n", counts[output.TypeFolder])
	fmt.Fprintf(out, "Files:    %d\n", counts[output.TypeFile])
	fmt.Fprintf(out, "Errors:   %d\n", counts[output.TypeError])
	if summary != nil {
		fmt.Fprintf(out, "Keys:     %d\n", summary.Keys)
		fmt.Fprintf(out, "Duration: %s\n", summary.DurationHuman)
	}
	return nil
}
