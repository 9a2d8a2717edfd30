package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/pagecrate/internal/config"
	"github.com/3leaps/pagecrate/internal/observability"
	"github.com/3leaps/pagecrate/pkg/crawler"
	"github.com/3leaps/pagecrate/pkg/folder"
	"github.com/3leaps/pagecrate/pkg/manifest"
	"github.com/3leaps/pagecrate/pkg/match"
	"github.com/3leaps/pagecrate/pkg/namespace"
	"github.com/3leaps/pagecrate/pkg/notion"
	"github.com/3leaps/pagecrate/pkg/output"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Run a one-shot crawl job from manifest",
	Long: `Run a crawl job as defined in a YAML or JSON manifest file.

The manifest specifies the crawl root, recursion bounds, key scoping
patterns, and output configuration. The projected namespace is written
as JSONL records.

Example:
  pagecrate crawl --job crawl.yaml
  pagecrate crawl --job crawl.yaml --output results.jsonl
  pagecrate crawl --job crawl.yaml --quiet
  pagecrate crawl --job crawl.yaml --dry-run`,
	RunE: runCrawl,
}

var (
	crawlJobPath string
	crawlOutput  string
	crawlQuiet   bool
	crawlDryRun  bool
	crawlPlan    bool
)

func init() {
	rootCmd.AddCommand(crawlCmd)

	crawlCmd.Flags().StringVarP(&crawlJobPath, "job", "j", "", "Path to job manifest (required)")
	crawlCmd.Flags().StringVarP(&crawlOutput, "output", "o", "", "Override output destination")
	crawlCmd.Flags().BoolVarP(&crawlQuiet, "quiet", "q", false, "Suppress progress records")
	crawlCmd.Flags().BoolVar(&crawlDryRun, "dry-run", false, "Validate manifest and show plan without executing")
	crawlCmd.Flags().BoolVar(&crawlPlan, "plan", false, "Alias for --dry-run")

	_ = crawlCmd.MarkFlagRequired("job")
}

func runCrawl(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	m, err := manifest.Load(crawlJobPath)
	if err != nil {
		observability.CLILogger.Error("Failed to load manifest",
			zap.String("path", crawlJobPath),
			zap.Error(err))
		return fmt.Errorf("invalid manifest: %w", err)
	}

	observability.CLILogger.Debug("Loaded manifest",
		zap.String("path", crawlJobPath),
		zap.String("root", m.Root),
		zap.Strings("includes", m.Match.Includes))

	if crawlOutput != "" {
		m.Output.Destination = crawlOutput
	}

	if crawlQuiet {
		enabled := false
		m.Output.Progress = &enabled
	}

	if crawlPlan || crawlDryRun {
		return showCrawlPlan(cmd, m)
	}

	return executeCrawl(ctx, m)
}

// showCrawlPlan displays what would be crawled without executing.
func showCrawlPlan(cmd *cobra.Command, m *manifest.Manifest) error {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "=== Crawl Plan (dry-run) ===")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Root:        %s\n", m.Root)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Patterns:")
	fmt.Fprintln(out, "  Include:")
	if len(m.Match.Includes) == 0 {
		fmt.Fprintln(out, "    - ** (all keys)")
	}
	for _, p := range m.Match.Includes {
		fmt.Fprintf(out, "    - %s\n", p)
	}
	if len(m.Match.Excludes) > 0 {
		fmt.Fprintln(out, "  Exclude:")
		for _, p := range m.Match.Excludes {
			fmt.Fprintf(out, "    - %s\n", p)
		}
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "Max Depth:   %d\n", m.Crawl.MaxDepth)
	fmt.Fprintf(out, "Fan-out Cap: %d\n", m.Crawl.MaxChildren)
	fmt.Fprintf(out, "Concurrency: %d\n", m.Crawl.Concurrency)
	if m.Crawl.RateLimit > 0 {
		fmt.Fprintf(out, "Rate Limit:  %.1f req/s\n", m.Crawl.RateLimit)
	}
	fmt.Fprintf(out, "Output:      %s\n", m.Output.Destination)
	fmt.Fprintf(out, "Progress:    %v\n", m.Output.ProgressEnabled())
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Manifest validated successfully. Remove --dry-run to execute.")
	return nil
}

// executeCrawl runs the crawl pipeline: resolve the root, walk the
// tree, derive folders, project keys, and write JSONL records.
func executeCrawl(ctx context.Context, m *manifest.Manifest) error {
	started := time.Now()
	jobID := uuid.New().String()

	cfg, err := config.Load(rootConfigPath)
	if err != nil {
		observability.CLILogger.Error("Failed to load config", zap.Error(err))
		return fmt.Errorf("load config: %w", err)
	}

	client, err := notion.NewClient(notion.ClientConfig{
		APIKey:    cfg.Notion.APIKey,
		BaseURL:   cfg.Notion.BaseURL,
		Version:   cfg.Notion.Version,
		RateLimit: pickRateLimit(m.Crawl.RateLimit, cfg.Notion.RateLimit),
		Timeout:   cfg.Notion.Timeout,
		Logger:    observability.CLILogger,
	})
	if err != nil {
		observability.CLILogger.Error("Failed to create upstream client", zap.Error(err))
		return fmt.Errorf("notion client: %w", err)
	}

	matcher, err := match.New(match.Config{
		Includes: m.Match.Includes,
		Excludes: m.Match.Excludes,
	})
	if err != nil {
		observability.CLILogger.Error("Invalid match patterns", zap.Error(err))
		return fmt.Errorf("invalid match patterns: %w", err)
	}

	writer, cleanup, err := createWriter(m, jobID)
	if err != nil {
		observability.CLILogger.Error("Failed to create writer", zap.Error(err))
		return fmt.Errorf("create output: %w", err)
	}
	defer cleanup()

	progress := m.Output.ProgressEnabled()
	writeProgress := func(phase string, nodes, files int64) {
		if !progress {
			return
		}
		rec := &output.ProgressRecord{Phase: phase, NodesFound: nodes, FilesFound: files}
		if err := writer.WriteProgress(ctx, rec); err != nil {
			observability.CLILogger.Warn("Failed to write progress record", zap.Error(err))
		}
	}

	writeProgress(output.PhaseStarting, 0, 0)

	resolver := notion.NewResolver(client, cfg.Cache.TTL, observability.CLILogger)
	res, err := resolver.Resolve(ctx, m.Root)
	if err != nil {
		_ = writer.WriteError(ctx, &output.ErrorRecord{
			Code:    errorCode(err),
			Message: err.Error(),
			ID:      m.Root,
		})
		observability.CLILogger.Error("Failed to resolve root",
			zap.String("root", m.Root),
			zap.Error(err))
		return fmt.Errorf("resolve root: %w", err)
	}

	observability.CLILogger.Info("Starting crawl",
		zap.String("job_id", jobID),
		zap.String("root", res.ID),
		zap.String("kind", res.Kind.String()),
		zap.Int("concurrency", m.Crawl.Concurrency))

	cr := crawler.New(client, resolver, crawler.Config{
		MaxDepth:        m.Crawl.MaxDepth,
		MaxChildren:     m.Crawl.MaxChildren,
		Concurrency:     m.Crawl.Concurrency,
		ChildListTTL:    cfg.Cache.TTL,
		PresignedURLTTL: cfg.PresignedURLTTL,
	}, observability.CLILogger)

	nodes, err := cr.Crawl(ctx, res.ID)
	if err != nil {
		_ = writer.WriteError(ctx, &output.ErrorRecord{
			Code:    errorCode(err),
			Message: err.Error(),
			ID:      res.ID,
		})
		observability.CLILogger.Error("Crawl failed",
			zap.String("job_id", jobID),
			zap.Error(err))
		return fmt.Errorf("crawl: %w", err)
	}

	writeProgress(output.PhaseCrawling, int64(len(nodes)), 0)

	files, err := cr.ExtractFiles(ctx, nodes)
	if err != nil {
		_ = writer.WriteError(ctx, &output.ErrorRecord{
			Code:    errorCode(err),
			Message: err.Error(),
			ID:      res.ID,
		})
		return fmt.Errorf("extract files: %w", err)
	}

	writeProgress(output.PhaseProjecting, int64(len(nodes)), int64(len(files)))

	folders := folder.Build(res.ID, nodes)
	snap := namespace.Project(cfg.Bucket.Name, res.ID, nodes, folders, files, matcher)

	errorCount := writeRecords(ctx, writer, snap, folders, files)

	writeProgress(output.PhaseComplete, int64(len(nodes)), int64(len(files)))

	summary := &output.SummaryRecord{
		Nodes:         int64(len(nodes)),
		Folders:       int64(len(folders)),
		Files:         int64(len(files)),
		Keys:          int64(snap.Len()),
		Duration:      time.Since(started),
		DurationHuman: time.Since(started).Round(time.Millisecond).String(),
		Errors:        errorCount,
	}
	if err := writer.WriteSummary(ctx, summary); err != nil {
		observability.CLILogger.Warn("Failed to write summary record", zap.Error(err))
	}

	observability.CLILogger.Info("Crawl completed",
		zap.String("job_id", jobID),
		zap.Int64("nodes", summary.Nodes),
		zap.Int64("files", summary.Files),
		zap.Int64("keys", summary.Keys),
		zap.Duration("duration", summary.Duration))

	return nil
}

// writeRecords emits one folder record per projected folder key and one
// file record per projected file key. Returns the count of failed
// writes.
func writeRecords(ctx context.Context, writer output.Writer, snap *namespace.Snapshot, folders map[string]*folder.Folder, files []crawler.FileLeaf) int64 {
	leaves := make(map[string]crawler.FileLeaf, len(files))
	for _, leaf := range files {
		leaves[leaf.ID] = leaf
	}

	var errorCount int64
	for _, obj := range snap.Folders() {
		rec := &output.FolderRecord{ID: obj.EntityID, Key: obj.Key}
		if f, ok := folders[obj.EntityID]; ok {
			rec.Name = f.Name
			rec.ParentID = f.ParentID
			rec.Children = f.Children
		}
		if err := writer.WriteFolder(ctx, rec); err != nil {
			errorCount++
			observability.CLILogger.Warn("Failed to write folder record",
				zap.String("key", obj.Key),
				zap.Error(err))
		}
	}

	for _, obj := range snap.Files() {
		rec := &output.FileRecord{
			ID:           obj.EntityID,
			Key:          obj.Key,
			Size:         obj.Size,
			ETag:         obj.ETag,
			LastModified: obj.LastModified,
			SourceURL:    obj.SourceURL,
			ExpiresAt:    obj.ExpiresAt,
		}
		if leaf, ok := leaves[obj.EntityID]; ok {
			rec.Name = leaf.Name
			rec.MediaKind = leaf.MediaKind
			rec.ParentID = leaf.ParentID
		}
		if err := writer.WriteFile(ctx, rec); err != nil {
			errorCount++
			observability.CLILogger.Warn("Failed to write file record",
				zap.String("key", obj.Key),
				zap.Error(err))
		}
	}

	return errorCount
}

// errorCode maps pipeline errors to output record error codes.
func errorCode(err error) string {
	switch {
	case notion.IsUnresolvable(err):
		return output.ErrCodeUnresolvable
	case errors.Is(err, context.DeadlineExceeded):
		return output.ErrCodeTimeout
	default:
		return output.ErrCodeUpstream
	}
}

// createWriter creates an output writer from manifest configuration.
// Returns the writer, a cleanup function, and any error.
func createWriter(m *manifest.Manifest, jobID string) (output.Writer, func(), error) {
	dest := m.Output.Destination

	if dest == "" || dest == "stdout" {
		w := output.NewJSONLWriter(os.Stdout, jobID, m.Root)
		return w, func() { _ = w.Close() }, nil
	}

	path := strings.TrimPrefix(dest, "file:")

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file %s: %w", path, err)
	}

	w := output.NewJSONLWriter(f, jobID, m.Root)
	return w, func() {
		_ = w.Close()
		_ = f.Close()
	}, nil
}

// pickRateLimit prefers the manifest's rate limit over the configured
// default.
func pickRateLimit(manifestLimit, configLimit float64) float64 {
	if manifestLimit > 0 {
		return manifestLimit
	}
	return configLimit
}
