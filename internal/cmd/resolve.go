package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/pagecrate/internal/config"
	"github.com/3leaps/pagecrate/internal/observability"
	"github.com/3leaps/pagecrate/pkg/notion"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <id-or-url>",
	Short: "Classify a Notion identifier",
	Long: `Normalize an identifier or URL and classify it against the upstream
API as a page, database, or block.

Example:
  pagecrate resolve 0123456789abcdef0123456789abcdef
  pagecrate resolve https://www.notion.so/Team-Wiki-0123456789abcdef0123456789abcdef`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(rootConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	client, err := notion.NewClient(notion.ClientConfig{
		APIKey:    cfg.Notion.APIKey,
		BaseURL:   cfg.Notion.BaseURL,
		Version:   cfg.Notion.Version,
		RateLimit: cfg.Notion.RateLimit,
		Timeout:   cfg.Notion.Timeout,
		Logger:    observability.CLILogger,
	})
	if err != nil {
		return fmt.Errorf("notion client: %w", err)
	}

	resolver := notion.NewResolver(client, cfg.Cache.TTL, observability.CLILogger)

	res, err := resolver.Resolve(ctx, args[0])
	if err != nil {
		observability.CLILogger.Error("Failed to resolve identifier",
			zap.String("id", args[0]),
			zap.Error(err))
		return fmt.Errorf("resolve %s: %w", args[0], err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]string{
		"id":    res.ID,
		"kind":  res.Kind.String(),
		"title": res.Title(),
		"url":   res.URL(),
	})
}
