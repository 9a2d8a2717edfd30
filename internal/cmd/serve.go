package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/pagecrate/internal/config"
	"github.com/3leaps/pagecrate/internal/observability"
	"github.com/3leaps/pagecrate/internal/server"
	"github.com/3leaps/pagecrate/internal/server/handlers"
	"github.com/3leaps/pagecrate/pkg/crawler"
	"github.com/3leaps/pagecrate/pkg/match"
	"github.com/3leaps/pagecrate/pkg/mirror"
	"github.com/3leaps/pagecrate/pkg/notion"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the S3-compatible HTTP server",
	Long: `Run the HTTP server exposing the projected namespace.

Configuration comes from defaults, an optional config file (--config),
and PAGECRATE_* environment variables. The Notion integration token is
required and is usually supplied via PAGECRATE_NOTION_API_KEY.

Example:
  pagecrate serve
  pagecrate serve --port 9000 --root https://www.notion.so/Team-Wiki-0123456789abcdef0123456789abcdef`,
	RunE: runServe,
}

var (
	serveHost string
	servePort int
	serveRoot string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "", "Override listen host")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Override listen port")
	serveCmd.Flags().StringVar(&serveRoot, "root", "", "Set the crawl root at startup (id or URL)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(rootConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}

	logger := observability.CLILogger

	m, err := buildMirror(cfg, logger)
	if err != nil {
		return err
	}

	if serveRoot != "" {
		id, kind, err := m.SetRoot(ctx, serveRoot)
		if err != nil {
			return fmt.Errorf("set root: %w", err)
		}
		logger.Info("initial root set",
			zap.String("id", id),
			zap.String("kind", kind.String()))
	}

	srv := server.New(server.Config{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		APIKey:          cfg.Auth.APIKey,
	}, m, handlers.VersionInfo{
		Version:   versionInfo.Version,
		Commit:    versionInfo.Commit,
		BuildDate: versionInfo.BuildDate,
	}, logger)

	return srv.Run(ctx)
}

// buildMirror assembles the upstream client, resolver, crawler, and
// matcher behind a mirror from loaded configuration.
func buildMirror(cfg *config.Config, logger *zap.Logger) (*mirror.Mirror, error) {
	client, err := notion.NewClient(notion.ClientConfig{
		APIKey:    cfg.Notion.APIKey,
		BaseURL:   cfg.Notion.BaseURL,
		Version:   cfg.Notion.Version,
		RateLimit: cfg.Notion.RateLimit,
		Timeout:   cfg.Notion.Timeout,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("notion client: %w", err)
	}

	resolver := notion.NewResolver(client, cfg.Cache.TTL, logger)

	cr := crawler.New(client, resolver, crawler.Config{
		MaxDepth:        cfg.Crawl.MaxDepth,
		MaxChildren:     cfg.Crawl.MaxChildren,
		Concurrency:     cfg.Crawl.Concurrency,
		ChildListTTL:    cfg.Cache.TTL,
		PresignedURLTTL: cfg.PresignedURLTTL,
	}, logger)

	matcher, err := match.New(match.Config{
		Includes: cfg.Match.Includes,
		Excludes: cfg.Match.Excludes,
	})
	if err != nil {
		return nil, fmt.Errorf("match patterns: %w", err)
	}

	return mirror.New(resolver, cr, matcher, mirror.Config{
		Bucket:      cfg.Bucket.Name,
		SnapshotTTL: cfg.Cache.TTL,
	}, logger), nil
}
