package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"ytmcp/internal/config"
	"ytmcp/internal/dispatch"
	"ytmcp/internal/mcpserver"
	"ytmcp/internal/retry"
	"ytmcp/internal/schema"
	"ytmcp/internal/tools"
	"ytmcp/internal/transcript"
	"ytmcp/internal/youtube"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the YouTube tools over MCP on stdio",
	RunE:  runServe,
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}
	d, err := buildDispatcher(cfg)
	if err != nil {
		return err
	}

	logger := slog.Default()
	logger.Info("serving MCP on stdio", "tools", len(d.Tools()))
	return mcpserver.New(d, version, logger).ServeStdio()
}

// buildDispatcher assembles the full pipeline from configuration: the
// schema store, both upstream clients, and the registered handlers.
func buildDispatcher(cfg config.Config) (*dispatch.Dispatcher, error) {
	store, err := schema.Load()
	if err != nil {
		return nil, fmt.Errorf("tool definitions: %w", err)
	}

	policy := retry.Policy{MaxRetries: cfg.MaxRetries, BaseDelay: cfg.RetryBaseDelay}
	videos := youtube.NewClient(cfg.APIKey, youtube.WithRetryPolicy(policy))
	transcripts := transcript.NewClient(transcript.WithRetryPolicy(policy))

	logger := slog.Default()
	d := dispatch.New(store,
		dispatch.WithDefaultTimeout(cfg.HTTPTimeout),
		dispatch.WithLogger(logger),
	)
	d.Use(dispatch.WithLogging(logger))
	if err := tools.Register(d, videos, transcripts); err != nil {
		return nil, fmt.Errorf("register tools: %w", err)
	}
	return d, nil
}
