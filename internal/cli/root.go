// Package cli wires configuration, adapters, and the dispatcher into
// the ytmcp command tree.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "ytmcp",
	Short: "MCP server exposing YouTube search, metadata, and transcripts",
	Long: "ytmcp serves three schema-validated tools over the Model Context " +
		"Protocol on stdio: search_videos, get_videos, and get_transcript.",
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return setupLogging(logLevel)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug|info|warn|error")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// setupLogging routes structured logs to stderr. Stdout stays reserved
// for the MCP stream.
func setupLogging(level string) error {
	var lv slog.Level
	if err := lv.UnmarshalText([]byte(level)); err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lv})))
	return nil
}
