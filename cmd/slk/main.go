// Package main provides the slk CLI entry point.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/otomaru/slk/internal/config"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps a command error to the process exit code.
func exitCode(err error) int {
	var cfgErr *config.ConfigError
	if errors.As(err, &cfgErr) {
		return ExitConfigError
	}
	return ExitError
}

var rootCmd = &cobra.Command{
	Use:   "slk",
	Short: "Terminal client for Slack",
	Long: `slk is a terminal client for reading Slack conversations.

Authorize once with 'slk login', then list conversations and read channel
history or thread replies as plain text. The token is stored in
~/.config/slk/credentials; SLACK_TOKEN overrides it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Load .env if present (for SLACK_TOKEN / SLK_CLIENT_ID / SLK_CLIENT_SECRET)
	_ = godotenv.Load()

	rootCmd.Version = Version
}
