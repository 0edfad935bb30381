// Package cli implements the inboxpilot command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/nhle/inboxpilot/internal/model"
)

var (
	cfgPath string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "inboxpilot",
	Short: "AI inbox automation",
	Long: "Fetches unread mail, classifies and summarizes it, drafts replies " +
		"grounded on past responses, and sends them after human approval.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgPath, "config", model.DefaultConfigPath(), "path to config file")
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
