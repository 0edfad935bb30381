package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhle/inboxpilot/internal/model"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with default settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := model.LoadConfig(cfgPath)
		if err != nil {
			return err
		}
		if err := model.SaveConfig(cfgPath, cfg); err != nil {
			return err
		}
		fmt.Printf("Config written to %s\n", cfgPath)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
