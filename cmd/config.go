package cmd

import (
	"github.com/spf13/cobra"
)

var ConfigCmd = &cobra.Command{
	Use:              "config",
	Short:            "Inspect the kbs configuration",
	PersistentPreRun: setupLogger,
}

func init() {
	addPersistentFlags(ConfigCmd.PersistentFlags())

	ConfigCmd.AddCommand(configShowCmd)
}

// GetConfigCmd returns the ConfigCmd for testing.
func GetConfigCmd() *cobra.Command {
	return ConfigCmd
}
