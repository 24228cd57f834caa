package cmd

import (
	"github.com/spf13/cobra"
)

var KeyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage your kbs keypair",
	Long: `Creates keypairs, changes the password on wrapped keyfiles, and hands
unwrapped keys off to the kbs agent.`,
	PersistentPreRun: setupLogger,
}

func init() {
	addPersistentFlags(KeyCmd.PersistentFlags())

	KeyCmd.AddCommand(keyInitCmd)
	KeyCmd.AddCommand(keyRewrapCmd)
	KeyCmd.AddCommand(keyUnwrapCmd)
}

// GetKeyCmd returns the KeyCmd for testing.
func GetKeyCmd() *cobra.Command {
	return KeyCmd
}
