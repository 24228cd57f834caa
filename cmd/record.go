package cmd

import (
	"github.com/spf13/cobra"
)

var RecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Encrypt and decrypt records",
	Long: `Encrypts records to your public key and decrypts them with your private key.

If your keyfile is wrapped, the private key is fetched from the kbs agent.
Run 'kbs key unwrap' first if the agent doesn't have it yet.`,
	PersistentPreRun: setupLogger,
}

func init() {
	addPersistentFlags(RecordCmd.PersistentFlags())

	RecordCmd.AddCommand(recordEncryptCmd)
	RecordCmd.AddCommand(recordDecryptCmd)
}

// GetRecordCmd returns the RecordCmd for testing.
func GetRecordCmd() *cobra.Command {
	return RecordCmd
}
