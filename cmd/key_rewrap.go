package cmd

import (
	"github.com/PolarWolf314/kbs/internal/ui"
	"github.com/PolarWolf314/kbs/internal/utils"
	"github.com/PolarWolf314/kbs/internal/workflows"
	"github.com/awnumar/memguard"
	"github.com/spf13/cobra"
)

var rewrapNoBackup bool

func init() {
	keyRewrapCmd.Flags().BoolVar(&rewrapNoBackup, "no-backup", false, "don't copy the keyfile to <keyfile>"+workflows.BackupSuffix+" before rewrapping")
}

func resetKeyRewrapState() {
	rewrapNoBackup = false
}

var keyRewrapCmd = &cobra.Command{
	Use:   "rewrap",
	Short: "Change the password on a wrapped keyfile",
	Long: `Decrypts the configured wrapped keyfile with its current password and
re-encrypts it with a new one. The key itself does not change, so existing
records stay readable.

The keyfile is overwritten in place. A copy of the original is kept next to it
unless --no-backup is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting key rewrap command")

		config, err := loadConfig()
		if err != nil {
			return Logger.ErrorfAndReturn("Failed to load config: %v", err)
		}

		oldPassword, err := utils.PromptPassword(cmd.Context(), "Old password: ")
		if err != nil {
			return Logger.ErrorfAndReturn("Failed to read password: %v", err)
		}
		defer memguard.WipeBytes(oldPassword)

		newPassword, err := utils.PromptNewPassword(cmd.Context(), "New password: ", "Confirm new password: ")
		if err != nil {
			return Logger.ErrorfAndReturn("Failed to read password: %v", err)
		}
		defer memguard.WipeBytes(newPassword)

		spinner, cleanup := startSpinner("Rewrapping keyfile...")
		defer cleanup()

		result, err := workflows.Rewrap(cmd.Context(), workflows.RewrapOptions{
			Config:      config,
			OldPassword: oldPassword,
			NewPassword: newPassword,
			Backup:      !rewrapNoBackup,
			Logger:      Logger,
		})
		if err != nil {
			spinner.FinalMSG = failureMessage("Failed to rewrap "+ui.Path.Sprint(config.Keyfile), err)
			return reported(err)
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") + " Rewrapped " + ui.Path.Sprint(result.Keyfile)
		if result.BackupPath != "" {
			spinner.FinalMSG += "\n" + ui.Info.Sprint("→") + " Original keyfile saved to " + ui.Path.Sprint(result.BackupPath)
		}
		return nil
	},
}
