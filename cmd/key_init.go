package cmd

import (
	"errors"

	kerrors "github.com/PolarWolf314/kbs/internal/errors"
	"github.com/PolarWolf314/kbs/internal/ui"
	"github.com/PolarWolf314/kbs/internal/utils"
	"github.com/PolarWolf314/kbs/internal/workflows"
	"github.com/awnumar/memguard"
	"github.com/spf13/cobra"
)

var (
	initWrapped bool
	initForce   bool
	initStore   string
)

func init() {
	keyInitCmd.Flags().BoolVarP(&initWrapped, "wrapped", "w", false, "wrap the private key with a password")
	keyInitCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing configuration")
	keyInitCmd.Flags().StringVar(&initStore, "store-dir", "", "secret store directory (defaults to the user data directory)")
}

func resetKeyInitState() {
	initWrapped = false
	initForce = false
	initStore = ""
}

var keyInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a keypair and write a new configuration",
	Long: `Generates a new age keypair and writes a kbs configuration that uses it.

With --wrapped, the private key is encrypted with a password before it is
written to disk. Use 'kbs key unwrap' to make a wrapped key available to the
agent.

Examples:
  # Create an unwrapped keypair
  kbs key init

  # Create a password-wrapped keypair
  kbs key init --wrapped

  # Replace an existing configuration
  kbs key init --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting key init command")

		dir, err := resolveConfigDir()
		if err != nil {
			return Logger.ErrorfAndReturn("Failed to find config directory: %v", err)
		}

		var password []byte
		if initWrapped {
			password, err = utils.PromptNewPassword(cmd.Context(), "Password: ", "Confirm password: ")
			if err != nil {
				return Logger.ErrorfAndReturn("Failed to read password: %v", err)
			}
			defer memguard.WipeBytes(password)
		}

		spinner, cleanup := startSpinner("Generating keypair...")
		defer cleanup()

		result, err := workflows.Init(cmd.Context(), workflows.InitOptions{
			ConfigDir: dir,
			StoreDir:  initStore,
			Wrapped:   initWrapped,
			Password:  password,
			Force:     initForce,
			Logger:    Logger,
		})
		if err != nil {
			if errors.Is(err, kerrors.ErrConfigExists) {
				spinner.FinalMSG = ui.Error.Sprint("✗") + " A configuration already exists in " + ui.Path.Sprint(dir) + "\n" +
					ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("kbs key init --force") + " to replace it"
				return reported(err)
			}
			spinner.FinalMSG = failureMessage("Failed to create keypair", err)
			return reported(err)
		}

		kind := "keypair"
		if result.Wrapped {
			kind = "wrapped keypair"
		}
		spinner.FinalMSG = ui.Success.Sprint("✓") + " Created " + kind + " at " + ui.Path.Sprint(result.Keyfile) + "\n" +
			"  Public key: " + ui.Highlight.Sprint(result.PublicKey) + "\n" +
			"  Config:     " + ui.Path.Sprint(result.ConfigPath)
		return nil
	},
}
