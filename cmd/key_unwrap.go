package cmd

import (
	"fmt"

	"github.com/briandowns/spinner"

	"github.com/PolarWolf314/kbs/internal/configs"
	"github.com/PolarWolf314/kbs/internal/handoff"
	"github.com/PolarWolf314/kbs/internal/ui"
	"github.com/PolarWolf314/kbs/internal/utils"
	"github.com/PolarWolf314/kbs/internal/workflows"
	"github.com/spf13/cobra"
)

var unwrapClear bool

func init() {
	keyUnwrapCmd.Flags().BoolVar(&unwrapClear, "clear", false, "remove a stale unwrapped key left by an interrupted handoff")
}

func resetKeyUnwrapState() {
	unwrapClear = false
}

var keyUnwrapCmd = &cobra.Command{
	Use:   "unwrap",
	Short: "Hand the unwrapped key off to the kbs agent",
	Long: `Decrypts the configured wrapped keyfile and stages the plaintext key in
shared memory, where the kbs agent picks it up. The key never touches disk.

Only one handoff can be pending at a time. If a previous handoff was
interrupted, remove it with --clear.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting key unwrap command")

		if unwrapClear {
			if err := handoff.Remove(configs.UnwrappedKeyShmName); err != nil {
				return Logger.ErrorfAndReturn("Failed to remove unwrapped key: %v", err)
			}
			Logger.Infof("Removed %s", configs.UnwrappedKeyShmName)
			return nil
		}

		config, err := loadConfig()
		if err != nil {
			return Logger.ErrorfAndReturn("Failed to load config: %v", err)
		}

		// The spinner only starts once the password is in, since the prompt
		// comes after the slot is claimed.
		var s *spinner.Spinner
		cleanup := func() {}
		defer func() { cleanup() }()

		prompt := func() ([]byte, error) {
			password, err := utils.PromptPassword(cmd.Context(), "Password: ")
			if err != nil {
				return nil, err
			}
			s, cleanup = startSpinner("Unwrapping key...")
			return password, nil
		}

		slot, err := workflows.Unwrap(cmd.Context(), workflows.UnwrapOptions{
			Config: config,
			Prompt: prompt,
			Logger: Logger,
		})
		if err != nil {
			msg := failureMessage("Failed to unwrap "+ui.Path.Sprint(config.Keyfile), err)
			if s != nil {
				s.FinalMSG = msg
			} else {
				fmt.Fprintln(cmd.ErrOrStderr(), msg)
			}
			return reported(err)
		}
		defer slot.Close()

		s.FinalMSG = ui.Success.Sprint("✓") + " Unwrapped key staged for the agent " +
			ui.Muted.Sprintf("%d bytes in %s", slot.Size, slot.Name)
		return nil
	},
}
