package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/PolarWolf314/kbs/internal/configs"
	"github.com/PolarWolf314/kbs/internal/handoff"
	"github.com/PolarWolf314/kbs/internal/ui"
	"github.com/spf13/cobra"
)

var configShowJSON bool

func init() {
	configShowCmd.Flags().BoolVar(&configShowJSON, "json", false, "output in JSON format")
}

func resetConfigShowState() {
	configShowJSON = false
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the current configuration",
	Long: `Displays the kbs configuration, by default from ~/.config/kbs/kbs.conf.

Examples:
  kbs config show
  kbs config show --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting config show command")

		config, err := loadConfig()
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), failureMessage("Failed to load config", err))
			return reported(err)
		}

		out := cmd.OutOrStdout()
		if configShowJSON {
			data, err := json.MarshalIndent(config, "", "  ")
			if err != nil {
				return Logger.ErrorfAndReturn("Failed to encode config: %v", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		fmt.Fprintln(out, ui.Info.Sprint("Configuration"))
		fmt.Fprintf(out, "  Backend:    %s\n", config.AgeBackend)
		fmt.Fprintf(out, "  Public key: %s\n", ui.Highlight.Sprint(config.PublicKey))
		fmt.Fprintf(out, "  Keyfile:    %s\n", ui.Path.Sprint(config.Keyfile))
		fmt.Fprintf(out, "  Wrapped:    %t\n", config.Wrapped)
		fmt.Fprintf(out, "  Store:      %s\n", ui.Path.Sprint(config.Store))
		fmt.Fprintf(out, "  Agent:      %s\n", ui.Path.Sprint(configs.AgentSocketPath()))

		if config.Wrapped {
			pending, err := handoff.Exists(configs.UnwrappedKeyShmName)
			if err != nil {
				Logger.Debugf("Failed to check for a pending handoff: %v", err)
			} else if pending {
				fmt.Fprintln(out, ui.Warning.Sprint("⚠")+" An unwrapped key is waiting in "+ui.Path.Sprint(configs.UnwrappedKeyShmName))
			}
		}
		return nil
	},
}
