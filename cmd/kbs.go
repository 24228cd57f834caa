package cmd

import (
	"github.com/PolarWolf314/kbs/internal/configs"
	logger "github.com/PolarWolf314/kbs/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	verbose   bool
	debug     bool
	configDir string
	Logger    logger.Logger
)

// addPersistentFlags registers the flags shared by every command group.
func addPersistentFlags(flags *pflag.FlagSet) {
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	flags.BoolVarP(&debug, "debug", "d", false, "enable debug output")
	flags.StringVar(&configDir, "config-dir", "", "use the given config directory instead of the default")
}

func setupLogger(cmd *cobra.Command, args []string) {
	Logger = logger.Logger{
		Verbose: verbose,
		Debug:   debug,
	}
	Logger.Debugf("Initializing %s command with verbose=%t, debug=%t", cmd.Name(), verbose, debug)
}

// resolveConfigDir returns the --config-dir flag or the default config directory.
func resolveConfigDir() (string, error) {
	if configDir != "" {
		return configDir, nil
	}
	return configs.ConfigDir()
}

func loadConfig() (*configs.Config, error) {
	dir, err := resolveConfigDir()
	if err != nil {
		return nil, err
	}
	Logger.Debugf("Loading config from %s", dir)
	return configs.LoadWithLogger(dir, Logger)
}

// ResetGlobalState resets all global flag variables to their defaults for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	configDir = ""
	resetKeyInitState()
	resetKeyRewrapState()
	resetKeyUnwrapState()
	resetRecordEncryptState()
	resetRecordDecryptState()
	resetConfigShowState()
}
