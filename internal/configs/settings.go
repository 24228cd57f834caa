package configs

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// ConfigBasedir is the config directory name, relative to the user's config directory.
	ConfigBasedir = "kbs"

	// ConfigBasename is the main config file name, relative to the config directory.
	ConfigBasename = "kbs.conf"

	// DefaultKeyBasename is the generated keyfile name, relative to the config directory.
	DefaultKeyBasename = "key"

	// StoreBasedir is the secret store directory name, relative to the user's data directory.
	StoreBasedir = "kbs"

	// UnwrappedKeyShmName is the name of the shared memory object that stages an unwrapped key.
	// There is exactly one such object per host.
	UnwrappedKeyShmName = "/__kbs_unwrapped_key"

	// AgentSocketBasename is the agent's unix socket name inside the runtime directory.
	AgentSocketBasename = "kbs-agent.sock"
)

// ConfigDir returns the kbs configuration directory. KBS_CONFIG_DIR overrides the default.
func ConfigDir() (string, error) {
	if dir := os.Getenv("KBS_CONFIG_DIR"); dir != "" {
		return dir, nil
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("couldn't find a suitable config directory: %w", err)
	}
	return filepath.Join(configDir, ConfigBasedir), nil
}

// DataDir returns the default secret store directory.
func DataDir() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")

	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("couldn't find a suitable data directory for the secret store: %w", err)
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, StoreBasedir), nil
}

// AgentSocketPath returns the path of the agent's unix socket.
func AgentSocketPath() string {
	if path := os.Getenv("KBS_AGENT_SOCKET"); path != "" {
		return path
	}

	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		return filepath.Join(os.TempDir(), fmt.Sprintf("kbs-agent-%d.sock", os.Getuid()))
	}
	return filepath.Join(runtimeDir, AgentSocketBasename)
}
