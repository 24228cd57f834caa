package configs

import (
	"fmt"
	"os"
	"path/filepath"

	kerrors "github.com/PolarWolf314/kbs/internal/errors"
	logger "github.com/PolarWolf314/kbs/internal/logging"
	"github.com/PolarWolf314/kbs/internal/utils"
)

// Config is the on-disk kbs configuration.
type Config struct {
	AgeBackend string `toml:"age-backend" json:"age-backend"`
	PublicKey  string `toml:"public-key" json:"public-key"`
	Keyfile    string `toml:"keyfile" json:"keyfile"`
	Wrapped    bool   `toml:"wrapped" json:"wrapped"`
	Store      string `toml:"store" json:"store"`
}

// BackendConfig is the subset of Config an encryption backend is built from.
type BackendConfig struct {
	Kind      string
	PublicKey string
	Keyfile   string
	Wrapped   bool
}

// BackendConfig returns the fields relevant to backend construction.
func (c *Config) BackendConfig() BackendConfig {
	return BackendConfig{
		Kind:      c.AgeBackend,
		PublicKey: c.PublicKey,
		Keyfile:   c.Keyfile,
		Wrapped:   c.Wrapped,
	}
}

// ConfigPath returns the path of the config file inside dir.
func ConfigPath(dir string) string {
	return filepath.Join(dir, ConfigBasename)
}

// Load reads the config file from dir and expands ~ in its paths.
// Returns ErrConfigNotFound if no config file exists.
func Load(dir string) (*Config, error) {
	return LoadWithLogger(dir, logger.Logger{})
}

// LoadWithLogger is Load, reporting keys kbs does not use (hooks,
// generators, commands) at debug level.
func LoadWithLogger(dir string, log logger.Logger) (*Config, error) {
	configPath := ConfigPath(dir)

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrConfigNotFound, configPath)
	}

	config := &Config{}
	unknown, err := LoadTOML(configPath, config)
	if err != nil {
		return nil, fmt.Errorf("%w: config loading error: %v", kerrors.ErrConfigParse, err)
	}
	for _, key := range unknown {
		log.Debugf("Ignoring config key %q", key)
	}

	for _, field := range []*string{&config.Keyfile, &config.Store} {
		expanded, err := utils.ExpandTilde(*field)
		if err != nil {
			return nil, err
		}
		*field = expanded
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Save writes the config file into dir.
func Save(dir string, config *Config) error {
	if err := SaveTOML(ConfigPath(dir), config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// Validate checks that every field the core depends on is present.
func (c *Config) Validate() error {
	switch {
	case c.AgeBackend == "":
		return fmt.Errorf("%w: missing age-backend", kerrors.ErrConfigParse)
	case c.PublicKey == "":
		return fmt.Errorf("%w: missing public-key", kerrors.ErrConfigParse)
	case c.Keyfile == "":
		return fmt.Errorf("%w: missing keyfile", kerrors.ErrConfigParse)
	}
	return nil
}
