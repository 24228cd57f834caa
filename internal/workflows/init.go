package workflows

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/PolarWolf314/kbs/internal/configs"
	kerrors "github.com/PolarWolf314/kbs/internal/errors"
	logger "github.com/PolarWolf314/kbs/internal/logging"
	"github.com/PolarWolf314/kbs/internal/secrets"
	"github.com/PolarWolf314/kbs/internal/utils"
)

// InitOptions configures the init workflow.
type InitOptions struct {
	// ConfigDir is where the config file and keyfile are written.
	ConfigDir string

	// StoreDir is the secret store directory. If empty, uses configs.DataDir().
	StoreDir string

	// Wrapped wraps the generated private key with Password.
	Wrapped bool

	// Password is required when Wrapped is set.
	Password []byte

	// Force overwrites an existing configuration.
	Force bool

	// WorkFactor overrides the scrypt work factor for wrapping. Zero uses the default.
	WorkFactor int

	Logger logger.Logger
}

// InitResult contains the outcome of an init operation.
type InitResult struct {
	ConfigPath string
	Keyfile    string
	PublicKey  string
	Wrapped    bool
}

// Init generates a new keypair and writes a configuration pointing at it.
//
// Returns ErrConfigExists if a configuration already exists and Force is unset.
func Init(ctx context.Context, opts InitOptions) (*InitResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := opts.Logger

	configPath := configs.ConfigPath(opts.ConfigDir)
	exists, err := utils.FileExists(configPath)
	if err != nil {
		return nil, fmt.Errorf("checking for existing config: %w", err)
	}
	if exists && !opts.Force {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrConfigExists, configPath)
	}
	if opts.Wrapped && len(opts.Password) == 0 {
		return nil, fmt.Errorf("a password is required for a wrapped key")
	}

	storeDir := opts.StoreDir
	if storeDir == "" {
		storeDir, err = configs.DataDir()
		if err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(opts.ConfigDir, 0700); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.MkdirAll(storeDir, 0700); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	keyfile := filepath.Join(opts.ConfigDir, configs.DefaultKeyBasename)
	backend := &secrets.AgeBackend{WorkFactor: opts.WorkFactor}

	cleanupNeeded := false
	defer func() {
		if cleanupNeeded {
			os.Remove(keyfile)
		}
	}()

	var publicKey string
	if opts.Wrapped {
		log.Debugf("generating wrapped keypair at %s", keyfile)
		publicKey, err = backend.CreateWrappedKeypair(keyfile, opts.Password)
	} else {
		log.Debugf("generating keypair at %s", keyfile)
		publicKey, err = backend.CreateKeypair(keyfile)
	}
	if err != nil {
		return nil, fmt.Errorf("generating keypair: %w", err)
	}
	cleanupNeeded = !exists

	config := &configs.Config{
		AgeBackend: string(secrets.KindRageLib),
		PublicKey:  publicKey,
		Keyfile:    keyfile,
		Wrapped:    opts.Wrapped,
		Store:      storeDir,
	}
	if err := configs.Save(opts.ConfigDir, config); err != nil {
		return nil, err
	}
	log.Infof("wrote config to %s", configPath)

	cleanupNeeded = false

	return &InitResult{
		ConfigPath: configPath,
		Keyfile:    keyfile,
		PublicKey:  publicKey,
		Wrapped:    opts.Wrapped,
	}, nil
}
