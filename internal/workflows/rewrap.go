package workflows

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/kbs/internal/configs"
	kerrors "github.com/PolarWolf314/kbs/internal/errors"
	logger "github.com/PolarWolf314/kbs/internal/logging"
	"github.com/PolarWolf314/kbs/internal/secrets"
	"github.com/PolarWolf314/kbs/internal/utils"
)

// BackupSuffix is appended to the keyfile path when Rewrap snapshots it.
const BackupSuffix = ".bak"

// RewrapOptions configures the rewrap workflow.
type RewrapOptions struct {
	Config      *configs.Config
	OldPassword []byte
	NewPassword []byte

	// Backup copies the keyfile to <keyfile>.bak before overwriting it.
	Backup bool

	// WorkFactor overrides the scrypt work factor for the new wrap. Zero uses the default.
	WorkFactor int

	Logger logger.Logger
}

// RewrapResult contains the outcome of a rewrap operation.
type RewrapResult struct {
	Keyfile string

	// BackupPath is empty when no backup was made.
	BackupPath string
}

// Rewrap changes the password on the configured wrapped keyfile.
//
// Returns ErrKeyNotWrapped if the configuration does not use a wrapped key.
// The keyfile is overwritten in place; without Backup a crash mid-write can
// lose the key.
func Rewrap(ctx context.Context, opts RewrapOptions) (*RewrapResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg := opts.Config
	if !cfg.Wrapped {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrKeyNotWrapped, cfg.Keyfile)
	}

	backend, err := secrets.BackendFor(secrets.BackendKind(cfg.AgeBackend))
	if err != nil {
		return nil, err
	}
	if ageBackend, ok := backend.(*secrets.AgeBackend); ok {
		ageBackend.WorkFactor = opts.WorkFactor
	}

	result := &RewrapResult{Keyfile: cfg.Keyfile}
	if opts.Backup {
		result.BackupPath = cfg.Keyfile + BackupSuffix
		if err := utils.CopyFile(cfg.Keyfile, result.BackupPath, 0600); err != nil {
			return nil, fmt.Errorf("backing up keyfile: %w", err)
		}
		opts.Logger.Infof("backed up %s to %s", cfg.Keyfile, result.BackupPath)
	}

	if err := backend.RewrapKeyfile(cfg.Keyfile, opts.OldPassword, opts.NewPassword); err != nil {
		return nil, err
	}
	opts.Logger.Debugf("rewrapped %s", cfg.Keyfile)

	return result, nil
}
