package handoff

import (
	"context"
	"fmt"
	"os"

	"github.com/awnumar/memguard"

	"github.com/PolarWolf314/kbs/internal/configs"
	kerrors "github.com/PolarWolf314/kbs/internal/errors"
	logger "github.com/PolarWolf314/kbs/internal/logging"
	"github.com/PolarWolf314/kbs/internal/secrets"
)

// PasswordPrompt asks the user for the keyfile password. It is only called
// once the slot has been claimed.
type PasswordPrompt func() ([]byte, error)

// Options configures a handoff.
type Options struct {
	// Name is the shared-memory object name. Empty means configs.UnwrappedKeyShmName.
	Name string

	// Keyfile is the path of the password-wrapped keyfile.
	Keyfile string

	Prompt PasswordPrompt
	Logger logger.Logger
}

// Slot is a populated shared-memory object holding an unwrapped key.
// File is open for reading and positioned at offset 0.
type Slot struct {
	Name string
	Size int64
	File *os.File
}

// Close closes the slot's file descriptor without removing the slot.
func (s *Slot) Close() error {
	if s == nil || s.File == nil {
		return nil
	}
	return s.File.Close()
}

// Unwrap claims the shared-memory slot, prompts for a password, unwraps the
// keyfile, and writes the plaintext key into the slot.
//
// Each step gates the next. If the slot already exists Unwrap fails with
// ErrHandoffConflict without prompting. On success the slot is never removed;
// that is the consumer's job.
func Unwrap(ctx context.Context, opts Options) (*Slot, error) {
	if opts.Prompt == nil {
		return nil, fmt.Errorf("no password prompt configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := opts.Name
	if name == "" {
		name = configs.UnwrappedKeyShmName
	}
	log := opts.Logger

	f, err := createSlot(name)
	if err != nil {
		return nil, err
	}
	log.Debugf("claimed shared memory slot %s", name)

	size, err := populate(ctx, f, opts)
	if err != nil {
		f.Close()
		if rmErr := removeSlot(name); rmErr != nil {
			log.WarnfAlways("Failed to remove shared memory slot %s: %v", name, rmErr)
		} else {
			log.Debugf("removed shared memory slot %s after failed handoff", name)
		}
		return nil, err
	}

	log.Debugf("wrote %d bytes to shared memory slot %s", size, name)
	return &Slot{Name: name, Size: size, File: f}, nil
}

func populate(ctx context.Context, f *os.File, opts Options) (int64, error) {
	password, err := opts.Prompt()
	if err != nil {
		return 0, fmt.Errorf("failed to read password: %w", err)
	}
	defer memguard.WipeBytes(password)

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	wrapped, err := os.ReadFile(opts.Keyfile)
	if err != nil {
		return 0, fmt.Errorf("failed to read keyfile %s: %w", opts.Keyfile, err)
	}

	kind, err := secrets.ParseEnvelopeKind(wrapped)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", kerrors.ErrNotPasswordWrapped, opts.Keyfile, err)
	}
	if kind != secrets.KindPassphrase {
		return 0, fmt.Errorf("%w: %s", kerrors.ErrNotPasswordWrapped, opts.Keyfile)
	}
	opts.Logger.Debugf("keyfile %s is password-wrapped", opts.Keyfile)

	// The envelope's own work factor is not consulted here.
	key, err := secrets.UnwrapKeyWithWorkFactor(wrapped, password, secrets.HandoffWorkFactor)
	if err != nil {
		return 0, fmt.Errorf("unable to decrypt %s: %w", opts.Keyfile, err)
	}
	defer key.Destroy()

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if err := writeSlot(f, key.Bytes()); err != nil {
		return 0, err
	}
	return int64(key.Len()), nil
}

// Consume reads the key from the named slot and removes the slot.
// This is the agent's side of the handoff.
func Consume(name string) (*secrets.SecretKey, error) {
	if name == "" {
		name = configs.UnwrappedKeyShmName
	}

	data, err := readSlot(name)
	if err != nil {
		return nil, err
	}
	key := secrets.NewSecretKey(data)

	if err := removeSlot(name); err != nil {
		key.Destroy()
		return nil, err
	}
	return key, nil
}

// Remove deletes the named slot. A slot that does not exist is not an error.
func Remove(name string) error {
	if name == "" {
		name = configs.UnwrappedKeyShmName
	}
	return removeSlot(name)
}

// Exists reports whether the named slot is currently claimed.
func Exists(name string) (bool, error) {
	if name == "" {
		name = configs.UnwrappedKeyShmName
	}
	return slotExists(name)
}
