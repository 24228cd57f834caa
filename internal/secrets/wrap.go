package secrets

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"filippo.io/age"

	kerrors "github.com/PolarWolf314/kbs/internal/errors"
)

const (
	// DefaultWorkFactor is the scrypt work factor (log2 N) used when wrapping keys.
	DefaultWorkFactor = 18

	// HandoffWorkFactor is the fixed maximum work factor accepted when unwrapping a key
	// for handoff. Keys wrapped with a larger factor cannot be handed off even with the
	// correct password, because the envelope's factor is not consulted on that path.
	HandoffWorkFactor = 18

	// maxUnwrapWorkFactor bounds the factor read from an envelope on the general path.
	maxUnwrapWorkFactor = 22
)

// WrapKey encrypts key material with a password using the default work factor
// and returns the ASCII-armored envelope.
func WrapKey(key, password []byte) ([]byte, error) {
	return WrapKeyWithWorkFactor(key, password, DefaultWorkFactor)
}

// WrapKeyWithWorkFactor is WrapKey with an explicit scrypt work factor.
// Every call draws a fresh salt, so wrapping the same key twice yields different envelopes.
func WrapKeyWithWorkFactor(key, password []byte, logN int) ([]byte, error) {
	if len(password) == 0 {
		return nil, fmt.Errorf("password cannot be empty")
	}

	recipient, err := age.NewScryptRecipient(string(password))
	if err != nil {
		return nil, fmt.Errorf("failed to create password recipient: %w", err)
	}
	recipient.SetWorkFactor(logN)

	var encrypted bytes.Buffer
	w, err := age.Encrypt(&encrypted, recipient)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap key: %w", err)
	}
	if _, err := w.Write(key); err != nil {
		return nil, fmt.Errorf("failed to wrap key: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to wrap key: %w", err)
	}

	armored, err := Armor(encrypted.Bytes())
	if err != nil {
		return nil, err
	}
	return []byte(armored), nil
}

// UnwrapKey decrypts a wrapped key with a password. The work factor is read from
// the envelope. Any failure is reported as ErrWrapAuthFailure.
func UnwrapKey(wrapped, password []byte) (*SecretKey, error) {
	return UnwrapKeyWithWorkFactor(wrapped, password, maxUnwrapWorkFactor)
}

// UnwrapKeyWithWorkFactor is UnwrapKey with a caller-chosen maximum work factor.
// Envelopes wrapped with a larger factor fail with ErrWrapAuthFailure.
func UnwrapKeyWithWorkFactor(wrapped, password []byte, maxLogN int) (*SecretKey, error) {
	identity, err := age.NewScryptIdentity(string(password))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrWrapAuthFailure, err)
	}
	identity.SetMaxWorkFactor(maxLogN)

	var src io.Reader = bytes.NewReader(wrapped)
	if IsArmored(wrapped) {
		src = armorReader(wrapped)
	}

	r, err := age.Decrypt(src, identity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrWrapAuthFailure, err)
	}

	unwrapped, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrWrapAuthFailure, err)
	}

	return NewSecretKey(unwrapped), nil
}

// UnwrapKeyfile reads a wrapped keyfile from disk and unwraps it.
func UnwrapKeyfile(path string, password []byte) (*SecretKey, error) {
	wrapped, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keyfile %s: %w", path, err)
	}
	return UnwrapKey(wrapped, password)
}
