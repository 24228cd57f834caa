package secrets

import (
	"fmt"

	"github.com/PolarWolf314/kbs/internal/configs"
	kerrors "github.com/PolarWolf314/kbs/internal/errors"
	logger "github.com/PolarWolf314/kbs/internal/logging"
	"github.com/PolarWolf314/kbs/internal/record"
)

// BackendKind selects an encryption backend implementation.
type BackendKind string

// KindRageLib is the age X25519 backend.
const KindRageLib BackendKind = "RageLib"

// Backend is the set of operations every encryption backend provides.
type Backend interface {
	// CreateKeypair generates a keypair, writes the private identity to path in
	// plaintext, and returns the public key.
	CreateKeypair(path string) (string, error)

	// CreateWrappedKeypair is CreateKeypair with the private identity wrapped by password.
	CreateWrappedKeypair(path string, password []byte) (string, error)

	// RewrapKeyfile re-encrypts the wrapped keyfile at path under a new password.
	// No backup of the original keyfile is made.
	RewrapKeyfile(path string, oldPassword, newPassword []byte) error

	// Encrypt serializes and encrypts a record, returning an ASCII-armored envelope.
	Encrypt(r *record.Record) (string, error)

	// Decrypt opens an ASCII-armored envelope and returns the record inside it.
	Decrypt(envelope string) (*record.Record, error)
}

// KeyAgent serves previously unwrapped key material by keyfile path.
type KeyAgent interface {
	GetKey(keyfile string) (*SecretKey, error)
}

// NewBackend builds the backend selected by cfg.Kind, loading its keypair.
// When cfg.Wrapped is set the private key is fetched from agent.
func NewBackend(cfg configs.BackendConfig, agent KeyAgent, log logger.Logger) (Backend, error) {
	switch BackendKind(cfg.Kind) {
	case KindRageLib:
		return NewAgeBackend(cfg, agent, log)
	default:
		return nil, fmt.Errorf("%w: %q", kerrors.ErrUnsupportedBackend, cfg.Kind)
	}
}

// BackendFor returns a backend of the given kind with no keypair loaded. It can
// create and rewrap keyfiles but not encrypt or decrypt records.
func BackendFor(kind BackendKind) (Backend, error) {
	switch kind {
	case KindRageLib:
		return &AgeBackend{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", kerrors.ErrUnsupportedBackend, kind)
	}
}
