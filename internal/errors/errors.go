package errors

import "errors"

// Configuration errors indicate the backend could not be built from its configuration.
var (
	// ErrConfigParse indicates a configuration value or keyfile could not be parsed.
	ErrConfigParse = errors.New("configuration could not be parsed")

	// ErrInvalidPublicKey indicates the configured public key is not a valid recipient.
	ErrInvalidPublicKey = wrap(ErrConfigParse, "invalid public key")

	// ErrIdentityCount indicates a keyfile held zero or more than one private identity.
	ErrIdentityCount = wrap(ErrConfigParse, "expected exactly one private key in the keyfile")

	// ErrKeyMismatch indicates the private identity does not belong to the configured public key.
	ErrKeyMismatch = wrap(ErrConfigParse, "private key does not match the configured public key")

	// ErrUnsupportedBackend indicates the configured backend kind is unknown.
	ErrUnsupportedBackend = errors.New("unsupported encryption backend")

	// ErrConfigNotFound indicates no configuration file exists yet.
	ErrConfigNotFound = errors.New("configuration not found")

	// ErrConfigExists indicates a configuration already exists and would be overwritten.
	ErrConfigExists = errors.New("configuration already exists")
)

// Cryptographic errors indicate failures during encryption, decryption, or key wrapping.
var (
	// ErrCryptoFailure is the parent of every cryptographic error below.
	ErrCryptoFailure = errors.New("cryptographic operation failed")

	// ErrNoMatchingIdentity indicates none of the held private identities can open the envelope.
	ErrNoMatchingIdentity = wrap(ErrCryptoFailure, "no matching identity")

	// ErrMalformedEnvelope indicates the armor or envelope format could not be parsed.
	ErrMalformedEnvelope = wrap(ErrCryptoFailure, "malformed envelope")

	// ErrCorruptPayload indicates the decrypted payload is not a valid record.
	ErrCorruptPayload = wrap(ErrCryptoFailure, "corrupt payload")

	// ErrWrapAuthFailure indicates a wrapped key could not be decrypted. The password
	// and the ciphertext are deliberately not distinguished.
	ErrWrapAuthFailure = wrap(ErrCryptoFailure, "decryption failed")

	// ErrNotPasswordWrapped indicates a keyfile is not a password-wrapped envelope.
	ErrNotPasswordWrapped = errors.New("not a password-wrapped keyfile")

	// ErrBackendNotLoaded indicates a backend was used for record operations without a loaded key.
	ErrBackendNotLoaded = errors.New("backend has no loaded keypair")

	// ErrKeyNotWrapped indicates an operation requires a wrapped keyfile but the config says otherwise.
	ErrKeyNotWrapped = errors.New("keyfile is not configured as wrapped")
)

// Handoff errors indicate failures while staging an unwrapped key for the agent.
var (
	// ErrHandoffConflict indicates an unconsumed unwrapped-key slot already exists.
	ErrHandoffConflict = errors.New("unwrapped key already exists")

	// ErrUnsupportedPlatform indicates the platform has no shared memory filesystem to hand off through.
	ErrUnsupportedPlatform = errors.New("key handoff is not supported on this platform")
)

// Agent errors indicate the background agent could not serve a key.
var (
	// ErrAgentUnavailable indicates the agent holds no unwrapped key for the keyfile or cannot be reached.
	ErrAgentUnavailable = errors.New("no unwrapped key available")
)

type childError struct {
	parent error
	msg    string
}

func wrap(parent error, msg string) error {
	return &childError{parent: parent, msg: msg}
}

func (e *childError) Error() string { return e.msg }

func (e *childError) Unwrap() error { return e.parent }
