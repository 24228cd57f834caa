// Package secrets provides the cryptographic core of kbs.
//
// # Backends
//
// A Backend creates keypairs and encrypts records to a single public key.
// The only implementation is AgeBackend, which uses age X25519 recipients:
//
//   - Encrypt serializes a record and returns an ASCII-armored age envelope
//   - Decrypt opens an envelope with the loaded private identity
//   - CreateKeypair and CreateWrappedKeypair write a fresh identity to disk
//   - RewrapKeyfile changes the password protecting a wrapped keyfile
//
// Encryption is non-deterministic: encrypting the same record twice yields
// different envelopes.
//
// # Wrapped Keys
//
// A wrapped keyfile is the plaintext identity file encrypted with an age
// scrypt passphrase recipient and armored. When a configuration marks its
// keyfile as wrapped, the backend never reads it from disk. The unwrapped key
// is requested from a KeyAgent instead.
//
// Key unwrapping failures are reported as ErrWrapAuthFailure without saying
// whether the password or the ciphertext was at fault.
//
// # Key Material
//
// Unwrapped keys are held in a SecretKey, which keeps the bytes in a locked
// memguard buffer and redacts them when formatted. Callers must Destroy the
// key when finished with it.
package secrets
