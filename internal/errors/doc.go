// Package errors provides typed error values for kbs.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching. This makes
// error handling more robust and refactoring-safe.
//
// # Error Categories
//
// Errors are grouped by category:
//
//   - Configuration errors: malformed public keys or keyfiles (ErrConfigParse)
//   - Crypto errors: failures opening envelopes or wrapped keys (ErrCryptoFailure)
//   - Handoff errors: the unwrapped-key slot is already claimed (ErrHandoffConflict)
//   - Agent errors: no warm key is available (ErrAgentUnavailable)
//
// Some sentinels have a parent. ErrIdentityCount and ErrInvalidPublicKey both
// match ErrConfigParse, and every crypto sub-kind matches ErrCryptoFailure:
//
//	if errors.Is(err, kerrors.ErrCryptoFailure) {
//	    // any decryption problem
//	}
//
// I/O failures are never replaced by a sentinel. They are wrapped with
// context and can be inspected with errors.As for *os.PathError.
//
// # Usage
//
// Wrap errors with additional context:
//
//	return fmt.Errorf("loading keyfile %s: %w", path, errors.ErrIdentityCount)
package errors
