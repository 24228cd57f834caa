// Package workflows provides high-level orchestration for kbs commands.
//
// Workflows coordinate the configs, secrets, handoff, and agent packages to
// implement complete user-facing features. Each workflow handles a single
// command's logic, independent of CLI concerns like flag parsing, spinners,
// and output formatting.
//
// The cmd/ package should be a thin layer that:
//   - Parses command-line flags and arguments
//   - Reads passwords and record fields from the terminal
//   - Calls the appropriate workflow function
//   - Formats the result for display
//
// # Available Workflows
//
//   - Init: generates a keypair and writes a fresh configuration
//   - Rewrap: changes the password on a wrapped keyfile
//   - Unwrap: hands a wrapped key off to the agent through shared memory
//   - Encrypt: encrypts a record with the configured backend
//   - Decrypt: decrypts an envelope with the configured backend
//
// # Wrapped Keys
//
// When the configuration marks its keyfile as wrapped, Encrypt and Decrypt
// never prompt for a password. They ask the agent for the unwrapped key and
// fail with ErrAgentUnavailable if it does not have one; running Unwrap first
// is the caller's decision.
package workflows
