// Package handoff stages an unwrapped key in shared memory for the kbs agent.
//
// A handoff turns a wrapped keyfile and a password, entered once, into
// plaintext key material the agent can serve many times. The plaintext is
// written only to a named POSIX shared-memory object, never to disk.
//
// The shared-memory name acts as a single-slot mutex across every process on
// the host. Unwrap claims it with exclusive-create semantics before asking for
// a password, so a second handoff fails fast with ErrHandoffConflict while a
// previous slot is still waiting to be consumed. On success the slot is left
// in place for the agent, which removes it with Consume.
//
// If anything fails after the slot is claimed, Unwrap removes the slot it
// created. Cancelling ctx counts as a failure: the kbs command cancels it on
// SIGINT or SIGTERM, and its password prompt returns as soon as that happens.
// A process killed outright still leaves a stale slot behind; Remove clears it.
//
// Shared memory is only supported on Linux. Other platforms get
// ErrUnsupportedPlatform rather than a disk-backed fallback.
package handoff
