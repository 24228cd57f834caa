// Package agent talks to the kbs key agent over a local unix socket.
//
// The agent holds keys that were unwrapped through the shared-memory handoff
// and serves them to backends by keyfile path, so a wrapped keyfile only needs
// its password once per session. Each request opens a fresh connection and
// carries a single JSON message; the agent answers with a single JSON message
// and closes the connection.
package agent
