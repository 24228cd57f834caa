// Package configs manages kbs configuration.
//
// Configuration is stored in TOML format at <config dir>/kbs/kbs.conf:
//
//	age-backend = "RageLib"
//	public-key = "age1..."
//	keyfile = "~/.config/kbs/key"
//	wrapped = true
//	store = "~/.local/share/kbs"
//
// The keyfile and store paths are tilde-expanded on load. Encryption
// backends only see the BackendConfig subset (kind, public key, keyfile,
// wrapped flag).
//
// # Settings
//
// Directory resolution honours the environment:
//   - KBS_CONFIG_DIR overrides the config directory
//   - XDG_DATA_HOME moves the default store
//   - KBS_AGENT_SOCKET or XDG_RUNTIME_DIR locate the agent socket
//
// UnwrappedKeyShmName is the single, host-wide name of the shared memory
// object used to hand an unwrapped key to the agent.
package configs
