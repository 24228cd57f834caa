package workflows

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/kbs/internal/agent"
	"github.com/PolarWolf314/kbs/internal/configs"
	logger "github.com/PolarWolf314/kbs/internal/logging"
	"github.com/PolarWolf314/kbs/internal/record"
	"github.com/PolarWolf314/kbs/internal/secrets"
)

// EncryptOptions configures the encrypt workflow.
type EncryptOptions struct {
	Config *configs.Config
	Record *record.Record

	// Agent serves wrapped keys. If nil and the key is wrapped, the agent
	// socket at configs.AgentSocketPath() is used.
	Agent secrets.KeyAgent

	Logger logger.Logger
}

// Encrypt encrypts a record with the configured backend and returns the armored envelope.
func Encrypt(ctx context.Context, opts EncryptOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if opts.Record == nil {
		return "", fmt.Errorf("no record to encrypt")
	}

	backend, err := loadBackend(opts.Config, opts.Agent, opts.Logger)
	if err != nil {
		return "", err
	}

	envelope, err := backend.Encrypt(opts.Record)
	if err != nil {
		return "", fmt.Errorf("encrypting record: %w", err)
	}
	opts.Logger.Debugf("encrypted record %q", opts.Record.Label)

	return envelope, nil
}

// loadBackend builds the configured backend, connecting to the agent when the
// key is wrapped and no agent was supplied.
func loadBackend(cfg *configs.Config, keyAgent secrets.KeyAgent, log logger.Logger) (secrets.Backend, error) {
	if cfg.Wrapped && keyAgent == nil {
		socketPath := configs.AgentSocketPath()
		log.Debugf("connecting to agent at %s", socketPath)

		client, err := agent.Dial(socketPath)
		if err != nil {
			return nil, err
		}
		keyAgent = client
	}

	return secrets.NewBackend(cfg.BackendConfig(), keyAgent, log)
}
