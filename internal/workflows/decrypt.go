package workflows

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/kbs/internal/configs"
	logger "github.com/PolarWolf314/kbs/internal/logging"
	"github.com/PolarWolf314/kbs/internal/record"
	"github.com/PolarWolf314/kbs/internal/secrets"
)

// DecryptOptions configures the decrypt workflow.
type DecryptOptions struct {
	Config   *configs.Config
	Envelope string

	// Agent serves wrapped keys. If nil and the key is wrapped, the agent
	// socket at configs.AgentSocketPath() is used.
	Agent secrets.KeyAgent

	Logger logger.Logger
}

// Decrypt opens an armored envelope with the configured backend.
func Decrypt(ctx context.Context, opts DecryptOptions) (*record.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	backend, err := loadBackend(opts.Config, opts.Agent, opts.Logger)
	if err != nil {
		return nil, err
	}

	rec, err := backend.Decrypt(opts.Envelope)
	if err != nil {
		return nil, fmt.Errorf("decrypting record: %w", err)
	}
	opts.Logger.Debugf("decrypted record %q", rec.Label)

	return rec, nil
}
