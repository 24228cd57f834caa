package workflows

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/kbs/internal/configs"
	kerrors "github.com/PolarWolf314/kbs/internal/errors"
	"github.com/PolarWolf314/kbs/internal/handoff"
	logger "github.com/PolarWolf314/kbs/internal/logging"
)

// UnwrapOptions configures the unwrap workflow.
type UnwrapOptions struct {
	Config *configs.Config
	Prompt handoff.PasswordPrompt

	// SlotName overrides the shared memory object name.
	SlotName string

	Logger logger.Logger
}

// Unwrap hands the configured wrapped keyfile off to the agent through shared memory.
// The caller owns the returned slot's file descriptor; the slot itself belongs to the agent.
//
// Returns ErrKeyNotWrapped if the configuration does not use a wrapped key.
func Unwrap(ctx context.Context, opts UnwrapOptions) (*handoff.Slot, error) {
	cfg := opts.Config
	if !cfg.Wrapped {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrKeyNotWrapped, cfg.Keyfile)
	}

	return handoff.Unwrap(ctx, handoff.Options{
		Name:    opts.SlotName,
		Keyfile: cfg.Keyfile,
		Prompt:  opts.Prompt,
		Logger:  opts.Logger,
	})
}
