package agent

import (
	"context"

	"pacduel/game"
)

// Agent chooses the action of one competitor. GetAction must return within
// the deadline of ctx; the driver treats a late answer as a crash.
type Agent interface {
	GetAction(ctx context.Context, state *game.GameState, index int) (game.Direction, error)
}

// Initializer is implemented by agents that prepare before the first move.
// It shares the startup time budget.
type Initializer interface {
	RegisterInitialState(ctx context.Context, state *game.GameState, index int) error
}

// Factory builds a fresh agent for one match.
type Factory func() Agent
