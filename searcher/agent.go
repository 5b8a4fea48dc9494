package searcher

import (
	"context"
	"fmt"
	"time"

	"pacduel/agent"
	"pacduel/experiments/metrics"
	"pacduel/game"

	"github.com/rs/zerolog/log"
)

// Agent plays the most visited move of an MCTS search. The search tree is
// carried from one turn to the next.
type Agent struct {
	mcts *MCTS
	last metrics.SearchMetric
}

func NewAgent(mcts *MCTS) *Agent {
	return &Agent{mcts: mcts}
}

func (a *Agent) GetAction(ctx context.Context, state *game.GameState, index int) (game.Direction, error) {
	if _, err := state.LegalActions(index); err != nil {
		return "", err
	}
	_, best, metric := a.mcts.Simulate(ctx, state, index)
	a.last = metric
	if best == "" {
		return "", fmt.Errorf("agent %d: no legal actions", index)
	}
	log.Debug().
		Int("agent", index).
		Str("action", string(best)).
		Int("episodes", metric.Episodes).
		Dur("duration", metric.Duration).
		Msg("search complete")
	return best, nil
}

// LastSearch reports the statistics of the latest search.
func (a *Agent) LastSearch() metrics.SearchMetric {
	return a.last
}

// Register adds the "mcts" and "mcts-sample" agents to registry, both
// thinking for duration per move.
func Register(registry *agent.Registry, goroutines int, duration time.Duration, options ...Option) {
	RegisterAs(registry, "mcts", goroutines, duration, options...)
	registry.Register("mcts-sample", func() agent.Agent {
		opts := append([]Option{WithDuration(duration), WithMetrics()}, options...)
		return NewSamplingAgent(NewMCTS(goroutines, opts...), 1.0, 0)
	})
}

func RegisterAs(registry *agent.Registry, name string, goroutines int, duration time.Duration, options ...Option) {
	registry.Register(name, func() agent.Agent {
		opts := append([]Option{WithDuration(duration), WithMetrics()}, options...)
		return NewAgent(NewMCTS(goroutines, opts...))
	})
}
