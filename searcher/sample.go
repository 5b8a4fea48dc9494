package searcher

import (
	"context"
	"fmt"
	"math"
	"time"

	"pacduel/experiments/metrics"
	"pacduel/game"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

// SamplingAgent draws its move from the visit counts of an MCTS search
// instead of always playing the most visited one. A temperature of 1 plays
// moves in proportion to their visits; lower temperatures sharpen towards
// the best move.
type SamplingAgent struct {
	mcts        *MCTS
	temperature float64
	rng         *rand.Rand
	last        metrics.SearchMetric
}

// NewSamplingAgent seeds from the clock when seed is zero.
func NewSamplingAgent(mcts *MCTS, temperature float64, seed uint64) *SamplingAgent {
	if temperature <= 0 {
		panic("temperature must be positive")
	}
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &SamplingAgent{mcts: mcts, temperature: temperature, rng: rand.New(rand.NewSource(seed))}
}

func (a *SamplingAgent) GetAction(ctx context.Context, state *game.GameState, index int) (game.Direction, error) {
	if _, err := state.LegalActions(index); err != nil {
		return "", err
	}
	policy, _, metric := a.mcts.Simulate(ctx, state, index)
	a.last = metric
	if len(policy) == 0 {
		return "", fmt.Errorf("agent %d: no legal actions", index)
	}
	action := sample(adjustTemperature(policy, a.temperature), a.rng.Float64())
	log.Debug().
		Int("agent", index).
		Str("action", string(action)).
		Int("episodes", metric.Episodes).
		Msg("sampled move")
	return action, nil
}

func (a *SamplingAgent) LastSearch() metrics.SearchMetric {
	return a.last
}

func adjustTemperature(policy map[game.Direction]float64, temperature float64) map[game.Direction]float64 {
	// Compute temperature-adjusted move probabilities
	exponent := 1.0 / temperature
	sum := 0.0
	adjusted := make(map[game.Direction]float64, len(policy))
	for move, visits := range policy {
		prob := math.Pow(visits, exponent)
		sum += prob
		adjusted[move] = prob
	}
	if sum == 0 {
		// Nothing visited: uniform
		for move := range adjusted {
			adjusted[move] = 1.0 / float64(len(adjusted))
		}
		return adjusted
	}
	// Normalize
	for move := range adjusted {
		adjusted[move] /= sum
	}
	return adjusted
}

// sample walks the moves in canonical order so that the same draw always
// picks the same move.
func sample(policy map[game.Direction]float64, draw float64) game.Direction {
	cumulative := 0.0
	var lastMove game.Direction
	for _, move := range game.Directions {
		prob, ok := policy[move]
		if !ok {
			continue
		}
		lastMove = move
		cumulative += prob
		if draw < cumulative {
			return move
		}
	}
	return lastMove // Fallback in case of rounding errors
}
