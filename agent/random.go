package agent

import (
	"context"
	"fmt"
	"time"

	"pacduel/game"

	"golang.org/x/exp/rand"
)

// RandomAgent picks uniformly among the legal actions.
type RandomAgent struct {
	rng *rand.Rand
}

// NewRandomAgent seeds from the clock when seed is zero.
func NewRandomAgent(seed uint64) *RandomAgent {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &RandomAgent{rng: rand.New(rand.NewSource(seed))}
}

func (a *RandomAgent) GetAction(ctx context.Context, state *game.GameState, index int) (game.Direction, error) {
	legal, err := state.LegalActions(index)
	if err != nil {
		return "", err
	}
	if len(legal) == 0 {
		return "", fmt.Errorf("agent %d: no legal actions", index)
	}
	return legal[a.rng.Intn(len(legal))], nil
}
