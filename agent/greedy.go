package agent

import (
	"context"
	"fmt"
	"math"

	"pacduel/game"
)

// GreedyAgent looks one ply ahead and takes the action whose successor
// evaluates best, the first in canonical order on a tie.
type GreedyAgent struct {
	evaluate game.Evaluate
}

// NewGreedyAgent defaults to game.EvaluateFoodDistance.
func NewGreedyAgent(evaluate game.Evaluate) *GreedyAgent {
	if evaluate == nil {
		evaluate = game.EvaluateFoodDistance
	}
	return &GreedyAgent{evaluate: evaluate}
}

func (a *GreedyAgent) GetAction(ctx context.Context, state *game.GameState, index int) (game.Direction, error) {
	legal, err := state.LegalActions(index)
	if err != nil {
		return "", err
	}
	if len(legal) == 0 {
		return "", fmt.Errorf("agent %d: no legal actions", index)
	}

	best := legal[0]
	bestValue := math.Inf(-1)
	for _, action := range legal {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		next, err := state.GenerateSuccessor(index, action)
		if err != nil {
			return "", err
		}
		value := a.evaluate(next, index)
		if value > bestValue {
			best, bestValue = action, value
		}
	}
	return best, nil
}
