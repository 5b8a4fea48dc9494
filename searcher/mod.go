package searcher

import (
	"math"

	"pacduel/game"
)

// Rewards are win probabilities in [Loss, Win] from the mover's perspective.
const (
	Win  = 1.0
	Loss = 0.0
)

// MaxCutoff bounds a rollout when no cutoff is configured.
const MaxCutoff = 200

// scoreScale is the score lead that maps to roughly a 76% win estimate.
const scoreScale = 50.0

// toReward maps an evaluation for agent 0 into a win estimate for player.
func toReward(value float64, player int) float64 {
	p := (1 + math.Tanh(value/scoreScale)) / 2
	if player == 0 {
		return p
	}
	return Win - p
}

// terminalValue is the evaluation of a finished match for agent 0. A level
// score is worth nothing to either side.
func terminalValue(state *game.GameState) float64 {
	lead := game.EvaluateScore(state, 0)
	switch {
	case lead > 0:
		return math.Inf(1)
	case lead < 0:
		return math.Inf(-1)
	}
	return 0
}
