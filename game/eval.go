package game

import "math"

// EvaluateScore is the score lead of agent index over its competitor.
func EvaluateScore(state *GameState, index int) float64 {
	return state.data.Score[index] - state.data.Score[Other(index)]
}

// EvaluateFoodDistance adds a small pull towards the closest pellet and away
// from a competitor that can steal, on top of the score lead.
func EvaluateFoodDistance(state *GameState, index int) float64 {
	value := EvaluateScore(state, index)
	agents := &state.data.AgentStates
	scores := &state.data.Score

	pos := agents[index].Position()
	if d, ok := ClosestFood(state, pos); ok {
		value += 1.0 / (1.0 + d)
	}

	other := Other(index)
	dist := ManhattanDistance(pos, agents[other].Position())
	switch {
	case agents[index].IsScared() && !agents[other].IsScared():
		// Frightened: keep away from the competitor
		value -= 0.5 * scores[index] / (1.0 + dist)
	case agents[other].IsScared() && !agents[index].IsScared():
		value += 0.5 * scores[other] / (1.0 + dist)
	}
	return value
}

// ClosestFood returns the Manhattan distance to the nearest pellet.
func ClosestFood(state *GameState, pos Vector) (float64, bool) {
	best := math.Inf(1)
	for _, c := range state.data.Food.AsList() {
		if d := ManhattanDistance(pos, c.Vector()); d < best {
			best = d
		}
	}
	return best, !math.IsInf(best, 1)
}
