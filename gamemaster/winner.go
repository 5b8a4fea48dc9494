package gamemaster

import (
	"time"

	"pacduel/game"
)

// Draw is the Outcome.Winner of a match nobody won.
const Draw = -1

type Reason string

const (
	ByCrash Reason = "crash"
	ByScore Reason = "score"
	ByTime  Reason = "time"
	Tied    Reason = "draw"
)

// Result is what a finished match hands to winner determination.
type Result struct {
	Scores     [game.NumPacmen]float64
	AgentTimes [game.NumPacmen]time.Duration // Cumulative thinking time
	Crashed    int
	HasCrash   bool
}

type Outcome struct {
	Winner int
	Reason Reason
}

// CheckWinner decides a match: a crash hands the win to the other agent,
// otherwise the higher score wins, then the faster thinker, then it's a draw.
func CheckWinner(result Result) Outcome {
	if result.HasCrash {
		return Outcome{Winner: game.Other(result.Crashed), Reason: ByCrash}
	}

	scores := result.Scores
	switch {
	case scores[0] > scores[1]:
		return Outcome{Winner: 0, Reason: ByScore}
	case scores[0] < scores[1]:
		return Outcome{Winner: 1, Reason: ByScore}
	}

	times := result.AgentTimes
	switch {
	case times[0] > times[1]:
		return Outcome{Winner: 1, Reason: ByTime}
	case times[0] < times[1]:
		return Outcome{Winner: 0, Reason: ByTime}
	}
	return Outcome{Winner: Draw, Reason: Tied}
}
