package gamemaster

import (
	"time"

	"pacduel/game"

	"github.com/rs/zerolog/log"
)

// ClassicRules manage the control flow of a match: how it starts, how long
// agents may think, and when it ends. One ClassicRules serves one match.
type ClassicRules struct {
	Timeout      time.Duration
	initialState *game.GameState
	crashed      int
	hasCrash     bool
}

// NewClassicRules uses one timeout for every thinking budget of every agent.
func NewClassicRules(timeout time.Duration) *ClassicRules {
	if timeout <= 0 {
		panic("timeout must be positive")
	}
	return &ClassicRules{Timeout: timeout, crashed: -1}
}

// NewGame creates the initial state of a match on layout and remembers it
// for progress reporting.
func (r *ClassicRules) NewGame(layout *game.Layout) *game.GameState {
	state := game.NewGameState(layout)
	r.initialState = state
	r.crashed = -1
	r.hasCrash = false
	log.Debug().Str("layout", layout.Name).Int("food", state.NumFood()).Msg("new game")
	return state
}

func (r *ClassicRules) InitialState() *game.GameState {
	return r.initialState
}

// Process ends the match once nothing is left to eat. The returned state is
// marked won when agent 0 is not behind, lost otherwise.
func (r *ClassicRules) Process(state *game.GameState) *game.GameState {
	if state.IsWin() || state.IsLose() {
		return state
	}
	if state.NumFood() > 0 || len(state.Capsules()) > 0 {
		return state
	}
	return Finish(state)
}

// Finish marks state terminal from agent 0's point of view.
func Finish(state *game.GameState) *game.GameState {
	if state.IsWin() || state.IsLose() {
		return state
	}
	scores := state.Scores()
	ahead := scores[0] >= scores[1]
	return state.WithOutcome(ahead, !ahead)
}

// Progress is the fraction of the initial pellets still on the board.
func (r *ClassicRules) Progress(state *game.GameState) float64 {
	if r.initialState == nil {
		return 0
	}
	initial := r.initialState.NumFood()
	if initial == 0 {
		return 0
	}
	return float64(state.NumFood()) / float64(initial)
}

// AgentCrash records the agent responsible for an abnormal end of the match.
func (r *ClassicRules) AgentCrash(agentIndex int) {
	log.Warn().Int("agent", agentIndex).Msg("agent crashed")
	r.crashed = agentIndex
	r.hasCrash = true
}

// CrashedAgent returns the agent that crashed, if any.
func (r *ClassicRules) CrashedAgent() (int, bool) {
	return r.crashed, r.hasCrash
}

func (r *ClassicRules) MaxTotalTime(agentIndex int) time.Duration {
	return r.Timeout
}

func (r *ClassicRules) MaxStartupTime(agentIndex int) time.Duration {
	return r.Timeout
}

func (r *ClassicRules) MoveWarningTime(agentIndex int) time.Duration {
	return r.Timeout
}

func (r *ClassicRules) MoveTimeout(agentIndex int) time.Duration {
	return r.Timeout
}

// MaxTimeWarnings is zero: the first slow move crashes the agent.
func (r *ClassicRules) MaxTimeWarnings(agentIndex int) int {
	return 0
}
