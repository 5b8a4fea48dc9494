package gamemaster

import (
	"fmt"

	"pacduel/game"
)

// Update is one applied ply.
type Update struct {
	Agent  int
	Action game.Direction
	State  *game.GameState
	Hash   game.StateHash
}

// Match owns the current state of one match and is the only place it
// advances. Moves must alternate between the agents.
type Match struct {
	rules   *ClassicRules
	state   *game.GameState
	next    int
	updates []Update
}

func NewMatch(rules *ClassicRules, layout *game.Layout) *Match {
	return &Match{
		rules: rules,
		state: rules.NewGame(layout),
	}
}

func (m *Match) State() *game.GameState {
	return m.state
}

// ToMove is the index of the agent whose turn it is.
func (m *Match) ToMove() int {
	return m.next
}

func (m *Match) IsOver() bool {
	return m.state.IsWin() || m.state.IsLose()
}

// Play applies action for the agent to move. Errors from the rules are
// returned unchanged so callers can match on their kind.
func (m *Match) Play(agentIndex int, action game.Direction) error {
	if agentIndex != m.next {
		return fmt.Errorf("agent %d moved out of turn, expected agent %d", agentIndex, m.next)
	}

	newState, err := m.state.GenerateSuccessor(agentIndex, action)
	if err != nil {
		return err
	}
	newState = m.rules.Process(newState)

	m.state = newState
	m.updates = append(m.updates, Update{
		Agent:  agentIndex,
		Action: action,
		State:  newState,
		Hash:   newState.Hash(),
	})
	m.next = game.Other(agentIndex)
	return nil
}

// Pass hands the turn over without moving, for an agent boxed in by walls.
func (m *Match) Pass(agentIndex int) error {
	if agentIndex != m.next {
		return fmt.Errorf("agent %d passed out of turn, expected agent %d", agentIndex, m.next)
	}
	legal, err := m.state.LegalActions(agentIndex)
	if err != nil {
		return err
	}
	if len(legal) > 0 {
		return fmt.Errorf("agent %d cannot pass with legal actions %v", agentIndex, legal)
	}
	m.next = game.Other(agentIndex)
	return nil
}

// End marks the match finished, e.g. when the game clock runs out.
func (m *Match) End() {
	m.state = Finish(m.state)
}

// Updates returns the plies applied since the given ply count.
func (m *Match) Updates(since int) []Update {
	if since >= len(m.updates) {
		return nil
	}
	return append([]Update(nil), m.updates[since:]...)
}

func (m *Match) Plies() int {
	return len(m.updates)
}
