package game

import "fmt"

// GameState is an immutable handle on one snapshot. Every advancing
// operation returns a new GameState and leaves the receiver untouched.
type GameState struct {
	data *GameStateData
}

// NewGameState creates the initial state of a match on layout.
func NewGameState(layout *Layout) *GameState {
	return &GameState{data: NewGameStateData(layout)}
}

// FromData wraps a snapshot. The caller gives up ownership of data.
func FromData(data *GameStateData) *GameState {
	return &GameState{data: data}
}

// Data returns an independent copy of the underlying snapshot.
func (gs *GameState) Data() *GameStateData {
	return gs.data.Copy()
}

// LegalActions returns the actions available to agentIndex, in canonical
// order and never including Stop. A finished match has no legal actions.
func (gs *GameState) LegalActions(agentIndex int) ([]Direction, error) {
	if err := checkIndex(agentIndex); err != nil {
		return nil, err
	}
	if gs.IsWin() || gs.IsLose() {
		return []Direction{}, nil
	}
	return legalActions(gs.data, agentIndex), nil
}

// GenerateSuccessor returns the state after agentIndex takes action.
func (gs *GameState) GenerateSuccessor(agentIndex int, action Direction) (*GameState, error) {
	if gs.IsWin() || gs.IsLose() {
		return nil, &TerminalStateError{Agent: agentIndex}
	}
	if err := checkIndex(agentIndex); err != nil {
		return nil, err
	}

	// Copy current state
	data := gs.data.successorCopy()
	data.Eaten = [NumPacmen]bool{}

	// Let the agent's move play out on the board
	if err := applyAction(data, action, agentIndex); err != nil {
		return nil, err
	}

	// Time passes
	mover := &data.AgentStates[agentIndex]
	decrementTimer(mover)

	// Steal from a frightened competitor
	if data.AgentStates[Other(agentIndex)].IsScared() && !mover.IsScared() {
		checkSteal(data, agentIndex)
	}

	// Book keeping
	data.Score[agentIndex] += data.ScoreChange[agentIndex]
	data.AgentMoved = agentIndex
	return &GameState{data: data}, nil
}

// WithOutcome returns a copy marked as finished. Only match rules decide when
// a match ends.
func (gs *GameState) WithOutcome(win, lose bool) *GameState {
	data := gs.data.Copy()
	data.Win = win
	data.Lose = lose
	return &GameState{data: data}
}

func (gs *GameState) PacmanState(agentIndex int) (AgentState, error) {
	if err := checkIndex(agentIndex); err != nil {
		return AgentState{}, err
	}
	return gs.data.AgentStates[agentIndex], nil
}

func (gs *GameState) PacmanPosition(agentIndex int) (Vector, error) {
	if err := checkIndex(agentIndex); err != nil {
		return Vector{}, err
	}
	return gs.data.AgentStates[agentIndex].Position(), nil
}

// GhostState returns the competitor seen from agent 0: any index other than
// 0 inside the agent range.
func (gs *GameState) GhostState(agentIndex int) (AgentState, error) {
	if agentIndex == 0 {
		return AgentState{}, &InvalidAgentIndexError{Index: agentIndex, Reason: "index of the mover passed as a ghost"}
	}
	if err := checkIndex(agentIndex); err != nil {
		return AgentState{}, err
	}
	return gs.data.AgentStates[agentIndex], nil
}

func (gs *GameState) GhostPosition(agentIndex int) (Vector, error) {
	state, err := gs.GhostState(agentIndex)
	if err != nil {
		return Vector{}, err
	}
	return state.Position(), nil
}

func (gs *GameState) GhostStates() []AgentState {
	return append([]AgentState(nil), gs.data.AgentStates[1:]...)
}

func (gs *GameState) GhostPositions() []Vector {
	positions := make([]Vector, 0, NumPacmen-1)
	for _, a := range gs.data.AgentStates[1:] {
		positions = append(positions, a.Position())
	}
	return positions
}

func (gs *GameState) NumAgents() int {
	return NumPacmen
}

func (gs *GameState) ScaredTimer(agentIndex int) (int, error) {
	if err := checkIndex(agentIndex); err != nil {
		return 0, err
	}
	return gs.data.AgentStates[agentIndex].ScaredTimer, nil
}

func (gs *GameState) Score(agentIndex int) (float64, error) {
	if err := checkIndex(agentIndex); err != nil {
		return 0, err
	}
	return gs.data.Score[agentIndex], nil
}

// Scores returns a copy of both running scores.
func (gs *GameState) Scores() [NumPacmen]float64 {
	return gs.data.Score
}

// ScoreChange returns what agentIndex earned during the ply that produced this state.
func (gs *GameState) ScoreChange(agentIndex int) (float64, error) {
	if err := checkIndex(agentIndex); err != nil {
		return 0, err
	}
	return gs.data.ScoreChange[agentIndex], nil
}

// Capsules returns the remaining capsule cells.
func (gs *GameState) Capsules() []Cell {
	return append([]Cell(nil), gs.data.Capsules...)
}

func (gs *GameState) NumFood() int {
	return gs.data.Food.Count()
}

// Food returns a copy of the pellet grid.
func (gs *GameState) Food() *Grid {
	return gs.data.Food.Copy()
}

// Walls returns a copy of the wall grid.
func (gs *GameState) Walls() *Grid {
	return gs.data.Layout.Walls.Copy()
}

// Layout returns a copy of the board the match is played on.
func (gs *GameState) Layout() *Layout {
	return gs.data.Layout.Copy()
}

// LayoutName avoids copying the board when only the name is needed.
func (gs *GameState) LayoutName() string {
	return gs.data.Layout.Name
}

func (gs *GameState) HasFood(x, y int) bool {
	return gs.data.Food.Get(x, y)
}

func (gs *GameState) HasWall(x, y int) bool {
	return gs.data.Layout.Walls.Get(x, y)
}

func (gs *GameState) IsWin() bool {
	return gs.data.Win
}

func (gs *GameState) IsLose() bool {
	return gs.data.Lose
}

// LastAgentMoved is -1 for an initial state.
func (gs *GameState) LastAgentMoved() int {
	return gs.data.AgentMoved
}

func (gs *GameState) LastFoodEaten() (Cell, bool) {
	return gs.data.FoodEaten.Cell, gs.data.FoodEaten.Valid
}

func (gs *GameState) LastCapsuleEaten() (Cell, bool) {
	return gs.data.CapsuleEaten.Cell, gs.data.CapsuleEaten.Valid
}

// WasEaten reports whether agentIndex was stolen from in the last ply.
func (gs *GameState) WasEaten(agentIndex int) (bool, error) {
	if err := checkIndex(agentIndex); err != nil {
		return false, err
	}
	return gs.data.Eaten[agentIndex], nil
}

func (gs *GameState) Equal(other *GameState) bool {
	if other == nil {
		return false
	}
	return gs.data.Equal(other.data)
}

func (gs *GameState) Hash() StateHash {
	return gs.data.Hash()
}

func (gs *GameState) String() string {
	return gs.data.String()
}

func validIndex(agentIndex int) bool {
	return agentIndex >= 0 && agentIndex < NumPacmen
}

func checkIndex(agentIndex int) error {
	if !validIndex(agentIndex) {
		return &InvalidAgentIndexError{Index: agentIndex, Reason: fmt.Sprintf("want 0..%d", NumPacmen-1)}
	}
	return nil
}
