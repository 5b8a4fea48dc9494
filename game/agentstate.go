package game

import "fmt"

// Configuration holds an agent's position and facing direction.
type Configuration struct {
	Pos       Vector
	Direction Direction
}

// GenerateSuccessor returns the configuration after travelling along vector.
// A zero vector keeps the previous facing.
func (c Configuration) GenerateSuccessor(vector Vector) Configuration {
	dir := VectorToDirection(vector)
	if dir == Stop {
		dir = c.Direction
	}
	return Configuration{Pos: c.Pos.Add(vector), Direction: dir}
}

func (c Configuration) String() string {
	return fmt.Sprintf("%v %s", c.Pos, c.Direction)
}

// AgentState is the per-competitor part of a snapshot. It is a plain value:
// assigning it copies it.
type AgentState struct {
	Start         Configuration
	Configuration Configuration
	ScaredTimer   int
}

func NewAgentState(start Cell) AgentState {
	cfg := Configuration{Pos: start.Vector(), Direction: Stop}
	return AgentState{Start: cfg, Configuration: cfg}
}

func (a AgentState) Position() Vector {
	return a.Configuration.Pos
}

func (a AgentState) Direction() Direction {
	return a.Configuration.Direction
}

func (a AgentState) IsScared() bool {
	return a.ScaredTimer > 0
}

func (a AgentState) String() string {
	return fmt.Sprintf("Pacman: %v scared=%d", a.Configuration, a.ScaredTimer)
}
