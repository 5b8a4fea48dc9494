package game

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
)

// eatenCell records a cell consumed during the last ply, if any.
type eatenCell struct {
	Cell  Cell
	Valid bool
}

// GameStateData is one complete snapshot of a match. Grids and the capsule
// slice are copy-on-write: they are never mutated after being shared, a rule
// that needs to change them replaces them with a fresh copy first.
type GameStateData struct {
	Layout       *Layout               // Static maze, shared by every snapshot
	Food         *Grid                 // Remaining pellets
	Capsules     []Cell                // Remaining capsules
	AgentStates  [NumPacmen]AgentState // Position, facing and scared timer per agent
	Score        [NumPacmen]float64    // Running score per agent
	ScoreChange  [NumPacmen]float64    // Delta accrued during the ply being applied
	Eaten        [NumPacmen]bool       // Agents stolen from during the last ply
	AgentMoved   int                   // Index of the last agent to move, -1 before the first ply
	FoodEaten    eatenCell
	CapsuleEaten eatenCell
	Win          bool
	Lose         bool
}

// NewGameStateData builds the initial snapshot for a layout.
func NewGameStateData(layout *Layout) *GameStateData {
	if layout.NumAgents() != NumPacmen {
		panic(fmt.Sprintf("layout %q has %d agents, need %d", layout.Name, layout.NumAgents(), NumPacmen))
	}
	data := &GameStateData{
		Layout:     layout,
		Food:       layout.Food.Copy(),
		Capsules:   append([]Cell(nil), layout.Capsules...),
		AgentMoved: -1,
	}
	for i, start := range layout.AgentPositions {
		data.AgentStates[i] = NewAgentState(start)
	}
	return data
}

// successorCopy copies the snapshot for the next ply. Per-ply bookkeeping
// (score change, eaten cells) starts blank.
func (d *GameStateData) successorCopy() *GameStateData {
	return &GameStateData{
		Layout:      d.Layout,
		Food:        d.Food,
		Capsules:    d.Capsules,
		AgentStates: d.AgentStates,
		Score:       d.Score,
		Eaten:       d.Eaten,
		AgentMoved:  d.AgentMoved,
		Win:         d.Win,
		Lose:        d.Lose,
	}
}

// Copy returns a full, independent copy, bookkeeping included.
func (d *GameStateData) Copy() *GameStateData {
	out := *d
	out.Food = d.Food.Copy()
	out.Capsules = append([]Cell(nil), d.Capsules...)
	return &out
}

func (d *GameStateData) eatFood(c Cell) {
	d.Food = d.Food.Copy()
	d.Food.Set(c.X, c.Y, false)
	d.FoodEaten = eatenCell{Cell: c, Valid: true}
}

func (d *GameStateData) hasCapsule(c Cell) bool {
	for _, capsule := range d.Capsules {
		if capsule == c {
			return true
		}
	}
	return false
}

func (d *GameStateData) eatCapsule(c Cell) {
	remaining := make([]Cell, 0, len(d.Capsules))
	for _, capsule := range d.Capsules {
		if capsule != c {
			remaining = append(remaining, capsule)
		}
	}
	d.Capsules = remaining
	d.CapsuleEaten = eatenCell{Cell: c, Valid: true}
}

// Equal compares every field of two snapshots.
func (d *GameStateData) Equal(o *GameStateData) bool {
	if d == nil || o == nil {
		return d == o
	}
	if d.Layout != o.Layout && !d.Layout.Walls.Equal(o.Layout.Walls) {
		return false
	}
	if !d.Food.Equal(o.Food) || len(d.Capsules) != len(o.Capsules) {
		return false
	}
	for i := range d.Capsules {
		if d.Capsules[i] != o.Capsules[i] {
			return false
		}
	}
	return d.AgentStates == o.AgentStates &&
		d.Score == o.Score &&
		d.ScoreChange == o.ScoreChange &&
		d.Eaten == o.Eaten &&
		d.AgentMoved == o.AgentMoved &&
		d.FoodEaten == o.FoodEaten &&
		d.CapsuleEaten == o.CapsuleEaten &&
		d.Win == o.Win &&
		d.Lose == o.Lose
}

// Hash covers the same fields as Equal, so equal snapshots hash equally.
func (d *GameStateData) Hash() StateHash {
	hasher := fnv.New64a()
	writeInt := func(v int) { binary.Write(hasher, binary.LittleEndian, int64(v)) }
	writeFloat := func(v float64) { binary.Write(hasher, binary.LittleEndian, math.Float64bits(v)) }
	writeBool := func(v bool) {
		if v {
			writeInt(1)
		} else {
			writeInt(0)
		}
	}
	writeCell := func(c eatenCell) {
		writeBool(c.Valid)
		writeInt(c.Cell.X)
		writeInt(c.Cell.Y)
	}

	// Hash walls
	for _, c := range d.Layout.Walls.AsList() {
		writeInt(c.X)
		writeInt(c.Y)
	}
	writeInt(-1)

	// Hash pellets
	for _, c := range d.Food.AsList() {
		writeInt(c.X)
		writeInt(c.Y)
	}
	writeInt(-1)

	// Hash capsules
	for _, c := range d.Capsules {
		writeInt(c.X)
		writeInt(c.Y)
	}
	writeInt(-1)

	// Hash agents
	for i, a := range d.AgentStates {
		writeFloat(a.Configuration.Pos.X)
		writeFloat(a.Configuration.Pos.Y)
		hasher.Write([]byte(a.Configuration.Direction))
		writeInt(a.ScaredTimer)
		writeFloat(d.Score[i])
		writeFloat(d.ScoreChange[i])
		writeBool(d.Eaten[i])
	}

	writeInt(d.AgentMoved)
	writeCell(d.FoodEaten)
	writeCell(d.CapsuleEaten)
	writeBool(d.Win)
	writeBool(d.Lose)

	return StateHash(hasher.Sum64())
}

// String draws the board top row first: % walls, . pellets, o capsules,
// 1 and 2 for the agents.
func (d *GameStateData) String() string {
	width, height := d.Layout.Width, d.Layout.Height
	board := make([][]byte, height)
	for row := range board {
		y := height - 1 - row
		board[row] = make([]byte, width)
		for x := 0; x < width; x++ {
			switch {
			case d.Layout.Walls.Get(x, y):
				board[row][x] = '%'
			case d.Food.Get(x, y):
				board[row][x] = '.'
			default:
				board[row][x] = ' '
			}
		}
	}
	for _, c := range d.Capsules {
		board[height-1-c.Y][c.X] = 'o'
	}
	for i, a := range d.AgentStates {
		c := NearestPoint(a.Position())
		if c.Y >= 0 && c.Y < height && c.X >= 0 && c.X < width {
			board[height-1-c.Y][c.X] = byte('1' + i)
		}
	}

	var b strings.Builder
	for _, row := range board {
		b.Write(row)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "Score: %g %g", d.Score[0], d.Score[1])
	return b.String()
}
