package game

import (
	"fmt"
	"math"
)

// Vector is a continuous board coordinate, or a displacement.
type Vector struct {
	X float64
	Y float64
}

func (v Vector) Add(o Vector) Vector {
	return Vector{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vector) String() string {
	return fmt.Sprintf("(%g,%g)", v.X, v.Y)
}

// Cell is a discrete grid coordinate. (0,0) is bottom-left.
type Cell struct {
	X int
	Y int
}

func (c Cell) Vector() Vector {
	return Vector{X: float64(c.X), Y: float64(c.Y)}
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Directions in canonical order; legal action lists follow it.
var Directions = []Direction{North, South, East, West, Stop}

var directionVectors = map[Direction]Vector{
	North: {X: 0, Y: 1},
	South: {X: 0, Y: -1},
	East:  {X: 1, Y: 0},
	West:  {X: -1, Y: 0},
	Stop:  {X: 0, Y: 0},
}

// DirectionToVector converts a direction into a displacement at the given speed.
func DirectionToVector(dir Direction, speed float64) Vector {
	v, ok := directionVectors[dir]
	if !ok {
		return Vector{}
	}
	return Vector{X: v.X * speed, Y: v.Y * speed}
}

// VectorToDirection returns the direction of travel of a displacement.
func VectorToDirection(v Vector) Direction {
	switch {
	case v.Y > 0:
		return North
	case v.Y < 0:
		return South
	case v.X < 0:
		return West
	case v.X > 0:
		return East
	default:
		return Stop
	}
}

func Reverse(dir Direction) Direction {
	switch dir {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	default:
		return dir
	}
}

// PossibleActions lists every direction whose destination is not a wall,
// Stop included. An agent caught between cells can only keep going.
func PossibleActions(cfg Configuration, walls *Grid) []Direction {
	x, y := cfg.Pos.X, cfg.Pos.Y
	xInt, yInt := int(x+0.5), int(y+0.5)

	if math.Abs(x-float64(xInt))+math.Abs(y-float64(yInt)) > 0.001 {
		return []Direction{cfg.Direction}
	}

	var possible []Direction
	for _, dir := range Directions {
		v := directionVectors[dir]
		next := Cell{X: xInt + int(v.X), Y: yInt + int(v.Y)}
		if !walls.Blocked(next) {
			possible = append(possible, dir)
		}
	}
	return possible
}

func ManhattanDistance(a, b Vector) float64 {
	return math.Abs(a.X-b.X) + math.Abs(a.Y-b.Y)
}

// NearestPoint rounds a continuous position half up to the closest cell.
func NearestPoint(v Vector) Cell {
	return Cell{X: int(math.Floor(v.X + 0.5)), Y: int(math.Floor(v.Y + 0.5))}
}
