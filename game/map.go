package game

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

//go:embed layouts/*.lay
var layoutFS embed.FS

// Grid is a width x height boolean grid indexed by (x, y), (0,0) bottom-left.
type Grid struct {
	Width  int
	Height int
	cells  []bool
}

func NewGrid(width, height int) *Grid {
	return &Grid{Width: width, Height: height, cells: make([]bool, width*height)}
}

func (g *Grid) InBounds(c Cell) bool {
	return c.X >= 0 && c.X < g.Width && c.Y >= 0 && c.Y < g.Height
}

// Get returns false for cells outside the grid.
func (g *Grid) Get(x, y int) bool {
	if !g.InBounds(Cell{X: x, Y: y}) {
		return false
	}
	return g.cells[x*g.Height+y]
}

func (g *Grid) Set(x, y int, value bool) {
	if !g.InBounds(Cell{X: x, Y: y}) {
		panic(fmt.Sprintf("grid cell (%d,%d) out of bounds %dx%d", x, y, g.Width, g.Height))
	}
	g.cells[x*g.Height+y] = value
}

// Blocked reports whether c is a wall or off the board.
func (g *Grid) Blocked(c Cell) bool {
	return !g.InBounds(c) || g.cells[c.X*g.Height+c.Y]
}

func (g *Grid) Count() int {
	n := 0
	for _, v := range g.cells {
		if v {
			n++
		}
	}
	return n
}

// AsList returns the true cells, x-major.
func (g *Grid) AsList() []Cell {
	var out []Cell
	for x := 0; x < g.Width; x++ {
		for y := 0; y < g.Height; y++ {
			if g.cells[x*g.Height+y] {
				out = append(out, Cell{X: x, Y: y})
			}
		}
	}
	return out
}

func (g *Grid) Copy() *Grid {
	cells := make([]bool, len(g.cells))
	copy(cells, g.cells)
	return &Grid{Width: g.Width, Height: g.Height, cells: cells}
}

func (g *Grid) Equal(o *Grid) bool {
	if g == nil || o == nil {
		return g == o
	}
	if g.Width != o.Width || g.Height != o.Height {
		return false
	}
	for i := range g.cells {
		if g.cells[i] != o.cells[i] {
			return false
		}
	}
	return true
}

// Layout is the static maze: walls plus the initial pellets, capsules and
// agent starts. It is shared read-only by every snapshot of a match.
type Layout struct {
	Name           string
	Width          int
	Height         int
	Walls          *Grid
	Food           *Grid
	Capsules       []Cell
	AgentPositions []Cell
}

// Copy returns a layout that shares no grid or slice with l.
func (l *Layout) Copy() *Layout {
	return &Layout{
		Name:           l.Name,
		Width:          l.Width,
		Height:         l.Height,
		Walls:          l.Walls.Copy(),
		Food:           l.Food.Copy(),
		Capsules:       append([]Cell(nil), l.Capsules...),
		AgentPositions: append([]Cell(nil), l.AgentPositions...),
	}
}

func (l *Layout) NumAgents() int {
	return len(l.AgentPositions)
}

func (l *Layout) TotalFood() int {
	return l.Food.Count()
}

// ParseLayout builds a layout from text rows, top row first.
//
//	%  wall        .  pellet     o  capsule
//	P  a Pacman (first P is agent 0, second agent 1)
//	1  agent 0     2  agent 1
func ParseLayout(name string, rows []string) (*Layout, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("layout %q: no rows", name)
	}
	width := len(rows[0])
	height := len(rows)

	l := &Layout{
		Name:   name,
		Width:  width,
		Height: height,
		Walls:  NewGrid(width, height),
		Food:   NewGrid(width, height),
	}

	starts := map[int]Cell{}
	var anonymous []Cell
	for row, line := range rows {
		if len(line) != width {
			return nil, fmt.Errorf("layout %q: row %d has width %d, want %d", name, row+1, len(line), width)
		}
		y := height - 1 - row
		for x, ch := range line {
			switch ch {
			case '%':
				l.Walls.Set(x, y, true)
			case '.':
				l.Food.Set(x, y, true)
			case 'o':
				l.Capsules = append(l.Capsules, Cell{X: x, Y: y})
			case 'P':
				anonymous = append(anonymous, Cell{X: x, Y: y})
			case '1', '2':
				idx := int(ch - '1')
				if _, dup := starts[idx]; dup {
					return nil, fmt.Errorf("layout %q: agent %c placed twice", name, ch)
				}
				starts[idx] = Cell{X: x, Y: y}
			case ' ':
			default:
				return nil, fmt.Errorf("layout %q: invalid character %q at row %d, col %d", name, ch, row+1, x+1)
			}
		}
	}

	if len(starts)+len(anonymous) != NumPacmen {
		return nil, fmt.Errorf("layout %q: need exactly %d agent starts, got %d", name, NumPacmen, len(starts)+len(anonymous))
	}
	for _, c := range anonymous {
		for idx := 0; idx < NumPacmen; idx++ {
			if _, taken := starts[idx]; !taken {
				starts[idx] = c
				break
			}
		}
	}
	for idx := 0; idx < NumPacmen; idx++ {
		l.AgentPositions = append(l.AgentPositions, starts[idx])
	}
	return l, nil
}

// LoadLayout reads a layout file from disk.
func LoadLayout(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout: %w", err)
	}
	return ParseLayout(strings.TrimSuffix(filepath.Base(path), ".lay"), splitRows(data))
}

// DefaultLayout returns the built-in duel maze.
func DefaultLayout() *Layout {
	data, err := layoutFS.ReadFile("layouts/duel.lay")
	if err != nil {
		panic(err)
	}
	l, err := ParseLayout("duel", splitRows(data))
	if err != nil {
		panic(err)
	}
	return l
}

func splitRows(data []byte) []string {
	var rows []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		rows = append(rows, line)
	}
	return rows
}
