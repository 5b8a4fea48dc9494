package game

// Direction is an action an agent can take. Stop is geometrically valid but
// never legal for a Pacman.
type Direction string

const (
	North Direction = "North"
	South Direction = "South"
	East  Direction = "East"
	West  Direction = "West"
	Stop  Direction = "Stop"
)

const (
	NumPacmen          = 2
	ScaredTime         = 20  // Plies a competitor stays frightened after a capsule
	CollisionTolerance = 1.0 // How close the competitors must be for a steal
	PacmanSpeed        = 1.0
	FoodScore          = 10.0
)

type StateHash uint64

// Evaluates the game state to a score from the perspective of agent index.
// Higher is better for that agent. index must be a valid agent index.
type Evaluate func(state *GameState, index int) float64

// Other returns the index of the competing Pacman.
func Other(index int) int {
	return (index + 1) % NumPacmen
}
