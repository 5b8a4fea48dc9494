package game

// Move rules: how a Pacman interacts with the maze and its competitor.
// They operate on a snapshot the caller already owns.

// consumeTolerance is how close to a cell centre an agent must be to eat there.
const consumeTolerance = 0.5

func legalActions(data *GameStateData, agentIndex int) []Direction {
	possible := PossibleActions(data.AgentStates[agentIndex].Configuration, data.Layout.Walls)
	legal := make([]Direction, 0, len(possible))
	for _, dir := range possible {
		if dir != Stop {
			legal = append(legal, dir)
		}
	}
	return legal
}

func applyAction(data *GameStateData, action Direction, agentIndex int) error {
	legal := legalActions(data, agentIndex)
	if !containsDirection(legal, action) {
		return &IllegalActionError{Agent: agentIndex, Action: action, Legal: legal}
	}

	agent := &data.AgentStates[agentIndex]

	// Update configuration
	vector := DirectionToVector(action, PacmanSpeed)
	agent.Configuration = agent.Configuration.GenerateSuccessor(vector)

	// Eat
	next := agent.Configuration.Pos
	nearest := NearestPoint(next)
	if ManhattanDistance(nearest.Vector(), next) <= consumeTolerance {
		consume(data, nearest, agentIndex)
	}
	return nil
}

// consume eats whatever lies on cell. A capsule frightens the other agent for
// the full ScaredTime, whatever was left of a previous fright.
func consume(data *GameStateData, cell Cell, agentIndex int) {
	if data.Food.Get(cell.X, cell.Y) {
		data.ScoreChange[agentIndex] += FoodScore
		data.eatFood(cell)
	}

	if data.hasCapsule(cell) {
		data.eatCapsule(cell)
		data.AgentStates[Other(agentIndex)].ScaredTimer = ScaredTime
	}
}

// decrementTimer counts a fright down by one ply. The agent snaps back onto
// the grid on the ply its fright ends.
func decrementTimer(agent *AgentState) {
	timer := agent.ScaredTimer
	if timer == 1 {
		agent.Configuration.Pos = NearestPoint(agent.Configuration.Pos).Vector()
	}
	agent.ScaredTimer = max(0, timer-1)
}

// checkSteal uses the mover's post-move position against the frightened
// agent's position as of the previous ply.
func checkSteal(data *GameStateData, agentIndex int) {
	victimIndex := Other(agentIndex)
	mover := data.AgentStates[agentIndex].Position()
	victim := data.AgentStates[victimIndex].Position()
	if canSteal(mover, victim) {
		collide(data, agentIndex, victimIndex)
	}
}

func canSteal(pacmanPosition, otherPosition Vector) bool {
	return ManhattanDistance(otherPosition, pacmanPosition) <= CollisionTolerance
}

// collide moves half of the frightened agent's score to the mover and ends
// the fright, so one fright window yields at most one steal.
func collide(data *GameStateData, agentIndex, victimIndex int) {
	victim := &data.AgentStates[victimIndex]
	if victim.ScaredTimer <= 0 {
		return
	}
	stolen := 0.5 * data.Score[victimIndex]
	data.ScoreChange[agentIndex] += stolen
	data.Score[victimIndex] -= stolen
	data.Eaten[victimIndex] = true
	victim.ScaredTimer = 0
}

func containsDirection(dirs []Direction, dir Direction) bool {
	for _, d := range dirs {
		if d == dir {
			return true
		}
	}
	return false
}
