package game

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustLayout(t *testing.T, rows ...string) *Layout {
	t.Helper()
	l, err := ParseLayout("test", rows)
	require.NoError(t, err)
	return l
}

// pelletLayout: agent 0 at (1,1) with a pellet east of it, agent 1 at (3,2).
func pelletLayout(t *testing.T) *Layout {
	return mustLayout(t,
		"%%%%%",
		"%  2%",
		"%1. %",
		"%%%%%",
	)
}

func mustSuccessor(t *testing.T, state *GameState, agent int, action Direction) *GameState {
	t.Helper()
	next, err := state.GenerateSuccessor(agent, action)
	require.NoError(t, err)
	return next
}

func legal(t *testing.T, state *GameState, agent int) []Direction {
	t.Helper()
	actions, err := state.LegalActions(agent)
	require.NoError(t, err)
	return actions
}

func score(t *testing.T, state *GameState, agent int) float64 {
	t.Helper()
	v, err := state.Score(agent)
	require.NoError(t, err)
	return v
}

func scoreChange(t *testing.T, state *GameState, agent int) float64 {
	t.Helper()
	v, err := state.ScoreChange(agent)
	require.NoError(t, err)
	return v
}

func position(t *testing.T, state *GameState, agent int) Vector {
	t.Helper()
	v, err := state.PacmanPosition(agent)
	require.NoError(t, err)
	return v
}

func scaredTimer(t *testing.T, state *GameState, agent int) int {
	t.Helper()
	v, err := state.ScaredTimer(agent)
	require.NoError(t, err)
	return v
}

func wasEaten(t *testing.T, state *GameState, agent int) bool {
	t.Helper()
	v, err := state.WasEaten(agent)
	require.NoError(t, err)
	return v
}

func TestLegalActions(t *testing.T) {
	t.Run("excludes walls and stop", func(t *testing.T) {
		state := NewGameState(pelletLayout(t))
		require.Equal(t, []Direction{North, East}, legal(t, state, 0))
	})

	t.Run("never contains stop in the open", func(t *testing.T) {
		state := NewGameState(mustLayout(t,
			"%%%%%",
			"%   %",
			"% 1 %",
			"%  2%",
			"%%%%%",
		))
		actions := legal(t, state, 0)
		require.Equal(t, []Direction{North, South, East, West}, actions)
		require.NotContains(t, actions, Stop)
	})

	t.Run("empty once the match is lost", func(t *testing.T) {
		state := NewGameState(pelletLayout(t)).WithOutcome(false, true)
		require.Empty(t, legal(t, state, 0))
		require.Empty(t, legal(t, state, 1))
	})

	t.Run("index outside the match", func(t *testing.T) {
		state := NewGameState(pelletLayout(t))
		_, err := state.LegalActions(2)
		require.ErrorIs(t, err, ErrInvalidAgentIndex)
		_, err = state.WithOutcome(true, false).LegalActions(-1)
		require.ErrorIs(t, err, ErrInvalidAgentIndex)
	})
}

func TestGenerateSuccessor(t *testing.T) {
	t.Run("eating a pellet scores ten", func(t *testing.T) {
		state := NewGameState(pelletLayout(t))
		require.Equal(t, 1, state.NumFood())

		next := mustSuccessor(t, state, 0, East)

		require.Equal(t, 0, next.NumFood())
		require.Equal(t, 10.0, score(t, next, 0))
		require.Equal(t, 10.0, scoreChange(t, next, 0))
		require.Equal(t, Vector{X: 2, Y: 1}, position(t, next, 0))
		require.Equal(t, 0, next.LastAgentMoved())

		cell, ok := next.LastFoodEaten()
		require.True(t, ok)
		require.Equal(t, Cell{X: 2, Y: 1}, cell)
	})

	t.Run("does not modify the original state", func(t *testing.T) {
		state := NewGameState(pelletLayout(t))
		before := FromData(state.Data())
		hash := state.Hash()

		_ = mustSuccessor(t, state, 0, East)

		require.True(t, state.Equal(before))
		require.Equal(t, hash, state.Hash())
		require.Equal(t, 1, state.NumFood())
		require.Equal(t, 0.0, score(t, state, 0))
		require.Equal(t, Vector{X: 1, Y: 1}, position(t, state, 0))
	})

	t.Run("moving without eating keeps the score", func(t *testing.T) {
		state := NewGameState(pelletLayout(t))
		next := mustSuccessor(t, state, 0, North)
		require.Equal(t, 1, next.NumFood())
		require.Equal(t, 0.0, score(t, next, 0))
		_, ok := next.LastFoodEaten()
		require.False(t, ok)
	})

	t.Run("score change resets on the next ply", func(t *testing.T) {
		state := mustSuccessor(t, NewGameState(pelletLayout(t)), 0, East)
		next := mustSuccessor(t, state, 1, West)
		require.Equal(t, 0.0, scoreChange(t, next, 0))
		require.Equal(t, 10.0, score(t, next, 0))
		_, ok := next.LastFoodEaten()
		require.False(t, ok)
	})

	t.Run("illegal action", func(t *testing.T) {
		state := NewGameState(pelletLayout(t))

		_, err := state.GenerateSuccessor(0, West)
		var illegal *IllegalActionError
		require.ErrorAs(t, err, &illegal)
		require.Equal(t, West, illegal.Action)
		require.Equal(t, 0, illegal.Agent)
		require.True(t, errors.Is(err, ErrIllegalAction))

		_, err = state.GenerateSuccessor(0, Stop)
		require.ErrorIs(t, err, ErrIllegalAction)
	})

	t.Run("terminal state", func(t *testing.T) {
		state := NewGameState(pelletLayout(t)).WithOutcome(true, false)
		require.True(t, state.IsWin())

		next, err := state.GenerateSuccessor(0, East)
		require.Nil(t, next)
		var terminal *TerminalStateError
		require.ErrorAs(t, err, &terminal)
		require.ErrorIs(t, err, ErrTerminalState)
	})

	t.Run("invalid agent index", func(t *testing.T) {
		state := NewGameState(pelletLayout(t))
		_, err := state.GenerateSuccessor(3, East)
		require.ErrorIs(t, err, ErrInvalidAgentIndex)
	})

	t.Run("deterministic", func(t *testing.T) {
		layout := NewGameState(mustLayout(t,
			"%%%%%%%",
			"%1.o..%",
			"%.%%%.%",
			"%....2%",
			"%%%%%%%",
		)).Layout()
		plies := []struct {
			agent  int
			action Direction
		}{
			{0, East}, {1, North}, {0, East}, {1, North}, {0, East}, {1, West},
		}

		play := func() *GameState {
			state := NewGameState(layout)
			for _, p := range plies {
				state = mustSuccessor(t, state, p.agent, p.action)
			}
			return state
		}

		a, b := play(), play()
		require.True(t, a.Equal(b))
		require.Equal(t, a.Hash(), b.Hash())
		require.Equal(t, a.Scores(), b.Scores())
	})
}

func TestCapsules(t *testing.T) {
	layout := func(t *testing.T) *Layout {
		return mustLayout(t,
			"%%%%%%%",
			"%1  o %",
			"%    2%",
			"%%%%%%%",
		)
	}

	t.Run("eating a capsule frightens the other agent", func(t *testing.T) {
		state := NewGameState(layout(t))
		require.Equal(t, 3.0, ManhattanDistance(position(t, state, 0), Vector{X: 4, Y: 2}))

		for i := 0; i < 3; i++ {
			state = mustSuccessor(t, state, 0, East)
		}

		require.Empty(t, state.Capsules())
		require.Equal(t, ScaredTime, scaredTimer(t, state, 1))
		require.Equal(t, 0, scaredTimer(t, state, 0))
		cell, ok := state.LastCapsuleEaten()
		require.True(t, ok)
		require.Equal(t, Cell{X: 4, Y: 2}, cell)
	})

	t.Run("capsule overwrites a running fright", func(t *testing.T) {
		data := NewGameStateData(layout(t))
		data.AgentStates[0].Configuration.Pos = Vector{X: 3, Y: 2}
		data.AgentStates[1].ScaredTimer = 7
		state := FromData(data)

		next := mustSuccessor(t, state, 0, East)
		require.Equal(t, ScaredTime, scaredTimer(t, next, 1))
		require.Len(t, next.Capsules(), 0)
		require.Len(t, state.Capsules(), 1)
		require.Equal(t, 7, scaredTimer(t, state, 1))
	})

	t.Run("frightened agent counts down on its own plies", func(t *testing.T) {
		data := NewGameStateData(layout(t))
		data.AgentStates[1].ScaredTimer = 3
		state := FromData(data)

		next := mustSuccessor(t, state, 1, West)
		require.Equal(t, 2, scaredTimer(t, next, 1))

		next = mustSuccessor(t, next, 0, East)
		require.Equal(t, 2, scaredTimer(t, next, 1))
	})

	t.Run("timer floors at zero", func(t *testing.T) {
		state := mustSuccessor(t, NewGameState(layout(t)), 1, West)
		require.Equal(t, 0, scaredTimer(t, state, 1))
	})

	t.Run("position snaps to the grid when the fright ends", func(t *testing.T) {
		data := NewGameStateData(layout(t))
		data.AgentStates[0].Configuration = Configuration{Pos: Vector{X: 1.25, Y: 2}, Direction: East}
		data.AgentStates[0].ScaredTimer = 1
		state := FromData(data)

		require.Equal(t, []Direction{East}, legal(t, state, 0))
		next := mustSuccessor(t, state, 0, East)
		require.Equal(t, 0, scaredTimer(t, next, 0))
		require.Equal(t, Vector{X: 2, Y: 2}, position(t, next, 0))
	})
}

func TestSteal(t *testing.T) {
	layout := func(t *testing.T) *Layout {
		return mustLayout(t,
			"%%%%%%",
			"%    %",
			"%1  2%",
			"%%%%%%",
		)
	}
	setup := func(t *testing.T, moverTimer, victimTimer int, victimScore float64) *GameState {
		data := NewGameStateData(layout(t))
		data.AgentStates[1].Configuration.Pos = Vector{X: 3, Y: 1}
		data.AgentStates[0].ScaredTimer = moverTimer
		data.AgentStates[1].ScaredTimer = victimTimer
		data.Score[1] = victimScore
		return FromData(data)
	}

	t.Run("catching a frightened agent steals half its score", func(t *testing.T) {
		state := setup(t, 0, 5, 40)
		next := mustSuccessor(t, state, 0, East)

		require.Equal(t, 1.0, ManhattanDistance(position(t, next, 0), position(t, next, 1)))
		require.Equal(t, 20.0, score(t, next, 1))
		require.Equal(t, 20.0, score(t, next, 0))
		require.Equal(t, 20.0, scoreChange(t, next, 0))
		require.Equal(t, 0, scaredTimer(t, next, 1))
		require.True(t, wasEaten(t, next, 1))
	})

	t.Run("only once per fright", func(t *testing.T) {
		state := setup(t, 0, 5, 40)
		next := mustSuccessor(t, state, 0, East)
		next = mustSuccessor(t, next, 1, North)
		next = mustSuccessor(t, next, 0, West)
		next = mustSuccessor(t, next, 1, South)
		next = mustSuccessor(t, next, 0, East)
		require.Equal(t, 20.0, score(t, next, 1))
		require.Equal(t, 20.0, score(t, next, 0))
	})

	t.Run("no steal when both are frightened", func(t *testing.T) {
		state := setup(t, 5, 5, 40)
		next := mustSuccessor(t, state, 0, East)
		require.Equal(t, 40.0, score(t, next, 1))
		require.Equal(t, 0.0, score(t, next, 0))
		require.Equal(t, 5, scaredTimer(t, next, 1))
	})

	t.Run("no steal when neither is frightened", func(t *testing.T) {
		state := setup(t, 0, 0, 40)
		next := mustSuccessor(t, state, 0, East)
		require.Equal(t, 40.0, score(t, next, 1))
		require.False(t, wasEaten(t, next, 1))
	})

	t.Run("no steal beyond the collision tolerance", func(t *testing.T) {
		data := NewGameStateData(layout(t))
		data.AgentStates[1].ScaredTimer = 5
		data.Score[1] = 40
		next := mustSuccessor(t, FromData(data), 0, East)
		require.Equal(t, 2.0, ManhattanDistance(position(t, next, 0), position(t, next, 1)))
		require.Equal(t, 40.0, score(t, next, 1))
		require.Equal(t, 5, scaredTimer(t, next, 1))
	})

	t.Run("mover whose fright ends this ply can steal", func(t *testing.T) {
		state := setup(t, 1, 5, 40)
		next := mustSuccessor(t, state, 0, East)
		require.Equal(t, 20.0, score(t, next, 0))
		require.Equal(t, 20.0, score(t, next, 1))
	})
}

func TestAccessors(t *testing.T) {
	state := NewGameState(pelletLayout(t))

	t.Run("ghost accessors reject agent zero", func(t *testing.T) {
		_, err := state.GhostState(0)
		var invalid *InvalidAgentIndexError
		require.ErrorAs(t, err, &invalid)
		require.Equal(t, 0, invalid.Index)

		_, err = state.GhostPosition(0)
		require.ErrorIs(t, err, ErrInvalidAgentIndex)
	})

	t.Run("index outside the agent range", func(t *testing.T) {
		_, err := state.GhostState(2)
		require.ErrorIs(t, err, ErrInvalidAgentIndex)
		_, err = state.PacmanState(-1)
		require.ErrorIs(t, err, ErrInvalidAgentIndex)

		for _, index := range []int{-1, NumPacmen} {
			_, err = state.Score(index)
			require.ErrorIs(t, err, ErrInvalidAgentIndex)
			_, err = state.ScoreChange(index)
			require.ErrorIs(t, err, ErrInvalidAgentIndex)
			_, err = state.ScaredTimer(index)
			require.ErrorIs(t, err, ErrInvalidAgentIndex)
			_, err = state.PacmanPosition(index)
			require.ErrorIs(t, err, ErrInvalidAgentIndex)
			_, err = state.WasEaten(index)
			var invalid *InvalidAgentIndexError
			require.ErrorAs(t, err, &invalid)
			require.Equal(t, index, invalid.Index)
		}
	})

	t.Run("ghost views", func(t *testing.T) {
		pos, err := state.GhostPosition(1)
		require.NoError(t, err)
		require.Equal(t, Vector{X: 3, Y: 2}, pos)
		require.Equal(t, []Vector{{X: 3, Y: 2}}, state.GhostPositions())
		require.Len(t, state.GhostStates(), 1)
	})

	t.Run("returned grids are copies", func(t *testing.T) {
		food := state.Food()
		food.Set(2, 1, false)
		require.True(t, state.HasFood(2, 1))

		walls := state.Walls()
		walls.Set(0, 0, false)
		require.True(t, state.HasWall(0, 0))
	})

	t.Run("returned layout is a copy", func(t *testing.T) {
		state := NewGameState(pelletLayout(t))
		next := mustSuccessor(t, state, 0, North)
		actions := legal(t, state, 0)
		hash := state.Hash()

		layout := next.Layout()
		layout.Walls.Set(2, 1, true)
		layout.Food.Set(2, 1, false)
		layout.AgentPositions[0] = Cell{X: 3, Y: 1}

		require.Equal(t, actions, legal(t, state, 0))
		require.Equal(t, hash, state.Hash())
		require.False(t, next.HasWall(2, 1))
		require.Equal(t, Cell{X: 1, Y: 1}, next.Layout().AgentPositions[0])
		require.Equal(t, "test", next.LayoutName())
	})

	t.Run("initial bookkeeping", func(t *testing.T) {
		require.Equal(t, 2, state.NumAgents())
		require.Equal(t, -1, state.LastAgentMoved())
		require.Equal(t, [NumPacmen]float64{0, 0}, state.Scores())
		require.False(t, state.IsWin())
		require.False(t, state.IsLose())
	})
}

func TestHashAsMapKey(t *testing.T) {
	state := NewGameState(pelletLayout(t))
	a := mustSuccessor(t, state, 0, North)
	b := mustSuccessor(t, state, 0, North)
	c := mustSuccessor(t, state, 0, East)

	seen := map[StateHash]*GameState{a.Hash(): a}
	require.Contains(t, seen, b.Hash())
	require.True(t, seen[b.Hash()].Equal(b))
	require.NotContains(t, seen, c.Hash())
	require.False(t, a.Equal(c))
}
