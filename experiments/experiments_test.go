package experiments

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pacduel/agent"
	"pacduel/config"
	"pacduel/engine"
	"pacduel/experiments/metrics"
	"pacduel/game"
	"pacduel/gamemaster"

	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) config.Config {
	return config.Config{
		Agent1:           "greedy",
		Agent2:           "random",
		NumGames:         2,
		Timeout:          time.Second,
		GameTime:         10 * time.Second,
		OutputDir:        t.TempDir(),
		LogLevel:         "info",
		SearchGoroutines: 1,
		SearchDuration:   5 * time.Millisecond,
	}
}

// Each agent is one step from its own pellet.
func testLayout(t *testing.T) *game.Layout {
	l, err := game.ParseLayout("corridor", []string{
		"%%%%%%",
		"%1..2%",
		"%%%%%%",
	})
	require.NoError(t, err)
	return l
}

func TestRun(t *testing.T) {
	cfg := testConfig(t)
	var out bytes.Buffer
	games, err := Run(context.Background(), cfg, agent.Default, testLayout(t), &out)
	require.NoError(t, err)
	require.Len(t, games, 2)

	for _, g := range games {
		require.NotEmpty(t, g.ID)
		require.Equal(t, [game.NumPacmen]string{"greedy", "random"}, g.Agents)
		require.Equal(t, [game.NumPacmen]float64{10, 10}, g.Scores)
		require.Equal(t, 2, g.TotalMoves)
		require.Equal(t, -1, g.Crashed)
	}
	require.NotEqual(t, games[0].ID, games[1].ID)
	require.Contains(t, out.String(), "**** Summary: *****")

	dirs, err := filepath.Glob(filepath.Join(cfg.OutputDir, "duel", "*"))
	require.NoError(t, err)
	require.Len(t, dirs, 1)
	_, err = os.Stat(filepath.Join(dirs[0], metrics.GameRecordsFile))
	require.NoError(t, err)
	rows, err := metrics.ReadMoveRecords(filepath.Join(dirs[0], metrics.MoveRecordsFile))
	require.NoError(t, err)
	require.Len(t, rows, 4)
}

func TestRunUnknownAgent(t *testing.T) {
	cfg := testConfig(t)
	cfg.Agent2 = "nobody"
	_, err := Run(context.Background(), cfg, agent.Default, testLayout(t), &bytes.Buffer{})
	require.ErrorIs(t, err, agent.ErrUnknownAgent)
}

type crashingAgent struct{}

func (crashingAgent) GetAction(ctx context.Context, state *game.GameState, index int) (game.Direction, error) {
	panic("crash")
}

type erroringAgent struct{}

func (erroringAgent) GetAction(ctx context.Context, state *game.GameState, index int) (game.Direction, error) {
	return "", errors.New("agent bug")
}

func crashRegistry() *agent.Registry {
	registry := agent.NewRegistry()
	registry.Register("greedy", func() agent.Agent { return agent.NewGreedyAgent(nil) })
	registry.Register("crash", func() agent.Agent { return crashingAgent{} })
	registry.Register("error", func() agent.Agent { return erroringAgent{} })
	return registry
}

func TestRunCrashAbortsRun(t *testing.T) {
	for _, name := range []string{"crash", "error"} {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Agent2 = name
			cfg.OutputDir = ""
			games, err := Run(context.Background(), cfg, crashRegistry(), testLayout(t), &bytes.Buffer{})

			var crash *engine.AgentCrashError
			require.ErrorAs(t, err, &crash)
			require.Equal(t, 1, crash.Agent)
			require.Empty(t, games)
		})
	}

	t.Run("panic cause", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Agent2 = "crash"
		cfg.OutputDir = ""
		_, err := Run(context.Background(), cfg, crashRegistry(), testLayout(t), &bytes.Buffer{})
		require.ErrorIs(t, err, engine.ErrAgentPanic)
	})
}

func TestRunCrashEndsOneMatch(t *testing.T) {
	cfg := testConfig(t)
	cfg.Agent2 = "crash"
	cfg.CatchErrors = true
	cfg.OutputDir = ""
	games, err := Run(context.Background(), cfg, crashRegistry(), testLayout(t), &bytes.Buffer{})
	require.NoError(t, err)
	require.Len(t, games, 2)
	for _, g := range games {
		require.Equal(t, 1, g.Crashed)
		require.Equal(t, 0, g.Winner)
		require.Equal(t, string(gamemaster.ByCrash), g.Reason)
	}
}

func TestRunParallelization(t *testing.T) {
	saved := ParallelGoroutines
	ParallelGoroutines = []int{1, 2}
	t.Cleanup(func() { ParallelGoroutines = saved })

	cfg := testConfig(t)
	cfg.NumGames = 1
	registry := agent.NewRegistry()
	registry.Register("random", func() agent.Agent { return agent.NewRandomAgent(1) })

	games, err := RunParallelization(context.Background(), cfg, registry, testLayout(t), &bytes.Buffer{})
	require.NoError(t, err)
	require.Len(t, games, 2)
	require.Equal(t, "mcts-1", games[0].Agents[0])
	require.Equal(t, "mcts-2", games[1].Agents[0])
	require.Equal(t, []string{"random"}, registry.Names())
}

func TestPrintSummary(t *testing.T) {
	var out bytes.Buffer
	PrintSummary(&out, []metrics.GameMetric{
		{Scores: [game.NumPacmen]float64{20, 10}, Winner: 0},
		{Scores: [game.NumPacmen]float64{10, 10}, Winner: gamemaster.Draw},
	})
	require.Contains(t, out.String(), "Scores:  [[20 10] [10 10]]")
	require.Contains(t, out.String(), "Winners: [1 draw]")
}
