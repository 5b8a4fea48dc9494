package experiments

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"pacduel/agent"
	"pacduel/config"
	"pacduel/engine"
	"pacduel/experiments/metrics"
	"pacduel/game"
	"pacduel/gamemaster"
	"pacduel/searcher"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Goroutine counts compared by the parallelization experiment.
var ParallelGoroutines = []int{1, 2, 4, 8, 16}

// Run plays cfg.NumGames matches between cfg.Agent1 and cfg.Agent2, prints a
// summary to out and stores the records under cfg.OutputDir when it is set.
// A crash ends one match when cfg.CatchErrors is set and aborts the run
// otherwise.
func Run(ctx context.Context, cfg config.Config, registry *agent.Registry, layout *game.Layout, out io.Writer) ([]metrics.GameMetric, error) {
	matchup := [game.NumPacmen]string{cfg.Agent1, cfg.Agent2}
	games, moves, err := runMatchup(ctx, cfg, registry, layout, matchup, cfg.NumGames)
	if err != nil {
		return games, err
	}

	PrintSummary(out, games)
	return games, store(cfg.OutputDir, "duel", games, moves)
}

// RunParallelization plays an MCTS agent with each count of
// ParallelGoroutines against cfg.Agent2, with the same thinking time per
// move, to measure how search threads translate into strength.
func RunParallelization(ctx context.Context, cfg config.Config, registry *agent.Registry, layout *game.Layout, out io.Writer) ([]metrics.GameMetric, error) {
	log.Info().Msg("starting parallelization experiment...")

	// The search agents only live for this experiment
	registry = registry.Clone()
	var games []metrics.GameMetric
	var moves []metrics.MoveRecord
	for mi, goroutines := range ParallelGoroutines {
		name := "mcts-" + strconv.Itoa(goroutines)
		searcher.RegisterAs(registry, name, goroutines, cfg.SearchDuration)

		log.Info().Msgf("starting matchup %d of %d between %s and %s...", mi+1, len(ParallelGoroutines), name, cfg.Agent2)
		g, m, err := runMatchup(ctx, cfg, registry, layout, [game.NumPacmen]string{name, cfg.Agent2}, cfg.NumGames)
		games = append(games, g...)
		moves = append(moves, m...)
		if err != nil {
			return games, err
		}
		log.Info().Msgf("completed matchup %d of %d", mi+1, len(ParallelGoroutines))
	}

	log.Info().Msg("completed parallelization experiment")
	PrintSummary(out, games)
	return games, store(cfg.OutputDir, "parallelization", games, moves)
}

func runMatchup(ctx context.Context, cfg config.Config, registry *agent.Registry, layout *game.Layout, names [game.NumPacmen]string, numGames int) ([]metrics.GameMetric, []metrics.MoveRecord, error) {
	games := []metrics.GameMetric{}
	moves := []metrics.MoveRecord{}
	for i := 0; i < numGames; i++ {
		log.Info().Msgf("starting game %d of %d: %s vs %s", i+1, numGames, names[0], names[1])

		metric, moveMetrics, err := runGame(ctx, cfg, registry, layout, names)
		if err != nil {
			return games, moves, fmt.Errorf("game %d: %w", i+1, err)
		}
		games = append(games, metric)
		moves = append(moves, metrics.NewMoveRecords(metric.ID, moveMetrics)...)

		log.Info().Msgf("completed game %d of %d with winner: %s (%s)", i+1, numGames, winnerName(metric.Winner, names), metric.Reason)
	}
	return games, moves, nil
}

// runGame plays a single match between fresh agents.
func runGame(ctx context.Context, cfg config.Config, registry *agent.Registry, layout *game.Layout, names [game.NumPacmen]string) (metrics.GameMetric, []metrics.MoveMetric, error) {
	var agents [game.NumPacmen]agent.Agent
	for i, name := range names {
		a, err := registry.New(name)
		if err != nil {
			return metrics.GameMetric{}, nil, err
		}
		agents[i] = a
	}

	g := engine.NewGame(agents, gamemaster.NewClassicRules(cfg.Timeout), layout, cfg.CatchErrors)
	// A crash only comes back from Run when cfg.CatchErrors is unset
	if err := g.Run(ctx, cfg.GameTime); err != nil {
		return metrics.GameMetric{}, nil, err
	}

	return g.Metric(uuid.NewString(), names), g.Moves(), nil
}

func store(dir, name string, games []metrics.GameMetric, moves []metrics.MoveRecord) error {
	if dir == "" {
		return nil
	}

	writer, err := metrics.NewWriter(dir, name)
	if err != nil {
		return fmt.Errorf("failed to create experiment writer: %w", err)
	}
	if err := writer.WriteGameRecords(games); err != nil {
		return err
	}
	log.Info().Msg("stored game records")

	if err := writer.WriteMoveRecords(moves); err != nil {
		return err
	}
	log.Info().Msgf("stored move records in %s", writer.Dir())
	return nil
}

// PrintSummary lists the final scores and the winner of every match.
// Winners are numbered from 1; a draw has no winner.
func PrintSummary(out io.Writer, games []metrics.GameMetric) {
	scores := make([][game.NumPacmen]float64, len(games))
	winners := make([]string, len(games))
	for i, g := range games {
		scores[i] = g.Scores
		if g.Winner == gamemaster.Draw {
			winners[i] = "draw"
		} else {
			winners[i] = strconv.Itoa(g.Winner + 1)
		}
	}
	fmt.Fprintln(out, "**** Summary: *****")
	fmt.Fprintln(out, "Scores: ", scores)
	fmt.Fprintln(out, "Winners:", winners)
	fmt.Fprintln(out, "Time:   ", elapsed(games))
}

func winnerName(winner int, names [game.NumPacmen]string) string {
	if winner == gamemaster.Draw {
		return "draw"
	}
	return fmt.Sprintf("agent %d (%s)", winner+1, names[winner])
}

func elapsed(games []metrics.GameMetric) time.Duration {
	var total time.Duration
	for _, g := range games {
		total += g.Duration
	}
	return total
}
