package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pacduel/agent"
	"pacduel/experiments/metrics"
	"pacduel/game"
	"pacduel/gamemaster"

	"github.com/rs/zerolog/log"
)

// MaxPlies ends a match that no clock bounds.
const MaxPlies = 10000

// Game drives one match: it asks the agents for actions in turn, under the
// time budgets of the rules, and applies them.
type Game struct {
	Agents      [game.NumPacmen]agent.Agent
	Rules       *gamemaster.ClassicRules
	CatchErrors bool

	match        *gamemaster.Match
	agentTimes   [game.NumPacmen]time.Duration
	timeWarnings [game.NumPacmen]int
	moves        []metrics.MoveMetric
	startTime    time.Time
	endTime      time.Time
}

// searchReporter is implemented by agents that search, to surface their statistics.
type searchReporter interface {
	LastSearch() metrics.SearchMetric
}

func NewGame(agents [game.NumPacmen]agent.Agent, rules *gamemaster.ClassicRules, layout *game.Layout, catchErrors bool) *Game {
	for i, a := range agents {
		if a == nil {
			panic(fmt.Sprintf("agent %d is missing", i))
		}
	}
	return &Game{
		Agents:      agents,
		Rules:       rules,
		CatchErrors: catchErrors,
		match:       gamemaster.NewMatch(rules, layout),
	}
}

// Run plays the match until it is over, the game clock of gameTime runs out
// (no clock when gameTime is zero), an agent crashes or ctx is cancelled.
// A crash is returned as an *AgentCrashError unless CatchErrors is set; it
// is recorded by the rules either way.
func (g *Game) Run(ctx context.Context, gameTime time.Duration) error {
	g.startTime = time.Now()
	defer func() { g.endTime = time.Now() }()

	clock := ctx
	if gameTime > 0 {
		var cancel context.CancelFunc
		clock, cancel = context.WithTimeout(ctx, gameTime)
		defer cancel()
	}

	log.Info().Msgf("match starting on %s with %d pellets", g.match.State().LayoutName(), g.match.State().NumFood())

	for i := range g.Agents {
		if err := g.startup(clock, i); err != nil {
			return g.fail(i, err)
		}
		if clock.Err() != nil {
			return g.stop(ctx)
		}
	}

	passes := 0
	for !g.match.IsOver() && g.match.Plies() < MaxPlies && passes < game.NumPacmen {
		if clock.Err() != nil {
			return g.stop(ctx)
		}

		index := g.match.ToMove()
		state := g.match.State()
		legal, err := state.LegalActions(index)
		if err != nil {
			return err
		}
		if len(legal) == 0 {
			log.Debug().Int("agent", index).Msg("no legal actions, passing")
			if err := g.match.Pass(index); err != nil {
				return err
			}
			passes++
			continue
		}
		passes = 0

		action, elapsed, err := call(clock, g.Rules.MoveTimeout(index), func(ctx context.Context) (game.Direction, error) {
			return g.Agents[index].GetAction(ctx, state, index)
		})
		if err != nil && clock.Err() != nil {
			// Out of game time while the agent was thinking
			return g.stop(ctx)
		}

		g.agentTimes[index] += elapsed
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				err = ErrMoveTimeout
			}
			return g.fail(index, err)
		}
		if err := g.checkTime(index, elapsed); err != nil {
			return g.fail(index, err)
		}

		if err := g.match.Play(index, action); err != nil {
			return fmt.Errorf("agent %d: %w", index, err)
		}
		if err := g.record(index, action, elapsed); err != nil {
			return err
		}
	}

	g.match.End()
	g.logEnd()
	return nil
}

func (g *Game) startup(clock context.Context, index int) error {
	initializer, ok := g.Agents[index].(agent.Initializer)
	if !ok {
		return nil
	}
	state := g.match.State()
	_, elapsed, err := call(clock, g.Rules.MaxStartupTime(index), func(ctx context.Context) (struct{}, error) {
		return struct{}{}, initializer.RegisterInitialState(ctx, state, index)
	})
	if err != nil && clock.Err() != nil {
		return nil // out of game time; Run stops
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrStartupTimeout
	}
	if err != nil {
		return err
	}
	log.Debug().Int("agent", index).Dur("elapsed", elapsed).Msg("agent ready")
	return nil
}

// checkTime enforces the slow move warnings and the total thinking budget.
func (g *Game) checkTime(index int, elapsed time.Duration) error {
	if elapsed > g.Rules.MoveWarningTime(index) {
		g.timeWarnings[index]++
		log.Warn().Int("agent", index).Dur("elapsed", elapsed).Int("warnings", g.timeWarnings[index]).Msg("slow move")
		if g.timeWarnings[index] > g.Rules.MaxTimeWarnings(index) {
			return ErrTooSlow
		}
	}
	if g.agentTimes[index] > g.Rules.MaxTotalTime(index) {
		return ErrTotalTime
	}
	return nil
}

func (g *Game) fail(index int, cause error) error {
	g.Rules.AgentCrash(index)
	g.match.End()
	err := &AgentCrashError{Agent: index, Cause: cause}
	log.Warn().Err(cause).Int("agent", index).Msg("match stopped by a crash")
	if g.CatchErrors {
		return nil
	}
	return err
}

// stop ends the match when the game clock runs out. Cancelling ctx itself
// is reported to the caller.
func (g *Game) stop(ctx context.Context) error {
	g.match.End()
	if err := ctx.Err(); err != nil {
		return err
	}
	log.Info().Msg("game time is up")
	g.logEnd()
	return nil
}

func (g *Game) record(index int, action game.Direction, elapsed time.Duration) error {
	state := g.match.State()
	change, err := state.ScoreChange(index)
	if err != nil {
		return err
	}
	stolen, err := state.WasEaten(game.Other(index))
	if err != nil {
		return err
	}
	move := metrics.MoveMetric{
		Ply:         g.match.Plies(),
		Agent:       index,
		Action:      action,
		ThinkTime:   elapsed,
		ScoreChange: change,
		Score:       state.Scores()[index],
		Stolen:      stolen,
	}
	if r, ok := g.Agents[index].(searchReporter); ok {
		move.SearchMetric = r.LastSearch()
	}
	g.moves = append(g.moves, move)

	log.Debug().
		Int("ply", move.Ply).
		Int("agent", index).
		Str("action", string(action)).
		Float64("score", move.Score).
		Bool("stolen", move.Stolen).
		Msg("move")
	return nil
}

func (g *Game) logEnd() {
	scores := g.match.State().Scores()
	log.Info().Msgf("match over after %d plies, scores %.0f : %.0f", g.match.Plies(), scores[0], scores[1])
}

type outcome[T any] struct {
	value T
	err   error
}

// call runs fn under a timeout derived from clock. A panic inside fn is
// returned as ErrAgentPanic. fn keeps running in the background after the
// timeout; agents are expected to honor ctx.
func call[T any](clock context.Context, timeout time.Duration, fn func(ctx context.Context) (T, error)) (T, time.Duration, error) {
	ctx, cancel := context.WithTimeout(clock, timeout)
	defer cancel()

	done := make(chan outcome[T], 1)
	start := time.Now()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome[T]{err: fmt.Errorf("%w: %v", ErrAgentPanic, r)}
			}
		}()
		value, err := fn(ctx)
		done <- outcome[T]{value: value, err: err}
	}()

	select {
	case out := <-done:
		return out.value, time.Since(start), out.err
	case <-ctx.Done():
		var zero T
		return zero, time.Since(start), ctx.Err()
	}
}

func (g *Game) State() *game.GameState {
	return g.match.State()
}

// Moves returns the metrics of every applied ply.
func (g *Game) Moves() []metrics.MoveMetric {
	return g.moves
}

func (g *Game) Progress() float64 {
	return g.Rules.Progress(g.match.State())
}

func (g *Game) Result() gamemaster.Result {
	crashed, hasCrash := g.Rules.CrashedAgent()
	return gamemaster.Result{
		Scores:     g.match.State().Scores(),
		AgentTimes: g.agentTimes,
		Crashed:    crashed,
		HasCrash:   hasCrash,
	}
}

// Metric summarizes the finished match.
func (g *Game) Metric(id string, names [game.NumPacmen]string) metrics.GameMetric {
	result := g.Result()
	outcome := gamemaster.CheckWinner(result)
	crashed := -1
	if result.HasCrash {
		crashed = result.Crashed
	}
	return metrics.GameMetric{
		ID:         id,
		Layout:     g.match.State().LayoutName(),
		Agents:     names,
		Scores:     result.Scores,
		AgentTimes: result.AgentTimes,
		Winner:     outcome.Winner,
		Reason:     string(outcome.Reason),
		Crashed:    crashed,
		Progress:   g.Progress(),
		TotalMoves: g.match.Plies(),
		StartTime:  g.startTime,
		EndTime:    g.endTime,
		Duration:   g.endTime.Sub(g.startTime),
	}
}
