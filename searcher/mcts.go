package searcher

import (
	"context"
	"sync"
	"time"

	"pacduel/experiments/metrics"
	"pacduel/game"
	"pacduel/gamemaster"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

type Option func(mcts *MCTS)

type MCTS struct {
	goroutines int
	duration   time.Duration
	episodes   int
	cutoff     int
	evaluate   game.Evaluate
	root       *decision
	metrics    metrics.Collector
}

func WithDuration(duration time.Duration) Option {
	return func(u *MCTS) {
		if duration > 0 {
			u.duration = duration
		}
	}
}

func WithEpisodes(episodes int) Option {
	return func(u *MCTS) {
		if episodes > 0 {
			u.episodes = episodes
		}
	}
}

func WithCutoff(depth int) Option {
	return func(u *MCTS) {
		if depth > 0 {
			u.cutoff = depth
		}
	}
}

// WithEvaluationFn sets the evaluation used at the rollout cutoff. It is
// always called for agent 0.
func WithEvaluationFn(evaluate game.Evaluate) Option {
	return func(m *MCTS) {
		if evaluate != nil {
			m.evaluate = evaluate
		}
	}
}

func WithMetrics() Option {
	return func(m *MCTS) {
		m.metrics = metrics.NewCollector()
	}
}

func NewMCTS(goroutines int, options ...Option) *MCTS {
	if goroutines <= 0 {
		goroutines = 1
	}
	m := &MCTS{ // Default values
		goroutines: goroutines,
		cutoff:     MaxCutoff,
		evaluate:   game.EvaluateScore,
		metrics:    metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(m)
	}
	if m.episodes <= 0 && m.duration <= 0 {
		panic("Must specify search episodes or duration")
	}
	return m
}

// Simulate searches the moves of player from state. It returns the visit
// count of every explored move and the best of them. The search stops early
// when ctx is done.
func (m *MCTS) Simulate(ctx context.Context, state *game.GameState, player int) (map[game.Direction]float64, game.Direction, metrics.SearchMetric) {
	m.findRoot(state, player)

	// Run simulations to collect statistics
	m.metrics.Start(m.goroutines, m.cutoff)
	if m.episodes > 0 {
		m.iterate(ctx, state)
	} else {
		m.countdown(ctx, state)
	}
	metric := m.metrics.Complete()

	policy := m.root.Policy()
	best, _ := m.root.findBestMove()
	return policy, best, metric
}

func (m *MCTS) iterate(ctx context.Context, state *game.GameState) {
	task := make(chan any, m.episodes)
	for i := 0; i < m.episodes; i++ {
		task <- nil
	}
	close(task)

	var wg sync.WaitGroup
	for i := 0; i < m.goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for range task {
				if ctx.Err() != nil {
					return
				}
				m.simulate(state)
				m.metrics.AddEpisode()
			}
		}()
	}

	wg.Wait()
}

func (m *MCTS) countdown(ctx context.Context, state *game.GameState) {
	ctx, cancel := context.WithTimeout(ctx, m.duration)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < m.goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for {
				select {
				case <-ctx.Done():
					return
				default:
					m.simulate(state)
					m.metrics.AddEpisode()
				}
			}
		}()
	}

	wg.Wait()
}

// findRoot reuses the subtree of the previous search when the match went
// through at most one move of each agent since.
func (m *MCTS) findRoot(state *game.GameState, player int) {
	var root *decision
	if m.root != nil {
		root = m.root.find(state.Hash(), player, 2)
	}
	if root == nil {
		m.root = newDecision(nil, state, player)
		m.metrics.SetTreeReset(true)
		return
	}
	if root != m.root {
		log.Debug().Float64("visits", root.Visits()).Msg("reusing search tree")
	}
	root.parent = nil
	m.root = root
	m.metrics.SetTreeReset(false)
}

func (m *MCTS) simulate(state *game.GameState) {
	newNode, newState := selectThenExpand(m.root, state)
	value := rollout(newState, newNode.player, m.cutoff, m.evaluate, m.metrics)
	backup(newNode, value)
}

func selectThenExpand(root *decision, state *game.GameState) (*decision, *game.GameState) {
	parent := root
	child, state, selected := parent.SelectOrExpand(state)
	for selected && (child != parent) {
		parent = child
		child, state, selected = parent.SelectOrExpand(state)
	}
	return child, state
}

// rollout plays random moves from state and returns its value for agent 0.
func rollout(state *game.GameState, player int, cutoff int, evaluate game.Evaluate, metrics metrics.Collector) float64 {
	depth := 0
	moves := legalMoves(state, player)
	// Rollout till the board is cleared or for cutoff number of moves
	for len(moves) > 0 && (depth < cutoff) && !cleared(state) {
		move := moves[rand.Intn(len(moves))] // Random rollout policy
		state = successor(state, player, move)
		player = game.Other(player)
		moves = legalMoves(state, player)
		depth++
	}

	if cleared(state) || state.IsWin() || state.IsLose() { // Match over before cutoff
		metrics.AddFullPlayout()
		return terminalValue(gamemaster.Finish(state))
	}

	return evaluate(state, 0)
}

func cleared(state *game.GameState) bool {
	return state.NumFood() == 0 && len(state.Capsules()) == 0
}

func backup(newNode *decision, value float64) {
	node := newNode
	for node != nil {
		node = node.Backup(value)
	}
}
