package searcher

import (
	"math"
	"sync"

	"pacduel/game"
)

// decision is a tree node where player picks an action. Its statistics are
// kept from the side of mover, the agent whose action led here, so a parent
// always maximizes over its children.
type decision struct {
	sync.RWMutex
	parent   *decision
	player   int
	mover    int
	hash     game.StateHash
	moves    []game.Direction
	children []*decision
	rewards  float64
	visits   float64
}

func newDecision(parent *decision, state *game.GameState, player int) *decision {
	return &decision{
		parent:   parent,
		player:   player,
		mover:    game.Other(player),
		hash:     state.Hash(),
		moves:    legalMoves(state, player),
		children: []*decision{},
	}
}

// SelectOrExpand descends one level. It returns the node itself for a leaf,
// a freshly added child (selected=false) while unexplored moves remain, and
// the best child by UCT (selected=true) otherwise. The returned child already
// carries a virtual loss.
func (d *decision) SelectOrExpand(state *game.GameState) (*decision, *game.GameState, bool) {
	d.Lock()
	defer d.Unlock()

	if len(d.moves) == 0 { // Terminal node
		return d, state, false
	}

	if len(d.moves) > len(d.children) { // Expandable node
		move := d.moves[len(d.children)]
		next := successor(state, d.player, move)
		child := newDecision(d, next, game.Other(d.player))
		d.children = append(d.children, child)
		child.ApplyLoss()
		return child, next, false
	}

	// Fully expanded node
	ith := d.pickChild()
	child := d.children[ith]
	child.ApplyLoss()
	return child, successor(state, d.player, d.moves[ith]), true
}

func (d *decision) pickChild() int {
	policy := newUCT(CSquared, math.Max(d.visits, 1))

	maxIndex := 0
	maxScore := math.Inf(-1)
	for i, child := range d.children {
		score := child.Score(policy)
		if math.IsInf(score, 1) {
			return i
		}
		if score > maxScore {
			maxScore = score
			maxIndex = i
		}
	}
	return maxIndex
}

// ApplyLoss records a provisional lost visit so concurrent searchers spread
// out. Backup reverses it.
func (d *decision) ApplyLoss() {
	d.Lock()
	defer d.Unlock()

	d.rewards += Loss
	d.visits++
}

func (d *decision) reverseLoss() {
	d.rewards -= Loss
	d.visits--
}

func (d *decision) Score(policy *uct) float64 {
	d.RLock()
	defer d.RUnlock()

	return policy.evaluate(d.rewards, d.visits)
}

// Backup adds the outcome of a rollout, valued for agent 0, and returns the parent.
func (d *decision) Backup(value float64) *decision {
	d.Lock()
	defer d.Unlock()

	if d.parent != nil { // Non-root node
		d.reverseLoss()
	}

	d.rewards += toReward(value, d.mover)
	d.visits++

	return d.parent
}

func (d *decision) Visits() float64 {
	d.RLock()
	defer d.RUnlock()

	return d.visits
}

// Policy returns the visit count per explored action.
func (d *decision) Policy() map[game.Direction]float64 {
	d.RLock()
	defer d.RUnlock()

	policy := make(map[game.Direction]float64, len(d.children))
	for i, child := range d.children {
		policy[d.moves[i]] = child.Visits()
	}
	return policy
}

// findBestMove picks the most visited action, the first in canonical order on a tie.
func (d *decision) findBestMove() (game.Direction, bool) {
	d.RLock()
	defer d.RUnlock()

	if len(d.children) == 0 {
		return "", false
	}

	bestIndex := 0
	maxValue := d.children[0].Visits()
	for i, child := range d.children[1:] {
		if v := child.Visits(); v > maxValue {
			maxValue = v
			bestIndex = i + 1
		}
	}
	return d.moves[bestIndex], true
}

// find looks for the node of state among the descendants of d, at most depth
// plies down.
func (d *decision) find(hash game.StateHash, player int, depth int) *decision {
	if d.hash == hash && d.player == player {
		return d
	}
	if depth == 0 {
		return nil
	}
	for _, child := range d.children {
		if found := child.find(hash, player, depth-1); found != nil {
			return found
		}
	}
	return nil
}

func legalMoves(state *game.GameState, player int) []game.Direction {
	moves, err := state.LegalActions(player)
	if err != nil {
		panic(err) // players alternate between the two agent indices
	}
	return moves
}

func successor(state *game.GameState, player int, move game.Direction) *game.GameState {
	next, err := state.GenerateSuccessor(player, move)
	if err != nil {
		panic(err) // moves come from LegalActions of the same state
	}
	return next
}
