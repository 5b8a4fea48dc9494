package agent

import (
	"context"
	"slices"

	"pacduel/game"
)

// ScriptedAgent plays a fixed line of actions, one per turn. An action that
// is not legal when its turn comes, or any turn after the line is exhausted,
// falls back to the first legal action.
type ScriptedAgent struct {
	actions []game.Direction
	next    int
}

func NewScriptedAgent(actions ...game.Direction) *ScriptedAgent {
	return &ScriptedAgent{actions: actions}
}

func (a *ScriptedAgent) GetAction(ctx context.Context, state *game.GameState, index int) (game.Direction, error) {
	var action game.Direction
	if a.next < len(a.actions) {
		action = a.actions[a.next]
		a.next++
	}
	legal, err := state.LegalActions(index)
	if err != nil {
		return "", err
	}
	if len(legal) == 0 || slices.Contains(legal, action) {
		return action, nil
	}
	return legal[0], nil
}
