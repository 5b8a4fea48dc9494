package game

import (
	"errors"
	"fmt"
)

var (
	ErrIllegalAction     = errors.New("illegal action")
	ErrTerminalState     = errors.New("terminal state")
	ErrInvalidAgentIndex = errors.New("invalid agent index")
)

// IllegalActionError is returned when an agent proposes an action outside its
// current legal set.
type IllegalActionError struct {
	Agent  int
	Action Direction
	Legal  []Direction
}

func (e *IllegalActionError) Error() string {
	return fmt.Sprintf("illegal action %q for agent %d (legal: %v)", e.Action, e.Agent, e.Legal)
}

func (e *IllegalActionError) Unwrap() error { return ErrIllegalAction }

// TerminalStateError is returned when advancing a state that is already won or lost.
type TerminalStateError struct {
	Agent int
}

func (e *TerminalStateError) Error() string {
	return fmt.Sprintf("can't generate a successor of a terminal state (agent %d)", e.Agent)
}

func (e *TerminalStateError) Unwrap() error { return ErrTerminalState }

type InvalidAgentIndexError struct {
	Index  int
	Reason string
}

func (e *InvalidAgentIndexError) Error() string {
	return fmt.Sprintf("invalid agent index %d: %s", e.Index, e.Reason)
}

func (e *InvalidAgentIndexError) Unwrap() error { return ErrInvalidAgentIndex }
