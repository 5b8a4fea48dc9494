package engine

import (
	"errors"
	"fmt"
)

var (
	ErrMoveTimeout    = errors.New("move timed out")
	ErrStartupTimeout = errors.New("startup timed out")
	ErrTooSlow        = errors.New("too many slow moves")
	ErrTotalTime      = errors.New("total thinking time exceeded")
	ErrAgentPanic     = errors.New("agent panicked")
)

// AgentCrashError blames one agent for ending the match early.
type AgentCrashError struct {
	Agent int
	Cause error
}

func (e *AgentCrashError) Error() string {
	return fmt.Sprintf("agent %d crashed: %v", e.Agent, e.Cause)
}

func (e *AgentCrashError) Unwrap() error {
	return e.Cause
}
