package core

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when session creation receives empty or
	// non-text input. No session exists after this error.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSessionNotFound is returned for any operation referencing an
	// unknown session id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrHypothesisNotFound is returned for board operations referencing an
	// unknown hypothesis id.
	ErrHypothesisNotFound = errors.New("hypothesis not found")

	// ErrTerminalHypothesis is returned when a mutation targets a
	// hypothesis already in a terminal state.
	ErrTerminalHypothesis = errors.New("hypothesis is terminal")

	// ErrTerminalSession is returned when a run targets a session that has
	// already failed. Completed sessions are not an error: the stored
	// result is returned instead.
	ErrTerminalSession = errors.New("session is terminal")
)

// AgentError captures an exception raised inside an agent call during a
// run. It is fatal for that run: the session transitions to failed with
// phase, round and underlying error retained for diagnosis.
type AgentError struct {
	Agent string
	Phase Phase
	Round int
	Err   error
}

// Error implements the error interface.
func (e *AgentError) Error() string {
	return fmt.Sprintf("agent %s failed during %s (round %d): %v", e.Agent, e.Phase, e.Round, e.Err)
}

// Unwrap exposes the underlying agent error for errors.Is / errors.As.
func (e *AgentError) Unwrap() error { return e.Err }
