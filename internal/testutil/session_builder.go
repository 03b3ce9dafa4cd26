package testutil

import (
	"time"

	"github.com/cognovo/differential/core"
)

// SessionBuilder provides a fluent helper for constructing sessions in
// tests. Example:
//
//	s := NewSessionBuilder().Input("why is checkout slow").Round(2).Build()
//
// The underlying board can be replaced wholesale with Board, typically fed
// from a BoardBuilder.
type SessionBuilder struct {
	input   string
	context map[string]string
	board   *core.Board
	round   int
	phases  []core.PhaseResult
}

// NewSessionBuilder creates a builder with a default input.
func NewSessionBuilder() *SessionBuilder {
	return &SessionBuilder{input: "test input"}
}

// Input sets the session problem statement (chainable).
func (b *SessionBuilder) Input(in string) *SessionBuilder { b.input = in; return b }

// Context sets a context entry (chainable).
func (b *SessionBuilder) Context(key, value string) *SessionBuilder {
	if b.context == nil {
		b.context = map[string]string{}
	}
	b.context[key] = value
	return b
}

// Board replaces the session board (chainable).
func (b *SessionBuilder) Board(board *core.Board) *SessionBuilder {
	b.board = board
	return b
}

// Round sets the completed round counter (chainable).
func (b *SessionBuilder) Round(r int) *SessionBuilder { b.round = r; return b }

// Phase appends a completed phase record with the given duration (chainable).
func (b *SessionBuilder) Phase(phase core.Phase, round int, d time.Duration) *SessionBuilder {
	b.phases = append(b.phases, core.PhaseResult{Phase: phase, Round: round, Duration: d})
	return b
}

// Build constructs the session.
func (b *SessionBuilder) Build() *core.Session {
	s := core.NewSession(b.input, b.context)
	if b.board != nil {
		s.Board = b.board
	}
	if b.round > 0 {
		s.SetRound(b.round)
	}
	for _, p := range b.phases {
		s.AddPhaseResult(p)
	}
	return s
}
