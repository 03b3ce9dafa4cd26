package core

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Phase identifies a step of the differential pipeline.
type Phase string

const (
	// PhaseExternalization seeds the board from all agents.
	PhaseExternalization Phase = "externalization"
	// PhaseChallenge collects objections against the live set.
	PhaseChallenge Phase = "challenge"
	// PhaseRefine revises every challenged hypothesis.
	PhaseRefine Phase = "refine"
	// PhaseSynthesis produces the final ranked result.
	PhaseSynthesis Phase = "synthesis"
)

// SessionStatus describes the lifecycle of a session.
type SessionStatus string

const (
	// SessionActive marks a session that may still be run.
	SessionActive SessionStatus = "active"
	// SessionCompleted marks a session with a stored synthesis result.
	SessionCompleted SessionStatus = "completed"
	// SessionFailed marks a session aborted by an agent failure.
	SessionFailed SessionStatus = "failed"
)

// PhaseResult records one executed phase for the session history.
type PhaseResult struct {
	Phase    Phase          `json:"phase"`
	Round    int            `json:"round"`
	Started  time.Time      `json:"started"`
	Duration time.Duration  `json:"duration"`
	Counts   map[string]int `json:"counts,omitempty"`
}

// Failure captures where and why a run aborted.
type Failure struct {
	Phase   Phase  `json:"phase"`
	Round   int    `json:"round"`
	Message string `json:"message"`
}

// Session is the per-run container holding the input thought, its context,
// the owned hypothesis board, the phase history and the final result. It is
// mutated only by the engine run that owns it and becomes immutable once
// terminal. Reads are safe concurrently with the owning run.
type Session struct {
	ID      string            `json:"id"`
	Input   string            `json:"input"`
	Context map[string]string `json:"context,omitempty"`
	Board   *Board            `json:"-"`
	Created time.Time         `json:"created"`

	mu      sync.RWMutex
	phases  []PhaseResult
	round   int
	status  SessionStatus
	result  *Synthesis
	failure *Failure
	updated time.Time
}

// NewSession creates an active session owning a fresh board.
func NewSession(input string, context map[string]string) *Session {
	now := time.Now().UTC()
	ctx := make(map[string]string, len(context))
	for k, v := range context {
		ctx[k] = v
	}
	return &Session{
		ID:      NewID(),
		Input:   input,
		Context: ctx,
		Board:   NewBoard(),
		Created: now,
		status:  SessionActive,
		updated: now,
	}
}

// Status returns the current session status.
func (s *Session) Status() SessionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Round returns the current round counter.
func (s *Session) Round() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.round
}

// SetRound advances the round counter. Engine use only.
func (s *Session) SetRound(round int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.round = round
	s.updated = time.Now().UTC()
}

// AddPhaseResult appends one executed phase to the ordered history.
func (s *Session) AddPhaseResult(pr PhaseResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phases = append(s.phases, pr)
	s.updated = time.Now().UTC()
}

// Phases returns a copy of the ordered phase history.
func (s *Session) Phases() []PhaseResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]PhaseResult, len(s.phases))
	copy(res, s.phases)
	return res
}

// Result returns the stored synthesis, or nil if the session has not
// completed.
func (s *Session) Result() *Synthesis {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result
}

// Failure returns the captured failure, or nil.
func (s *Session) Failure() *Failure {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.failure
}

// Complete stores the result exactly once and marks the session terminal.
func (s *Session) Complete(result *Synthesis) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != SessionActive {
		return fmt.Errorf("session %s is %s: %w", s.ID, s.status, ErrTerminalSession)
	}
	s.result = result
	s.status = SessionCompleted
	s.updated = time.Now().UTC()
	return nil
}

// Fail marks the session terminal with the captured failure. Board
// mutations applied before the failure are retained for inspection.
func (s *Session) Fail(failure Failure) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != SessionActive {
		return fmt.Errorf("session %s is %s: %w", s.ID, s.status, ErrTerminalSession)
	}
	s.failure = &failure
	s.status = SessionFailed
	s.updated = time.Now().UTC()
	return nil
}

// Updated returns the last mutation time.
func (s *Session) Updated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updated
}

// Transcript renders a human-readable markdown account of the session:
// input, phase history, board state and final synthesis if present.
func (s *Session) Transcript() string {
	s.mu.RLock()
	phases := make([]PhaseResult, len(s.phases))
	copy(phases, s.phases)
	status := s.status
	result := s.result
	failure := s.failure
	s.mu.RUnlock()

	var b strings.Builder
	fmt.Fprintf(&b, "# Differential Session %s\n\n", s.ID)
	fmt.Fprintf(&b, "**Status**: %s\n\n## Input\n\n%s\n\n", status, s.Input)

	if len(phases) > 0 {
		b.WriteString("## Phases\n\n")
		for _, p := range phases {
			fmt.Fprintf(&b, "- round %d %s (%s)", p.Round, p.Phase, p.Duration.Round(time.Millisecond))
			for k, v := range p.Counts {
				fmt.Fprintf(&b, " %s=%d", k, v)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("## Hypotheses\n\n")
	for _, h := range s.Board.All() {
		fmt.Fprintf(&b, "- [%s] %.2f %s (%s)\n", h.Status, h.Confidence, truncate(h.Content, graphContentLimit), h.Source)
	}

	if failure != nil {
		fmt.Fprintf(&b, "\n## Failure\n\n%s during round %d: %s\n", failure.Phase, failure.Round, failure.Message)
	}

	if result != nil {
		fmt.Fprintf(&b, "\n## Synthesis\n\n%d accepted of %d generated\n", result.Summary.Accepted, result.Summary.Generated)
		for _, insight := range result.Insights {
			fmt.Fprintf(&b, "- %s\n", insight)
		}
		if len(result.NextActions) > 0 {
			b.WriteString("\n### Recommended actions\n\n")
			for i, a := range result.NextActions {
				fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, a.Priority, a.Description)
			}
		}
	}

	return b.String()
}

// SessionStore keeps sessions addressable by id for the engine and the API
// boundary. Implementations return live pointers; Session performs its own
// locking so concurrent status reads are safe during a run.
type SessionStore interface {
	Put(session *Session) error
	Get(id string) (*Session, error)
	List(status SessionStatus, limit int) []*Session
	Stats() map[string]int
}
