package core

import "time"

// EventType categorizes engine log entries.
type EventType string

const (
	// EventPhaseStart marks the beginning of a pipeline phase.
	EventPhaseStart EventType = "phase_start"
	// EventPhaseEnd marks the completion of a pipeline phase.
	EventPhaseEnd EventType = "phase_end"
	// EventHypothesisAdded records a new board hypothesis.
	EventHypothesisAdded EventType = "hypothesis_added"
	// EventChallenge records a challenge attached to a hypothesis.
	EventChallenge EventType = "challenge"
	// EventRefine records an in-place refinement.
	EventRefine EventType = "refine"
	// EventEvolve records a hypothesis superseded by a successor.
	EventEvolve EventType = "evolve"
	// EventAccept records a hypothesis accepted during synthesis.
	EventAccept EventType = "accept"
	// EventReject records a rejected hypothesis.
	EventReject EventType = "reject"
	// EventSessionCompleted records a stored synthesis result.
	EventSessionCompleted EventType = "session_completed"
	// EventSessionFailed records an aborted run.
	EventSessionFailed EventType = "session_failed"
)

// Event is one append-only entry in the engine-level log. The log is
// independent of any session's board: it is shared across sessions,
// queryable by session id and never rewritten.
type Event struct {
	ID         string         `json:"id"`
	SessionID  string         `json:"session_id"`
	Type       EventType      `json:"type"`
	Phase      Phase          `json:"phase,omitempty"`
	Round      int            `json:"round"`
	Hypothesis string         `json:"hypothesis,omitempty"`
	Agent      string         `json:"agent,omitempty"`
	Counts     map[string]int `json:"counts,omitempty"`
	Duration   time.Duration  `json:"duration,omitempty"`
	Message    string         `json:"message,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

// NewEvent constructs a log entry bound to a session.
func NewEvent(sessionID string, t EventType) Event {
	return Event{ID: NewID(), SessionID: sessionID, Type: t, Timestamp: time.Now().UTC()}
}

// EventLog is the engine-level append-only event sink. Only the
// orchestrator path appends; reads return copies.
type EventLog interface {
	Append(ev Event)
	BySession(sessionID string) []Event
	All(limit int) []Event
}
