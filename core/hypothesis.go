package core

import (
	"time"

	"github.com/google/uuid"
)

// Status describes where a hypothesis sits in its lifecycle. Evolved,
// accepted and rejected are terminal: a hypothesis in one of those states
// must never be mutated again.
type Status string

const (
	// StatusActive marks a freshly externalized or evolve-successor hypothesis.
	StatusActive Status = "active"
	// StatusChallenged marks a hypothesis with at least one unresolved challenge.
	StatusChallenged Status = "challenged"
	// StatusRefined marks a hypothesis revised in place after challenges.
	StatusRefined Status = "refined"
	// StatusEvolved marks a hypothesis superseded by a content-revised successor.
	StatusEvolved Status = "evolved"
	// StatusAccepted marks a hypothesis selected during synthesis.
	StatusAccepted Status = "accepted"
	// StatusRejected marks a hypothesis explicitly discarded.
	StatusRejected Status = "rejected"
)

// Terminal reports whether the status permits no further mutation.
func (s Status) Terminal() bool {
	return s == StatusEvolved || s == StatusAccepted || s == StatusRejected
}

// Challenge is a single objection recorded against a hypothesis.
type Challenge struct {
	ID        string    `json:"id"`
	Agent     string    `json:"agent"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
}

// Refinement is a single in-place revision note recorded on a hypothesis.
type Refinement struct {
	ID        string    `json:"id"`
	Agent     string    `json:"agent"`
	Notes     string    `json:"notes"`
	Timestamp time.Time `json:"timestamp"`
}

// Hypothesis is a single versioned claim owned by exactly one board.
//
// Confidence is clamped into [0,1] on every update. Once Status is terminal
// the board rejects all further mutation. An evolved hypothesis records
// exactly one successor id.
type Hypothesis struct {
	ID          string            `json:"id"`
	Content     string            `json:"content"`
	Source      string            `json:"source"`
	Domain      string            `json:"domain,omitempty"`
	Confidence  float64           `json:"confidence"`
	Status      Status            `json:"status"`
	Challenges  []Challenge       `json:"challenges,omitempty"`
	Refinements []Refinement      `json:"refinements,omitempty"`
	SuccessorID string            `json:"successor_id,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Created     time.Time         `json:"created"`
	Updated     time.Time         `json:"updated"`

	// seq is the board insertion sequence, used as the stable ranking
	// tiebreak. Assigned once by the owning board.
	seq int
}

// Seed is an agent-proposed candidate hypothesis produced during
// externalization. Confidence is optional; unset seeds default to 0.5.
type Seed struct {
	Content    string            `json:"content"`
	Confidence *float64          `json:"confidence,omitempty"`
	Domain     string            `json:"domain,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// ChallengeProposal is an agent-issued objection against a board hypothesis.
type ChallengeProposal struct {
	HypothesisID string `json:"hypothesis_id"`
	Body         string `json:"body"`
}

// RefinementProposal is an agent-proposed revision of a single hypothesis.
// If Content differs from the current content the board evolves the
// hypothesis; otherwise it is refined in place.
type RefinementProposal struct {
	Content string `json:"content"`
	Notes   string `json:"notes"`
}

// NewID generates a new opaque unique identifier.
func NewID() string { return uuid.NewString() }

// ClampConfidence bounds a confidence value into [0,1].
func ClampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// Clone returns a deep copy safe for handing to agents or API callers.
func (h *Hypothesis) Clone() Hypothesis {
	clone := *h
	clone.Challenges = make([]Challenge, len(h.Challenges))
	copy(clone.Challenges, h.Challenges)
	clone.Refinements = make([]Refinement, len(h.Refinements))
	copy(clone.Refinements, h.Refinements)
	clone.Metadata = make(map[string]string, len(h.Metadata))
	for k, v := range h.Metadata {
		clone.Metadata[k] = v
	}
	return clone
}
