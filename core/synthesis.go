package core

import "time"

// HypothesisSummary is the per-hypothesis view embedded in a synthesis.
type HypothesisSummary struct {
	ID         string  `json:"id"`
	Content    string  `json:"content"`
	Source     string  `json:"source"`
	Confidence float64 `json:"confidence"`
}

// SynthesisSummary totals the hypothesis lifecycle outcomes for one run.
type SynthesisSummary struct {
	Generated int `json:"generated"`
	Accepted  int `json:"accepted"`
	Rejected  int `json:"rejected"`
}

// ProcessMetadata records how the run unfolded.
type ProcessMetadata struct {
	Rounds         int                      `json:"rounds"`
	PhaseDurations map[string]time.Duration `json:"phase_durations"`
	Agents         []string                 `json:"agents"`
}

// MetadataNextAction is the hypothesis metadata key whose value is promoted
// into the synthesis action list.
const MetadataNextAction = "next_action"

// Action is a recommended follow-up derived from the accepted hypotheses.
type Action struct {
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// Action priorities, most urgent first.
const (
	PriorityImmediate = "immediate"
	PriorityShortTerm = "short_term"
	PriorityLongTerm  = "long_term"
	PriorityOngoing   = "ongoing"
)

// Synthesis is the terminal structured output of a session run: the
// accepted hypotheses grouped by inferred domain, summary counts, process
// metadata, the full evolution graph, derived insights and an ordered list
// of recommended next actions.
type Synthesis struct {
	SessionID    string                         `json:"session_id"`
	Architecture map[string][]HypothesisSummary `json:"architecture"`
	Summary      SynthesisSummary               `json:"summary"`
	Process      ProcessMetadata                `json:"process"`
	Graph        Graph                          `json:"graph"`
	Insights     []string                       `json:"insights"`
	NextActions  []Action                       `json:"next_actions"`
}
