package core

import "context"

// RoleIntegrator designates the agent used as the refinement fallback when
// no roster member matches a hypothesis's recorded source.
const RoleIntegrator = "integrator"

// Agent is a pluggable reasoning strategy exposing the three differential
// operations. Implementations must be pure with respect to the board:
// they return data and never mutate their inputs, so the orchestrator may
// dispatch them concurrently within a phase without coordination.
//
// The engine works with any non-empty roster, including a single agent;
// roster composition is configuration, not structure.
type Agent interface {
	// Name is the external identifier recorded as a hypothesis source.
	Name() string

	// Role categorizes the strategy (e.g. "integrator" for the refinement
	// fallback). May be empty.
	Role() string

	// Description is a short human-readable summary of the strategy.
	Description() string

	// GenerateHypotheses returns candidate hypothesis seeds for the input
	// thought. An empty result is valid.
	GenerateHypotheses(ctx context.Context, input string, sessionContext map[string]string) ([]Seed, error)

	// ChallengeHypotheses returns zero or more objections against any
	// subset of the given live hypotheses.
	ChallengeHypotheses(ctx context.Context, live []Hypothesis, input string) ([]ChallengeProposal, error)

	// RefineHypothesis returns a single proposed revision of a hypothesis
	// in light of its recorded challenges.
	RefineHypothesis(ctx context.Context, h Hypothesis, challenges []Challenge) (RefinementProposal, error)
}

// AgentInfo is the introspection view of a roster member exposed through
// the API boundary.
type AgentInfo struct {
	Name        string `json:"name"`
	Role        string `json:"role,omitempty"`
	Description string `json:"description,omitempty"`
}
