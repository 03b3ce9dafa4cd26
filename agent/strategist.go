package agent

import (
	"context"
	"fmt"

	"github.com/cognovo/differential/core"
)

// MetadataNextAction marks a hypothesis as carrying a concrete follow-up
// task. The synthesis phase promotes these into the action list.
const MetadataNextAction = core.MetadataNextAction

// StrategistAgent turns the problem into concrete first steps. Its
// hypotheses carry next_action metadata so synthesis can surface them.
type StrategistAgent struct {
	BaseAgent
}

var _ core.Agent = (*StrategistAgent)(nil)

// NewStrategistAgent returns the default implementation planning strategy.
func NewStrategistAgent() *StrategistAgent {
	return &StrategistAgent{
		BaseAgent: NewBaseAgent("implementation-strategist", "planner",
			"Converts hypotheses into actionable first steps"),
	}
}

func (a *StrategistAgent) GenerateHypotheses(_ context.Context, input string, _ map[string]string) ([]core.Seed, error) {
	terms := keyTerms(input)
	if len(terms) == 0 {
		return nil, nil
	}
	subject := terms[0]
	return []core.Seed{{
		Content:    fmt.Sprintf("A small prototype around %q would validate the riskiest assumption first", subject),
		Confidence: confidence(0.45),
		Domain:     "implementation",
		Metadata: map[string]string{
			MetadataNextAction: fmt.Sprintf("Prototype the %s path and measure the outcome", subject),
		},
	}}, nil
}

func (a *StrategistAgent) ChallengeHypotheses(_ context.Context, _ []core.Hypothesis, _ string) ([]core.ChallengeProposal, error) {
	return nil, nil
}

func (a *StrategistAgent) RefineHypothesis(_ context.Context, h core.Hypothesis, challenges []core.Challenge) (core.RefinementProposal, error) {
	return core.RefinementProposal{
		Content: h.Content,
		Notes:   fmt.Sprintf("Converted %d objections into validation tasks for the prototype", len(challenges)),
	}, nil
}

// DefaultRoster returns the built-in heuristic strategies in their
// conventional order. The integrator is deliberately not first so that
// refiner lookup exercises the role fallback.
func DefaultRoster() []core.Agent {
	return []core.Agent{
		NewStructuralAgent(),
		NewPatternAgent(),
		NewSkepticAgent(),
		NewIntegratorAgent(),
		NewStrategistAgent(),
	}
}
