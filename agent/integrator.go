package agent

import (
	"context"
	"fmt"

	"github.com/cognovo/differential/core"
)

// IntegratorAgent carries the "integrator" role: it is the preferred
// fallback refiner when the original author of a hypothesis is not in the
// roster. It contributes an intent-level hypothesis of its own and never
// challenges.
type IntegratorAgent struct {
	BaseAgent
}

var _ core.Agent = (*IntegratorAgent)(nil)

// NewIntegratorAgent returns the default synthesis strategy.
func NewIntegratorAgent() *IntegratorAgent {
	return &IntegratorAgent{
		BaseAgent: NewBaseAgent("synthesizer", core.RoleIntegrator,
			"Reconciles competing hypotheses into a coherent view"),
	}
}

func (a *IntegratorAgent) GenerateHypotheses(_ context.Context, input string, _ map[string]string) ([]core.Seed, error) {
	sentences := splitSentences(input)
	if len(sentences) == 0 {
		return nil, nil
	}
	return []core.Seed{{
		Content:    fmt.Sprintf("The underlying intent is: %s", sentences[0]),
		Confidence: confidence(0.5),
		Domain:     "intent",
	}}, nil
}

func (a *IntegratorAgent) ChallengeHypotheses(_ context.Context, _ []core.Hypothesis, _ string) ([]core.ChallengeProposal, error) {
	return nil, nil
}

func (a *IntegratorAgent) RefineHypothesis(_ context.Context, h core.Hypothesis, challenges []core.Challenge) (core.RefinementProposal, error) {
	if len(challenges) >= 2 {
		return core.RefinementProposal{
			Content: fmt.Sprintf("%s, with the noted objections addressed", h.Content),
			Notes:   fmt.Sprintf("Reconciled %d objections into a narrower claim", len(challenges)),
		}, nil
	}
	return core.RefinementProposal{
		Content: h.Content,
		Notes:   "Objection acknowledged; the claim stands as stated",
	}, nil
}
