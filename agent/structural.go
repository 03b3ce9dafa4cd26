package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/cognovo/differential/core"
)

const maxStructuralSeeds = 3

// StructuralAgent decomposes the problem statement into its constituent
// parts and proposes one hypothesis per part. It challenges hypotheses that
// have drifted away from the vocabulary of the original input.
type StructuralAgent struct {
	BaseAgent
}

var _ core.Agent = (*StructuralAgent)(nil)

// NewStructuralAgent returns the default structural decomposition strategy.
func NewStructuralAgent() *StructuralAgent {
	return &StructuralAgent{
		BaseAgent: NewBaseAgent("structural-analyst", "analyst",
			"Decomposes the problem into structural components"),
	}
}

func (a *StructuralAgent) GenerateHypotheses(_ context.Context, input string, _ map[string]string) ([]core.Seed, error) {
	sentences := splitSentences(input)
	if len(sentences) > maxStructuralSeeds {
		sentences = sentences[:maxStructuralSeeds]
	}
	seeds := make([]core.Seed, 0, len(sentences))
	for _, s := range sentences {
		seeds = append(seeds, core.Seed{
			Content:    fmt.Sprintf("The problem has a distinct component: %s", s),
			Confidence: confidence(0.55),
			Domain:     "structure",
		})
	}
	return seeds, nil
}

func (a *StructuralAgent) ChallengeHypotheses(_ context.Context, live []core.Hypothesis, input string) ([]core.ChallengeProposal, error) {
	var out []core.ChallengeProposal
	for _, h := range live {
		if h.Source == a.Name() {
			continue
		}
		if termOverlap(h.Content, input) < 0.2 {
			out = append(out, core.ChallengeProposal{
				HypothesisID: h.ID,
				Body:         "Shares little vocabulary with the stated problem; it may address a different question",
			})
		}
	}
	return out, nil
}

func (a *StructuralAgent) RefineHypothesis(_ context.Context, h core.Hypothesis, challenges []core.Challenge) (core.RefinementProposal, error) {
	terms := keyTerms(h.Content)
	anchor := ""
	if len(terms) > 0 {
		anchor = terms[len(terms)-1]
	}
	for _, c := range challenges {
		if strings.Contains(c.Body, "different question") && anchor != "" {
			return core.RefinementProposal{
				Content: fmt.Sprintf("%s (scoped to %s)", h.Content, anchor),
				Notes:   "Re-anchored the claim to the problem vocabulary",
			}, nil
		}
	}
	return core.RefinementProposal{
		Content: h.Content,
		Notes:   "Clarified component boundaries without changing the claim",
	}, nil
}
