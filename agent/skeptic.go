package agent

import (
	"context"
	"strings"

	"github.com/cognovo/differential/core"
)

// evidenceMarkers suggest a claim is grounded in something observable.
var evidenceMarkers = []string{"because", "measured", "observed", "metric", "data", "shows", "profiling"}

// SkepticAgent contributes a single devil's-advocate hypothesis and
// challenges any confident claim stated without supporting evidence.
type SkepticAgent struct {
	BaseAgent
}

var _ core.Agent = (*SkepticAgent)(nil)

// NewSkepticAgent returns the default adversarial strategy.
func NewSkepticAgent() *SkepticAgent {
	return &SkepticAgent{
		BaseAgent: NewBaseAgent("skeptic", "critic",
			"Questions unsupported claims and surfaces hidden assumptions"),
	}
}

func (a *SkepticAgent) GenerateHypotheses(_ context.Context, _ string, _ map[string]string) ([]core.Seed, error) {
	return []core.Seed{{
		Content:    "The stated problem may be a symptom of a deeper cause not yet named",
		Confidence: confidence(0.35),
		Domain:     "risk",
	}}, nil
}

func (a *SkepticAgent) ChallengeHypotheses(_ context.Context, live []core.Hypothesis, _ string) ([]core.ChallengeProposal, error) {
	var out []core.ChallengeProposal
	for _, h := range live {
		if h.Source == a.Name() || h.Confidence <= 0.5 {
			continue
		}
		if !hasEvidence(h.Content) {
			out = append(out, core.ChallengeProposal{
				HypothesisID: h.ID,
				Body:         "Asserted with high confidence but no supporting evidence is cited",
			})
		}
	}
	return out, nil
}

func (a *SkepticAgent) RefineHypothesis(_ context.Context, h core.Hypothesis, _ []core.Challenge) (core.RefinementProposal, error) {
	return core.RefinementProposal{
		Content: h.Content,
		Notes:   "Flagged as pending evidence; confidence should not rise until data is cited",
	}, nil
}

func hasEvidence(content string) bool {
	lower := strings.ToLower(content)
	for _, m := range evidenceMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}
