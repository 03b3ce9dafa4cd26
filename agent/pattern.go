package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/cognovo/differential/core"
)

// patternTable maps trigger keywords to the named solution pattern and the
// domain it belongs to. The table is intentionally small; a deployment can
// substitute a ModelAgent for richer matching.
var patternTable = []struct {
	keyword string
	pattern string
	domain  string
}{
	{"cache", "read-through caching", "performance"},
	{"slow", "hot-path profiling", "performance"},
	{"queue", "asynchronous work queue", "architecture"},
	{"retry", "retry with backoff", "reliability"},
	{"timeout", "deadline propagation", "reliability"},
	{"auth", "token-based authentication", "security"},
	{"scale", "horizontal partitioning", "architecture"},
	{"migrate", "strangler-fig migration", "architecture"},
}

// absoluteWords flag overgeneralized claims worth challenging.
var absoluteWords = map[string]string{
	"always": "typically",
	"never":  "rarely",
	"every":  "most",
	"all":    "most",
	"only":   "primarily",
}

// PatternAgent matches the input against a catalog of known solution
// patterns and pushes back on claims stated in absolutes.
type PatternAgent struct {
	BaseAgent
}

var _ core.Agent = (*PatternAgent)(nil)

// NewPatternAgent returns the default pattern matching strategy.
func NewPatternAgent() *PatternAgent {
	return &PatternAgent{
		BaseAgent: NewBaseAgent("pattern-matcher", "analyst",
			"Maps the problem onto known solution patterns"),
	}
}

func (a *PatternAgent) GenerateHypotheses(_ context.Context, input string, _ map[string]string) ([]core.Seed, error) {
	lower := strings.ToLower(input)
	var seeds []core.Seed
	for _, p := range patternTable {
		if strings.Contains(lower, p.keyword) {
			seeds = append(seeds, core.Seed{
				Content:    fmt.Sprintf("The problem fits the %s pattern", p.pattern),
				Confidence: confidence(0.6),
				Domain:     p.domain,
			})
		}
	}
	return seeds, nil
}

func (a *PatternAgent) ChallengeHypotheses(_ context.Context, live []core.Hypothesis, _ string) ([]core.ChallengeProposal, error) {
	var out []core.ChallengeProposal
	for _, h := range live {
		if h.Source == a.Name() {
			continue
		}
		for _, w := range strings.Fields(strings.ToLower(h.Content)) {
			if _, ok := absoluteWords[strings.Trim(w, ".,:;!?")]; ok {
				out = append(out, core.ChallengeProposal{
					HypothesisID: h.ID,
					Body:         fmt.Sprintf("Overgeneralizes with %q; known counterexamples exist for claims this broad", w),
				})
				break
			}
		}
	}
	return out, nil
}

func (a *PatternAgent) RefineHypothesis(_ context.Context, h core.Hypothesis, challenges []core.Challenge) (core.RefinementProposal, error) {
	content := h.Content
	softened := false
	for _, c := range challenges {
		if !strings.Contains(c.Body, "Overgeneralizes") {
			continue
		}
		for abs, soft := range absoluteWords {
			if replaced := replaceWord(content, abs, soft); replaced != content {
				content = replaced
				softened = true
			}
		}
	}
	if softened {
		return core.RefinementProposal{
			Content: content,
			Notes:   "Softened absolute wording to match observed variance",
		}, nil
	}
	return core.RefinementProposal{
		Content: h.Content,
		Notes:   "Cross-checked against the pattern catalog; no rewording needed",
	}, nil
}

// replaceWord substitutes whole-word, case-insensitive occurrences.
func replaceWord(text, from, to string) string {
	words := strings.Fields(text)
	for i, w := range words {
		if strings.EqualFold(strings.Trim(w, ".,:;!?"), from) {
			words[i] = to
		}
	}
	return strings.Join(words, " ")
}
