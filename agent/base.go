// Package agent provides concrete reasoning strategies implementing the
// core.Agent capability interface: a default heuristic roster plus a
// ModelAgent backed by an LLM through the model package. Strategy flavor
// (personas, signatures) lives entirely in data; the orchestrator never
// branches on agent identity.
package agent

import "strings"

// BaseAgent bundles the identity surface shared by every strategy. Embed it
// in a concrete implementation supplying the three differential operations.
type BaseAgent struct {
	name        string
	role        string
	description string
}

// NewBaseAgent constructs a BaseAgent with the given identity.
func NewBaseAgent(name, role, description string) BaseAgent {
	return BaseAgent{name: name, role: role, description: description}
}

// Name returns the external identifier recorded as a hypothesis source.
func (b *BaseAgent) Name() string { return b.name }

// Role returns the strategy category, e.g. "integrator".
func (b *BaseAgent) Role() string { return b.role }

// Description returns a short summary of the strategy.
func (b *BaseAgent) Description() string { return b.description }

// splitSentences breaks raw input text into trimmed sentence-like units.
func splitSentences(text string) []string {
	var res []string
	for _, s := range strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n' || r == ';'
	}) {
		if s = strings.TrimSpace(s); s != "" {
			res = append(res, s)
		}
	}
	return res
}

// keyTerms returns lowercased significant words (length > 3) in order of
// first appearance, deduplicated.
func keyTerms(text string) []string {
	seen := map[string]bool{}
	var res []string
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,:;!?()[]\"'")
		if len(w) > 3 && !seen[w] {
			seen[w] = true
			res = append(res, w)
		}
	}
	return res
}

// termOverlap is the fraction of a's terms also present in b's terms.
func termOverlap(a, b string) float64 {
	terms := keyTerms(a)
	if len(terms) == 0 {
		return 0
	}
	other := map[string]bool{}
	for _, w := range keyTerms(b) {
		other[w] = true
	}
	hits := 0
	for _, w := range terms {
		if other[w] {
			hits++
		}
	}
	return float64(hits) / float64(len(terms))
}

func confidence(v float64) *float64 { return &v }
