package agent

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cognovo/differential/core"
	"github.com/cognovo/differential/model"
)

// Persona is the data-only definition of an LLM-backed strategy. Two
// ModelAgents differ only by persona; the orchestrator never inspects it.
type Persona struct {
	Name         string
	Role         string
	Description  string
	SystemPrompt string
	Temperature  float64
}

// ModelAgent implements the differential operations by prompting a
// model.Model and parsing lightweight line-oriented markup out of the reply:
//
//	<claim> [Confidence: 72%] [Domain: performance]
//	Action: <follow-up task for the preceding claim>
//	Challenge 2: <objection against the second listed hypothesis>
//	Notes: <refinement rationale>
//
// Lines that do not parse are skipped rather than failing the phase.
type ModelAgent struct {
	BaseAgent
	model   model.Model
	persona Persona
}

var _ core.Agent = (*ModelAgent)(nil)

// NewModelAgent wraps a model with a persona.
func NewModelAgent(m model.Model, persona Persona) *ModelAgent {
	return &ModelAgent{
		BaseAgent: NewBaseAgent(persona.Name, persona.Role, persona.Description),
		model:     m,
		persona:   persona,
	}
}

func (a *ModelAgent) GenerateHypotheses(ctx context.Context, input string, sessionContext map[string]string) ([]core.Seed, error) {
	var b strings.Builder
	b.WriteString("Propose hypotheses about the following problem, one per line.\n")
	b.WriteString("End each with a confidence tag like [Confidence: 70%] and optionally [Domain: <area>].\n")
	b.WriteString("If a hypothesis implies a concrete next step, add a line starting with \"Action:\" after it.\n\n")
	fmt.Fprintf(&b, "Problem: %s\n", input)
	for _, k := range sortedKeys(sessionContext) {
		fmt.Fprintf(&b, "Context %s: %s\n", k, sessionContext[k])
	}

	resp, err := a.complete(ctx, b.String())
	if err != nil {
		return nil, err
	}
	return parseSeeds(resp.Text), nil
}

func (a *ModelAgent) ChallengeHypotheses(ctx context.Context, live []core.Hypothesis, input string) ([]core.ChallengeProposal, error) {
	if len(live) == 0 {
		return nil, nil
	}
	var b strings.Builder
	b.WriteString("Review the numbered hypotheses below and raise objections where warranted.\n")
	b.WriteString("Write each objection as \"Challenge <number>: <objection>\". Raise none if all hold.\n\n")
	fmt.Fprintf(&b, "Problem: %s\n\nHypotheses:\n", input)
	for i, h := range live {
		fmt.Fprintf(&b, "%d. %s (confidence %.0f%%, by %s)\n", i+1, h.Content, h.Confidence*100, h.Source)
	}

	resp, err := a.complete(ctx, b.String())
	if err != nil {
		return nil, err
	}

	var out []core.ChallengeProposal
	for _, line := range strings.Split(resp.Text, "\n") {
		idx, body, ok := parseChallengeLine(line)
		if !ok || idx < 1 || idx > len(live) {
			continue
		}
		target := live[idx-1]
		if target.Source == a.Name() {
			continue
		}
		out = append(out, core.ChallengeProposal{HypothesisID: target.ID, Body: body})
	}
	return out, nil
}

func (a *ModelAgent) RefineHypothesis(ctx context.Context, h core.Hypothesis, challenges []core.Challenge) (core.RefinementProposal, error) {
	var b strings.Builder
	b.WriteString("Revise the hypothesis below to address the objections.\n")
	b.WriteString("Reply with the revised claim, then a line starting with \"Notes:\" explaining the change.\n")
	b.WriteString("If the claim survives unchanged, repeat it verbatim.\n\n")
	fmt.Fprintf(&b, "Hypothesis: %s\n\nObjections:\n", h.Content)
	for _, c := range challenges {
		fmt.Fprintf(&b, "- %s (%s)\n", c.Body, c.Agent)
	}

	resp, err := a.complete(ctx, b.String())
	if err != nil {
		return core.RefinementProposal{}, err
	}

	content, notes := splitNotes(resp.Text)
	if content == "" {
		content = h.Content
	}
	if notes == "" {
		notes = "Revised in light of the objections"
	}
	return core.RefinementProposal{Content: content, Notes: notes}, nil
}

func (a *ModelAgent) complete(ctx context.Context, prompt string) (model.Response, error) {
	return a.model.Complete(ctx, model.Request{
		System:      a.persona.SystemPrompt,
		Prompt:      prompt,
		Temperature: a.persona.Temperature,
	})
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// parseSeeds extracts hypothesis seeds from line-oriented model output.
func parseSeeds(text string) []core.Seed {
	var seeds []core.Seed
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if action, ok := strings.CutPrefix(line, "Action:"); ok {
			if n := len(seeds); n > 0 {
				if seeds[n-1].Metadata == nil {
					seeds[n-1].Metadata = map[string]string{}
				}
				seeds[n-1].Metadata[MetadataNextAction] = strings.TrimSpace(action)
			}
			continue
		}
		line = strings.TrimLeft(line, "-*0123456789. ")
		if line == "" {
			continue
		}
		seed := core.Seed{Content: line}
		if content, conf, ok := extractTag(seed.Content, "confidence"); ok {
			seed.Content = content
			if v, err := parsePercent(conf); err == nil {
				seed.Confidence = confidence(v)
			}
		}
		if content, domain, ok := extractTag(seed.Content, "domain"); ok {
			seed.Content = content
			seed.Domain = strings.ToLower(domain)
		}
		if seed.Content != "" {
			seeds = append(seeds, seed)
		}
	}
	return seeds
}

// extractTag removes a "[key: value]" tag from text, case-insensitive on the
// key, returning the cleaned text and the raw value.
func extractTag(text, key string) (string, string, bool) {
	lower := strings.ToLower(text)
	marker := "[" + key + ":"
	start := strings.Index(lower, marker)
	if start < 0 {
		return text, "", false
	}
	end := strings.Index(text[start:], "]")
	if end < 0 {
		return text, "", false
	}
	end += start
	value := strings.TrimSpace(text[start+len(marker) : end])
	cleaned := strings.TrimSpace(text[:start] + text[end+1:])
	return cleaned, value, true
}

// parsePercent accepts "72%", "72", or "0.72".
func parsePercent(s string) (float64, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if v > 1 {
		v /= 100
	}
	return v, nil
}

// parseChallengeLine parses "Challenge <n>: <body>" or "<n>: <body>".
func parseChallengeLine(line string) (int, string, bool) {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "Challenge ")
	num, body, found := strings.Cut(line, ":")
	if !found {
		return 0, "", false
	}
	idx, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil {
		return 0, "", false
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return 0, "", false
	}
	return idx, body, true
}

// splitNotes separates a refinement reply into revised content and the
// "Notes:" rationale.
func splitNotes(text string) (content, notes string) {
	var contentLines []string
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if n, ok := strings.CutPrefix(line, "Notes:"); ok {
			notes = strings.TrimSpace(n)
			continue
		}
		contentLines = append(contentLines, line)
	}
	return strings.Join(contentLines, " "), notes
}
