package engine

import (
	"fmt"
	"time"

	"github.com/cognovo/differential/core"
)

// buildSynthesis assembles the structured result from the terminal board
// state: accepted hypotheses grouped by domain, lifecycle totals, process
// metadata, the evolution graph, derived insights and recommended actions.
func (e *Engine) buildSynthesis(s *core.Session, accepted []core.Hypothesis) *core.Synthesis {
	architecture := map[string][]core.HypothesisSummary{}
	for _, h := range accepted {
		domain := h.Domain
		if domain == "" {
			domain = "general"
		}
		architecture[domain] = append(architecture[domain], core.HypothesisSummary{
			ID:         h.ID,
			Content:    h.Content,
			Source:     h.Source,
			Confidence: h.Confidence,
		})
	}

	boardCounts := s.Board.Counts()
	summary := core.SynthesisSummary{
		Generated: s.Board.Len(),
		Accepted:  len(accepted),
		Rejected:  boardCounts[string(core.StatusRejected)],
	}

	durations := map[string]time.Duration{}
	for _, p := range s.Phases() {
		durations[string(p.Phase)] += p.Duration
	}
	process := core.ProcessMetadata{
		Rounds:         s.Round(),
		PhaseDurations: durations,
		Agents:         agentNames(e.agents),
	}

	graph := s.Board.EvolutionGraph()

	return &core.Synthesis{
		SessionID:    s.ID,
		Architecture: architecture,
		Summary:      summary,
		Process:      process,
		Graph:        graph,
		Insights:     buildInsights(s, accepted, graph, e.config.ConvergenceThreshold),
		NextActions:  buildActions(accepted),
	}
}

func agentNames(agents []core.Agent) []string {
	names := make([]string, 0, len(agents))
	for _, a := range agents {
		names = append(names, a.Name())
	}
	return names
}

// buildInsights derives a short narrative from the run outcome.
func buildInsights(s *core.Session, accepted []core.Hypothesis, graph core.Graph, threshold float64) []string {
	var insights []string

	insights = append(insights, fmt.Sprintf("%d of %d hypotheses survived the differential", len(accepted), s.Board.Len()))

	if len(accepted) > 0 {
		top := accepted[0]
		insights = append(insights, fmt.Sprintf("Strongest hypothesis (%.0f%% confidence, %s): %s", top.Confidence*100, top.Source, top.Content))

		mean := 0.0
		for _, h := range accepted {
			mean += h.Confidence
		}
		mean /= float64(len(accepted))
		if mean >= threshold {
			insights = append(insights, fmt.Sprintf("Consensus reached: mean accepted confidence %.0f%% clears the %.0f%% bar", mean*100, threshold*100))
		} else {
			insights = append(insights, fmt.Sprintf("No consensus: mean accepted confidence %.0f%% falls below the %.0f%% bar", mean*100, threshold*100))
		}
	}

	if n := len(graph.Edges); n > 0 {
		insights = append(insights, fmt.Sprintf("%d hypotheses evolved under challenge; see the evolution graph for lineage", n))
	}

	challenges := 0
	for _, h := range s.Board.All() {
		challenges += len(h.Challenges)
	}
	if challenges > 0 {
		insights = append(insights, fmt.Sprintf("%d challenges were raised across %d rounds", challenges, s.Round()))
	} else {
		insights = append(insights, "No challenges were raised; consider a more adversarial roster")
	}

	return insights
}

// buildActions promotes next_action metadata from the accepted hypotheses
// into the prioritized action list, ordered strongest hypothesis first.
func buildActions(accepted []core.Hypothesis) []core.Action {
	var actions []core.Action
	for _, h := range accepted {
		desc, ok := h.Metadata[core.MetadataNextAction]
		if !ok || desc == "" {
			continue
		}
		actions = append(actions, core.Action{Description: desc, Priority: priorityFor(h.Confidence)})
	}
	if len(actions) == 0 {
		actions = append(actions, core.Action{
			Description: "Validate the accepted hypotheses against observed data",
			Priority:    core.PriorityOngoing,
		})
	}
	return actions
}

// priorityFor maps surviving confidence onto the action priority ladder.
func priorityFor(confidence float64) string {
	switch {
	case confidence >= 0.8:
		return core.PriorityImmediate
	case confidence >= 0.6:
		return core.PriorityShortTerm
	case confidence >= 0.4:
		return core.PriorityLongTerm
	default:
		return core.PriorityOngoing
	}
}
