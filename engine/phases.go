package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/cognovo/differential/core"
)

// isTimeout distinguishes a per-call deadline hit from a cancellation of
// the whole run: the former is a skipped contribution, the latter is fatal.
func isTimeout(parent context.Context, err error) bool {
	return errors.Is(err, context.DeadlineExceeded) && parent.Err() == nil
}

// externalize fans GenerateHypotheses out to every agent concurrently and
// seeds the board with the results in roster order.
func (e *Engine) externalize(ctx context.Context, s *core.Session) (map[string]int, error) {
	type result struct {
		seeds []core.Seed
		dur   time.Duration
		err   error
	}
	results := make([]result, len(e.agents))

	var wg sync.WaitGroup
	for i, a := range e.agents {
		wg.Add(1)
		go func(i int, a core.Agent) {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(ctx, e.config.AgentTimeout)
			defer cancel()
			start := time.Now()
			seeds, err := a.GenerateHypotheses(callCtx, s.Input, s.Context)
			results[i] = result{seeds: seeds, dur: time.Since(start), err: err}
		}(i, a)
	}
	wg.Wait()

	counts := map[string]int{"hypotheses": 0}
	for i, a := range e.agents {
		r := results[i]
		e.logAgentCall(s.ID, a.Name(), "generate", r.dur, len(r.seeds), r.err)
		if r.err != nil {
			if isTimeout(ctx, r.err) {
				e.logger.Warn("agent timed out session_id=%s agent=%s op=generate", s.ID, a.Name())
				continue
			}
			return nil, &core.AgentError{Agent: a.Name(), Phase: core.PhaseExternalization, Err: r.err}
		}
		for _, seed := range r.seeds {
			h := s.Board.Add(seed, a.Name())
			ev := core.NewEvent(s.ID, core.EventHypothesisAdded)
			ev.Phase = core.PhaseExternalization
			ev.Hypothesis = h.ID
			ev.Agent = a.Name()
			e.events.Append(ev)
			e.logMutation(s.ID, "add", h.ID, h.Confidence)
			counts["hypotheses"]++
		}
	}
	return counts, nil
}

// challengePhase collects objections against the live set from every agent
// concurrently, applies them in roster order and deducts the per-round
// confidence penalty from each freshly challenged hypothesis.
func (e *Engine) challengePhase(ctx context.Context, s *core.Session, round int) (map[string]int, error) {
	live := s.Board.Live()
	counts := map[string]int{"challenges": 0, "targets": 0}
	if len(live) == 0 {
		return counts, nil
	}

	type result struct {
		proposals []core.ChallengeProposal
		dur       time.Duration
		err       error
	}
	results := make([]result, len(e.agents))

	var wg sync.WaitGroup
	for i, a := range e.agents {
		wg.Add(1)
		go func(i int, a core.Agent) {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(ctx, e.config.AgentTimeout)
			defer cancel()
			start := time.Now()
			proposals, err := a.ChallengeHypotheses(callCtx, live, s.Input)
			results[i] = result{proposals: proposals, dur: time.Since(start), err: err}
		}(i, a)
	}
	wg.Wait()

	var challengedOrder []string
	challenged := map[string]bool{}
	for i, a := range e.agents {
		r := results[i]
		e.logAgentCall(s.ID, a.Name(), "challenge", r.dur, len(r.proposals), r.err)
		if r.err != nil {
			if isTimeout(ctx, r.err) {
				e.logger.Warn("agent timed out session_id=%s agent=%s op=challenge", s.ID, a.Name())
				continue
			}
			return nil, &core.AgentError{Agent: a.Name(), Phase: core.PhaseChallenge, Round: round, Err: r.err}
		}
		for _, p := range r.proposals {
			if _, err := s.Board.Challenge(p.HypothesisID, a.Name(), p.Body); err != nil {
				e.logger.Warn("challenge dropped session_id=%s agent=%s hypothesis=%s: %v", s.ID, a.Name(), p.HypothesisID, err)
				continue
			}
			ev := core.NewEvent(s.ID, core.EventChallenge)
			ev.Phase = core.PhaseChallenge
			ev.Round = round
			ev.Hypothesis = p.HypothesisID
			ev.Agent = a.Name()
			ev.Message = p.Body
			e.events.Append(ev)
			counts["challenges"]++
			if !challenged[p.HypothesisID] {
				challenged[p.HypothesisID] = true
				challengedOrder = append(challengedOrder, p.HypothesisID)
			}
		}
	}
	counts["targets"] = len(challengedOrder)

	// One penalty per hypothesis per round, scaled by its accumulated
	// challenge count up to the cap.
	for _, id := range challengedOrder {
		h, err := s.Board.Get(id)
		if err != nil {
			continue
		}
		n := len(h.Challenges)
		if n > challengePenaltyCap {
			n = challengePenaltyCap
		}
		conf, err := s.Board.AdjustConfidence(id, -e.config.ChallengePenalty*float64(n))
		if err != nil {
			continue
		}
		e.logMutation(s.ID, "penalty", id, conf)
	}
	return counts, nil
}

// refinePhase revises every challenged hypothesis through its refiner:
// the original author when still in the roster, otherwise the integrator,
// otherwise the first roster member. A content-changing proposal evolves
// the hypothesis; an unchanged one refines it in place. Either way the
// survivor earns the refine boost.
func (e *Engine) refinePhase(ctx context.Context, s *core.Session, round int) (map[string]int, error) {
	counts := map[string]int{"refined": 0, "evolved": 0}

	for _, h := range s.Board.ByStatus(core.StatusChallenged) {
		refiner := e.refinerFor(h.Source)

		callCtx, cancel := context.WithTimeout(ctx, e.config.AgentTimeout)
		start := time.Now()
		proposal, err := refiner.RefineHypothesis(callCtx, h, h.Challenges)
		cancel()
		e.logAgentCall(s.ID, refiner.Name(), "refine", time.Since(start), 1, err)
		if err != nil {
			if isTimeout(ctx, err) {
				e.logger.Warn("agent timed out session_id=%s agent=%s op=refine hypothesis=%s", s.ID, refiner.Name(), h.ID)
				continue
			}
			return nil, &core.AgentError{Agent: refiner.Name(), Phase: core.PhaseRefine, Round: round, Err: err}
		}

		content := strings.TrimSpace(proposal.Content)
		if content != "" && content != h.Content {
			reason := proposal.Notes
			if reason == "" {
				reason = "revised after challenges"
			}
			successor, err := s.Board.Evolve(h.ID, content, reason)
			if err != nil {
				e.logger.Warn("evolve dropped session_id=%s hypothesis=%s: %v", s.ID, h.ID, err)
				continue
			}
			conf, _ := s.Board.AdjustConfidence(successor.ID, e.config.RefineBoost)
			ev := core.NewEvent(s.ID, core.EventEvolve)
			ev.Phase = core.PhaseRefine
			ev.Round = round
			ev.Hypothesis = h.ID
			ev.Agent = refiner.Name()
			ev.Message = reason
			e.events.Append(ev)
			e.logMutation(s.ID, "evolve", successor.ID, conf)
			counts["evolved"]++
			continue
		}

		if err := s.Board.Refine(h.ID, refiner.Name(), proposal.Notes); err != nil {
			e.logger.Warn("refine dropped session_id=%s hypothesis=%s: %v", s.ID, h.ID, err)
			continue
		}
		conf, _ := s.Board.AdjustConfidence(h.ID, e.config.RefineBoost)
		ev := core.NewEvent(s.ID, core.EventRefine)
		ev.Phase = core.PhaseRefine
		ev.Round = round
		ev.Hypothesis = h.ID
		ev.Agent = refiner.Name()
		ev.Message = proposal.Notes
		e.events.Append(ev)
		e.logMutation(s.ID, "refine", h.ID, conf)
		counts["refined"]++
	}
	return counts, nil
}

// refinerFor resolves which roster member revises a hypothesis.
func (e *Engine) refinerFor(source string) core.Agent {
	for _, a := range e.agents {
		if a.Name() == source {
			return a
		}
	}
	for _, a := range e.agents {
		if a.Role() == core.RoleIntegrator {
			return a
		}
	}
	return e.agents[0]
}

// synthesize accepts the top ranked hypotheses, rejects the remaining live
// ones and stores the structured result on the session.
func (e *Engine) synthesize(_ context.Context, s *core.Session) (map[string]int, error) {
	var accepted []core.Hypothesis
	for _, h := range s.Board.Top(e.config.TopK) {
		if h.Status != core.StatusAccepted {
			if err := s.Board.Accept(h.ID); err != nil {
				e.logger.Warn("accept dropped session_id=%s hypothesis=%s: %v", s.ID, h.ID, err)
				continue
			}
			ev := core.NewEvent(s.ID, core.EventAccept)
			ev.Phase = core.PhaseSynthesis
			ev.Round = s.Round()
			ev.Hypothesis = h.ID
			e.events.Append(ev)
			e.logMutation(s.ID, "accept", h.ID, h.Confidence)
		}
		h.Status = core.StatusAccepted
		accepted = append(accepted, h)
	}

	rejected := 0
	for _, h := range s.Board.Live() {
		if err := s.Board.Reject(h.ID); err != nil {
			continue
		}
		ev := core.NewEvent(s.ID, core.EventReject)
		ev.Phase = core.PhaseSynthesis
		ev.Round = s.Round()
		ev.Hypothesis = h.ID
		e.events.Append(ev)
		e.logMutation(s.ID, "reject", h.ID, h.Confidence)
		rejected++
	}

	result := e.buildSynthesis(s, accepted)
	if err := s.Complete(result); err != nil {
		return nil, err
	}
	return map[string]int{"accepted": len(accepted), "rejected": rejected}, nil
}
