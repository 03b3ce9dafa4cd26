// Package engine implements the differential orchestrator: it drives a
// roster of agents through externalization, iterative challenge/refine
// rounds and a final synthesis over a session's hypothesis board.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cognovo/differential/core"
	"github.com/cognovo/differential/eventlog"
	"github.com/cognovo/differential/logging"
	"github.com/cognovo/differential/session"
)

// Config defines tuning parameters for a differential run.
//
// The defaults favor short interactive runs: three rounds with an early
// exit as soon as the board converges. All confidence-related values
// operate on the [0,1] scale.
type Config struct {
	// MaxRounds bounds the number of challenge/refine rounds. Zero skips
	// straight from externalization to synthesis.
	MaxRounds int

	// TopK is the number of ranked hypotheses accepted during synthesis.
	TopK int

	// ConvergenceThreshold ends the rounds early when the mean confidence
	// of the top three hypotheses reaches this value.
	ConvergenceThreshold float64

	// MinRoundChallenges is the challenge count below which a round is
	// considered stabilized, ending the debate early.
	MinRoundChallenges int

	// StabilizationFloor is the minimum top-3 mean confidence required
	// before a quiet round may end the debate. Zero accepts any level.
	StabilizationFloor float64

	// AgentTimeout bounds each individual agent call. A timed-out call
	// contributes nothing to its phase but does not fail the run.
	AgentTimeout time.Duration

	// ChallengePenalty is the per-challenge confidence deduction applied
	// once per round to each freshly challenged hypothesis, capped at
	// three challenges.
	ChallengePenalty float64

	// RefineBoost is the confidence reward applied when a hypothesis
	// survives refinement.
	RefineBoost float64
}

// DefaultConfig provides the standard differential tuning.
var DefaultConfig = Config{
	MaxRounds:            3,
	TopK:                 5,
	ConvergenceThreshold: 0.8,
	MinRoundChallenges:   3,
	StabilizationFloor:   0,
	AgentTimeout:         30 * time.Second,
	ChallengePenalty:     0.1,
	RefineBoost:          0.05,
}

// challengePenaltyCap bounds how many of a hypothesis's accumulated
// challenges count toward the per-round penalty.
const challengePenaltyCap = 3

// Options configures an Engine instance using the functional options
// pattern. All services have in-memory defaults suitable for development
// and testing.
type Options struct {
	// Config contains the run tuning parameters. Defaults to DefaultConfig.
	Config Config

	// Agents is the ordered roster. At least one agent is required; roster
	// order is the tiebreak for refiner fallback.
	Agents []core.Agent

	// SessionStore manages session state. Defaults to in-memory.
	SessionStore core.SessionStore

	// EventLog receives the append-only run log. Defaults to in-memory.
	EventLog core.EventLog

	// Logger provides structured logging. Defaults to NoOp.
	Logger logging.Logger
}

// WithConfig overrides the run tuning parameters.
func WithConfig(cfg Config) func(o *Options) {
	return func(o *Options) { o.Config = cfg }
}

// WithAgents sets the ordered agent roster.
func WithAgents(agents ...core.Agent) func(o *Options) {
	return func(o *Options) { o.Agents = agents }
}

// WithSessionStore overrides the session store.
func WithSessionStore(store core.SessionStore) func(o *Options) {
	return func(o *Options) { o.SessionStore = store }
}

// WithEventLog overrides the event log.
func WithEventLog(log core.EventLog) func(o *Options) {
	return func(o *Options) { o.EventLog = log }
}

// WithLogger overrides the logger.
func WithLogger(logger logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = logger }
}

// Engine coordinates differential sessions end to end. It owns no
// hypothesis state of its own: every hypothesis lives on the board of the
// session being run, and every run appends to the shared event log.
//
// Concurrency model:
//   - Within a phase, agent calls fan out concurrently and results are
//     applied to the board sequentially in roster order, keeping runs
//     deterministic for a deterministic roster.
//   - A session is mutated only by the run that owns it; concurrent reads
//     through the store remain safe.
type Engine struct {
	config   Config
	agents   []core.Agent
	sessions core.SessionStore
	events   core.EventLog
	logger   logging.Logger
}

// New creates an Engine. The roster must contain at least one agent; the
// engine works with any non-empty roster, including a single agent.
func New(optFns ...func(o *Options)) (*Engine, error) {
	opts := Options{
		Config:       DefaultConfig,
		SessionStore: session.NewInMemoryStore(),
		EventLog:     eventlog.NewInMemoryLog(),
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if len(opts.Agents) == 0 {
		return nil, fmt.Errorf("engine requires at least one agent")
	}
	seen := map[string]bool{}
	for _, a := range opts.Agents {
		if a.Name() == "" {
			return nil, fmt.Errorf("agent with empty name in roster")
		}
		if seen[a.Name()] {
			return nil, fmt.Errorf("duplicate agent name %q in roster", a.Name())
		}
		seen[a.Name()] = true
	}

	return &Engine{
		config:   opts.Config,
		agents:   opts.Agents,
		sessions: opts.SessionStore,
		events:   opts.EventLog,
		logger:   opts.Logger,
	}, nil
}

// Agents returns the introspection view of the roster in order.
func (e *Engine) Agents() []core.AgentInfo {
	infos := make([]core.AgentInfo, 0, len(e.agents))
	for _, a := range e.agents {
		infos = append(infos, core.AgentInfo{Name: a.Name(), Role: a.Role(), Description: a.Description()})
	}
	return infos
}

// CreateSession registers a new session for the given input thought.
// Empty or whitespace-only input is rejected and no session is created.
func (e *Engine) CreateSession(input string, sessionContext map[string]string) (*core.Session, error) {
	if strings.TrimSpace(input) == "" {
		return nil, fmt.Errorf("input must be non-empty text: %w", core.ErrInvalidInput)
	}
	s := core.NewSession(input, sessionContext)
	if err := e.sessions.Put(s); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	e.logger.Info("session created session_id=%s", s.ID)
	return s, nil
}

// Session retrieves a session by id.
func (e *Engine) Session(id string) (*core.Session, error) {
	return e.sessions.Get(id)
}

// Sessions lists sessions, newest first, optionally filtered by status.
// A non-positive limit returns all matches.
func (e *Engine) Sessions(status core.SessionStatus, limit int) []*core.Session {
	return e.sessions.List(status, limit)
}

// Stats returns session counts by status.
func (e *Engine) Stats() map[string]int {
	return e.sessions.Stats()
}

// Events returns the ordered event log for a session.
func (e *Engine) Events(sessionID string) []core.Event {
	return e.events.BySession(sessionID)
}

// AllEvents returns the newest events across every session, up to limit.
// A non-positive limit returns the full log.
func (e *Engine) AllEvents(limit int) []core.Event {
	return e.events.All(limit)
}

// Run executes the full differential pipeline for a session:
// externalization, up to MaxRounds challenge/refine rounds with an early
// exit on convergence, then synthesis.
//
// Running a completed session returns its stored result without re-running.
// Running a failed session returns core.ErrTerminalSession. An agent error
// fails the session with phase and round retained; the board keeps every
// mutation applied before the failure.
func (e *Engine) Run(ctx context.Context, sessionID string) (*core.Synthesis, error) {
	s, err := e.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	switch s.Status() {
	case core.SessionCompleted:
		return s.Result(), nil
	case core.SessionFailed:
		return nil, fmt.Errorf("session %s already failed: %w", s.ID, core.ErrTerminalSession)
	}

	e.logger.Info("run started session_id=%s agents=%d max_rounds=%d", s.ID, len(e.agents), e.config.MaxRounds)

	if err := e.runPipeline(ctx, s); err != nil {
		e.failSession(s, err)
		return nil, err
	}

	result := s.Result()

	ev := core.NewEvent(s.ID, core.EventSessionCompleted)
	ev.Phase = core.PhaseSynthesis
	ev.Round = s.Round()
	e.events.Append(ev)

	e.logger.Info("run completed session_id=%s rounds=%d accepted=%d", s.ID, result.Process.Rounds, result.Summary.Accepted)
	return result, nil
}

func (e *Engine) runPipeline(ctx context.Context, s *core.Session) error {
	if err := e.runPhase(ctx, s, core.PhaseExternalization, 0, e.externalize); err != nil {
		return err
	}

	for round := 1; round <= e.config.MaxRounds; round++ {
		s.SetRound(round)

		var roundChallenges int
		challenge := func(ctx context.Context, s *core.Session) (map[string]int, error) {
			counts, err := e.challengePhase(ctx, s, round)
			if err == nil {
				roundChallenges = counts["challenges"]
			}
			return counts, err
		}
		if err := e.runPhase(ctx, s, core.PhaseChallenge, round, challenge); err != nil {
			return err
		}

		refine := func(ctx context.Context, s *core.Session) (map[string]int, error) {
			return e.refinePhase(ctx, s, round)
		}
		if err := e.runPhase(ctx, s, core.PhaseRefine, round, refine); err != nil {
			return err
		}

		if reason, ok := e.converged(s.Board, roundChallenges); ok {
			e.logger.Info("converged session_id=%s round=%d reason=%s", s.ID, round, reason)
			break
		}
	}

	synth := func(ctx context.Context, s *core.Session) (map[string]int, error) {
		return e.synthesize(ctx, s)
	}
	return e.runPhase(ctx, s, core.PhaseSynthesis, s.Round(), synth)
}

// runPhase wraps a phase function with timing, history, events and logging.
func (e *Engine) runPhase(
	ctx context.Context,
	s *core.Session,
	phase core.Phase,
	round int,
	fn func(ctx context.Context, s *core.Session) (map[string]int, error),
) error {
	if err := ctx.Err(); err != nil {
		return &core.AgentError{Agent: "engine", Phase: phase, Round: round, Err: err}
	}

	start := time.Now()
	startEv := core.NewEvent(s.ID, core.EventPhaseStart)
	startEv.Phase = phase
	startEv.Round = round
	e.events.Append(startEv)

	counts, err := fn(ctx, s)
	dur := time.Since(start)
	if err != nil {
		return err
	}

	s.AddPhaseResult(core.PhaseResult{Phase: phase, Round: round, Started: start.UTC(), Duration: dur, Counts: counts})

	endEv := core.NewEvent(s.ID, core.EventPhaseEnd)
	endEv.Phase = phase
	endEv.Round = round
	endEv.Counts = counts
	endEv.Duration = dur
	e.events.Append(endEv)

	e.logPhase(s.ID, string(phase), round, dur, counts)
	return nil
}

func (e *Engine) failSession(s *core.Session, err error) {
	failure := core.Failure{Message: err.Error()}
	var agentErr *core.AgentError
	if errors.As(err, &agentErr) {
		failure.Phase = agentErr.Phase
		failure.Round = agentErr.Round
	}
	if ferr := s.Fail(failure); ferr != nil {
		e.logger.Warn("could not mark session failed session_id=%s: %v", s.ID, ferr)
		return
	}

	ev := core.NewEvent(s.ID, core.EventSessionFailed)
	ev.Phase = failure.Phase
	ev.Round = failure.Round
	ev.Message = failure.Message
	e.events.Append(ev)

	e.logger.Error("run failed session_id=%s phase=%s round=%d: %v", s.ID, failure.Phase, failure.Round, err)
}

// converged reports whether the board has reached a stopping condition
// after a completed round.
func (e *Engine) converged(board *core.Board, roundChallenges int) (string, bool) {
	live := board.Live()
	if len(live) == 0 {
		return "no live hypotheses", true
	}

	topMean := topMeanConfidence(board, 3)
	if topMean >= e.config.ConvergenceThreshold {
		return "confidence threshold reached", true
	}
	if roundChallenges < e.config.MinRoundChallenges && topMean >= e.config.StabilizationFloor {
		return "board stabilized", true
	}
	return "", false
}

func topMeanConfidence(board *core.Board, n int) float64 {
	top := board.Top(n)
	if len(top) == 0 {
		return 0
	}
	var sum float64
	for _, h := range top {
		sum += h.Confidence
	}
	return sum / float64(len(top))
}

// logPhase uses the structured phase helper when the configured logger
// supports it.
func (e *Engine) logPhase(sessionID, phase string, round int, dur time.Duration, counts map[string]int) {
	if dl, ok := e.logger.(*logging.DifferentialLogger); ok {
		dl.WithSession(sessionID).LogPhase(phase, round, dur, counts)
		return
	}
	e.logger.Debug("phase completed session_id=%s phase=%s round=%d duration=%s", sessionID, phase, round, dur)
}

func (e *Engine) logAgentCall(sessionID, agent, op string, dur time.Duration, results int, err error) {
	if dl, ok := e.logger.(*logging.DifferentialLogger); ok {
		dl.WithSession(sessionID).LogAgentCall(agent, op, dur, results, err)
		return
	}
	if err != nil {
		e.logger.Error("agent call failed session_id=%s agent=%s op=%s: %v", sessionID, agent, op, err)
		return
	}
	e.logger.Debug("agent call completed session_id=%s agent=%s op=%s results=%d duration=%s", sessionID, agent, op, results, dur)
}

func (e *Engine) logMutation(sessionID, kind, hypothesisID string, confidence float64) {
	if dl, ok := e.logger.(*logging.DifferentialLogger); ok {
		dl.WithSession(sessionID).LogBoardMutation(kind, hypothesisID, confidence)
		return
	}
	e.logger.Debug("board mutation session_id=%s mutation=%s hypothesis=%s confidence=%.2f", sessionID, kind, hypothesisID, confidence)
}
