// Package differential provides a high-level façade over the core engine
// and service abstractions (sessions, events, logging) for running
// hypothesis-refinement debates. Most applications interact with this
// package by:
//  1. Creating a Differential via New() with an agent roster (the default
//     heuristic roster, model-backed personas, or custom strategies)
//  2. Creating one or more sessions for the thoughts to analyze
//  3. Running each session (Think is the one-call convenience wrapper)
//
// The façade delegates orchestration to engine.Engine while keeping setup
// and usage ergonomics concise. All defaults are safe for local
// development and testing; production deployments typically supply a
// structured logger.
package differential

import (
	"context"

	"github.com/cognovo/differential/agent"
	"github.com/cognovo/differential/core"
	"github.com/cognovo/differential/engine"
	"github.com/cognovo/differential/eventlog"
	"github.com/cognovo/differential/logging"
	"github.com/cognovo/differential/session"
)

// Options configures the Differential instance.
type Options struct {
	// EngineConfig tunes rounds, convergence and confidence dynamics.
	EngineConfig engine.Config

	// Agents is the ordered roster. Defaults to agent.DefaultRoster().
	Agents []core.Agent

	// SessionStore (defaults to in-memory if not provided).
	SessionStore core.SessionStore

	// EventLog (defaults to in-memory if not provided).
	EventLog core.EventLog

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
}

// Differential is the high-level façade aggregating the engine and its
// services.
type Differential struct {
	opts   Options
	engine *engine.Engine
}

// New creates a Differential with optional overrides. Any unset service is
// initialized with an in-memory implementation, and an unset roster falls
// back to the built-in heuristic strategies.
func New(optFns ...func(o *Options)) (*Differential, error) {
	opts := Options{
		EngineConfig: engine.DefaultConfig,
		Agents:       agent.DefaultRoster(),
		SessionStore: session.NewInMemoryStore(),
		EventLog:     eventlog.NewInMemoryLog(),
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	eng, err := engine.New(
		engine.WithConfig(opts.EngineConfig),
		engine.WithAgents(opts.Agents...),
		engine.WithSessionStore(opts.SessionStore),
		engine.WithEventLog(opts.EventLog),
		engine.WithLogger(opts.Logger),
	)
	if err != nil {
		return nil, err
	}
	return &Differential{opts: opts, engine: eng}, nil
}

// Engine exposes the underlying engine for advanced use.
func (d *Differential) Engine() *engine.Engine { return d.engine }

// CreateSession registers a new session for an input thought.
func (d *Differential) CreateSession(input string, sessionContext map[string]string) (*core.Session, error) {
	return d.engine.CreateSession(input, sessionContext)
}

// Run executes the differential pipeline for an existing session.
func (d *Differential) Run(ctx context.Context, sessionID string) (*core.Synthesis, error) {
	return d.engine.Run(ctx, sessionID)
}

// Think is the one-call convenience wrapper: it creates a session for the
// input and runs it to completion, returning the session and its synthesis.
func (d *Differential) Think(ctx context.Context, input string, sessionContext map[string]string) (*core.Session, *core.Synthesis, error) {
	s, err := d.engine.CreateSession(input, sessionContext)
	if err != nil {
		return nil, nil, err
	}
	result, err := d.engine.Run(ctx, s.ID)
	if err != nil {
		return s, nil, err
	}
	return s, result, nil
}

// Session retrieves a session by id.
func (d *Differential) Session(id string) (*core.Session, error) {
	return d.engine.Session(id)
}

// Sessions lists sessions, newest first, optionally filtered by status.
func (d *Differential) Sessions(status core.SessionStatus, limit int) []*core.Session {
	return d.engine.Sessions(status, limit)
}

// Events returns the ordered event log for a session.
func (d *Differential) Events(sessionID string) []core.Event {
	return d.engine.Events(sessionID)
}

// AllEvents returns the newest events across every session, up to limit.
func (d *Differential) AllEvents(limit int) []core.Event {
	return d.engine.AllEvents(limit)
}

// Agents returns the introspection view of the roster.
func (d *Differential) Agents() []core.AgentInfo {
	return d.engine.Agents()
}
