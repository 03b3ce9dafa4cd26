package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/cognovo/differential/core"
	"github.com/go-chi/chi/v5"
)

// sessionView is the JSON projection of a session for API responses. The
// board is exposed through its own endpoints.
type sessionView struct {
	ID        string             `json:"id"`
	Input     string             `json:"input"`
	Context   map[string]string  `json:"context,omitempty"`
	Status    core.SessionStatus `json:"status"`
	Round     int                `json:"round"`
	Created   time.Time          `json:"created"`
	Updated   time.Time          `json:"updated"`
	Counts    map[string]int     `json:"counts"`
	Phases    []core.PhaseResult `json:"phases,omitempty"`
	Failure   *core.Failure      `json:"failure,omitempty"`
	HasResult bool               `json:"has_result"`
}

func viewOf(s *core.Session) sessionView {
	return sessionView{
		ID:        s.ID,
		Input:     s.Input,
		Context:   s.Context,
		Status:    s.Status(),
		Round:     s.Round(),
		Created:   s.Created,
		Updated:   s.Updated(),
		Counts:    s.Board.Counts(),
		Phases:    s.Phases(),
		Failure:   s.Failure(),
		HasResult: s.Result() != nil,
	}
}

type createSessionRequest struct {
	Input   string            `json:"input"`
	Context map[string]string `json:"context,omitempty"`
	Run     bool              `json:"run,omitempty"`
}

func (app *App) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s, err := app.engine.CreateSession(req.Input, req.Context)
	if err != nil {
		app.writeEngineError(w, err)
		return
	}

	if req.Run {
		if _, err := app.engine.Run(r.Context(), s.ID); err != nil {
			// The session view carries the failure details.
			writeJSON(w, http.StatusCreated, viewOf(s))
			return
		}
	}
	writeJSON(w, http.StatusCreated, viewOf(s))
}

func (app *App) listSessions(w http.ResponseWriter, r *http.Request) {
	status := core.SessionStatus(r.URL.Query().Get("status"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	sessions := app.engine.Sessions(status, limit)
	views := make([]sessionView, 0, len(sessions))
	for _, s := range sessions {
		views = append(views, viewOf(s))
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": views, "count": len(views)})
}

func (app *App) getSession(w http.ResponseWriter, r *http.Request) {
	s, ok := app.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, viewOf(s))
}

func (app *App) runSession(w http.ResponseWriter, r *http.Request) {
	s, ok := app.session(w, r)
	if !ok {
		return
	}

	result, err := app.engine.Run(r.Context(), s.ID)
	if err != nil {
		app.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (app *App) getBoard(w http.ResponseWriter, r *http.Request) {
	s, ok := app.session(w, r)
	if !ok {
		return
	}

	hypotheses := s.Board.All()
	if status := core.Status(r.URL.Query().Get("status")); status != "" {
		hypotheses = s.Board.ByStatus(status)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": s.ID,
		"hypotheses": hypotheses,
		"counts":     s.Board.Counts(),
	})
}

func (app *App) getGraph(w http.ResponseWriter, r *http.Request) {
	s, ok := app.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Board.EvolutionGraph())
}

func (app *App) getResult(w http.ResponseWriter, r *http.Request) {
	s, ok := app.session(w, r)
	if !ok {
		return
	}

	result := s.Result()
	if result == nil {
		if f := s.Failure(); f != nil {
			writeJSON(w, http.StatusConflict, map[string]any{"error": "session failed", "failure": f})
			return
		}
		writeError(w, http.StatusConflict, "session has no result yet")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (app *App) getEvents(w http.ResponseWriter, r *http.Request) {
	s, ok := app.session(w, r)
	if !ok {
		return
	}
	events := app.engine.Events(s.ID)
	writeJSON(w, http.StatusOK, map[string]any{"events": events, "count": len(events)})
}

// listEvents serves the cross-session event log. An optional session_id
// query narrows it to one session; limit caps the number of rows.
func (app *App) listEvents(w http.ResponseWriter, r *http.Request) {
	if sessionID := r.URL.Query().Get("session_id"); sessionID != "" {
		events := app.engine.Events(sessionID)
		writeJSON(w, http.StatusOK, map[string]any{"events": events, "count": len(events)})
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	events := app.engine.AllEvents(limit)
	writeJSON(w, http.StatusOK, map[string]any{"events": events, "count": len(events)})
}

func (app *App) getTranscript(w http.ResponseWriter, r *http.Request) {
	s, ok := app.session(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(s.Transcript()))
}

func (app *App) listAgents(w http.ResponseWriter, _ *http.Request) {
	agents := app.engine.Agents()
	writeJSON(w, http.StatusOK, map[string]any{"agents": agents, "count": len(agents)})
}

func (app *App) stats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, app.engine.Stats())
}

// session resolves the path id, writing a 404 when unknown.
func (app *App) session(w http.ResponseWriter, r *http.Request) (*core.Session, bool) {
	s, err := app.engine.Session(chi.URLParam(r, "id"))
	if err != nil {
		app.writeEngineError(w, err)
		return nil, false
	}
	return s, true
}

func (app *App) writeEngineError(w http.ResponseWriter, err error) {
	var agentErr *core.AgentError
	switch {
	case errors.Is(err, core.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, core.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrTerminalSession):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &agentErr):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		app.logger.Error("unhandled api error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
