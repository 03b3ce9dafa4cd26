package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cognovo/differential/core"
	"github.com/cognovo/differential/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAgent struct {
	name string
	role string
}

func (a *stubAgent) Name() string        { return a.name }
func (a *stubAgent) Role() string        { return a.role }
func (a *stubAgent) Description() string { return "stub" }

func (a *stubAgent) GenerateHypotheses(context.Context, string, map[string]string) ([]core.Seed, error) {
	conf := 0.9
	return []core.Seed{{Content: "claim by " + a.name, Confidence: &conf}}, nil
}

func (a *stubAgent) ChallengeHypotheses(context.Context, []core.Hypothesis, string) ([]core.ChallengeProposal, error) {
	return nil, nil
}

func (a *stubAgent) RefineHypothesis(_ context.Context, h core.Hypothesis, _ []core.Challenge) (core.RefinementProposal, error) {
	return core.RefinementProposal{Content: h.Content}, nil
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	eng, err := engine.New(engine.WithAgents(&stubAgent{name: "stub", role: core.RoleIntegrator}))
	require.NoError(t, err)
	return NewApp(eng)
}

func doJSON(t *testing.T, app *App, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

func createSession(t *testing.T, app *App, input string) string {
	t.Helper()
	rec := doJSON(t, app, http.MethodPost, "/v1/sessions", `{"input": "`+input+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var view struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.NotEmpty(t, view.ID)
	return view.ID
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(t)
	rec := doJSON(t, app, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t)
	rec := doJSON(t, app, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "uptime_seconds")
	assert.Contains(t, rec.Body.String(), "sessions")
}

func TestCreateSessionValidation(t *testing.T) {
	app := newTestApp(t)

	rec := doJSON(t, app, http.MethodPost, "/v1/sessions", "not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, app, http.MethodPost, "/v1/sessions", `{"input": "  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	app := newTestApp(t)
	id := createSession(t, app, "why is the queue backed up")

	rec := doJSON(t, app, http.MethodGet, "/v1/sessions/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var view struct {
		Status    string `json:"status"`
		HasResult bool   `json:"has_result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, string(core.SessionActive), view.Status)
	assert.False(t, view.HasResult)

	// result not available before running
	rec = doJSON(t, app, http.MethodGet, "/v1/sessions/"+id+"/result", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, app, http.MethodPost, "/v1/sessions/"+id+"/run", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var synthesis core.Synthesis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &synthesis))
	assert.Equal(t, id, synthesis.SessionID)
	assert.Equal(t, 1, synthesis.Summary.Accepted)

	// running again returns the stored result
	rec = doJSON(t, app, http.MethodPost, "/v1/sessions/"+id+"/run", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, app, http.MethodGet, "/v1/sessions/"+id+"/result", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateAndRunInOneCall(t *testing.T) {
	app := newTestApp(t)
	rec := doJSON(t, app, http.MethodPost, "/v1/sessions", `{"input": "one shot", "run": true}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var view struct {
		ID        string `json:"id"`
		Status    string `json:"status"`
		HasResult bool   `json:"has_result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, string(core.SessionCompleted), view.Status)
	assert.True(t, view.HasResult)
}

func TestBoardGraphEventsTranscript(t *testing.T) {
	app := newTestApp(t)
	id := createSession(t, app, "inspect the board")
	rec := doJSON(t, app, http.MethodPost, "/v1/sessions/"+id+"/run", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, app, http.MethodGet, "/v1/sessions/"+id+"/board", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var board struct {
		Hypotheses []core.Hypothesis `json:"hypotheses"`
		Counts     map[string]int    `json:"counts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &board))
	require.Len(t, board.Hypotheses, 1)
	assert.Equal(t, 1, board.Counts["total"])

	rec = doJSON(t, app, http.MethodGet, "/v1/sessions/"+id+"/board?status=accepted", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, app, http.MethodGet, "/v1/sessions/"+id+"/graph", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var graph core.Graph
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &graph))
	assert.Len(t, graph.Nodes, 1)

	rec = doJSON(t, app, http.MethodGet, "/v1/sessions/"+id+"/events", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "session_completed")

	rec = doJSON(t, app, http.MethodGet, "/v1/sessions/"+id+"/transcript", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/markdown")
	assert.Contains(t, rec.Body.String(), "# Differential Session")
}

func TestGlobalEventLog(t *testing.T) {
	app := newTestApp(t)
	id := createSession(t, app, "first problem")
	rec := doJSON(t, app, http.MethodPost, "/v1/sessions/"+id+"/run", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var log struct {
		Events []core.Event `json:"events"`
		Count  int          `json:"count"`
	}

	rec = doJSON(t, app, http.MethodGet, "/v1/events", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &log))
	require.NotEmpty(t, log.Events)
	assert.Equal(t, len(log.Events), log.Count)
	assert.Equal(t, core.EventSessionCompleted, log.Events[len(log.Events)-1].Type)

	rec = doJSON(t, app, http.MethodGet, "/v1/events?limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &log))
	assert.Equal(t, 2, log.Count)

	rec = doJSON(t, app, http.MethodGet, "/v1/events?session_id="+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &log))
	for _, ev := range log.Events {
		assert.Equal(t, id, ev.SessionID)
	}

	rec = doJSON(t, app, http.MethodGet, "/v1/events?limit=nope", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListSessionsWithFilter(t *testing.T) {
	app := newTestApp(t)
	first := createSession(t, app, "first problem")
	createSession(t, app, "second problem")

	rec := doJSON(t, app, http.MethodPost, "/v1/sessions/"+first+"/run", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, app, http.MethodGet, "/v1/sessions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 2, list.Count)

	rec = doJSON(t, app, http.MethodGet, "/v1/sessions?status=completed", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)

	rec = doJSON(t, app, http.MethodGet, "/v1/sessions?limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)
}

func TestUnknownSessionReturns404(t *testing.T) {
	app := newTestApp(t)
	for _, path := range []string{
		"/v1/sessions/nope",
		"/v1/sessions/nope/board",
		"/v1/sessions/nope/graph",
		"/v1/sessions/nope/result",
		"/v1/sessions/nope/events",
		"/v1/sessions/nope/transcript",
	} {
		rec := doJSON(t, app, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
	rec := doJSON(t, app, http.MethodPost, "/v1/sessions/nope/run", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAgentsAndStatsEndpoints(t *testing.T) {
	app := newTestApp(t)
	rec := doJSON(t, app, http.MethodGet, "/v1/agents", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var agents struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &agents))
	assert.Equal(t, 1, agents.Count)

	rec = doJSON(t, app, http.MethodGet, "/v1/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "total")
}
