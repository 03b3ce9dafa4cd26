package engine

import (
	"testing"
	"time"

	"github.com/cognovo/differential/core"
	"github.com/cognovo/differential/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func synthesisFixture(t *testing.T) (*Engine, *core.Session) {
	t.Helper()
	e := newTestEngine(t, DefaultConfig,
		&scriptedAgent{name: "analyst", role: "analyst"},
		&scriptedAgent{name: "skeptic", role: "skeptic"},
	)

	board := testutil.NewBoardBuilder().
		Add(testutil.NewSeedBuilder("the pool is exhausted").
			Confidence(0.85).
			Domain("performance").
			Meta(core.MetadataNextAction, "Raise the pool ceiling and measure").
			Build(), "analyst").
		Accepted().
		Seed("retries amplify load", "analyst", 0.5).
		Challenged("skeptic", "no evidence of retry storms").
		Evolved("retries amplify load during failover", "narrowed to failover").
		Accepted().
		Seed("DNS is flaky", "skeptic", 0.2).
		Rejected().
		Build()

	s := testutil.NewSessionBuilder().
		Input("why is checkout slow").
		Board(board).
		Round(2).
		Phase(core.PhaseExternalization, 0, 40*time.Millisecond).
		Phase(core.PhaseChallenge, 1, 10*time.Millisecond).
		Phase(core.PhaseChallenge, 2, 15*time.Millisecond).
		Build()
	return e, s
}

func TestBuildSynthesisShape(t *testing.T) {
	e, s := synthesisFixture(t)
	accepted := s.Board.Top(3)

	syn := e.buildSynthesis(s, accepted)

	assert.Equal(t, s.ID, syn.SessionID)
	require.Len(t, syn.Architecture["performance"], 1)
	require.Len(t, syn.Architecture["general"], 1)
	assert.Equal(t, "retries amplify load during failover", syn.Architecture["general"][0].Content)

	assert.Equal(t, 4, syn.Summary.Generated)
	assert.Equal(t, 2, syn.Summary.Accepted)
	assert.Equal(t, 1, syn.Summary.Rejected)

	assert.Equal(t, 2, syn.Process.Rounds)
	assert.Equal(t, 25*time.Millisecond, syn.Process.PhaseDurations[string(core.PhaseChallenge)])
	assert.Equal(t, []string{"analyst", "skeptic"}, syn.Process.Agents)

	require.Len(t, syn.Graph.Edges, 1)
	assert.Equal(t, "narrowed to failover", syn.Graph.Edges[0].Reason)
}

func TestBuildSynthesisInsightsAndActions(t *testing.T) {
	e, s := synthesisFixture(t)
	accepted := s.Board.Top(3)

	syn := e.buildSynthesis(s, accepted)

	require.NotEmpty(t, syn.Insights)
	assert.Contains(t, syn.Insights[0], "2 of 4 hypotheses survived")
	assert.Contains(t, syn.Insights[1], "85% confidence")
	assert.Contains(t, syn.Insights[1], "the pool is exhausted")
	assert.Contains(t, syn.Insights[2], "No consensus: mean accepted confidence 68%")

	require.Len(t, syn.NextActions, 1)
	assert.Equal(t, "Raise the pool ceiling and measure", syn.NextActions[0].Description)
	assert.Equal(t, core.PriorityImmediate, syn.NextActions[0].Priority)
}

func TestBuildSynthesisDefaultsWithoutActions(t *testing.T) {
	e := newTestEngine(t, DefaultConfig, &scriptedAgent{name: "solo", role: "analyst"})

	board := testutil.NewBoardBuilder().
		Seed("a quiet claim", "solo", 0.45).
		Accepted().
		Build()
	s := testutil.NewSessionBuilder().Board(board).Build()

	syn := e.buildSynthesis(s, s.Board.Top(1))

	require.Len(t, syn.NextActions, 1)
	assert.Equal(t, core.PriorityOngoing, syn.NextActions[0].Priority)
	assert.Contains(t, syn.Insights, "No challenges were raised; consider a more adversarial roster")
}
