package agent

import (
	"context"
	"testing"

	"github.com/cognovo/differential/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructuralAgentGeneratesPerSentence(t *testing.T) {
	a := NewStructuralAgent()
	seeds, err := a.GenerateHypotheses(context.Background(), "The service is slow. Users see timeouts.", nil)
	require.NoError(t, err)
	require.Len(t, seeds, 2)
	for _, s := range seeds {
		assert.Equal(t, "structure", s.Domain)
		require.NotNil(t, s.Confidence)
		assert.InDelta(t, 0.55, *s.Confidence, 1e-9)
	}
}

func TestStructuralAgentChallengesDrift(t *testing.T) {
	a := NewStructuralAgent()
	input := "Checkout requests time out under load"
	live := []core.Hypothesis{
		{ID: "h1", Content: "Checkout requests exceed the load budget", Source: "other"},
		{ID: "h2", Content: "Quarterly revenue projections look optimistic", Source: "other"},
		{ID: "h3", Content: "Zebras migrate seasonally", Source: a.Name()},
	}
	props, err := a.ChallengeHypotheses(context.Background(), live, input)
	require.NoError(t, err)
	require.Len(t, props, 1)
	assert.Equal(t, "h2", props[0].HypothesisID)
}

func TestPatternAgentMatchesKeywords(t *testing.T) {
	a := NewPatternAgent()
	seeds, err := a.GenerateHypotheses(context.Background(), "Responses are slow and the cache is cold", nil)
	require.NoError(t, err)
	require.Len(t, seeds, 2)
	domains := []string{seeds[0].Domain, seeds[1].Domain}
	assert.Contains(t, domains, "performance")
}

func TestPatternAgentSoftensAbsolutes(t *testing.T) {
	a := NewPatternAgent()
	h := core.Hypothesis{
		ID:      "h1",
		Content: "Deployments always fail on Fridays",
		Source:  "other",
	}
	props, err := a.ChallengeHypotheses(context.Background(), []core.Hypothesis{h}, "")
	require.NoError(t, err)
	require.Len(t, props, 1)

	ref, err := a.RefineHypothesis(context.Background(), h, []core.Challenge{{Agent: a.Name(), Body: props[0].Body}})
	require.NoError(t, err)
	assert.Equal(t, "Deployments typically fail on Fridays", ref.Content)
	assert.NotEmpty(t, ref.Notes)
}

func TestSkepticChallengesConfidentUnsupportedClaims(t *testing.T) {
	a := NewSkepticAgent()
	live := []core.Hypothesis{
		{ID: "h1", Content: "The index is missing", Confidence: 0.8, Source: "other"},
		{ID: "h2", Content: "Latency rose because profiling shows lock contention", Confidence: 0.8, Source: "other"},
		{ID: "h3", Content: "Perhaps DNS", Confidence: 0.3, Source: "other"},
	}
	props, err := a.ChallengeHypotheses(context.Background(), live, "")
	require.NoError(t, err)
	require.Len(t, props, 1)
	assert.Equal(t, "h1", props[0].HypothesisID)
}

func TestIntegratorRoleAndReconciliation(t *testing.T) {
	a := NewIntegratorAgent()
	assert.Equal(t, core.RoleIntegrator, a.Role())

	h := core.Hypothesis{ID: "h1", Content: "The queue is the bottleneck"}
	challenges := []core.Challenge{
		{Agent: "skeptic", Body: "No evidence cited"},
		{Agent: "pattern-matcher", Body: "Overgeneralizes"},
	}
	ref, err := a.RefineHypothesis(context.Background(), h, challenges)
	require.NoError(t, err)
	assert.NotEqual(t, h.Content, ref.Content)
	assert.Contains(t, ref.Notes, "2 objections")
}

func TestStrategistAttachesNextAction(t *testing.T) {
	a := NewStrategistAgent()
	seeds, err := a.GenerateHypotheses(context.Background(), "Migrate billing to the new ledger", nil)
	require.NoError(t, err)
	require.Len(t, seeds, 1)
	require.NotNil(t, seeds[0].Metadata)
	assert.Contains(t, seeds[0].Metadata[MetadataNextAction], "migrate")
}

func TestDefaultRosterIdentities(t *testing.T) {
	roster := DefaultRoster()
	require.Len(t, roster, 5)

	names := map[string]bool{}
	integrators := 0
	for _, a := range roster {
		assert.NotEmpty(t, a.Name())
		assert.NotEmpty(t, a.Description())
		assert.False(t, names[a.Name()], "duplicate agent name %s", a.Name())
		names[a.Name()] = true
		if a.Role() == core.RoleIntegrator {
			integrators++
		}
	}
	assert.Equal(t, 1, integrators)
}
