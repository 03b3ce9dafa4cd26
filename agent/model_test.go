package agent

import (
	"context"
	"testing"

	"github.com/cognovo/differential/core"
	"github.com/cognovo/differential/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModelAgent(responses ...string) (*ModelAgent, *model.MockModel) {
	mock := &model.MockModel{Responses: responses}
	return NewModelAgent(mock, Persona{
		Name:         "systems-thinker",
		Role:         "analyst",
		Description:  "Reasons about feedback loops",
		SystemPrompt: "You reason about systems.",
		Temperature:  0.4,
	}), mock
}

func TestModelAgentParsesSeeds(t *testing.T) {
	a, mock := newTestModelAgent(
		"1. The pool is exhausted [Confidence: 72%] [Domain: performance]\n" +
			"Action: Measure pool wait time under load\n" +
			"- Retries amplify the load [Confidence: 0.4]\n" +
			"\n" +
			"Some unstructured aside without tags\n",
	)

	seeds, err := a.GenerateHypotheses(context.Background(), "API latency doubled", nil)
	require.NoError(t, err)
	require.Len(t, seeds, 3)

	assert.Equal(t, "The pool is exhausted", seeds[0].Content)
	require.NotNil(t, seeds[0].Confidence)
	assert.InDelta(t, 0.72, *seeds[0].Confidence, 1e-9)
	assert.Equal(t, "performance", seeds[0].Domain)
	assert.Equal(t, "Measure pool wait time under load", seeds[0].Metadata[MetadataNextAction])

	assert.Equal(t, "Retries amplify the load", seeds[1].Content)
	require.NotNil(t, seeds[1].Confidence)
	assert.InDelta(t, 0.4, *seeds[1].Confidence, 1e-9)

	assert.Nil(t, seeds[2].Confidence)

	require.Len(t, mock.Requests, 1)
	assert.Equal(t, "You reason about systems.", mock.Requests[0].System)
	assert.Contains(t, mock.Requests[0].Prompt, "API latency doubled")
}

func TestModelAgentParsesChallenges(t *testing.T) {
	a, _ := newTestModelAgent(
		"Challenge 2: The claim ignores cold starts\n" +
			"Challenge 9: out of range\n" +
			"not a challenge line\n" +
			"1: Misses the retry interaction\n",
	)

	live := []core.Hypothesis{
		{ID: "h1", Content: "first", Source: "other"},
		{ID: "h2", Content: "second", Source: "other"},
		{ID: "h3", Content: "own", Source: "systems-thinker"},
	}
	props, err := a.ChallengeHypotheses(context.Background(), live, "input")
	require.NoError(t, err)
	require.Len(t, props, 2)
	assert.Equal(t, "h2", props[0].HypothesisID)
	assert.Equal(t, "The claim ignores cold starts", props[0].Body)
	assert.Equal(t, "h1", props[1].HypothesisID)
}

func TestModelAgentSkipsChallengesAgainstOwnHypotheses(t *testing.T) {
	a, _ := newTestModelAgent("Challenge 1: self-doubt\n")
	live := []core.Hypothesis{{ID: "h1", Content: "mine", Source: "systems-thinker"}}
	props, err := a.ChallengeHypotheses(context.Background(), live, "input")
	require.NoError(t, err)
	assert.Empty(t, props)
}

func TestModelAgentParsesRefinement(t *testing.T) {
	a, _ := newTestModelAgent(
		"The pool is exhausted during cold starts\nNotes: Narrowed to the window the objection identified\n",
	)
	ref, err := a.RefineHypothesis(context.Background(), core.Hypothesis{ID: "h1", Content: "The pool is exhausted"},
		[]core.Challenge{{Agent: "skeptic", Body: "Only happens after deploys"}})
	require.NoError(t, err)
	assert.Equal(t, "The pool is exhausted during cold starts", ref.Content)
	assert.Equal(t, "Narrowed to the window the objection identified", ref.Notes)
}

func TestModelAgentRefinementFallsBackOnEmptyReply(t *testing.T) {
	a, _ := newTestModelAgent("")
	h := core.Hypothesis{ID: "h1", Content: "Original claim"}
	ref, err := a.RefineHypothesis(context.Background(), h, nil)
	require.NoError(t, err)
	assert.Equal(t, "Original claim", ref.Content)
	assert.NotEmpty(t, ref.Notes)
}
