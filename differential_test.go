package differential_test

import (
	"context"
	"testing"

	differential "github.com/cognovo/differential"
	"github.com/cognovo/differential/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThinkWithDefaultRoster(t *testing.T) {
	d, err := differential.New()
	require.NoError(t, err)

	input := "The checkout service is slow. The cache always misses after a deploy. Users retry constantly."
	s, result, err := d.Think(context.Background(), input, map[string]string{"env": "prod"})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, core.SessionCompleted, s.Status())
	assert.Equal(t, s.ID, result.SessionID)
	assert.Greater(t, result.Summary.Generated, 0)
	assert.Greater(t, result.Summary.Accepted, 0)
	assert.NotEmpty(t, result.Insights)
	assert.NotEmpty(t, result.NextActions)
	assert.NotEmpty(t, result.Process.Agents)

	events := d.Events(s.ID)
	require.NotEmpty(t, events)
	assert.Equal(t, core.EventSessionCompleted, events[len(events)-1].Type)

	transcript := s.Transcript()
	assert.Contains(t, transcript, "# Differential Session")
	assert.Contains(t, transcript, "## Synthesis")
}

func TestThinkRejectsEmptyInput(t *testing.T) {
	d, err := differential.New()
	require.NoError(t, err)

	_, _, err = d.Think(context.Background(), "   ", nil)
	require.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestFacadeRosterIntrospection(t *testing.T) {
	d, err := differential.New()
	require.NoError(t, err)
	assert.Len(t, d.Agents(), 5)
}
