package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/press/internal/core/domain"
)

func TestJobState_IsTerminal(t *testing.T) {
	tests := []struct {
		name       string
		state      domain.JobState
		isTerminal bool
	}{
		{"Pending", domain.JobPending, false},
		{"Ready", domain.JobReady, false},
		{"Running", domain.JobRunning, false},
		{"Done", domain.JobDone, true},
		{"Failed", domain.JobFailed, true},
		{"Skipped", domain.JobSkipped, true},
		{"Cached", domain.JobCached, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isTerminal, tt.state.IsTerminal())
		})
	}
}

func TestTransition(t *testing.T) {
	node := domain.NewNodeID("posts/a.md")

	next, err := domain.Transition(node, domain.JobPending, domain.JobReady)
	require.NoError(t, err)
	assert.Equal(t, domain.JobReady, next)

	next, err = domain.Transition(node, domain.JobReady, domain.JobRunning)
	require.NoError(t, err)
	assert.Equal(t, domain.JobRunning, next)

	_, err = domain.Transition(node, domain.JobRunning, domain.JobDone)
	require.NoError(t, err)

	// Terminal states never move again.
	prev, err := domain.Transition(node, domain.JobDone, domain.JobRunning)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))
	assert.Equal(t, domain.JobDone, prev)

	// A pending job cannot jump straight to running.
	_, err = domain.Transition(node, domain.JobPending, domain.JobRunning)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestNormalizeJobState(t *testing.T) {
	tests := []struct {
		input    string
		expected domain.JobState
	}{
		{"pending", domain.JobPending},
		{"DONE", domain.JobDone},
		{"cached", domain.JobCached},
		{"skipped", domain.JobSkipped},
		{"unknown", domain.JobPending},
		{"", domain.JobPending},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, domain.NormalizeJobState(tt.input))
		})
	}
}
