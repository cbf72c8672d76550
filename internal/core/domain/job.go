package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// JobState is the lifecycle state of the job that builds one node.
type JobState string

const (
	// JobPending indicates the job waits for strict dependencies to resolve.
	JobPending JobState = "pending"
	// JobReady indicates every strict dependency is done or cache-satisfied.
	JobReady JobState = "ready"
	// JobRunning indicates the node handler is executing.
	JobRunning JobState = "running"
	// JobDone indicates the job executed successfully and its output is cached.
	JobDone JobState = "done"
	// JobFailed indicates the handler returned an error or the job was cancelled mid-run.
	JobFailed JobState = "failed"
	// JobSkipped indicates a strict dependency failed, or the pass was cancelled before the job ran.
	JobSkipped JobState = "skipped"
	// JobCached indicates the node was fresh and satisfied from the artifact cache without running.
	JobCached JobState = "cached"
)

var jobTransitions = map[JobState][]JobState{
	JobPending: {JobReady, JobCached, JobSkipped},
	JobReady:   {JobRunning, JobSkipped},
	JobRunning: {JobDone, JobFailed},
}

// IsTerminal reports whether no further transition is possible.
func (s JobState) IsTerminal() bool {
	switch s {
	case JobDone, JobFailed, JobSkipped, JobCached:
		return true
	default:
		return false
	}
}

// CanTransition reports whether moving from s to next is legal.
func (s JobState) CanTransition(next JobState) bool {
	for _, allowed := range jobTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transition validates a state change for the named node and returns the new state.
func Transition(node NodeID, from, to JobState) (JobState, error) {
	if !from.CanTransition(to) {
		err := zerr.With(zerr.Wrap(ErrInvalidTransition, "job state"), "node", node.String())
		err = zerr.With(err, "from", string(from))
		return from, zerr.With(err, "to", string(to))
	}
	return to, nil
}

// NormalizeJobState converts a string to a JobState, defaulting to pending if unknown.
func NormalizeJobState(s string) JobState {
	switch st := JobState(strings.ToLower(s)); st {
	case JobPending, JobReady, JobRunning, JobDone, JobFailed, JobSkipped, JobCached:
		return st
	default:
		return JobPending
	}
}
