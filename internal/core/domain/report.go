package domain

import (
	"slices"
	"time"
)

// NodeFailure is one failed node and the dependents skipped because of it.
type NodeFailure struct {
	Node    NodeID   `json:"node"`
	Err     error    `json:"-"`
	Message string   `json:"error"`
	Skipped []NodeID `json:"skipped,omitempty"`
}

// BrokenLink is a soft content-reference whose target does not exist.
type BrokenLink struct {
	From NodeID `json:"from"`
	To   string `json:"to"`
}

// BuildReport summarizes one build pass.
type BuildReport struct {
	BuildID     string              `json:"build_id"`
	StartedAt   time.Time           `json:"started_at"`
	Duration    time.Duration       `json:"duration"`
	Done        int                 `json:"done"`
	Failed      int                 `json:"failed"`
	Skipped     int                 `json:"skipped"`
	CacheHits   int                 `json:"cache_hits"`
	Executed    int                 `json:"executed"`
	Cancelled   bool                `json:"cancelled,omitempty"`
	Failures    []NodeFailure       `json:"failures,omitempty"`
	BrokenLinks []BrokenLink        `json:"broken_links,omitempty"`
	States      map[NodeID]JobState `json:"states"`
}

// NewBuildReport creates an empty report for the given pass.
func NewBuildReport(buildID string, started time.Time) *BuildReport {
	return &BuildReport{
		BuildID:   buildID,
		StartedAt: started,
		States:    make(map[NodeID]JobState),
	}
}

// Record stores the final state of a node and updates the counters.
func (r *BuildReport) Record(id NodeID, state JobState) {
	if prev, ok := r.States[id]; ok {
		r.count(prev, -1)
	}
	r.States[id] = state
	r.count(state, 1)
}

func (r *BuildReport) count(state JobState, delta int) {
	switch state {
	case JobDone:
		r.Done += delta
		r.Executed += delta
	case JobFailed:
		r.Failed += delta
		r.Executed += delta
	case JobSkipped:
		r.Skipped += delta
	case JobCached:
		r.CacheHits += delta
	}
}

// AddFailure appends a failure entry. Skipped dependents are sorted.
func (r *BuildReport) AddFailure(id NodeID, err error, skipped []NodeID) {
	skipped = slices.Clone(skipped)
	slices.SortFunc(skipped, NodeID.Compare)
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	r.Failures = append(r.Failures, NodeFailure{Node: id, Err: err, Message: msg, Skipped: skipped})
}

// Failure returns the failure entry for a node.
func (r *BuildReport) Failure(id NodeID) (NodeFailure, bool) {
	for _, f := range r.Failures {
		if f.Node == id {
			return f, true
		}
	}
	return NodeFailure{}, false
}

// OK reports whether the pass finished with no failures and was not cancelled.
func (r *BuildReport) OK() bool {
	return r.Failed == 0 && !r.Cancelled
}

// Sort orders failures and broken links for stable output.
func (r *BuildReport) Sort() {
	slices.SortFunc(r.Failures, func(a, b NodeFailure) int { return a.Node.Compare(b.Node) })
	slices.SortFunc(r.BrokenLinks, func(a, b BrokenLink) int {
		if c := a.From.Compare(b.From); c != 0 {
			return c
		}
		if a.To < b.To {
			return -1
		}
		if a.To > b.To {
			return 1
		}
		return 0
	})
}
