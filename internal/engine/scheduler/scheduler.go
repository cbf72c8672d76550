// Package scheduler runs a build pass over the content graph: it partitions
// nodes into fresh and stale by combined fingerprint, then builds the stale
// ones in dependency order on a bounded worker pool.
package scheduler

import (
	"context"
	"errors"
	"runtime"
	"time"

	"go.trai.ch/press/internal/core/domain"
	"go.trai.ch/press/internal/core/ports"
	"go.trai.ch/press/internal/engine/cache"
	"go.trai.ch/press/internal/engine/fingerprint"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// ArtifactCache is the part of the artifact cache the scheduler needs.
type ArtifactCache interface {
	Lookup(ctx context.Context, fp domain.Fingerprint) (domain.Artifact, bool)
	GetOrCompute(ctx context.Context, fp domain.Fingerprint, compute cache.ComputeFunc) (domain.Artifact, bool, error)
	Invalidate(ctx context.Context, fp domain.Fingerprint) error
}

// Options configures one build pass.
type Options struct {
	// Parallelism bounds concurrently running jobs. Zero means runtime.NumCPU().
	Parallelism int
	// Force treats every node as stale and drops its cache entry first.
	Force bool
	// BuildID tags the report and the trace of the pass.
	BuildID string
}

// Scheduler builds content graphs.
type Scheduler struct {
	cache    ArtifactCache
	handlers map[domain.NodeKind]ports.Handler
	reader   ports.SourceReader
	tracer   ports.Tracer
	logger   ports.Logger
	metrics  ports.Metrics
	writer   ports.OutputWriter
	indexer  ports.SearchIndexer
	now      func() time.Time
}

// NewScheduler creates a Scheduler that dispatches jobs to handlers by node kind.
func NewScheduler(
	artifacts ArtifactCache,
	handlers map[domain.NodeKind]ports.Handler,
	reader ports.SourceReader,
	tracer ports.Tracer,
	logger ports.Logger,
) *Scheduler {
	return &Scheduler{
		cache:    artifacts,
		handlers: handlers,
		reader:   reader,
		tracer:   tracer,
		logger:   logger,
		now:      time.Now,
	}
}

// WithSinks sets where finished artifacts go. Either may be nil.
func (s *Scheduler) WithSinks(writer ports.OutputWriter, indexer ports.SearchIndexer) *Scheduler {
	s.writer = writer
	s.indexer = indexer
	return s
}

// WithMetrics sets the metrics recorder.
func (s *Scheduler) WithMetrics(m ports.Metrics) *Scheduler {
	s.metrics = m
	return s
}

// Build runs one pass over graph. The graph must not be mutated until Build
// returns. Job failures are reported in the returned report and never make
// Build itself fail; the error is non-nil only when the pass could not be
// planned, was cancelled, or violated the job lifecycle.
func (s *Scheduler) Build(ctx context.Context, graph *domain.ContentGraph, opts Options) (*domain.BuildReport, error) {
	report := domain.NewBuildReport(opts.BuildID, s.now())

	combined, err := fingerprint.NewStore(graph).All()
	if err != nil {
		return report, err
	}
	order, err := graph.TopologicalOrder()
	if err != nil {
		return report, err
	}

	ctx, span := s.tracer.Start(ctx, "build", ports.WithAttribute(ports.AttrBuildID, opts.BuildID))
	defer span.End()

	state := s.newRunState(ctx, graph, order, combined, opts, report)
	state.plan()
	s.tracer.EmitPlan(ctx, state.staleNames())

	done := ctx.Done()
	for !state.isDone() {
		state.schedule()

		if state.isDone() {
			break
		}
		if ctx.Err() != nil && state.active == 0 {
			break
		}

		select {
		case res := <-state.resultsCh:
			state.handleResult(res)
		case <-done:
			// Running jobs observe the cancellation themselves; keep
			// draining their results.
			done = nil
		}
	}

	if ctx.Err() != nil {
		state.cancelRemaining()
	}
	if err := state.restores.Wait(); err != nil {
		state.errs = errors.Join(state.errs, err)
	}

	state.finish()
	report.Duration = s.now().Sub(report.StartedAt)
	report.Sort()
	if s.metrics != nil {
		s.metrics.BuildFinished(report)
	}
	span.SetAttribute("done", report.Done)
	span.SetAttribute("failed", report.Failed)
	span.SetAttribute("cached", report.CacheHits)

	if report.Cancelled {
		cancelErr := zerr.With(zerr.Wrap(domain.ErrBuildCancelled, "build pass aborted"), "build_id", opts.BuildID)
		span.RecordError(cancelErr)
		return report, errors.Join(cancelErr, state.errs)
	}
	return report, state.errs
}

type result struct {
	id       domain.NodeID
	artifact domain.Artifact
	duration time.Duration
	err      error
}

type runState struct {
	s        *Scheduler
	ctx      context.Context
	graph    *domain.ContentGraph
	order    []domain.NodeID
	combined map[domain.NodeID]domain.Fingerprint
	opts     Options
	report   *domain.BuildReport

	nodes     map[domain.NodeID]domain.Node
	states    map[domain.NodeID]domain.JobState
	pending   map[domain.NodeID]int
	artifacts map[domain.NodeID]domain.Artifact
	durations map[domain.NodeID]time.Duration
	failures  map[domain.NodeID]error
	stale     []domain.NodeID

	ready       []domain.NodeID
	active      int
	parallelism int
	resultsCh   chan result
	restores    errgroup.Group
	errs        error
}

func (s *Scheduler) newRunState(
	ctx context.Context,
	graph *domain.ContentGraph,
	order []domain.NodeID,
	combined map[domain.NodeID]domain.Fingerprint,
	opts Options,
	report *domain.BuildReport,
) *runState {
	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}

	state := &runState{
		s:           s,
		ctx:         ctx,
		graph:       graph,
		order:       order,
		combined:    combined,
		opts:        opts,
		report:      report,
		nodes:       make(map[domain.NodeID]domain.Node, len(order)),
		states:      make(map[domain.NodeID]domain.JobState, len(order)),
		pending:     make(map[domain.NodeID]int, len(order)),
		artifacts:   make(map[domain.NodeID]domain.Artifact, len(order)),
		durations:   make(map[domain.NodeID]time.Duration),
		failures:    make(map[domain.NodeID]error),
		parallelism: parallelism,
		resultsCh:   make(chan result, parallelism),
	}
	state.restores.SetLimit(parallelism)
	for _, id := range order {
		node, _ := graph.Node(id)
		state.nodes[id] = node
		state.states[id] = domain.JobPending
	}
	return state
}

// plan resolves fresh nodes from the cache and computes the stale dependency
// counters. order is topological, so every dependency is resolved before its
// consumers are counted.
func (state *runState) plan() {
	for _, id := range state.order {
		if state.opts.Force {
			if err := state.s.cache.Invalidate(state.ctx, state.combined[id]); err != nil {
				state.s.logger.Warn("dropping cache entry failed", "node", id.String(), "error", err.Error())
			}
		} else if a, ok := state.s.cache.Lookup(state.ctx, state.combined[id]); ok {
			state.artifacts[id] = a
			state.move(id, domain.JobCached)
			state.restore(a)
			continue
		}
		state.stale = append(state.stale, id)

		n := 0
		for _, dep := range state.graph.Dependencies(id) {
			if state.states[dep] != domain.JobCached {
				n++
			}
		}
		state.pending[id] = n
		if n == 0 {
			state.move(id, domain.JobReady)
			state.ready = append(state.ready, id)
		}
	}
}

func (state *runState) staleNames() []string {
	names := make([]string, len(state.stale))
	for i, id := range state.stale {
		names[i] = id.String()
	}
	return names
}

func (state *runState) isDone() bool {
	return state.active == 0 && len(state.ready) == 0
}

func (state *runState) schedule() {
	for len(state.ready) > 0 && state.active < state.parallelism && state.ctx.Err() == nil {
		id := state.ready[0]
		state.ready = state.ready[1:]

		state.active++
		state.move(id, domain.JobRunning)

		req := state.request(id)
		go func() {
			state.resultsCh <- state.s.run(state.ctx, req, state.combined[id])
		}()
	}
}

// request snapshots everything the job needs so the worker never touches
// the run state.
func (state *runState) request(id domain.NodeID) *domain.BuildRequest {
	deps := state.graph.Dependencies(id)
	req := &domain.BuildRequest{
		Node:     state.nodes[id],
		Deps:     make(map[domain.NodeID]domain.Artifact, len(deps)),
		Refs:     state.graph.References(id),
		Backrefs: state.graph.Referrers(id),
		Build:    domain.BuildInfo{ID: state.opts.BuildID, Time: state.report.StartedAt},
	}
	for _, dep := range deps {
		req.Deps[dep] = state.artifacts[dep]
	}
	return req
}

func (state *runState) handleResult(res result) {
	state.active--
	state.durations[res.id] = res.duration

	if res.err != nil {
		state.fail(res.id, res.err)
		return
	}

	state.artifacts[res.id] = res.artifact
	state.move(res.id, domain.JobDone)
	for _, dep := range state.graph.Dependents(res.id) {
		if _, ok := state.pending[dep]; !ok {
			continue
		}
		state.pending[dep]--
		if state.pending[dep] == 0 && state.states[dep] == domain.JobPending {
			state.move(dep, domain.JobReady)
			state.ready = append(state.ready, dep)
		}
	}
}

// fail marks id failed and skips every transitive dependent that has not
// reached a terminal state.
func (state *runState) fail(id domain.NodeID, err error) {
	state.move(id, domain.JobFailed)
	state.failures[id] = err

	dependents, derr := state.graph.DependentsOf(id)
	if derr != nil {
		state.errs = errors.Join(state.errs, derr)
	}
	var skipped []domain.NodeID
	for _, dep := range dependents {
		if state.states[dep].IsTerminal() {
			continue
		}
		state.move(dep, domain.JobSkipped)
		skipped = append(skipped, dep)
	}
	state.report.AddFailure(id, err, skipped)
	state.s.logger.Warn("job failed", "node", id.String(), "error", err.Error(), "skipped", len(skipped))
}

// cancelRemaining skips every job that never started.
func (state *runState) cancelRemaining() {
	state.report.Cancelled = true
	for _, id := range state.order {
		switch state.states[id] {
		case domain.JobPending, domain.JobReady:
			state.move(id, domain.JobSkipped)
		}
	}
	state.ready = nil
}

func (state *runState) move(id domain.NodeID, to domain.JobState) {
	next, err := domain.Transition(id, state.states[id], to)
	if err != nil {
		state.errs = errors.Join(state.errs, err)
		return
	}
	state.states[id] = next
}

// restore hands a cache hit to the output writer, which only touches files
// that are missing or differ on disk.
func (state *runState) restore(a domain.Artifact) {
	w := state.s.writer
	if w == nil {
		return
	}
	state.restores.Go(func() error {
		if err := w.Write(state.ctx, a, false); err != nil {
			state.s.logger.Warn("restoring outputs failed", "node", a.Node.String(), "error", err.Error())
		}
		return nil
	})
}

// finish writes outcomes back into the graph and records metrics.
func (state *runState) finish() {
	for _, id := range state.order {
		st := state.states[id]
		state.report.Record(id, st)

		outcome := domain.Outcome{Combined: state.combined[id], Status: st, Err: state.failures[id]}
		if a, ok := state.artifacts[id]; ok && (st == domain.JobDone || st == domain.JobCached) {
			outcome.Output = fingerprint.Output(a)
		}
		if err := state.graph.SetOutcome(id, outcome); err != nil {
			state.errs = errors.Join(state.errs, err)
		}
		if state.s.metrics != nil {
			state.s.metrics.JobFinished(state.nodes[id].Kind, st, state.durations[id])
		}
	}
}

// run executes one job on a worker goroutine.
func (s *Scheduler) run(ctx context.Context, req *domain.BuildRequest, fp domain.Fingerprint) result {
	id := req.Node.ID
	ctx, span := s.tracer.Start(ctx, "build "+id.String(),
		ports.WithAttribute(ports.AttrNode, id.String()),
		ports.WithAttribute(ports.AttrKind, string(req.Node.Kind)),
	)
	defer span.End()

	started := s.now()
	artifact, hit, err := s.cache.GetOrCompute(ctx, fp, func(ctx context.Context) (domain.Artifact, error) {
		return s.compute(ctx, req)
	})
	res := result{id: id, artifact: artifact, duration: s.now().Sub(started), err: err}

	if err != nil {
		if ctx.Err() != nil && !errors.Is(err, domain.ErrBuildCancelled) {
			res.err = zerr.With(zerr.Wrap(domain.ErrBuildCancelled, err.Error()), "node", id.String())
		}
		span.RecordError(res.err)
		span.SetAttribute(ports.AttrState, string(domain.JobFailed))
		return res
	}

	span.SetAttribute(ports.AttrState, string(domain.JobDone))
	span.SetAttribute("cache_hit", hit)
	s.emit(ctx, artifact, fp)
	return res
}

func (s *Scheduler) compute(ctx context.Context, req *domain.BuildRequest) (domain.Artifact, error) {
	h, ok := s.handlers[req.Node.Kind]
	if !ok {
		return domain.Artifact{}, zerr.With(zerr.Wrap(domain.ErrNoHandler, "cannot build node"), "kind", string(req.Node.Kind))
	}
	if s.reader != nil {
		src, err := s.reader.Read(ctx, req.Node.ID)
		if err != nil {
			return domain.Artifact{}, err
		}
		req.Source = src
	}
	a, err := h.Build(ctx, req)
	if err != nil {
		return domain.Artifact{}, err
	}
	a.Node = req.Node.ID
	a.Kind = req.Node.Kind
	return a, nil
}

// emit sends a freshly built artifact to the sinks. Sink failures are logged
// and never change the job state.
func (s *Scheduler) emit(ctx context.Context, a domain.Artifact, fp domain.Fingerprint) {
	if s.writer != nil {
		if err := s.writer.Write(ctx, a, true); err != nil {
			s.logger.Warn("writing outputs failed", "node", a.Node.String(), "error", err.Error())
		}
	}
	if s.indexer == nil || a.Kind != domain.KindDocument || a.MetaValue(domain.MetaOutputPath) == "" ||
		a.MetaValue(domain.MetaRedirectTo) != "" {
		return
	}
	doc := domain.SearchDocument{
		ID:       a.Node,
		URL:      a.MetaValue(domain.MetaURL),
		Title:    a.MetaValue(domain.MetaTitle),
		Summary:  a.MetaValue(domain.MetaSummary),
		Content:  a.MetaValue(domain.MetaText),
		Checksum: fp.String(),
	}
	if err := s.indexer.Index(ctx, doc); err != nil {
		s.logger.Warn("indexing failed", "node", a.Node.String(), "error", err.Error())
	}
}
