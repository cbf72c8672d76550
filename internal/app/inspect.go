package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"go.trai.ch/press/internal/core/domain"
	"go.trai.ch/zerr"
)

// Graph output formats.
const (
	FormatText = "text"
	FormatDot  = "dot"
)

// GraphOptions configuration for the Graph method.
type GraphOptions struct {
	Config string
	Format string
}

// Graph writes the content graph of the site to w.
func (a *App) Graph(ctx context.Context, w io.Writer, opts GraphOptions) error {
	graph, upd, err := a.inspect(ctx, opts.Config)
	if err != nil {
		return err
	}
	for _, c := range upd.Cycles {
		a.logger.Warn("edge rejected", "error", c)
	}

	bw := bufio.NewWriter(w)
	switch opts.Format {
	case "", FormatText:
		writeText(bw, graph)
	case FormatDot:
		writeDot(bw, graph)
	default:
		return zerr.With(zerr.New("unknown graph format"), "format", opts.Format)
	}
	return bw.Flush()
}

func writeText(w *bufio.Writer, graph *domain.ContentGraph) {
	for node := range graph.Nodes() {
		_, _ = fmt.Fprintf(w, "%s [%s]\n", node.ID, node.Kind)
		for _, e := range graph.EdgesFrom(node.ID) {
			_, _ = fmt.Fprintf(w, "  -> %s (%s)\n", e.To, e.Kind)
		}
	}
}

func writeDot(w *bufio.Writer, graph *domain.ContentGraph) {
	_, _ = w.WriteString("digraph press {\n")
	for node := range graph.Nodes() {
		_, _ = fmt.Fprintf(w, "  %s [label=%s];\n",
			strconv.Quote(node.ID.String()),
			strconv.Quote(node.ID.String()+"\n"+string(node.Kind)))
	}
	for e := range graph.Edges() {
		style := ""
		if !e.Kind.IsStrict() {
			style = ", style=dashed"
		}
		_, _ = fmt.Fprintf(w, "  %s -> %s [label=%s%s];\n",
			strconv.Quote(e.From.String()), strconv.Quote(e.To.String()), strconv.Quote(e.Kind.String()), style)
	}
	_, _ = w.WriteString("}\n")
}

// CheckOptions configuration for the Check method.
type CheckOptions struct {
	Config string
}

// CheckResult lists the structural problems of a site.
type CheckResult struct {
	Nodes       int
	Cycles      [][]domain.NodeID
	BrokenLinks []domain.BrokenLink
}

// OK reports whether the site has no problems.
func (r *CheckResult) OK() bool {
	return len(r.Cycles) == 0 && len(r.BrokenLinks) == 0
}

// Check validates the content graph of the site without building it. The
// error wraps domain.ErrCycleDetected or domain.ErrBrokenLink for every
// problem found.
func (a *App) Check(ctx context.Context, opts CheckOptions) (*CheckResult, error) {
	graph, upd, err := a.inspect(ctx, opts.Config)
	if err != nil {
		return nil, err
	}

	result := &CheckResult{Nodes: graph.Len(), BrokenLinks: upd.Broken}
	for _, c := range upd.Cycles {
		result.Cycles = append(result.Cycles, c.Path)
	}

	if result.OK() {
		return result, nil
	}
	errs := []error{upd.Err()}
	if n := len(result.BrokenLinks); n > 0 {
		errs = append(errs, zerr.With(zerr.Wrap(domain.ErrBrokenLink, "site has broken links"), "count", n))
	}
	return result, errors.Join(errs...)
}

// inspect builds the content graph of the site without touching its stores.
func (a *App) inspect(ctx context.Context, config string) (*domain.ContentGraph, *update, error) {
	site, err := a.loadSite(config)
	if err != nil {
		return nil, nil, err
	}
	s := &session{site: site, graph: domain.NewContentGraph()}
	upd, _, err := a.load(ctx, s, "")
	if err != nil {
		return nil, nil, err
	}
	return s.graph, upd, nil
}
