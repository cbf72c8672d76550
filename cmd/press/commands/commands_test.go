package commands_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/press/cmd/press/commands"
	"go.trai.ch/press/internal/app"
	"go.trai.ch/press/internal/build"
	"go.trai.ch/press/internal/core/domain"
)

type mockApp struct {
	buildFunc func(ctx context.Context, opts app.BuildOptions) (*domain.BuildReport, error)
	graphFunc func(ctx context.Context, w io.Writer, opts app.GraphOptions) error
	checkFunc func(ctx context.Context, opts app.CheckOptions) (*app.CheckResult, error)
	cleanFunc func(ctx context.Context, opts app.CleanOptions) error
	watchFunc func(ctx context.Context, opts app.WatchOptions) error
	verbose   bool
}

func (m *mockApp) Build(ctx context.Context, opts app.BuildOptions) (*domain.BuildReport, error) {
	if m.buildFunc != nil {
		return m.buildFunc(ctx, opts)
	}
	return &domain.BuildReport{}, nil
}

func (m *mockApp) Graph(ctx context.Context, w io.Writer, opts app.GraphOptions) error {
	if m.graphFunc != nil {
		return m.graphFunc(ctx, w, opts)
	}
	return nil
}

func (m *mockApp) Check(ctx context.Context, opts app.CheckOptions) (*app.CheckResult, error) {
	if m.checkFunc != nil {
		return m.checkFunc(ctx, opts)
	}
	return &app.CheckResult{}, nil
}

func (m *mockApp) Clean(ctx context.Context, opts app.CleanOptions) error {
	if m.cleanFunc != nil {
		return m.cleanFunc(ctx, opts)
	}
	return nil
}

func (m *mockApp) Watch(ctx context.Context, opts app.WatchOptions) error {
	if m.watchFunc != nil {
		return m.watchFunc(ctx, opts)
	}
	return nil
}

func (m *mockApp) SetVerbose(verbose bool) {
	m.verbose = verbose
}

func execute(t *testing.T, a commands.Application, args ...string) (string, error) {
	t.Helper()
	cli := commands.New(a)
	cli.SetArgs(args)
	out := new(bytes.Buffer)
	cli.SetOutput(out, new(bytes.Buffer))
	err := cli.Execute(context.Background())
	return out.String(), err
}

func TestCommands_Build(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		var captured app.BuildOptions
		mock := &mockApp{
			buildFunc: func(_ context.Context, opts app.BuildOptions) (*domain.BuildReport, error) {
				captured = opts
				return &domain.BuildReport{}, nil
			},
		}

		_, err := execute(t, mock, "build", "--force", "--since", "HEAD~1", "-j", "3", "-c", "site/press.yaml", "-v")
		require.NoError(t, err)
		assert.True(t, captured.Force)
		assert.Equal(t, "HEAD~1", captured.Since)
		assert.Equal(t, 3, captured.Parallelism)
		assert.Equal(t, "site/press.yaml", captured.Config)
		assert.True(t, mock.verbose)
	})

	t.Run("prints summary with failures and broken links", func(t *testing.T) {
		mock := &mockApp{
			buildFunc: func(_ context.Context, _ app.BuildOptions) (*domain.BuildReport, error) {
				return &domain.BuildReport{
					Done:      2,
					Failed:    1,
					Skipped:   1,
					CacheHits: 1,
					Failures: []domain.NodeFailure{{
						Node:    domain.NewNodeID("templates/page.html"),
						Message: "parse error",
						Skipped: []domain.NodeID{domain.NewNodeID("content/index.md")},
					}},
					BrokenLinks: []domain.BrokenLink{{From: domain.NewNodeID("content/index.md"), To: "content/gone.md"}},
				}, domain.ErrBuildFailed
			},
		}

		out, err := execute(t, mock, "build")
		require.ErrorIs(t, err, domain.ErrBuildFailed)
		assert.Contains(t, out, "built 2, cached 1, failed 1, skipped 1")
		assert.Contains(t, out, "FAIL templates/page.html: parse error")
		assert.Contains(t, out, "  skipped content/index.md")
		assert.Contains(t, out, "broken link content/index.md -> content/gone.md")
	})

	t.Run("prints report as json", func(t *testing.T) {
		mock := &mockApp{
			buildFunc: func(_ context.Context, _ app.BuildOptions) (*domain.BuildReport, error) {
				return &domain.BuildReport{BuildID: "b-1", Done: 4, Executed: 4}, nil
			},
		}

		out, err := execute(t, mock, "build", "--json")
		require.NoError(t, err)

		var decoded map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &decoded))
		assert.Equal(t, "b-1", decoded["build_id"])
		assert.InDelta(t, 4, decoded["executed"], 0)
	})

	t.Run("returns error without report", func(t *testing.T) {
		mock := &mockApp{
			buildFunc: func(_ context.Context, _ app.BuildOptions) (*domain.BuildReport, error) {
				return nil, errors.New("simulated error")
			},
		}

		out, err := execute(t, mock, "build")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
		assert.Empty(t, out)
	})

	t.Run("rejects positional arguments", func(t *testing.T) {
		_, err := execute(t, &mockApp{}, "build", "extra")
		require.Error(t, err)
	})
}

func TestCommands_Graph(t *testing.T) {
	var captured app.GraphOptions
	mock := &mockApp{
		graphFunc: func(_ context.Context, w io.Writer, opts app.GraphOptions) error {
			captured = opts
			_, err := io.WriteString(w, "digraph press {}\n")
			return err
		},
	}

	out, err := execute(t, mock, "graph", "--format", "dot")
	require.NoError(t, err)
	assert.Equal(t, app.FormatDot, captured.Format)
	assert.Equal(t, ".", captured.Config)
	assert.Equal(t, "digraph press {}\n", out)

	_, err = execute(t, mock, "graph")
	require.NoError(t, err)
	assert.Equal(t, app.FormatText, captured.Format)
}

func TestCommands_Check(t *testing.T) {
	t.Run("clean site", func(t *testing.T) {
		mock := &mockApp{
			checkFunc: func(_ context.Context, _ app.CheckOptions) (*app.CheckResult, error) {
				return &app.CheckResult{Nodes: 7}, nil
			},
		}

		out, err := execute(t, mock, "check")
		require.NoError(t, err)
		assert.Equal(t, "7 nodes, no problems found\n", out)
	})

	t.Run("reports problems", func(t *testing.T) {
		mock := &mockApp{
			checkFunc: func(_ context.Context, _ app.CheckOptions) (*app.CheckResult, error) {
				return &app.CheckResult{
					Nodes:       3,
					Cycles:      [][]domain.NodeID{{domain.NewNodeID("a"), domain.NewNodeID("b"), domain.NewNodeID("a")}},
					BrokenLinks: []domain.BrokenLink{{From: domain.NewNodeID("a"), To: "missing"}},
				}, errors.New("site has problems")
			},
		}

		out, err := execute(t, mock, "check")
		require.Error(t, err)
		assert.Contains(t, out, "cycle: [a b a]")
		assert.Contains(t, out, "broken link a -> missing")
		assert.NotContains(t, out, "no problems found")
	})
}

func TestCommands_Clean(t *testing.T) {
	var captured app.CleanOptions
	called := false
	mock := &mockApp{
		cleanFunc: func(_ context.Context, opts app.CleanOptions) error {
			captured = opts
			called = true
			return nil
		},
	}

	_, err := execute(t, mock, "clean", "--gc")
	require.NoError(t, err)
	assert.True(t, called)
	assert.True(t, captured.GC)
}

func TestCommands_Watch(t *testing.T) {
	var captured app.WatchOptions
	mock := &mockApp{
		watchFunc: func(_ context.Context, opts app.WatchOptions) error {
			captured = opts
			return nil
		},
	}

	_, err := execute(t, mock, "watch", "--jobs", "2")
	require.NoError(t, err)
	assert.Equal(t, 2, captured.Parallelism)
}

func TestCommands_Version(t *testing.T) {
	out, err := execute(t, &mockApp{}, "version")
	require.NoError(t, err)
	assert.Equal(t, "press version "+build.Version+" (commit: "+build.Commit+", date: "+build.Date+")\n", out)

	out, err = execute(t, &mockApp{}, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "press version "+build.Version)
}

func TestCommands_VerboseShorthand(t *testing.T) {
	mock := &mockApp{}
	out, err := execute(t, mock, "version", "-v")
	require.NoError(t, err)
	assert.True(t, mock.verbose)
	assert.Contains(t, out, "press version")

	mock = &mockApp{}
	_, err = execute(t, mock, "build", "--verbose")
	require.NoError(t, err)
	assert.True(t, mock.verbose)
}
