// Package vcs detects changed source files with go-git.
package vcs

import (
	"context"
	"path/filepath"
	"slices"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"go.trai.ch/press/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ChangeDetector = (*Detector)(nil)

// Detector reports the files that differ between a revision and the working tree.
type Detector struct{}

// NewDetector creates a Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// ChangedPaths returns absolute paths of files changed between since and HEAD,
// plus files with staged, unstaged, or untracked changes. root may be any
// directory inside the work tree.
func (d *Detector) ChangedPaths(ctx context.Context, root, since string) ([]string, error) {
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "open repository"), "path", root)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, zerr.Wrap(err, "open worktree")
	}
	top := wt.Filesystem.Root()

	sinceTree, err := treeAt(repo, plumbing.Revision(since))
	if err != nil {
		return nil, zerr.With(err, "revision", since)
	}
	headTree, err := treeAt(repo, plumbing.Revision(plumbing.HEAD))
	if err != nil {
		return nil, zerr.With(err, "revision", "HEAD")
	}

	changes, err := object.DiffTreeWithOptions(ctx, sinceTree, headTree, nil)
	if err != nil {
		return nil, zerr.Wrap(err, "diff trees")
	}

	seen := make(map[string]struct{})
	for _, ch := range changes {
		for _, name := range []string{ch.From.Name, ch.To.Name} {
			if name != "" {
				seen[name] = struct{}{}
			}
		}
	}

	status, err := wt.Status()
	if err != nil {
		return nil, zerr.Wrap(err, "worktree status")
	}
	for name, st := range status {
		if st.Worktree != git.Unmodified || st.Staging != git.Unmodified {
			seen[name] = struct{}{}
		}
	}

	paths := make([]string, 0, len(seen))
	for name := range seen {
		paths = append(paths, filepath.Join(top, filepath.FromSlash(name)))
	}
	slices.Sort(paths)
	return paths, nil
}

func treeAt(repo *git.Repository, rev plumbing.Revision) (*object.Tree, error) {
	hash, err := repo.ResolveRevision(rev)
	if err != nil {
		return nil, zerr.Wrap(err, "resolve revision")
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, zerr.Wrap(err, "get commit object")
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, zerr.Wrap(err, "get tree")
	}
	return tree, nil
}
