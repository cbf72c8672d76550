package ports

import "context"

// ChangeDetector reports paths changed in a repository since a revision.
//
//go:generate go run go.uber.org/mock/mockgen -source=vcs.go -destination=mocks/mock_vcs.go -package=mocks
type ChangeDetector interface {
	// ChangedPaths returns slash-separated paths relative to root that differ
	// between since and the working tree, including uncommitted changes.
	ChangedPaths(ctx context.Context, root, since string) ([]string, error)
}
