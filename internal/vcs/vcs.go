// Package vcs resolves a file's repository root, tracking state,
// conflict state and baseline content by shelling out to a
// version-control backend. Two variants exist behind one interface;
// callers pick one by configuration key, never by type.
package vcs

import (
	"context"
	"fmt"

	"modfmt/internal/shell"
	shared "modfmt/shared/types"
)

const (
	KindGit       = "git"
	KindMercurial = "hg"
	KindAuto      = "auto"
)

// Source is the capability interface over a version-control backend.
// Init must be called (and succeed) before any other method. All
// queries run fresh against the working tree; results are never cached
// across formatting requests.
type Source interface {
	// Init resolves the repository root for the directory containing
	// path. Returns a NOT_A_REPOSITORY error when root discovery
	// exits non-zero.
	Init(ctx context.Context, path string) error

	// Root returns the repository root resolved by Init.
	Root() string

	// Relativize converts an absolute path into a slash-separated path
	// relative to the root. Pure path computation, no I/O.
	Relativize(path string) string

	// FileInfo queries tracking and conflict state for path.
	FileInfo(ctx context.Context, path string) (*shared.FileInfo, error)

	// ComparisonContent retrieves the baseline version of path exactly
	// as the backend stores it, byte for byte. A baseline without a
	// final newline stays without one.
	ComparisonContent(ctx context.Context, path string) (string, error)
}

// New returns an uninitialized source for the given backend key.
func New(kind string, runner shell.Runner) (Source, error) {
	switch kind {
	case KindGit:
		return NewGit(runner), nil
	case KindMercurial:
		return NewMercurial(runner), nil
	default:
		return nil, fmt.Errorf("unknown vcs %q", kind)
	}
}
