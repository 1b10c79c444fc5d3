package vcs

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"modfmt/internal/errors"
	"modfmt/internal/shell"
	shared "modfmt/shared/types"
	"modfmt/shared/utils"
)

// Mercurial reads state from an hg working copy. Unlike git, conflict
// state is not part of the status listing: it needs a second query
// (`hg resolve --list`) whose unresolved paths are cross-referenced
// against the status result by relative path.
type Mercurial struct {
	runner shell.Runner
	root   string
}

func NewMercurial(runner shell.Runner) *Mercurial {
	return &Mercurial{runner: runner}
}

func (m *Mercurial) Init(ctx context.Context, path string) error {
	res, err := m.runner.Run(ctx, shell.Request{
		Dir:  filepath.Dir(path),
		Name: "hg",
		Args: []string{"root"},
	})
	if err != nil {
		return fmt.Errorf("running hg root: %w", err)
	}
	if !res.Ok() {
		return errors.NotARepository(path)
	}
	m.root = strings.TrimSpace(string(res.Stdout))
	return nil
}

func (m *Mercurial) Root() string {
	return m.root
}

func (m *Mercurial) Relativize(path string) string {
	rel, err := filepath.Rel(m.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func (m *Mercurial) FileInfo(ctx context.Context, path string) (*shared.FileInfo, error) {
	rel := m.Relativize(path)
	res, err := m.runner.Run(ctx, shell.Request{
		Dir:  m.root,
		Name: "hg",
		Args: []string{"status", "-A", "--", rel},
	})
	if err != nil {
		return nil, errors.QueryFailed(path, err)
	}
	if !res.Ok() {
		return nil, errors.QueryFailed(path, fmt.Errorf("hg status exited %d", res.ExitCode))
	}

	info := &shared.FileInfo{Path: path}
	status := ""
	for _, line := range utils.SplitLines(string(res.Stdout)) {
		code, p, ok := strings.Cut(line, " ")
		if !ok || p != rel {
			continue
		}
		status = code
		break
	}

	switch status {
	case "", "?", "A", "I":
		// Unknown, added and ignored files all take the new-file path:
		// there is no committed baseline to diff against.
		return info, nil
	}
	info.IsTracked = true

	unresolved, err := m.unresolvedPaths(ctx)
	if err != nil {
		return nil, errors.QueryFailed(path, err)
	}
	info.HasConflicts = unresolved[rel]
	return info, nil
}

func (m *Mercurial) ComparisonContent(ctx context.Context, path string) (string, error) {
	rel := m.Relativize(path)
	res, err := m.runner.Run(ctx, shell.Request{
		Dir:  m.root,
		Name: "hg",
		Args: []string{"cat", "--", rel},
	})
	if err != nil {
		return "", errors.ComparisonUnavailable(path, err)
	}
	if !res.Ok() {
		return "", errors.ComparisonUnavailable(path, fmt.Errorf("hg cat exited %d", res.ExitCode))
	}
	return string(res.Stdout), nil
}

// unresolvedPaths returns the set of paths `hg resolve --list` reports
// as unresolved (U state).
func (m *Mercurial) unresolvedPaths(ctx context.Context) (map[string]bool, error) {
	res, err := m.runner.Run(ctx, shell.Request{
		Dir:  m.root,
		Name: "hg",
		Args: []string{"resolve", "--list"},
	})
	if err != nil {
		return nil, err
	}
	if !res.Ok() {
		return nil, fmt.Errorf("hg resolve --list exited %d", res.ExitCode)
	}

	set := make(map[string]bool)
	for _, line := range utils.SplitLines(string(res.Stdout)) {
		code, p, ok := strings.Cut(line, " ")
		if ok && code == "U" {
			set[p] = true
		}
	}
	return set, nil
}
