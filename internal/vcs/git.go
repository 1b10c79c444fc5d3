package vcs

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"modfmt/internal/errors"
	"modfmt/internal/shell"
	shared "modfmt/shared/types"
	"modfmt/shared/utils"
)

// Git reads state from a git working tree. The comparison baseline is
// the index (stage 0) version of the file; conflict detection comes
// from the stage field of the index listing, folded into the same
// query as tracking status.
type Git struct {
	runner shell.Runner
	root   string
}

func NewGit(runner shell.Runner) *Git {
	return &Git{runner: runner}
}

func (g *Git) Init(ctx context.Context, path string) error {
	res, err := g.runner.Run(ctx, shell.Request{
		Dir:  filepath.Dir(path),
		Name: "git",
		Args: []string{"rev-parse", "--show-toplevel"},
	})
	if err != nil {
		return fmt.Errorf("running git rev-parse: %w", err)
	}
	if !res.Ok() {
		return errors.NotARepository(path)
	}
	g.root = strings.TrimSpace(string(res.Stdout))
	return nil
}

func (g *Git) Root() string {
	return g.root
}

func (g *Git) Relativize(path string) string {
	rel, err := filepath.Rel(g.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func (g *Git) FileInfo(ctx context.Context, path string) (*shared.FileInfo, error) {
	rel := g.Relativize(path)
	res, err := g.runner.Run(ctx, shell.Request{
		Dir:  g.root,
		Name: "git",
		Args: []string{"ls-files", "--stage", "--eol", "--", rel},
	})
	if err != nil {
		return nil, errors.QueryFailed(path, err)
	}
	if !res.Ok() {
		return nil, errors.QueryFailed(path, fmt.Errorf("git ls-files exited %d", res.ExitCode))
	}

	info := &shared.FileInfo{Path: path}
	for _, line := range utils.SplitLines(string(res.Stdout)) {
		mode, object, stage, indexEOL, worktreeEOL := parseLsFilesLine(line)
		if mode == "" {
			continue
		}
		info.IsTracked = true
		if stage > 0 {
			// Stage > 0 means the index holds multiple merge stages
			// for this path: an unresolved conflict.
			info.HasConflicts = true
			info.ObjectName = ""
			continue
		}
		info.ObjectName = object
		info.Mode = mode
		info.IndexEOL = indexEOL
		info.WorktreeEOL = worktreeEOL
	}
	return info, nil
}

func (g *Git) ComparisonContent(ctx context.Context, path string) (string, error) {
	rel := g.Relativize(path)
	res, err := g.runner.Run(ctx, shell.Request{
		Dir:  g.root,
		Name: "git",
		Args: []string{"show", ":0:" + rel},
	})
	if err != nil {
		return "", errors.ComparisonUnavailable(path, err)
	}
	if !res.Ok() {
		return "", errors.ComparisonUnavailable(path, fmt.Errorf("git show exited %d", res.ExitCode))
	}
	return string(res.Stdout), nil
}

// parseLsFilesLine splits one `git ls-files --stage --eol` line:
//
//	100644 9daeafb9864cf43055ae93beb0afd6c7d144bfa4 0	i/lf	w/lf	name.txt
//
// The path follows the last tab; the metadata fields before it are
// whitespace-separated. The eol columns carry i/ and w/ prefixes.
func parseLsFilesLine(line string) (mode, object string, stage int, indexEOL, worktreeEOL string) {
	tab := strings.LastIndex(line, "\t")
	if tab < 0 {
		return "", "", 0, "", ""
	}
	fields := strings.Fields(line[:tab])
	if len(fields) < 3 {
		return "", "", 0, "", ""
	}
	mode, object = fields[0], fields[1]
	stage, _ = strconv.Atoi(fields[2])
	for _, f := range fields[3:] {
		switch {
		case strings.HasPrefix(f, "i/"):
			indexEOL = strings.TrimPrefix(f, "i/")
		case strings.HasPrefix(f, "w/"):
			worktreeEOL = strings.TrimPrefix(f, "w/")
		}
	}
	return mode, object, stage, indexEOL, worktreeEOL
}
