package vcs

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"modfmt/internal/shell"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// Pool caches initialized sources per (backend, directory) so watch
// mode does not re-run root discovery on every save. A cached source
// is re-validated before reuse: its root must still exist and still
// contain the requested directory, otherwise it is evicted and
// re-initialized.
type Pool struct {
	runner  shell.Runner
	sources *lru.Cache[string, Source]
	logger  *zap.Logger
}

func NewPool(runner shell.Runner, size int, logger *zap.Logger) (*Pool, error) {
	cache, err := lru.New[string, Source](size)
	if err != nil {
		return nil, err
	}
	return &Pool{runner: runner, sources: cache, logger: logger}, nil
}

// Acquire returns an initialized source for path. kind may be KindAuto,
// in which case git is tried first, then mercurial.
func (p *Pool) Acquire(ctx context.Context, kind, path string) (Source, error) {
	dir := filepath.Dir(path)
	key := kind + ":" + dir

	if src, ok := p.sources.Get(key); ok {
		if p.rootValid(src, dir) {
			return src, nil
		}
		p.logger.Debug("stale vcs root, reinitializing", zap.String("dir", dir))
		p.sources.Remove(key)
	}

	src, err := p.initialize(ctx, kind, path)
	if err != nil {
		return nil, err
	}
	p.sources.Add(key, src)
	return src, nil
}

func (p *Pool) initialize(ctx context.Context, kind, path string) (Source, error) {
	if kind != KindAuto {
		src, err := New(kind, p.runner)
		if err != nil {
			return nil, err
		}
		if err := src.Init(ctx, path); err != nil {
			return nil, err
		}
		return src, nil
	}

	git := NewGit(p.runner)
	if err := git.Init(ctx, path); err == nil {
		return git, nil
	}
	hg := NewMercurial(p.runner)
	if err := hg.Init(ctx, path); err != nil {
		return nil, err
	}
	return hg, nil
}

func (p *Pool) rootValid(src Source, dir string) bool {
	root := src.Root()
	if root == "" {
		return false
	}
	if _, err := os.Stat(root); err != nil {
		return false
	}
	rel, err := filepath.Rel(root, dir)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
