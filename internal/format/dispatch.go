package format

import (
	"context"

	"modfmt/internal/buffer"
	"modfmt/internal/cache"
	"modfmt/internal/engine"
	"modfmt/internal/vcs"
	shared "modfmt/shared/types"

	"go.uber.org/zap"
)

// ModificationFormatter decides how a buffer gets formatted:
//
//   - outside a repository: skip with a warning, not an error;
//   - status query fails: report and stop;
//   - untracked file: one whole-file format, no diffing;
//   - unresolved conflicts: no action at all, to protect the markers;
//   - otherwise: converge the modified regions against the baseline.
type ModificationFormatter struct {
	pool   *vcs.Pool
	engine *engine.Engine
	cache  *cache.Store // nil disables the comparee cache
	logger *zap.Logger
}

func NewModificationFormatter(pool *vcs.Pool, eng *engine.Engine, store *cache.Store, logger *zap.Logger) *ModificationFormatter {
	return &ModificationFormatter{pool: pool, engine: eng, cache: store, logger: logger}
}

// Format runs one formatting invocation for buf. The error return
// covers query failures and formatter failures; the deliberate silent
// paths (not a repository, conflicted file) return nil.
func (m *ModificationFormatter) Format(ctx context.Context, vcsKind string, buf *buffer.Buffer, fmtr Formatter) error {
	log := m.logger.With(zap.String("file", buf.Path()))

	src, err := m.pool.Acquire(ctx, vcsKind, buf.Path())
	if err != nil {
		log.Warn("not inside a repository, skipping", zap.Error(err))
		return nil
	}

	info, err := src.FileInfo(ctx, buf.Path())
	if err != nil {
		log.Error("file status query failed", zap.Error(err))
		return err
	}

	if !info.IsTracked {
		log.Debug("untracked file, formatting whole buffer")
		if err := fmtr.Format(ctx, buf, nil); err != nil {
			return err
		}
		return buf.Flush()
	}

	if info.HasConflicts {
		log.Debug("unresolved conflicts, leaving file untouched")
		return nil
	}

	comparison, err := m.comparisonContent(ctx, src, info)
	if err != nil {
		log.Error("comparison content unavailable", zap.Error(err))
		return err
	}

	err = m.engine.Run(comparison, buf.Content, func(rng shared.LineRange) error {
		r := rng
		return fmtr.Format(ctx, buf, &r)
	})
	if err != nil {
		return err
	}
	return buf.Flush()
}

// comparisonContent serves the baseline from the cache when it can,
// falling back to the backend. The content passes through untouched in
// both directions so the comparison text is always the exact baseline
// bytes.
func (m *ModificationFormatter) comparisonContent(ctx context.Context, src vcs.Source, info *shared.FileInfo) (string, error) {
	if m.cache != nil {
		if content, ok := m.cache.Get(info.ObjectName); ok {
			return content, nil
		}
	}

	content, err := src.ComparisonContent(ctx, info.Path)
	if err != nil {
		return "", err
	}
	if m.cache != nil {
		m.cache.Put(info.ObjectName, content)
	}
	return content, nil
}
