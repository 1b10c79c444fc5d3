// Package watch implements format-on-save: a filesystem watcher that
// runs one formatting pass whenever a configured file type is written.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"modfmt/internal/buffer"
	"modfmt/internal/config"
	"modfmt/internal/format"
	"modfmt/internal/registry"
	"modfmt/internal/shell"
	"modfmt/shared/utils"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Watcher struct {
	watcher  *fsnotify.Watcher
	cfg      *config.Config
	dispatch *format.ModificationFormatter
	registry *registry.Registry
	runner   shell.Runner
	logger   *zap.Logger

	ignoreDirs map[string]bool

	mu       sync.Mutex
	inFlight map[string]bool
	lastHash map[string]string
}

func New(cfg *config.Config, dispatch *format.ModificationFormatter, reg *registry.Registry, runner shell.Runner, logger *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	ignore := make(map[string]bool, len(cfg.Watch.IgnoreDirs))
	for _, d := range cfg.Watch.IgnoreDirs {
		ignore[d] = true
	}

	return &Watcher{
		watcher:    fsw,
		cfg:        cfg,
		dispatch:   dispatch,
		registry:   reg,
		runner:     runner,
		logger:     logger,
		ignoreDirs: ignore,
		inFlight:   make(map[string]bool),
		lastHash:   make(map[string]string),
	}, nil
}

// AddRoot recursively registers root and its subdirectories with the
// watcher, skipping ignored directories.
func (w *Watcher) AddRoot(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if w.shouldIgnore(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("adding %s to watcher: %w", path, err)
		}
		return nil
	})
}

// Run processes filesystem events until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if w.shouldIgnore(event.Name) {
		return
	}

	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.watcher.Add(event.Name); err != nil {
				w.logger.Error("adding new directory to watcher", zap.Error(err))
			}
			return
		}
	}

	if event.Op&fsnotify.Write != fsnotify.Write {
		return
	}
	if w.cfg.FormatterFor(event.Name) == nil {
		return
	}

	w.formatPath(ctx, event.Name)
}

// formatPath runs one pass over a saved file. At most one pass per
// path is in flight; a write event caused by our own flush is
// suppressed by comparing content hashes.
func (w *Watcher) formatPath(ctx context.Context, path string) {
	w.mu.Lock()
	if w.inFlight[path] {
		w.mu.Unlock()
		return
	}
	w.inFlight[path] = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		delete(w.inFlight, path)
		w.mu.Unlock()
	}()

	buf, err := buffer.Open(path)
	if err != nil {
		w.logger.Error("reading saved file", zap.String("file", path), zap.Error(err))
		return
	}

	hash := utils.HashContent([]byte(buf.Content()))
	w.mu.Lock()
	last := w.lastHash[path]
	w.mu.Unlock()
	if hash == last {
		return
	}

	att := w.attachmentFor(buf)
	fmtr := format.NewCommandFormatter(w.runner, att.Formatter, w.logger)
	if err := w.dispatch.Format(ctx, att.VCS, buf, fmtr); err != nil {
		w.logger.Error("formatting failed", zap.String("file", path), zap.Error(err))
		return
	}

	w.mu.Lock()
	w.lastHash[path] = utils.HashContent([]byte(buf.Content()))
	w.mu.Unlock()
}

// attachmentFor returns the existing attachment for the file, or
// records a new one for this save session.
func (w *Watcher) attachmentFor(buf *buffer.Buffer) *registry.Attachment {
	fc := w.cfg.FormatterFor(buf.Path())
	clientID := "command"
	if len(fc.Command) > 0 {
		clientID = fc.Command[0]
	}

	for _, att := range w.registry.ByPath(buf.Path()) {
		if att.ClientID == clientID {
			return att
		}
	}

	att := &registry.Attachment{
		BufferID:     uuid.New(),
		ClientID:     clientID,
		Path:         buf.Path(),
		VCS:          w.cfg.VCS,
		Formatter:    *fc,
		FormatOnSave: true,
	}
	if err := w.registry.Attach(att); err != nil {
		w.logger.Warn("recording attachment", zap.Error(err))
	}
	return att
}

func (w *Watcher) shouldIgnore(path string) bool {
	if path == "" {
		return true
	}
	parts := strings.Split(path, string(filepath.Separator))
	for _, part := range parts {
		if w.ignoreDirs[part] {
			return true
		}
	}
	return false
}
