package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"modfmt/internal/config"
	"modfmt/internal/engine"
	"modfmt/internal/format"
	"modfmt/internal/hunk"
	"modfmt/internal/registry"
	"modfmt/internal/shell"
	"modfmt/internal/vcs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubRunner struct {
	responses map[string]*shell.Result
}

func (s *stubRunner) Run(_ context.Context, req shell.Request) (*shell.Result, error) {
	key := req.Name
	if len(req.Args) > 0 {
		key += " " + strings.Join(req.Args, " ")
	}
	if res, ok := s.responses[key]; ok {
		return res, nil
	}
	return &shell.Result{ExitCode: 1}, nil
}

func newTestWatcher(t *testing.T, runner shell.Runner, cfg *config.Config) (*Watcher, *registry.Registry) {
	t.Helper()

	pool, err := vcs.NewPool(runner, 8, zap.NewNop())
	require.NoError(t, err)
	eng := engine.New(hunk.NewExtractor(hunk.DefaultOptions()), zap.NewNop())
	dispatch := format.NewModificationFormatter(pool, eng, nil, zap.NewNop())

	reg := registry.New()
	w, err := New(cfg, dispatch, reg, runner, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { w.watcher.Close() })
	return w, reg
}

func TestShouldIgnore(t *testing.T) {
	cfg := config.Default()
	w, _ := newTestWatcher(t, &stubRunner{}, cfg)

	sep := string(filepath.Separator)
	assert.True(t, w.shouldIgnore(strings.Join([]string{"repo", ".git", "index"}, sep)))
	assert.True(t, w.shouldIgnore(strings.Join([]string{"repo", "node_modules", "x.c"}, sep)))
	assert.True(t, w.shouldIgnore(""))
	assert.False(t, w.shouldIgnore(strings.Join([]string{"repo", "src", "x.c"}, sep)))
}

func TestAddRootSkipsIgnoredDirs(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git", "objects"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))

	cfg := config.Default()
	w, _ := newTestWatcher(t, &stubRunner{}, cfg)

	require.NoError(t, w.AddRoot(root))
}

// A save of an untracked file takes the new-file path: the configured
// command formats the whole file and the result is flushed to disk.
func TestFormatPathFormatsSavedFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "main.c")
	require.NoError(t, os.WriteFile(path, []byte("int main(){}\n"), 0o644))

	runner := &stubRunner{responses: map[string]*shell.Result{
		"git rev-parse --show-toplevel":        {Stdout: []byte(root + "\n")},
		"git ls-files --stage --eol -- main.c": {},
		"myfmt":                                {Stdout: []byte("int main() {}\n")},
	}}

	cfg := config.Default()
	cfg.VCS = vcs.KindGit
	cfg.Formatters = []config.Formatter{
		{Extensions: []string{".c"}, Command: []string{"myfmt"}},
	}

	w, reg := newTestWatcher(t, runner, cfg)
	w.formatPath(context.Background(), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "int main() {}\n", string(data))
	assert.Equal(t, 1, reg.Len(), "the save records one attachment")
}

// countingRunner tracks how often one command ran.
type countingRunner struct {
	inner shell.Runner
	name  string
	count int
}

func (c *countingRunner) Run(ctx context.Context, req shell.Request) (*shell.Result, error) {
	if req.Name == c.name {
		c.count++
	}
	return c.inner.Run(ctx, req)
}

// The flush above triggers a Write event for our own output; the
// content hash check must swallow it instead of formatting again.
func TestFormatPathSuppressesSelfTriggeredSave(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "main.c")
	require.NoError(t, os.WriteFile(path, []byte("int main(){}\n"), 0o644))

	stub := &stubRunner{responses: map[string]*shell.Result{
		"git rev-parse --show-toplevel":        {Stdout: []byte(root + "\n")},
		"git ls-files --stage --eol -- main.c": {},
		"myfmt":                                {Stdout: []byte("int main() {}\n")},
	}}
	runner := &countingRunner{inner: stub, name: "myfmt"}

	cfg := config.Default()
	cfg.VCS = vcs.KindGit
	cfg.Formatters = []config.Formatter{
		{Extensions: []string{".c"}, Command: []string{"myfmt"}},
	}

	w, _ := newTestWatcher(t, runner, cfg)
	w.formatPath(context.Background(), path)
	require.Equal(t, 1, runner.count)

	// Simulate the event fired by our own flush.
	w.formatPath(context.Background(), path)
	assert.Equal(t, 1, runner.count, "the self-triggered save must not format again")
}
