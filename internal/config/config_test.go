package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "modfmt.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
vcs = "hg"
log_level = "debug"

[cache]
enabled = false

[[formatter]]
extensions = [".c", ".h"]
command = ["clang-format", "--assume-filename={file}", "--lines={start}:{end}"]

[[formatter]]
extensions = [".go"]
command = ["gofmt"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "hg", cfg.VCS)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.Cache.Enabled)
	require.Len(t, cfg.Formatters, 2)
	assert.NotEmpty(t, cfg.Watch.IgnoreDirs, "defaults survive a partial config")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestFormatterFor(t *testing.T) {
	cfg := Default()
	cfg.Formatters = []Formatter{
		{Extensions: []string{".c", ".h"}, Command: []string{"clang-format"}},
		{Extensions: []string{".go"}, Command: []string{"gofmt"}},
	}

	tests := []struct {
		path string
		want string
	}{
		{"src/main.c", "clang-format"},
		{"include/api.h", "clang-format"},
		{"cmd/main.go", "gofmt"},
		{"README.md", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			fc := cfg.FormatterFor(tt.path)
			if tt.want == "" {
				assert.Nil(t, fc)
				return
			}
			require.NotNil(t, fc)
			assert.Equal(t, tt.want, fc.Command[0])
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "auto", cfg.VCS)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.Cache.Enabled)
	assert.Contains(t, cfg.Watch.IgnoreDirs, ".git")
}
