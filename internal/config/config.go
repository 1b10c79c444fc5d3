// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Config struct {
	// VCS selects the backend: "git", "hg" or "auto" (try git, then hg).
	VCS      string `toml:"vcs"`
	LogLevel string `toml:"log_level"` // debug, info, warn, error

	Cache      Cache       `toml:"cache"`
	Watch      Watch       `toml:"watch"`
	Formatters []Formatter `toml:"formatter"`
}

type Cache struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type Watch struct {
	FormatOnSave bool     `toml:"format_on_save"`
	IgnoreDirs   []string `toml:"ignore_dirs"`
}

// Formatter maps a set of file extensions to an external formatting
// command. Command is the range template ({file}, {start}, {end},
// {startcol}, {endcol} placeholders); FullCommand is used for
// whole-file requests and defaults to Command stripped of range
// placeholders.
type Formatter struct {
	Extensions  []string `toml:"extensions"`
	Command     []string `toml:"command"`
	FullCommand []string `toml:"full_command"`
}

func Default() *Config {
	return &Config{
		VCS:      "auto",
		LogLevel: "info",
		Cache: Cache{
			Enabled: true,
			Path:    filepath.Join(os.TempDir(), "modfmt-cache"),
		},
		Watch: Watch{
			IgnoreDirs: []string{".git", ".hg", "node_modules", "vendor", "dist", "build"},
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("decoding config %s: %w", path, err)
	}
	if len(cfg.Watch.IgnoreDirs) == 0 {
		cfg.Watch.IgnoreDirs = Default().Watch.IgnoreDirs
	}
	return cfg, nil
}

// FormatterFor returns the formatter configured for path's extension,
// or nil when none matches.
func (c *Config) FormatterFor(path string) *Formatter {
	ext := filepath.Ext(path)
	for i := range c.Formatters {
		for _, e := range c.Formatters[i].Extensions {
			if e == ext {
				return &c.Formatters[i]
			}
		}
	}
	return nil
}
