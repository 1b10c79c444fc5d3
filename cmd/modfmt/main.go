// cmd/modfmt/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"modfmt/internal/buffer"
	"modfmt/internal/cache"
	"modfmt/internal/config"
	"modfmt/internal/engine"
	"modfmt/internal/format"
	"modfmt/internal/hunk"
	"modfmt/internal/logging"
	"modfmt/internal/registry"
	"modfmt/internal/shell"
	"modfmt/internal/vcs"
	"modfmt/internal/watch"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const version = "0.3.0"

var (
	configPath string
	vcsFlag    string
	noCache    bool
)

var rootCmd = &cobra.Command{
	Use:   "modfmt",
	Short: "Modfmt formats only the lines you changed",
	Long: `Modfmt applies an external code formatter to exactly the regions of a
file that differ from the version-control baseline, so formatting a file
never touches lines you did not modify.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a modfmt.toml config file")
	rootCmd.PersistentFlags().StringVar(&vcsFlag, "vcs", "", "version control backend: git, hg or auto")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "disable the comparison content cache")

	var formatCmd = &cobra.Command{
		Use:   "format [files...]",
		Short: "Format the modified regions of the given files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			pl, err := newPipeline(cfg)
			if err != nil {
				return err
			}
			defer pl.close()

			green := color.New(color.FgGreen).SprintFunc()
			yellow := color.New(color.FgYellow).SprintFunc()

			for _, arg := range args {
				path, err := filepath.Abs(arg)
				if err != nil {
					return fmt.Errorf("resolving %s: %w", arg, err)
				}

				fc := cfg.FormatterFor(path)
				if fc == nil {
					fmt.Printf("%s  %s (no formatter configured)\n", yellow("skip"), arg)
					continue
				}

				buf, err := buffer.Open(path)
				if err != nil {
					return err
				}

				fmtr := format.NewCommandFormatter(pl.runner, *fc, pl.logger.Logger)
				if err := pl.dispatch.Format(cmd.Context(), cfg.VCS, buf, fmtr); err != nil {
					return fmt.Errorf("formatting %s: %w", arg, err)
				}

				if buf.Dirty() {
					fmt.Printf("%s  %s\n", green("fmt"), arg)
				} else {
					fmt.Printf("%s   %s\n", green("ok"), arg)
				}
			}
			return nil
		},
	}

	var watchCmd = &cobra.Command{
		Use:   "watch [dirs...]",
		Short: "Watch directories and format modified regions on save",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			cfg.Watch.FormatOnSave = true

			pl, err := newPipeline(cfg)
			if err != nil {
				return err
			}
			defer pl.close()

			w, err := watch.New(cfg, pl.dispatch, registry.New(), pl.runner, pl.logger.Logger)
			if err != nil {
				return err
			}
			for _, dir := range args {
				root, err := filepath.Abs(dir)
				if err != nil {
					return fmt.Errorf("resolving %s: %w", dir, err)
				}
				if err := w.AddRoot(root); err != nil {
					return err
				}
				fmt.Printf("watching %s\n", root)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := w.Run(ctx); err != nil && err != context.Canceled {
				return err
			}
			return nil
		},
	}

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the modfmt version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("modfmt %s\n", version)
		},
	}

	rootCmd.AddCommand(formatCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}

// pipeline bundles the long-lived pieces one invocation needs.
type pipeline struct {
	runner   shell.Runner
	dispatch *format.ModificationFormatter
	store    *cache.Store
	logger   *logging.Logger
}

func (p *pipeline) close() {
	if p.store != nil {
		if err := p.store.Close(); err != nil {
			p.logger.Warn("closing cache", zap.Error(err))
		}
	}
	p.logger.Sync()
}

func newPipeline(cfg *config.Config) (*pipeline, error) {
	log, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	runner := shell.NewRunner()

	pool, err := vcs.NewPool(runner, 32, log.Logger)
	if err != nil {
		return nil, err
	}

	var store *cache.Store
	if cfg.Cache.Enabled && !noCache {
		store, err = cache.Open(cfg.Cache.Path, log.Logger)
		if err != nil {
			// The cache is an optimization; a broken cache directory
			// must not block formatting.
			log.Warn("cache unavailable, continuing without it", zap.Error(err))
			store = nil
		}
	}

	eng := engine.New(hunk.NewExtractor(hunk.DefaultOptions()), log.Logger)
	return &pipeline{
		runner:   runner,
		dispatch: format.NewModificationFormatter(pool, eng, store, log.Logger),
		store:    store,
		logger:   log,
	}, nil
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		if _, err := os.Stat("modfmt.toml"); err == nil {
			path = "modfmt.toml"
		}
	}

	cfg := config.Default()
	if path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return nil, err
		}
	}
	if vcsFlag != "" {
		cfg.VCS = vcsFlag
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		red := color.New(color.FgRed).SprintFunc()
		fmt.Fprintf(os.Stderr, "%s %v\n", red("error:"), err)
		os.Exit(1)
	}
}
