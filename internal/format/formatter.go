// Package format holds the formatting capability and the dispatch
// layer that decides, per file, between whole-file formatting,
// modification-only formatting and no formatting at all.
package format

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"modfmt/internal/buffer"
	"modfmt/internal/config"
	"modfmt/internal/shell"
	shared "modfmt/shared/types"

	"go.uber.org/zap"
)

// Formatter rewrites buffer content. A nil range means "format the
// entire file". The call is synchronous: any mutation is visible in
// buf.Content() once Format returns.
type Formatter interface {
	Format(ctx context.Context, buf *buffer.Buffer, rng *shared.LineRange) error
}

// CommandFormatter runs a configured external command. The buffer
// content is piped to stdin and the formatted content read from
// stdout; identical output leaves the buffer untouched. Placeholders
// in the argument template: {file}, {start}, {end}, {startcol},
// {endcol}.
type CommandFormatter struct {
	runner shell.Runner
	cfg    config.Formatter
	logger *zap.Logger
}

func NewCommandFormatter(runner shell.Runner, cfg config.Formatter, logger *zap.Logger) *CommandFormatter {
	return &CommandFormatter{runner: runner, cfg: cfg, logger: logger}
}

func (f *CommandFormatter) Format(ctx context.Context, buf *buffer.Buffer, rng *shared.LineRange) error {
	argv := f.argv(buf.Path(), rng)
	if len(argv) == 0 {
		return fmt.Errorf("no formatter command configured for %s", buf.Path())
	}

	res, err := f.runner.Run(ctx, shell.Request{
		Dir:   filepath.Dir(buf.Path()),
		Name:  argv[0],
		Args:  argv[1:],
		Stdin: []byte(buf.Content()),
	})
	if err != nil {
		return fmt.Errorf("running formatter %s: %w", argv[0], err)
	}
	if !res.Ok() {
		return fmt.Errorf("formatter %s exited %d: %s",
			argv[0], res.ExitCode, strings.TrimSpace(string(res.Stderr)))
	}

	buf.SetContent(string(res.Stdout))
	return nil
}

func (f *CommandFormatter) argv(path string, rng *shared.LineRange) []string {
	if rng == nil {
		if len(f.cfg.FullCommand) > 0 {
			return expand(f.cfg.FullCommand, path, nil)
		}
		return stripRangeArgs(expand(f.cfg.Command, path, nil))
	}
	return expand(f.cfg.Command, path, rng)
}

func expand(template []string, path string, rng *shared.LineRange) []string {
	out := make([]string, 0, len(template))
	for _, arg := range template {
		arg = strings.ReplaceAll(arg, "{file}", path)
		if rng != nil {
			arg = strings.ReplaceAll(arg, "{start}", strconv.Itoa(rng.Start.Line))
			arg = strings.ReplaceAll(arg, "{end}", strconv.Itoa(rng.End.Line))
			arg = strings.ReplaceAll(arg, "{startcol}", strconv.Itoa(rng.Start.Col))
			arg = strings.ReplaceAll(arg, "{endcol}", strconv.Itoa(rng.End.Col))
		}
		out = append(out, arg)
	}
	return out
}

// stripRangeArgs drops arguments that still carry range placeholders,
// turning a range template into a whole-file invocation.
func stripRangeArgs(argv []string) []string {
	out := argv[:0:0]
	for _, arg := range argv {
		if strings.Contains(arg, "{start") || strings.Contains(arg, "{end") {
			continue
		}
		out = append(out, arg)
	}
	return out
}
