// Package engine drives formatting to convergence: diff the buffer
// against a fixed comparison text, format each changed range, and
// re-derive the changes after every mutation until a full pass leaves
// the buffer untouched.
package engine

import (
	"strings"

	"modfmt/internal/hunk"
	shared "modfmt/shared/types"
	"modfmt/shared/utils"

	"go.uber.org/zap"
)

// ReadBuffer returns the current buffer content. It must be
// side-effect free and must observe any mutation made by a prior
// FormatRange call.
type ReadBuffer func() string

// FormatRange applies the external formatter to one line range. It is
// allowed to insert or delete lines; it must not return before its
// mutation, if any, is visible to ReadBuffer.
type FormatRange func(rng shared.LineRange) error

type Engine struct {
	extractor *hunk.Extractor
	logger    *zap.Logger
}

func New(extractor *hunk.Extractor, logger *zap.Logger) *Engine {
	return &Engine{extractor: extractor, logger: logger}
}

// Run formats every region of the buffer that differs from comparison.
//
// Formatting a range can shift the line numbers of every hunk after
// it, so the moment a format call changes the buffer the remaining
// hunks from that extraction are stale and are thrown away; the outer
// loop re-diffs and starts over. A pass in which no format call
// changes anything is the convergence condition.
//
// Errors from the extractor or the formatter abort the pass and
// propagate; the engine makes no attempt at partial recovery.
func (e *Engine) Run(comparison string, read ReadBuffer, format FormatRange) error {
	passes := 0
	for {
		converged := true
		passes++

		content := read()
		lines := utils.SplitLines(content)

		hunks, err := e.extractor.Extract(comparison, content)
		if err != nil {
			return err
		}
		e.logger.Debug("extracted hunks",
			zap.Int("pass", passes),
			zap.Int("count", len(hunks)))

		for _, h := range hunks {
			if h.NewCount == 0 {
				// Pure deletion: no buffer lines to format.
				continue
			}

			first, last := h.Lines()
			// The \r of a CRLF line is line-ending, not content; it
			// must not widen the range.
			endCol := len(strings.TrimSuffix(lines[last-1], "\r")) - 1
			if endCol < 0 {
				endCol = 0
			}
			rng := shared.LineRange{
				Start: shared.Position{Line: first, Col: 0},
				End:   shared.Position{Line: last, Col: endCol},
			}

			if err := format(rng); err != nil {
				return err
			}

			newContent := read()
			if newContent != content {
				// The formatter changed line counts and/or content;
				// every remaining hunk's position is now suspect.
				// Abandon this pass and re-diff.
				converged = false
				e.logger.Debug("buffer mutated, restarting pass",
					zap.Int("pass", passes),
					zap.Int("line", first))
				break
			}
		}

		if converged {
			e.logger.Debug("converged", zap.Int("passes", passes))
			return nil
		}
	}
}
