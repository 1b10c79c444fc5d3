// Package hunk turns a comparison text and a buffer text into the
// ordered set of changed line ranges, using an external line-diff
// library. Hunks carry zero context lines so they describe exactly the
// lines that changed and nothing around them.
package hunk

import (
	"fmt"
	"strings"

	shared "modfmt/shared/types"

	"github.com/aymanbagabas/go-udiff"
)

// Options fixes the diff's behavioral knobs. The convergence engine
// depends on Context being zero; a different value is a programming
// error in the caller, not a supported mode.
type Options struct {
	// Context is the number of unchanged lines included around each
	// hunk. Must be 0 for modification-only formatting.
	Context int
	// IgnoreEOL normalizes \r\n to \n on both inputs before diffing,
	// so files touched by CRLF-writing tools do not show every line as
	// changed. Line numbering is unaffected.
	IgnoreEOL bool
}

func DefaultOptions() Options {
	return Options{Context: 0, IgnoreEOL: true}
}

type Extractor struct {
	opts Options
}

func NewExtractor(opts Options) *Extractor {
	return &Extractor{opts: opts}
}

// Extract diffs comparison against buffer and returns hunks in
// increasing NewStart order. Identical inputs yield no hunks.
func (e *Extractor) Extract(comparison, buffer string) ([]shared.Hunk, error) {
	if e.opts.IgnoreEOL {
		comparison = normalizeEOL(comparison)
		buffer = normalizeEOL(buffer)
	}

	edits := udiff.Strings(comparison, buffer)
	if len(edits) == 0 {
		return nil, nil
	}

	ud, err := udiff.ToUnifiedDiff("comparee", "buffer", comparison, edits, e.opts.Context)
	if err != nil {
		return nil, fmt.Errorf("computing hunks: %w", err)
	}

	hunks := make([]shared.Hunk, 0, len(ud.Hunks))
	for _, h := range ud.Hunks {
		var oldLines, newLines []string
		for _, l := range h.Lines {
			switch l.Kind {
			case udiff.Delete:
				oldLines = append(oldLines, l.Content)
			case udiff.Insert:
				newLines = append(newLines, l.Content)
			default:
				oldLines = append(oldLines, l.Content)
				newLines = append(newLines, l.Content)
			}
		}
		hk := alignToChangedLines(h.FromLine, h.ToLine, oldLines, newLines)
		if hk.OldCount == 0 && hk.NewCount == 0 {
			continue
		}
		hunks = append(hunks, hk)
	}

	return hunks, nil
}

// alignToChangedLines narrows a hunk to the lines whose content
// actually differs. The library diffs at byte granularity, and its
// expansion of an edit to line boundaries can drag an unchanged
// neighbor into the hunk: inserting "X\n" into "a\nb\n" may surface as
// line "a" deleted and "a", "X" inserted. Equal old/new lines at
// either edge are dropped, with the start positions shifted past the
// trimmed prefix, so the hunk covers exactly the changed lines.
// Contents are compared raw, newline included, so a line that only
// gained or lost its final newline still counts as changed.
func alignToChangedLines(oldStart, newStart int, oldLines, newLines []string) shared.Hunk {
	for len(oldLines) > 0 && len(newLines) > 0 && oldLines[0] == newLines[0] {
		oldLines, newLines = oldLines[1:], newLines[1:]
		oldStart++
		newStart++
	}
	for len(oldLines) > 0 && len(newLines) > 0 &&
		oldLines[len(oldLines)-1] == newLines[len(newLines)-1] {
		oldLines = oldLines[:len(oldLines)-1]
		newLines = newLines[:len(newLines)-1]
	}
	return shared.Hunk{
		OldStart: oldStart,
		OldCount: len(oldLines),
		NewStart: newStart,
		NewCount: len(newLines),
	}
}

func normalizeEOL(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
