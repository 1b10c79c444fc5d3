// Core types shared across the formatting pipeline
package shared

// FileInfo describes a file's version-control status at the moment of a
// formatting request. It is computed fresh per request and never cached
// across requests.
type FileInfo struct {
	Path         string `json:"path"`
	IsTracked    bool   `json:"is_tracked"`
	HasConflicts bool   `json:"has_conflicts"`
	ObjectName   string `json:"object_name,omitempty"`
	Mode         string `json:"mode,omitempty"`
	IndexEOL     string `json:"index_eol,omitempty"`
	WorktreeEOL  string `json:"worktree_eol,omitempty"`
}

// Hunk is one contiguous changed region between the comparison text and
// the buffer, in 1-based line numbers. NewCount == 0 denotes a pure
// deletion with no buffer lines to format.
type Hunk struct {
	OldStart int `json:"old_start"`
	OldCount int `json:"old_count"`
	NewStart int `json:"new_start"`
	NewCount int `json:"new_count"`
}

// Lines returns the inclusive buffer line span [first, last] covered by
// the hunk. Only meaningful when NewCount > 0.
func (h Hunk) Lines() (first, last int) {
	return h.NewStart, h.NewStart + h.NewCount - 1
}

// Position is a 1-based line with a 0-based column.
type Position struct {
	Line int `json:"line"`
	Col  int `json:"col"`
}

// LineRange is the span handed to a formatter. A nil *LineRange in a
// format request means "format the entire file".
type LineRange struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}
