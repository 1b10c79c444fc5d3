package hunk

import (
	"testing"

	shared "modfmt/shared/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	e := NewExtractor(DefaultOptions())

	tests := []struct {
		name       string
		comparison string
		buffer     string
		want       []shared.Hunk
	}{
		{
			name:       "identical texts yield no hunks",
			comparison: "a\nb\nc\n",
			buffer:     "a\nb\nc\n",
			want:       nil,
		},
		{
			name:       "single added line",
			comparison: "a\nb\nc\n",
			buffer:     "a\nX\nb\nc\n",
			want: []shared.Hunk{
				{OldStart: 2, OldCount: 0, NewStart: 2, NewCount: 1},
			},
		},
		{
			name:       "pure deletion has zero new count",
			comparison: "a\nb\nc\n",
			buffer:     "a\nc\n",
			want: []shared.Hunk{
				{OldStart: 2, OldCount: 1, NewStart: 2, NewCount: 0},
			},
		},
		{
			name:       "modified line",
			comparison: "a\nb\nc\n",
			buffer:     "a\nB\nc\n",
			want: []shared.Hunk{
				{OldStart: 2, OldCount: 1, NewStart: 2, NewCount: 1},
			},
		},
		{
			name:       "separate changes stay separate hunks",
			comparison: "a\nb\nc\nd\ne\n",
			buffer:     "A\nb\nc\nd\nE\n",
			want: []shared.Hunk{
				{OldStart: 1, OldCount: 1, NewStart: 1, NewCount: 1},
				{OldStart: 5, OldCount: 1, NewStart: 5, NewCount: 1},
			},
		},
		{
			name:       "replacement growing line count",
			comparison: "a\nb\nc\n",
			buffer:     "a\nX\nY\nc\n",
			want: []shared.Hunk{
				{OldStart: 2, OldCount: 1, NewStart: 2, NewCount: 2},
			},
		},
		{
			name:       "insertion at the first line",
			comparison: "b\nc\n",
			buffer:     "X\nb\nc\n",
			want: []shared.Hunk{
				{OldStart: 1, OldCount: 0, NewStart: 1, NewCount: 1},
			},
		},
		{
			name:       "insertion before the last line",
			comparison: "a\nb\n",
			buffer:     "a\nX\nb\n",
			want: []shared.Hunk{
				{OldStart: 2, OldCount: 0, NewStart: 2, NewCount: 1},
			},
		},
		{
			name:       "identical texts without final newline",
			comparison: "a\nb",
			buffer:     "a\nb",
			want:       nil,
		},
		{
			name:       "added final newline changes the last line",
			comparison: "a\nb",
			buffer:     "a\nb\n",
			want: []shared.Hunk{
				{OldStart: 2, OldCount: 1, NewStart: 2, NewCount: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Extract(tt.comparison, tt.buffer)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// A hunk may never cover a line whose content is unchanged: an
// insertion between two kept lines must not pull either neighbor into
// the formatting range.
func TestExtractExcludesUnchangedNeighbors(t *testing.T) {
	e := NewExtractor(DefaultOptions())

	hunks, err := e.Extract("a\nb\nc\n", "a\nX\nb\nc\n")
	require.NoError(t, err)
	require.Len(t, hunks, 1)

	first, last := hunks[0].Lines()
	assert.Equal(t, 2, first, "line 1 did not change and is off limits")
	assert.Equal(t, 2, last, "line 3 did not change and is off limits")
	assert.Equal(t, 0, hunks[0].OldCount)
}

func TestExtractOrderingInvariant(t *testing.T) {
	e := NewExtractor(DefaultOptions())

	comparison := "a\nb\nc\nd\ne\nf\ng\n"
	buffer := "a\nB\nc\nd\nE\nf\nG\n"

	hunks, err := e.Extract(comparison, buffer)
	require.NoError(t, err)
	require.NotEmpty(t, hunks)

	for i := 1; i < len(hunks); i++ {
		assert.Greater(t, hunks[i].NewStart, hunks[i-1].NewStart,
			"hunks must be strictly increasing in NewStart")
		prevFirst, prevLast := hunks[i-1].Lines()
		_ = prevFirst
		first, _ := hunks[i].Lines()
		assert.Greater(t, first, prevLast, "hunks must be disjoint")
	}
}

func TestExtractIgnoresEOLDifferences(t *testing.T) {
	e := NewExtractor(DefaultOptions())

	hunks, err := e.Extract("a\nb\nc\n", "a\r\nb\r\nc\r\n")
	require.NoError(t, err)
	assert.Empty(t, hunks, "CRLF-only differences must not produce hunks")
}

func TestExtractEOLSignificantWhenDisabled(t *testing.T) {
	e := NewExtractor(Options{Context: 0, IgnoreEOL: false})

	hunks, err := e.Extract("a\nb\n", "a\r\nb\r\n")
	require.NoError(t, err)
	assert.NotEmpty(t, hunks)
}
