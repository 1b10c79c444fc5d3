// Package buffer holds the live, mutable copy of a file during one
// formatting invocation. The engine only reads it; mutation is
// delegated to the formatter, which writes back through SetContent.
package buffer

import (
	"fmt"
	"io/fs"
	"os"

	"modfmt/shared/utils"

	"github.com/google/uuid"
)

type Buffer struct {
	id      uuid.UUID
	path    string
	mode    fs.FileMode
	content string
	dirty   bool
}

// Open loads path into a new buffer.
func Open(path string) (*Buffer, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return &Buffer{
		id:      uuid.New(),
		path:    path,
		mode:    info.Mode(),
		content: string(data),
	}, nil
}

// NewFromString builds an in-memory buffer; Flush is a no-op for it.
func NewFromString(path, content string) *Buffer {
	return &Buffer{id: uuid.New(), path: path, content: content}
}

func (b *Buffer) ID() uuid.UUID { return b.id }

func (b *Buffer) Path() string { return b.path }

func (b *Buffer) Content() string { return b.content }

func (b *Buffer) Lines() []string { return utils.SplitLines(b.content) }

func (b *Buffer) Dirty() bool { return b.dirty }

// SetContent replaces the buffer content. The buffer is marked dirty
// only when the content actually changed.
func (b *Buffer) SetContent(content string) {
	if content == b.content {
		return
	}
	b.content = content
	b.dirty = true
}

// Flush writes a dirty buffer back to its file, preserving the
// original mode.
func (b *Buffer) Flush() error {
	if !b.dirty || b.mode == 0 {
		return nil
	}
	if err := os.WriteFile(b.path, []byte(b.content), b.mode.Perm()); err != nil {
		return fmt.Errorf("writing %s: %w", b.path, err)
	}
	b.dirty = false
	return nil
}
