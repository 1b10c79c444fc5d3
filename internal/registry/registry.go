// Package registry records which formatting client applies to which
// buffer. The mapping is explicit state owned by the orchestration
// layer and passed in where needed, keyed by (buffer, client) — never
// ambient globals.
package registry

import (
	"fmt"
	"sync"

	"modfmt/internal/config"

	"github.com/google/uuid"
)

type Key struct {
	BufferID uuid.UUID
	ClientID string
}

// Attachment pairs one buffer with one formatting client and the
// configuration that applies to the pair.
type Attachment struct {
	BufferID     uuid.UUID
	ClientID     string
	Path         string
	VCS          string
	Formatter    config.Formatter
	FormatOnSave bool
}

type Registry struct {
	mu          sync.RWMutex
	attachments map[Key]*Attachment
}

func New() *Registry {
	return &Registry{attachments: make(map[Key]*Attachment)}
}

func (r *Registry) Attach(att *Attachment) error {
	key := Key{BufferID: att.BufferID, ClientID: att.ClientID}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.attachments[key]; ok {
		return fmt.Errorf("client %s already attached to buffer %s", att.ClientID, att.BufferID)
	}
	r.attachments[key] = att
	return nil
}

func (r *Registry) Get(bufferID uuid.UUID, clientID string) (*Attachment, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	att, ok := r.attachments[Key{BufferID: bufferID, ClientID: clientID}]
	return att, ok
}

// ByPath returns every attachment recorded for a file path.
func (r *Registry) ByPath(path string) []*Attachment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Attachment
	for _, att := range r.attachments {
		if att.Path == path {
			out = append(out, att)
		}
	}
	return out
}

func (r *Registry) Detach(bufferID uuid.UUID, clientID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := Key{BufferID: bufferID, ClientID: clientID}
	if _, ok := r.attachments[key]; !ok {
		return false
	}
	delete(r.attachments, key)
	return true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.attachments)
}
