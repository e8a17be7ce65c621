package certificate

import (
	"sync"

	"github.com/google/uuid"
)

// Ref is the transient handle returned for an uploaded certificate. It is
// only meaningful inside the running process.
type Ref struct {
	ID          string `json:"id"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

type entry struct {
	ref  Ref
	data []byte
}

// Store keeps uploaded certificate bytes in memory for preview. Nothing is
// written to disk; contents vanish when the process exits.
type Store struct {
	mu    sync.RWMutex
	files map[string]entry
}

// NewStore creates an empty upload store.
func NewStore() *Store {
	return &Store{files: make(map[string]entry)}
}

// Put stores the bytes under a fresh reference id.
func (s *Store) Put(fileName, contentType string, data []byte) Ref {
	ref := Ref{
		ID:          uuid.NewString(),
		FileName:    fileName,
		ContentType: contentType,
		Size:        int64(len(data)),
	}
	s.mu.Lock()
	s.files[ref.ID] = entry{ref: ref, data: data}
	s.mu.Unlock()
	return ref
}

// Get returns the reference and bytes for an id, if present.
func (s *Store) Get(id string) (Ref, []byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.files[id]
	if !ok {
		return Ref{}, nil, false
	}
	return e.ref, e.data, true
}

// Remove drops an upload. Removing an absent id is a no-op.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	delete(s.files, id)
	s.mu.Unlock()
}

// Len returns the number of stored uploads.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}
