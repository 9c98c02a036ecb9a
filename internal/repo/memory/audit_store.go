package memory

import (
	"context"
	"sync"

	"github.com/cartelera/billboard/internal/audit"
)

// AuditStore keeps audit entries in memory. Used by tests and by local runs
// without a database.
type AuditStore struct {
	mu      sync.RWMutex
	entries []audit.Entry
	nextID  int64

	// FailWith, when set, makes every Insert fail. Lets tests exercise the
	// recorder's best-effort contract.
	FailWith error
}

func NewAuditStore() *AuditStore {
	return &AuditStore{nextID: 1}
}

func (s *AuditStore) Insert(ctx context.Context, e audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWith != nil {
		return s.FailWith
	}

	e.ID = s.nextID
	s.nextID++
	s.entries = append(s.entries, e)

	return nil
}

// Entries returns a snapshot copy.
func (s *AuditStore) Entries() []audit.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]audit.Entry, len(s.entries))
	copy(out, s.entries)

	return out
}

func (s *AuditStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}
