package store

import (
	"context"
	"sync"
	"time"

	"github.com/layer-3/rampgate/core"
	"github.com/layer-3/rampgate/ports"
)

// MemoryStore is an in-memory implementation of the degraded-session store,
// suitable for tests and single-instance deployments.
type MemoryStore struct {
	records map[string]memoryRecord
	mu      sync.RWMutex
}

type memoryRecord struct {
	record    core.DegradedRecord
	expiresAt time.Time
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() ports.Store {
	return &MemoryStore{
		records: make(map[string]memoryRecord),
	}
}

// RecordDegraded remembers a degraded session until its TTL elapses.
func (s *MemoryStore) RecordDegraded(ctx context.Context, sessionID string, record core.DegradedRecord, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[sessionID] = memoryRecord{
		record:    record,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// GetDegraded returns the record for a degraded session, if still live.
func (s *MemoryStore) GetDegraded(ctx context.Context, sessionID string) (core.DegradedRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.records[sessionID]
	if !exists || time.Now().After(entry.expiresAt) {
		return core.DegradedRecord{}, false, nil
	}
	return entry.record, true, nil
}
