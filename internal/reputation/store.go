// Package reputation holds known fraud/clean verdicts for payment identifiers.
//
// Design rationale: the engine treats the registry backing as swappable — an
// in-memory map is sufficient for demo and small-scale production loads, and
// the Registry interface lets a deployment substitute a database or remote
// reputation service without touching any caller.
package reputation

import (
	"sync"

	"upishield/fraud-engine/internal/domain"
)

// Registry is the data-access seam for identifier reputation lookups.
// Lookup is case-insensitive and must be cheap; Upsert replaces any existing
// record for the identifier atomically (last write wins).
type Registry interface {
	Lookup(identifier string) (domain.ReputationRecord, bool)
	Upsert(record domain.ReputationRecord)
}

// Store is a thread-safe in-memory Registry. Reads vastly outnumber writes
// (every scan is a read; writes arrive only via the admin surface), so a
// single RWMutex over the map is enough.
type Store struct {
	mu      sync.RWMutex
	records map[string]domain.ReputationRecord // keyed by normalized identifier
}

// New creates an empty, ready-to-use Store.
func New() *Store {
	return &Store{records: make(map[string]domain.ReputationRecord)}
}

// Lookup returns the record for an identifier, matching case-insensitively.
// The second return is false when no record exists — absence is a valid
// answer, not an error (the engine synthesizes a default verdict).
func (s *Store) Lookup(identifier string) (domain.ReputationRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[domain.NormalizeIdentifier(identifier)]
	return rec, ok
}

// Upsert inserts or replaces the record for its identifier. The stored copy
// keeps the caller's original casing in the Identifier field; only the map
// key is normalized.
func (s *Store) Upsert(record domain.ReputationRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[domain.NormalizeIdentifier(record.Identifier)] = record
}

// Len reports how many records the store holds. Used by startup logging.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
