// Package triage holds velocity alerts pending a human accept/block decision.
//
// Every alert moves through exactly one transition: pending → approved or
// pending → blocked, both terminal. Resolution removes the alert from the
// pending set and appends an immutable audit record to the resolution log;
// nothing is ever mutated in place.
package triage

import (
	"errors"
	"sync"
	"time"

	"upishield/fraud-engine/internal/domain"
)

// ErrAlertNotFound is returned when resolving an id that was never issued.
var ErrAlertNotFound = errors.New("alert not found")

// ErrAlreadyResolved is returned when resolving an alert a second time.
// The failure is idempotent: queue state is unchanged.
var ErrAlreadyResolved = errors.New("alert already resolved")

// Queue is the thread-safe pending-alert store. Enqueue and Resolve are the
// only mutation points; List and Resolutions take snapshots under a read lock.
type Queue struct {
	mu       sync.RWMutex
	nextID   uint64
	pending  []domain.VelocityAlert // insertion order
	resolved map[uint64]struct{}    // terminal ids, kept to distinguish 404 from 409
	log      []domain.Resolution
}

// New creates an empty Queue. The first enqueued alert receives id 1.
func New() *Queue {
	return &Queue{
		nextID:   1,
		resolved: make(map[uint64]struct{}),
	}
}

// Enqueue assigns the next id to the alert and appends it to the pending
// set. Ids are strictly increasing in the order enqueues are serialized
// here, which gives the audit trail a total order even under concurrent
// callers.
func (q *Queue) Enqueue(alert domain.VelocityAlert) uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()

	alert.ID = q.nextID
	q.nextID++
	q.pending = append(q.pending, alert)
	return alert.ID
}

// List returns the currently pending alerts in insertion order.
// The returned slice is a copy; resolutions are reflected immediately in
// subsequent calls.
func (q *Queue) List() []domain.VelocityAlert {
	q.mu.RLock()
	defer q.mu.RUnlock()

	out := make([]domain.VelocityAlert, len(q.pending))
	copy(out, q.pending)
	return out
}

// Resolve removes a pending alert and records the decision. Resolving an
// unknown id returns ErrAlertNotFound; resolving a terminal id returns
// ErrAlreadyResolved. Neither error changes any state.
func (q *Queue) Resolve(alertID uint64, decision string) (domain.Resolution, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, done := q.resolved[alertID]; done {
		return domain.Resolution{}, ErrAlreadyResolved
	}

	idx := -1
	for i := range q.pending {
		if q.pending[i].ID == alertID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return domain.Resolution{}, ErrAlertNotFound
	}

	q.pending = append(q.pending[:idx], q.pending[idx+1:]...)
	q.resolved[alertID] = struct{}{}

	res := domain.Resolution{
		AlertID:    alertID,
		Decision:   decision,
		ResolvedAt: time.Now().UTC(),
	}
	q.log = append(q.log, res)
	return res, nil
}

// Resolutions returns a copy of the resolution log, oldest first.
func (q *Queue) Resolutions() []domain.Resolution {
	q.mu.RLock()
	defer q.mu.RUnlock()

	out := make([]domain.Resolution, len(q.log))
	copy(out, q.log)
	return out
}

// PendingCount reports the number of alerts awaiting a decision.
func (q *Queue) PendingCount() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.pending)
}

// DecisionCounts tallies the resolution log by decision. Used by the
// summary report.
func (q *Queue) DecisionCounts() map[string]int {
	q.mu.RLock()
	defer q.mu.RUnlock()

	counts := make(map[string]int, 2)
	for _, r := range q.log {
		counts[r.Decision]++
	}
	return counts
}
