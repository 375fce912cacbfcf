// Package engine composes the reputation store, velocity tracker, risk
// scorer, and triage queue behind the operations exposed to the
// presentation layer.
//
// The facade owns no state of its own beyond references to the components
// and the configured breach threshold. It validates inputs before any state
// mutation, sequences component calls, and performs exactly one designed
// error translation: a reputation miss becomes the default low-risk verdict.
// Every other component error passes through verbatim.
package engine

import (
	"errors"
	"fmt"
	"time"

	"upishield/fraud-engine/internal/domain"
	"upishield/fraud-engine/internal/metrics"
	"upishield/fraud-engine/internal/reputation"
	"upishield/fraud-engine/internal/scoring"
	"upishield/fraud-engine/internal/triage"
	"upishield/fraud-engine/internal/velocity"
	"upishield/fraud-engine/internal/webhook"
)

// ErrInvalidInput is returned for requests rejected before any state
// mutation: empty identifiers, non-positive amounts, zero timestamps,
// unknown decisions.
var ErrInvalidInput = errors.New("invalid input")

// Engine is the fraud engine facade.
type Engine struct {
	registry reputation.Registry
	tracker  *velocity.Tracker
	queue    *triage.Queue
	notifier *webhook.Notifier // optional; nil disables push notifications

	breachCount int // window size at which the scorer is consulted
}

// New wires an Engine from its components. A nil notifier is allowed.
// Non-positive breachCount falls back to scoring.BreachCount.
func New(reg reputation.Registry, tr *velocity.Tracker, q *triage.Queue, n *webhook.Notifier, breachCount int) *Engine {
	if breachCount <= 0 {
		breachCount = scoring.BreachCount
	}
	return &Engine{
		registry:    reg,
		tracker:     tr,
		queue:       q,
		notifier:    n,
		breachCount: breachCount,
	}
}

// ScanIdentifier answers a reputation query for any non-empty identifier.
// Unknown identifiers never error: they receive the default "unverified but
// no adverse record" verdict.
func (e *Engine) ScanIdentifier(identifier string) (domain.Verdict, error) {
	id := domain.NormalizeIdentifier(identifier)
	if id == "" {
		return domain.Verdict{}, fmt.Errorf("%w: identifier must not be empty", ErrInvalidInput)
	}

	rec, ok := e.registry.Lookup(id)
	if !ok {
		metrics.IdentifierScansTotal.WithLabelValues("default").Inc()
		return scoring.DefaultVerdict(id), nil
	}

	metrics.IdentifierScansTotal.WithLabelValues("hit").Inc()
	return scoring.ClassifyIdentifier(rec), nil
}

// IngestTransaction feeds one event through the velocity pipeline. When the
// sender's window breaches the threshold and the scorer assigns a level
// above low, an alert is enqueued for triage and pushed to webhooks.
func (e *Engine) IngestTransaction(event domain.TransactionEvent) (domain.IngestResult, error) {
	if domain.NormalizeIdentifier(event.Sender) == "" {
		return domain.IngestResult{}, fmt.Errorf("%w: sender identifier must not be empty", ErrInvalidInput)
	}
	if event.Amount.Sign() <= 0 {
		return domain.IngestResult{}, fmt.Errorf("%w: amount must be greater than 0", ErrInvalidInput)
	}
	if event.Timestamp.IsZero() {
		return domain.IngestResult{}, fmt.Errorf("%w: timestamp is required", ErrInvalidInput)
	}

	state, err := e.tracker.Record(event)
	if err != nil {
		metrics.TransactionsIngestedTotal.WithLabelValues("rejected").Inc()
		return domain.IngestResult{}, err
	}

	result := domain.IngestResult{Window: state}

	if state.Count < e.breachCount {
		metrics.TransactionsIngestedTotal.WithLabelValues("ok").Inc()
		return result, nil
	}

	level := scoring.ClassifyVelocity(state.Count, state.ElapsedMinutes)
	if level == domain.RiskLow {
		metrics.TransactionsIngestedTotal.WithLabelValues("ok").Inc()
		return result, nil
	}

	alert := domain.VelocityAlert{
		Sender:        domain.NormalizeIdentifier(event.Sender),
		Amount:        event.Amount,
		Ordinal:       state.Count,
		WindowMinutes: state.WindowMinutes,
		Frequency:     state.Frequency,
		RiskLevel:     level,
		CreatedAt:     time.Now().UTC(),
	}
	alert.ID = e.queue.Enqueue(alert)

	metrics.TransactionsIngestedTotal.WithLabelValues("alert").Inc()
	metrics.VelocityAlertsTotal.WithLabelValues(level).Inc()
	metrics.PendingAlerts.Set(float64(e.queue.PendingCount()))

	if e.notifier != nil {
		e.notifier.NotifyAsync(alert)
	}

	result.RaisedAlert = true
	result.AlertID = alert.ID
	result.RiskLevel = level
	return result, nil
}

// ListPendingAlerts returns the triage queue's pending alerts in
// insertion order.
func (e *Engine) ListPendingAlerts() []domain.VelocityAlert {
	return e.queue.List()
}

// ResolveAlert records a reviewer decision for a pending alert. Decisions
// are final: the window is never reinspected and the same ordinal cannot
// re-trigger detection.
func (e *Engine) ResolveAlert(alertID uint64, decision string) (domain.Resolution, error) {
	if decision != domain.DecisionApprove && decision != domain.DecisionBlock {
		return domain.Resolution{}, fmt.Errorf("%w: decision must be %q or %q",
			ErrInvalidInput, domain.DecisionApprove, domain.DecisionBlock)
	}

	res, err := e.queue.Resolve(alertID, decision)
	if err != nil {
		return domain.Resolution{}, err
	}

	metrics.AlertResolutionsTotal.WithLabelValues(decision).Inc()
	metrics.PendingAlerts.Set(float64(e.queue.PendingCount()))
	return res, nil
}

// Resolutions returns the append-only resolution audit log.
func (e *Engine) Resolutions() []domain.Resolution {
	return e.queue.Resolutions()
}

// UpsertReputationRecord updates the fraud registry out-of-band.
func (e *Engine) UpsertReputationRecord(rec domain.ReputationRecord) error {
	if domain.NormalizeIdentifier(rec.Identifier) == "" {
		return fmt.Errorf("%w: identifier must not be empty", ErrInvalidInput)
	}
	if rec.RiskScore < 0 || rec.RiskScore > 100 {
		return fmt.Errorf("%w: risk score must be between 0 and 100", ErrInvalidInput)
	}
	if rec.ReportedBy < 0 {
		return fmt.Errorf("%w: reported_by must not be negative", ErrInvalidInput)
	}

	e.registry.Upsert(rec)
	return nil
}

// PendingCount reports the triage queue size. Used by the summary report.
func (e *Engine) PendingCount() int { return e.queue.PendingCount() }

// DecisionCounts tallies resolutions by decision. Used by the summary report.
func (e *Engine) DecisionCounts() map[string]int { return e.queue.DecisionCounts() }
