package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"upishield/fraud-engine/internal/domain"
	"upishield/fraud-engine/internal/engine"
	"upishield/fraud-engine/internal/threatfeed"
	"upishield/fraud-engine/internal/triage"
	"upishield/fraud-engine/internal/velocity"
	"upishield/fraud-engine/internal/webhook"
)

// Handler holds the dependencies shared across all HTTP handlers.
type Handler struct {
	engine   *engine.Engine
	feed     *threatfeed.Feed
	notifier *webhook.Notifier
}

// NewHandler creates a Handler wired to the given dependencies.
func NewHandler(e *engine.Engine, f *threatfeed.Feed, n *webhook.Notifier) *Handler {
	return &Handler{engine: e, feed: f, notifier: n}
}

// ─── POST /api/v1/scan ────────────────────────────────────────────────────────

// ScanIdentifier answers a reputation query for a payment identifier.
// Unknown identifiers get the default verdict, never an error.
func (h *Handler) ScanIdentifier(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Identifier string `json:"identifier"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "INVALID_JSON", "request body must be valid JSON")
		return
	}

	verdict, err := h.engine.ScanIdentifier(req.Identifier)
	if err != nil {
		badRequest(w, "INVALID_INPUT", err.Error())
		return
	}
	ok(w, verdict)
}

// ─── POST /api/v1/transactions ────────────────────────────────────────────────

// IngestTransaction feeds one transaction event through the velocity pipeline
// and reports whether an alert was raised.
func (h *Handler) IngestTransaction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Sender    string          `json:"sender_upi"`
		Amount    decimal.Decimal `json:"amount"`
		Timestamp time.Time       `json:"timestamp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "INVALID_JSON", "request body must be valid JSON")
		return
	}

	result, err := h.engine.IngestTransaction(domain.TransactionEvent{
		Sender:    req.Sender,
		Amount:    req.Amount,
		Timestamp: req.Timestamp,
	})
	switch {
	case errors.Is(err, engine.ErrInvalidInput):
		badRequest(w, "INVALID_INPUT", err.Error())
		return
	case errors.Is(err, velocity.ErrOutOfOrderEvent):
		conflict(w, "OUT_OF_ORDER", err.Error())
		return
	case err != nil:
		// No other errors are defined for ingest; surface verbatim anyway.
		badRequest(w, "INVALID_INPUT", err.Error())
		return
	}

	ok(w, result)
}

// ─── Alerts ───────────────────────────────────────────────────────────────────

// ListAlerts returns the pending velocity alerts in insertion order.
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	alerts := h.engine.ListPendingAlerts()
	if alerts == nil {
		alerts = []domain.VelocityAlert{}
	}
	ok(w, alerts)
}

// ResolveAlert records a reviewer decision for a pending alert.
func (h *Handler) ResolveAlert(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		badRequest(w, "INVALID_ID", "alert id must be a positive integer")
		return
	}

	var req struct {
		Decision string `json:"decision"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "INVALID_JSON", "request body must be valid JSON")
		return
	}

	res, err := h.engine.ResolveAlert(id, req.Decision)
	switch {
	case errors.Is(err, engine.ErrInvalidInput):
		badRequest(w, "INVALID_INPUT", err.Error())
		return
	case errors.Is(err, triage.ErrAlertNotFound):
		notFound(w, "ALERT_NOT_FOUND", fmt.Sprintf("alert %d not found", id))
		return
	case errors.Is(err, triage.ErrAlreadyResolved):
		conflict(w, "ALREADY_RESOLVED", fmt.Sprintf("alert %d is already resolved", id))
		return
	case err != nil:
		badRequest(w, "INVALID_INPUT", err.Error())
		return
	}

	ok(w, map[string]any{"resolved": true, "resolution": res})
}

// ListResolutions returns the resolution audit log, oldest first.
func (h *Handler) ListResolutions(w http.ResponseWriter, r *http.Request) {
	log := h.engine.Resolutions()
	if log == nil {
		log = []domain.Resolution{}
	}
	ok(w, log)
}

// ─── Admin ────────────────────────────────────────────────────────────────────

// UpsertReputation inserts or replaces a fraud registry record out-of-band.
func (h *Handler) UpsertReputation(w http.ResponseWriter, r *http.Request) {
	var rec domain.ReputationRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		badRequest(w, "INVALID_JSON", "request body must be valid JSON")
		return
	}

	if err := h.engine.UpsertReputationRecord(rec); err != nil {
		badRequest(w, "INVALID_INPUT", err.Error())
		return
	}
	ok(w, rec)
}

// ─── Threat feed ──────────────────────────────────────────────────────────────

// SubmitThreat classifies a flagged email/SMS message and stores it.
func (h *Handler) SubmitThreat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Source  string `json:"source"`
		Sender  string `json:"sender"`
		Subject string `json:"subject"`
		Snippet string `json:"snippet"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "INVALID_JSON", "request body must be valid JSON")
		return
	}
	if req.Source != domain.SourceSMS && req.Source != domain.SourceEmail {
		badRequest(w, "INVALID_SOURCE", "source must be 'sms' or 'email'")
		return
	}
	if req.Subject == "" && req.Snippet == "" {
		badRequest(w, "EMPTY_MESSAGE", "subject or snippet is required")
		return
	}

	msg := h.feed.Submit(domain.ThreatMessage{
		Source:  req.Source,
		Sender:  req.Sender,
		Subject: req.Subject,
		Snippet: req.Snippet,
	})
	created(w, msg)
}

// ListThreats returns the threat feed, newest first.
func (h *Handler) ListThreats(w http.ResponseWriter, r *http.Request) {
	msgs := h.feed.List()
	if msgs == nil {
		msgs = []domain.ThreatMessage{}
	}
	ok(w, msgs)
}

// ─── Webhooks ─────────────────────────────────────────────────────────────────

// RegisterWebhook adds a new webhook endpoint for alert push notifications.
func (h *Handler) RegisterWebhook(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL          string `json:"url"`
		MinRiskLevel string `json:"min_risk_level"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "INVALID_JSON", "request body must be valid JSON")
		return
	}
	if req.URL == "" {
		badRequest(w, "MISSING_URL", "url is required")
		return
	}
	if req.MinRiskLevel == "" {
		req.MinRiskLevel = domain.RiskHigh
	}
	if _, known := domain.RiskRank[req.MinRiskLevel]; !known {
		badRequest(w, "INVALID_RISK_LEVEL", "min_risk_level must be one of: low, medium, high, critical")
		return
	}

	created(w, h.notifier.Register(req.URL, req.MinRiskLevel))
}

// ListWebhooks returns all registered webhook endpoints.
func (h *Handler) ListWebhooks(w http.ResponseWriter, r *http.Request) {
	hooks := h.notifier.List()
	if hooks == nil {
		hooks = []domain.WebhookConfig{}
	}
	ok(w, hooks)
}

// DeleteWebhook removes a webhook registration.
func (h *Handler) DeleteWebhook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.notifier.Delete(id) {
		notFound(w, "NOT_FOUND", fmt.Sprintf("webhook '%s' not found", id))
		return
	}
	noContent(w)
}

// ─── Reports ──────────────────────────────────────────────────────────────────

// GetSummaryReport returns headline stats for a dashboard: pending queue
// size, resolution tallies, and threat feed tallies.
func (h *Handler) GetSummaryReport(w http.ResponseWriter, r *http.Request) {
	decisions := h.engine.DecisionCounts()
	threats := h.feed.SeverityCounts()

	ok(w, map[string]any{
		"generated_at":   time.Now().UTC(),
		"pending_alerts": h.engine.PendingCount(),
		"resolutions": map[string]int{
			domain.DecisionApprove: decisions[domain.DecisionApprove],
			domain.DecisionBlock:   decisions[domain.DecisionBlock],
		},
		"threats": map[string]int{
			domain.SeverityMalicious:  threats[domain.SeverityMalicious],
			domain.SeveritySuspicious: threats[domain.SeveritySuspicious],
			domain.SeverityClean:      threats[domain.SeverityClean],
		},
	})
}
