// Package domain contains all core types used across the fraud engine.
// Keeping domain types in one place makes the detection rules easy to reason about.
package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ─── Constants ───────────────────────────────────────────────────────────────

// Risk levels assigned to velocity anomalies and scanned identifiers,
// from least to most severe.
const (
	RiskLow      = "low"
	RiskMedium   = "medium"
	RiskHigh     = "high"
	RiskCritical = "critical"
)

// Reviewer decisions for a pending velocity alert.
const (
	DecisionApprove = "approve" // transaction allowed, alert dismissed
	DecisionBlock   = "block"   // transaction blocked
)

// Threat feed message sources.
const (
	SourceSMS   = "sms"
	SourceEmail = "email"
)

// Threat feed severities.
const (
	SeverityClean      = "clean"
	SeveritySuspicious = "suspicious"
	SeverityMalicious  = "malicious"
)

// Default verdict issued for identifiers with no reputation record.
// Absence of a record is a valid low-risk classification, not an error.
const (
	DefaultRiskScore = 8
	DefaultReason    = "No fraud reports. Verified safe."
)

// RiskRank maps a risk level to its severity order. Used wherever levels
// must be compared (webhook thresholds, tie-breaks).
var RiskRank = map[string]int{
	RiskLow:      0,
	RiskMedium:   1,
	RiskHigh:     2,
	RiskCritical: 3,
}

// NormalizeIdentifier canonicalizes a payment identifier for case-insensitive
// matching. UPI handles are case-insensitive ("Scammer@YBL" == "scammer@ybl").
func NormalizeIdentifier(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// ─── Core domain types ────────────────────────────────────────────────────────

// ReputationRecord is a stored verdict about a payment identifier's known
// fraud association. Records cross the store boundary by value; a caller can
// never mutate what the store holds.
type ReputationRecord struct {
	Identifier string `json:"identifier"`
	IsFraud    bool   `json:"is_fraud"`
	RiskScore  int    `json:"risk_score"`  // 0-100
	ReportedBy int    `json:"reported_by"` // number of distinct fraud reports
	Reason     string `json:"reason"`
}

// TransactionEvent is one incoming payment from the upstream transaction
// source. It is consumed by the velocity tracker and not retained beyond
// the tracker's window.
type TransactionEvent struct {
	Sender    string          `json:"sender_upi"`
	Amount    decimal.Decimal `json:"amount"`
	Timestamp time.Time       `json:"timestamp"`
}

// WindowState describes a sender's velocity window immediately after an
// event was recorded.
type WindowState struct {
	Count          int    `json:"count"`           // events in window, including the new one
	WindowMinutes  int    `json:"window_minutes"`  // configured window duration
	ElapsedMinutes int    `json:"elapsed_minutes"` // oldest retained → current, floor 1
	Frequency      string `json:"frequency"`       // e.g. "5th transaction in 8 mins"
}

// Verdict is the result of scanning a payment identifier.
type Verdict struct {
	Identifier string `json:"identifier"`
	IsFraud    bool   `json:"is_fraud"`
	RiskScore  int    `json:"risk_score"`
	ReportedBy int    `json:"reported_by"`
	Reason     string `json:"reason"`
}

// ─── Alerts & triage ──────────────────────────────────────────────────────────

// VelocityAlert is a velocity anomaly awaiting a human accept/block decision.
// Alerts are immutable once enqueued: resolution removes them, it never
// mutates them in place.
type VelocityAlert struct {
	ID            uint64          `json:"id"` // monotonically increasing
	Sender        string          `json:"sender_upi"`
	Amount        decimal.Decimal `json:"amount"`
	Ordinal       int             `json:"transaction_ordinal"` // Nth transaction in the window
	WindowMinutes int             `json:"window_minutes"`
	Frequency     string          `json:"frequency"`
	RiskLevel     string          `json:"risk_level"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Resolution is the immutable audit record of a reviewer decision.
type Resolution struct {
	AlertID    uint64    `json:"alert_id"`
	Decision   string    `json:"decision"` // approve | block
	ResolvedAt time.Time `json:"resolved_at"`
}

// IngestResult is returned for every processed transaction event.
// AlertID and RiskLevel are set only when an alert was raised.
type IngestResult struct {
	RaisedAlert bool        `json:"raised_alert"`
	AlertID     uint64      `json:"alert_id,omitempty"`
	RiskLevel   string      `json:"risk_level,omitempty"`
	Window      WindowState `json:"window"`
}

// ─── Threat feed ──────────────────────────────────────────────────────────────

// ThreatMessage is a flagged email or SMS submitted for scam screening.
type ThreatMessage struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"` // sms | email
	Sender     string    `json:"sender"`
	Subject    string    `json:"subject"`
	Snippet    string    `json:"snippet"`
	Severity   string    `json:"severity"` // clean | suspicious | malicious
	ReceivedAt time.Time `json:"received_at"`
}

// ─── Webhooks ─────────────────────────────────────────────────────────────────

// WebhookConfig is a registered callback that receives velocity alerts
// at or above its minimum risk level.
type WebhookConfig struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	MinRiskLevel string    `json:"min_risk_level"`
	CreatedAt    time.Time `json:"created_at"`
	Active       bool      `json:"active"`
}

// WebhookPayload is the body sent to registered webhook URLs.
type WebhookPayload struct {
	Event       string        `json:"event"` // always "velocity_alert"
	TriggeredAt time.Time     `json:"triggered_at"`
	Alert       VelocityAlert `json:"alert"`
}

// ─── Seed data ────────────────────────────────────────────────────────────────

// SeedData is the startup seed file layout: the known fraud registry plus
// sample threat feed messages.
type SeedData struct {
	Reputation []ReputationRecord `json:"reputation"`
	Threats    []ThreatMessage    `json:"threats"`
}
