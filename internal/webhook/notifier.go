// Package webhook handles asynchronous notifications to registered webhook
// URLs when a velocity alert is raised.
//
// Notifications are sent in a goroutine so they never block the ingest path.
// Failed deliveries are logged but not retried (a production system would use
// a persistent queue with exponential backoff).
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"upishield/fraud-engine/internal/domain"
	"upishield/fraud-engine/internal/metrics"
)

// Notifier owns the registered webhook configurations and delivers alert
// payloads to every active endpoint whose minimum risk level is met.
type Notifier struct {
	mu     sync.RWMutex
	hooks  map[string]domain.WebhookConfig
	client *http.Client
}

// New creates a Notifier with a sensible default HTTP client timeout.
func New() *Notifier {
	return &Notifier{
		hooks: make(map[string]domain.WebhookConfig),
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// Register adds a webhook endpoint and returns the stored configuration.
func (n *Notifier) Register(url, minRiskLevel string) domain.WebhookConfig {
	wh := domain.WebhookConfig{
		ID:           uuid.NewString(),
		URL:          url,
		MinRiskLevel: minRiskLevel,
		CreatedAt:    time.Now().UTC(),
		Active:       true,
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.hooks[wh.ID] = wh
	return wh
}

// Delete removes a webhook by id. Returns false if not found.
func (n *Notifier) Delete(id string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, exists := n.hooks[id]
	if exists {
		delete(n.hooks, id)
	}
	return exists
}

// List returns all registered webhooks.
func (n *Notifier) List() []domain.WebhookConfig {
	n.mu.RLock()
	defer n.mu.RUnlock()

	out := make([]domain.WebhookConfig, 0, len(n.hooks))
	for _, wh := range n.hooks {
		out = append(out, wh)
	}
	return out
}

// NotifyAsync fires webhook calls in the background for the given alert.
// Endpoints are triggered when the alert's risk level is at or above their
// configured minimum.
func (n *Notifier) NotifyAsync(alert domain.VelocityAlert) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for _, wh := range n.hooks {
		if !wh.Active {
			continue
		}
		if domain.RiskRank[alert.RiskLevel] >= domain.RiskRank[wh.MinRiskLevel] {
			go n.send(wh, alert)
		}
	}
}

// send delivers a single webhook call and logs the outcome.
func (n *Notifier) send(wh domain.WebhookConfig, alert domain.VelocityAlert) {
	payload := domain.WebhookPayload{
		Event:       "velocity_alert",
		TriggeredAt: time.Now().UTC(),
		Alert:       alert,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		slog.Error("webhook: failed to marshal payload", "webhook_id", wh.ID, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wh.URL, bytes.NewReader(body))
	if err != nil {
		slog.Error("webhook: failed to build request", "webhook_id", wh.ID, "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-UPIShield-Event", "velocity_alert")

	resp, err := n.client.Do(req)
	if err != nil {
		metrics.WebhookDeliveriesTotal.WithLabelValues("error").Inc()
		slog.Warn("webhook: delivery failed", "webhook_id", wh.ID, "url", wh.URL, "error", err)
		return
	}
	defer resp.Body.Close()

	metrics.WebhookDeliveriesTotal.WithLabelValues("delivered").Inc()
	slog.Info("webhook: delivered",
		"webhook_id", wh.ID,
		"url", wh.URL,
		"status", resp.StatusCode,
		"alert_id", alert.ID,
		"risk_level", alert.RiskLevel,
	)
}
