package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"upishield/fraud-engine/internal/api"
	"upishield/fraud-engine/internal/domain"
	"upishield/fraud-engine/internal/engine"
	"upishield/fraud-engine/internal/reputation"
	"upishield/fraud-engine/internal/threatfeed"
	"upishield/fraud-engine/internal/triage"
	"upishield/fraud-engine/internal/velocity"
	"upishield/fraud-engine/internal/webhook"
)

// ─── Test server setup ────────────────────────────────────────────────────────

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	reg := reputation.New()
	reg.Upsert(domain.ReputationRecord{
		Identifier: "scammer@ybl",
		IsFraud:    true,
		RiskScore:  95,
		ReportedBy: 400,
		Reason:     "Multiple fraud reports for phishing and unauthorized transactions",
	})

	n := webhook.New()
	e := engine.New(reg, velocity.NewTracker(15*time.Minute), triage.New(), n, 0)
	h := api.NewHandler(e, threatfeed.New(), n)
	return httptest.NewServer(api.NewRouter(h))
}

func post(t *testing.T, srv *httptest.Server, path string, body any) *http.Response {
	t.Helper()
	b, _ := json.Marshal(body)
	resp, err := http.Post(srv.URL+path, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

func put(t *testing.T, srv *httptest.Server, path string, body any) *http.Response {
	t.Helper()
	b, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPut, srv.URL+path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT %s: %v", path, err)
	}
	return resp
}

func get(t *testing.T, srv *httptest.Server, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

func del(t *testing.T, srv *httptest.Server, path string) *http.Response {
	t.Helper()
	req, _ := http.NewRequest(http.MethodDelete, srv.URL+path, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE %s: %v", path, err)
	}
	return resp
}

func decodeData(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var env map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	d, ok := env["data"].(map[string]any)
	if !ok {
		t.Fatalf("response has no 'data' object: %v", env)
	}
	return d
}

func decodeDataList(t *testing.T, resp *http.Response) []any {
	t.Helper()
	var env map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	d, ok := env["data"].([]any)
	if !ok {
		t.Fatalf("response has no 'data' array: %v", env)
	}
	return d
}

func decodeError(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var env map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	e, ok := env["error"].(map[string]any)
	if !ok {
		t.Fatalf("response has no 'error' key: %v", env)
	}
	return e
}

func txPayload(sender string, amount float64, ts string) map[string]any {
	return map[string]any{
		"sender_upi": sender,
		"amount":     amount,
		"timestamp":  ts,
	}
}

// ingestBurst posts n transactions one minute apart and returns the last
// response.
func ingestBurst(t *testing.T, srv *httptest.Server, sender string, n int) *http.Response {
	t.Helper()
	base := time.Date(2026, 1, 30, 13, 36, 32, 0, time.UTC)
	var resp *http.Response
	for i := 0; i < n; i++ {
		ts := base.Add(time.Duration(i) * time.Minute).Format(time.RFC3339)
		resp = post(t, srv, "/api/v1/transactions", txPayload(sender, 2500, ts))
		if i < n-1 {
			resp.Body.Close()
		}
	}
	return resp
}

// ─── Health ───────────────────────────────────────────────────────────────────

func TestHealth_Returns200(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	resp := get(t, srv, "/health")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

// ─── POST /api/v1/scan ────────────────────────────────────────────────────────

func TestScan_KnownFraud_ReturnsRecord(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	resp := post(t, srv, "/api/v1/scan", map[string]any{"identifier": "Scammer@YBL"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	d := decodeData(t, resp)
	if d["is_fraud"] != true {
		t.Error("expected is_fraud=true for known fraud identifier")
	}
	if d["risk_score"].(float64) != 95 {
		t.Errorf("expected risk_score 95, got %v", d["risk_score"])
	}
}

func TestScan_Unknown_ReturnsDefaultVerdict(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	resp := post(t, srv, "/api/v1/scan", map[string]any{"identifier": "stranger@upi"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unknown identifiers must not error, got %d", resp.StatusCode)
	}
	d := decodeData(t, resp)
	if d["is_fraud"] != false || d["risk_score"].(float64) != 8 || d["reported_by"].(float64) != 0 {
		t.Errorf("expected default verdict, got %v", d)
	}
}

func TestScan_EmptyIdentifier_Returns400(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	resp := post(t, srv, "/api/v1/scan", map[string]any{"identifier": "  "})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
	e := decodeError(t, resp)
	if e["code"] != "INVALID_INPUT" {
		t.Errorf("expected INVALID_INPUT, got %v", e["code"])
	}
}

// ─── POST /api/v1/transactions ────────────────────────────────────────────────

func TestIngest_SingleEvent_NoAlert(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	resp := post(t, srv, "/api/v1/transactions",
		txPayload("calm@upi", 100, "2026-01-30T13:36:32Z"))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	d := decodeData(t, resp)
	if d["raised_alert"] != false {
		t.Error("single event must not raise an alert")
	}
	window := d["window"].(map[string]any)
	if window["count"].(float64) != 1 {
		t.Errorf("expected window count 1, got %v", window["count"])
	}
}

func TestIngest_Burst_RaisesAlert(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	resp := ingestBurst(t, srv, "fastpay123@ybl", 5)
	d := decodeData(t, resp)
	if d["raised_alert"] != true {
		t.Fatal("burst must raise an alert")
	}
	if d["risk_level"] != domain.RiskHigh {
		t.Errorf("5 events in 4 minutes should be high, got %v", d["risk_level"])
	}
	if d["alert_id"].(float64) < 1 {
		t.Errorf("expected an alert id, got %v", d["alert_id"])
	}
}

func TestIngest_ZeroAmount_Returns400(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	resp := post(t, srv, "/api/v1/transactions",
		txPayload("a@upi", 0, "2026-01-30T13:36:32Z"))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestIngest_OutOfOrder_Returns409(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	post(t, srv, "/api/v1/transactions",
		txPayload("skew@upi", 100, "2026-01-30T13:40:00Z")).Body.Close()

	resp := post(t, srv, "/api/v1/transactions",
		txPayload("skew@upi", 100, "2026-01-30T13:39:00Z"))
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
	e := decodeError(t, resp)
	if e["code"] != "OUT_OF_ORDER" {
		t.Errorf("expected OUT_OF_ORDER, got %v", e["code"])
	}
}

func TestIngest_InvalidJSON_Returns400(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/v1/transactions", "application/json",
		bytes.NewBufferString("not-json"))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

// ─── Alerts ───────────────────────────────────────────────────────────────────

func TestAlerts_ListReflectsBurst(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	ingestBurst(t, srv, "burst@upi", 5).Body.Close()

	resp := get(t, srv, "/api/v1/alerts")
	alerts := decodeDataList(t, resp)
	if len(alerts) == 0 {
		t.Fatal("expected pending alerts after burst")
	}
	first := alerts[0].(map[string]any)
	if first["sender_upi"] != "burst@upi" {
		t.Errorf("unexpected alert sender: %v", first["sender_upi"])
	}
	if first["frequency"] == "" {
		t.Error("alert must carry a frequency description")
	}
}

func TestResolveAlert_BlockThenListShrinks(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	last := decodeData(t, ingestBurst(t, srv, "burst@upi", 5))
	alertID := int(last["alert_id"].(float64))

	before := len(decodeDataList(t, get(t, srv, "/api/v1/alerts")))

	resp := post(t, srv, fmt.Sprintf("/api/v1/alerts/%d/resolve", alertID),
		map[string]any{"decision": "block"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	d := decodeData(t, resp)
	if d["resolved"] != true {
		t.Error("expected resolved=true")
	}

	after := len(decodeDataList(t, get(t, srv, "/api/v1/alerts")))
	if after != before-1 {
		t.Errorf("pending list must shrink by one: before=%d after=%d", before, after)
	}
}

func TestResolveAlert_Twice_Returns409(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	last := decodeData(t, ingestBurst(t, srv, "burst@upi", 5))
	alertID := int(last["alert_id"].(float64))
	path := fmt.Sprintf("/api/v1/alerts/%d/resolve", alertID)

	post(t, srv, path, map[string]any{"decision": "approve"}).Body.Close()
	resp := post(t, srv, path, map[string]any{"decision": "approve"})

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
	e := decodeError(t, resp)
	if e["code"] != "ALREADY_RESOLVED" {
		t.Errorf("expected ALREADY_RESOLVED, got %v", e["code"])
	}
}

func TestResolveAlert_Unknown_Returns404(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	resp := post(t, srv, "/api/v1/alerts/777/resolve", map[string]any{"decision": "approve"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	e := decodeError(t, resp)
	if e["code"] != "ALERT_NOT_FOUND" {
		t.Errorf("expected ALERT_NOT_FOUND, got %v", e["code"])
	}
}

func TestResolveAlert_BadDecision_Returns400(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	last := decodeData(t, ingestBurst(t, srv, "burst@upi", 5))
	alertID := int(last["alert_id"].(float64))

	resp := post(t, srv, fmt.Sprintf("/api/v1/alerts/%d/resolve", alertID),
		map[string]any{"decision": "maybe"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestResolutions_LogIsRetrievable(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	last := decodeData(t, ingestBurst(t, srv, "burst@upi", 5))
	alertID := int(last["alert_id"].(float64))
	post(t, srv, fmt.Sprintf("/api/v1/alerts/%d/resolve", alertID),
		map[string]any{"decision": "block"}).Body.Close()

	log := decodeDataList(t, get(t, srv, "/api/v1/alerts/resolutions"))
	if len(log) != 1 {
		t.Fatalf("expected 1 resolution, got %d", len(log))
	}
	entry := log[0].(map[string]any)
	if entry["decision"] != "block" || int(entry["alert_id"].(float64)) != alertID {
		t.Errorf("unexpected log entry: %v", entry)
	}
}

// ─── Admin ────────────────────────────────────────────────────────────────────

func TestUpsertReputation_VisibleToScans(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	resp := put(t, srv, "/api/v1/admin/reputation", map[string]any{
		"identifier":  "fresh.scam@upi",
		"is_fraud":    true,
		"risk_score":  88,
		"reported_by": 17,
		"reason":      "Fake merchant account used for scam transactions",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	scan := decodeData(t, post(t, srv, "/api/v1/scan", map[string]any{"identifier": "FRESH.SCAM@UPI"}))
	if scan["is_fraud"] != true || scan["risk_score"].(float64) != 88 {
		t.Errorf("upserted record not visible to scans: %v", scan)
	}
}

func TestUpsertReputation_InvalidScore_Returns400(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	resp := put(t, srv, "/api/v1/admin/reputation", map[string]any{
		"identifier": "a@upi",
		"risk_score": 150,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

// ─── Threat feed ──────────────────────────────────────────────────────────────

func TestSubmitThreat_ClassifiesAndStores(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	resp := post(t, srv, "/api/v1/threats", map[string]any{
		"source":  "sms",
		"sender":  "Lottery-Dept",
		"subject": "CONGRATULATIONS! You won ₹25,00,000 in lucky draw",
		"snippet": "Click here to claim your prize immediately...",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	d := decodeData(t, resp)
	if d["severity"] != domain.SeverityMalicious {
		t.Errorf("expected malicious, got %v", d["severity"])
	}

	list := decodeDataList(t, get(t, srv, "/api/v1/threats"))
	if len(list) != 1 {
		t.Errorf("expected 1 stored threat, got %d", len(list))
	}
}

func TestSubmitThreat_InvalidSource_Returns400(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	resp := post(t, srv, "/api/v1/threats", map[string]any{
		"source": "carrier-pigeon", "subject": "hi",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

// ─── Webhooks ─────────────────────────────────────────────────────────────────

func TestRegisterWebhook_Returns201WithDefaultLevel(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	resp := post(t, srv, "/api/v1/webhooks", map[string]any{"url": "https://example.com/hook"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	d := decodeData(t, resp)
	if d["min_risk_level"] != domain.RiskHigh {
		t.Errorf("default min_risk_level should be high, got %v", d["min_risk_level"])
	}
	if d["id"] == "" {
		t.Error("webhook must receive an id")
	}
}

func TestRegisterWebhook_InvalidLevel_Returns400(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	resp := post(t, srv, "/api/v1/webhooks",
		map[string]any{"url": "https://example.com/hook", "min_risk_level": "severe"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestRegisterWebhook_MissingURL_Returns400(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	resp := post(t, srv, "/api/v1/webhooks", map[string]any{"min_risk_level": "high"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestDeleteWebhook_Returns204AndRemovesFromList(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	d := decodeData(t, post(t, srv, "/api/v1/webhooks", map[string]any{"url": "https://example.com/hook"}))
	resp := del(t, srv, "/api/v1/webhooks/"+d["id"].(string))
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("expected 204, got %d", resp.StatusCode)
	}

	list := decodeDataList(t, get(t, srv, "/api/v1/webhooks"))
	if len(list) != 0 {
		t.Errorf("expected empty webhook list after delete, got %d", len(list))
	}
}

func TestDeleteWebhook_Unknown_Returns404(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	resp := del(t, srv, "/api/v1/webhooks/ghost")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

// ─── Reports ──────────────────────────────────────────────────────────────────

func TestSummaryReport_CountsPendingAndResolved(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	last := decodeData(t, ingestBurst(t, srv, "burst@upi", 5))
	alertID := int(last["alert_id"].(float64))
	post(t, srv, fmt.Sprintf("/api/v1/alerts/%d/resolve", alertID),
		map[string]any{"decision": "approve"}).Body.Close()

	d := decodeData(t, get(t, srv, "/api/v1/reports/summary"))
	if d["pending_alerts"].(float64) < 1 {
		t.Errorf("expected pending alerts in summary, got %v", d["pending_alerts"])
	}
	res := d["resolutions"].(map[string]any)
	if res["approve"].(float64) != 1 {
		t.Errorf("expected 1 approve resolution, got %v", res["approve"])
	}
}
