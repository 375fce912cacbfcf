package threatfeed_test

import (
	"testing"
	"time"

	"upishield/fraud-engine/internal/domain"
	"upishield/fraud-engine/internal/threatfeed"
)

func TestClassify_MaliciousPhrases(t *testing.T) {
	cases := []struct{ subject, snippet string }{
		{"CONGRATULATIONS! You won ₹25,00,000 in lucky draw", "Click here to claim your prize immediately..."},
		{"Urgent: Tax Refund of ₹45,000 Pending", "Your tax refund is ready. Verify your bank details..."},
		{"Government COVID relief fund ₹10,000", "Claim your relief amount. Limited time offer..."},
	}
	for _, tc := range cases {
		if got := threatfeed.Classify(tc.subject, tc.snippet); got != domain.SeverityMalicious {
			t.Errorf("Classify(%q) = %q, want malicious", tc.subject, got)
		}
	}
}

func TestClassify_SuspiciousPhrases(t *testing.T) {
	cases := []struct{ subject, snippet string }{
		{"Your account will be blocked in 24 hours", "Update KYC immediately by clicking this link..."},
		{"Verify your Paytm wallet", "Unusual activity detected. Verify now to avoid suspension..."},
		{"Suspicious login attempt detected", "Someone tried to access your account from Delhi..."},
	}
	for _, tc := range cases {
		if got := threatfeed.Classify(tc.subject, tc.snippet); got != domain.SeveritySuspicious {
			t.Errorf("Classify(%q) = %q, want suspicious", tc.subject, got)
		}
	}
}

func TestClassify_MaliciousOutranksSuspicious(t *testing.T) {
	// Contains both a pressure tactic ("urgent") and a scam hook ("lottery").
	got := threatfeed.Classify("Urgent lottery payout", "act now")
	if got != domain.SeverityMalicious {
		t.Errorf("expected malicious to win, got %q", got)
	}
}

func TestClassify_CleanMessage(t *testing.T) {
	got := threatfeed.Classify("Dinner on Friday?", "See you at eight.")
	if got != domain.SeverityClean {
		t.Errorf("expected clean, got %q", got)
	}
}

func TestSubmit_AssignsIdSeverityAndTimestamp(t *testing.T) {
	f := threatfeed.New()

	msg := f.Submit(domain.ThreatMessage{
		Source:  domain.SourceSMS,
		Sender:  "Lottery-Dept",
		Subject: "You won the lucky draw",
		Snippet: "Claim your prize",
	})

	if msg.ID == "" {
		t.Error("submit must assign an id")
	}
	if msg.Severity != domain.SeverityMalicious {
		t.Errorf("expected malicious, got %q", msg.Severity)
	}
	if msg.ReceivedAt.IsZero() {
		t.Error("submit must timestamp the message")
	}
}

func TestList_NewestFirst(t *testing.T) {
	f := threatfeed.New()
	base := time.Date(2026, 1, 28, 9, 0, 0, 0, time.UTC)

	f.Submit(domain.ThreatMessage{Subject: "old", ReceivedAt: base})
	f.Submit(domain.ThreatMessage{Subject: "new", ReceivedAt: base.Add(time.Hour)})
	f.Submit(domain.ThreatMessage{Subject: "middle", ReceivedAt: base.Add(30 * time.Minute)})

	msgs := f.List()
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	want := []string{"new", "middle", "old"}
	for i, m := range msgs {
		if m.Subject != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], m.Subject)
		}
	}
}

func TestSeverityCounts(t *testing.T) {
	f := threatfeed.New()
	f.Submit(domain.ThreatMessage{Subject: "lottery win"})
	f.Submit(domain.ThreatMessage{Subject: "update kyc now"})
	f.Submit(domain.ThreatMessage{Subject: "hello"})

	counts := f.SeverityCounts()
	if counts[domain.SeverityMalicious] != 1 ||
		counts[domain.SeveritySuspicious] != 1 ||
		counts[domain.SeverityClean] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}
}
