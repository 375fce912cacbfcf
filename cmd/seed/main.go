// Command seed generates a startup dataset for the UPIShield fraud engine
// and writes it to data/seed.json.
//
// Usage:
//
//	go run ./cmd/seed
//
// The dataset contains the known scam registry (a handful of curated
// identifiers plus generated ones across common UPI handles) and a sample
// threat feed of flagged email/SMS messages.
package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"time"

	"upishield/fraud-engine/internal/domain"
	"upishield/fraud-engine/internal/threatfeed"
)

func main() {
	rng := rand.New(rand.NewSource(42)) // deterministic for reproducibility

	seed := domain.SeedData{
		Reputation: buildRegistry(rng),
		Threats:    buildThreats(),
	}

	if err := os.MkdirAll("data", 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "mkdir error: %v\n", err)
		os.Exit(1)
	}

	f, err := os.Create("data/seed.json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "create error: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(seed); err != nil {
		fmt.Fprintf(os.Stderr, "encode error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated %d reputation records and %d threat messages → data/seed.json\n",
		len(seed.Reputation), len(seed.Threats))
}

// ─── Fraud registry ───────────────────────────────────────────────────────────

// curated are the hand-verified registry entries; they anchor the dataset.
var curated = []domain.ReputationRecord{
	{
		Identifier: "scammer@ybl",
		IsFraud:    true,
		RiskScore:  95,
		ReportedBy: 400,
		Reason:     "Multiple fraud reports for phishing and unauthorized transactions",
	},
	{
		Identifier: "fake.merchant@paytm",
		IsFraud:    true,
		RiskScore:  88,
		ReportedBy: 256,
		Reason:     "Fake merchant account used for scam transactions",
	},
	{
		Identifier: "lottery123@oksbi",
		IsFraud:    true,
		RiskScore:  92,
		ReportedBy: 312,
		Reason:     "Lottery scam - requests advance fees for fake prizes",
	},
	{
		Identifier: "legitimate@hdfc",
		IsFraud:    false,
		RiskScore:  5,
		ReportedBy: 0,
		Reason:     "Verified business account with clean transaction history",
	},
}

var scamPrefixes = []string{
	"refund.desk", "kyc.update", "prize.claim", "support.team", "cashback.now",
	"electricity.bill", "army.officer", "job.offer", "loan.approval", "gift.card",
}

var handles = []string{"ybl", "paytm", "oksbi", "okhdfcbank", "okicici", "axl", "ibl"}

var scamReasons = []string{
	"Reported for advance-fee fraud posing as a refund service",
	"Impersonates bank KYC support to harvest credentials",
	"Collects processing fees for prizes that never arrive",
	"Requests remote-access app installs during fake support calls",
	"QR code scam - victims scan to 'receive' money and get debited",
}

// buildRegistry returns the curated records plus generated scam identifiers.
func buildRegistry(rng *rand.Rand) []domain.ReputationRecord {
	records := append([]domain.ReputationRecord{}, curated...)

	for i, prefix := range scamPrefixes {
		records = append(records, domain.ReputationRecord{
			Identifier: fmt.Sprintf("%s%d@%s", prefix, rng.Intn(900)+100, handles[i%len(handles)]),
			IsFraud:    true,
			RiskScore:  70 + rng.Intn(30),
			ReportedBy: 20 + rng.Intn(300),
			Reason:     scamReasons[rng.Intn(len(scamReasons))],
		})
	}
	return records
}

// ─── Threat feed samples ──────────────────────────────────────────────────────

type threatSample struct {
	source  string
	sender  string
	subject string
	snippet string
	age     time.Duration
}

var threatSamples = []threatSample{
	{
		source:  domain.SourceEmail,
		sender:  "security@paytm-verify.xyz",
		subject: "URGENT: Your KYC will expire today",
		snippet: "Dear customer, your KYC verification is pending. Click this link immediately to avoid account suspension...",
		age:     2 * time.Hour,
	},
	{
		source:  domain.SourceSMS,
		sender:  "VM-LOTTERY",
		subject: "You won ₹25,00,000 in KBC Lucky Draw",
		snippet: "CONGRATULATIONS! Your mobile number has won. Pay processing fee of ₹5000 to claim your prize...",
		age:     5 * time.Hour,
	},
	{
		source:  domain.SourceEmail,
		sender:  "refunds@incometax-gov.in.co",
		subject: "Income Tax Refund of ₹34,500 approved",
		snippet: "Your tax refund is ready. Verify your bank account details within 24 hours to receive the amount...",
		age:     8 * time.Hour,
	},
	{
		source:  domain.SourceSMS,
		sender:  "AX-HDFCBK",
		subject: "Unusual activity on your account",
		snippet: "We detected a suspicious login from a new device. If this was not you, verify your identity urgently...",
		age:     12 * time.Hour,
	},
	{
		source:  domain.SourceEmail,
		sender:  "newsletter@shopping-deals.com",
		subject: "Weekend sale: up to 40% off",
		snippet: "Browse our weekend collection and save on your favorite brands...",
		age:     24 * time.Hour,
	},
	{
		source:  domain.SourceSMS,
		sender:  "VM-RELIEF",
		subject: "PM Relief Fund donation drive",
		snippet: "Contribute to the relief fund today. Send money directly to this UPI id and get tax benefits...",
		age:     30 * time.Hour,
	},
}

// buildThreats converts the samples into classified ThreatMessages with
// timestamps relative to now, oldest last.
func buildThreats() []domain.ThreatMessage {
	now := time.Now().UTC()
	msgs := make([]domain.ThreatMessage, 0, len(threatSamples))
	for i, s := range threatSamples {
		msgs = append(msgs, domain.ThreatMessage{
			ID:         fmt.Sprintf("seed-threat-%02d", i+1),
			Source:     s.source,
			Sender:     s.sender,
			Subject:    s.subject,
			Snippet:    s.snippet,
			Severity:   threatfeed.Classify(s.subject, s.snippet),
			ReceivedAt: now.Add(-s.age),
		})
	}
	return msgs
}
