// Package scoring implements the risk classification rules.
//
// The scorer is stateless: every function is pure so the breakpoint table
// can be tested in isolation and future scoring models can plug in behind
// the same signatures without touching callers.
package scoring

import "upishield/fraud-engine/internal/domain"

// BreachCount is the default window size at which a sender's velocity is
// handed to the classifier. Below it, no alert is ever raised.
const BreachCount = 3

// ClassifyVelocity maps a window count and elapsed-minutes pair to a risk
// level using fixed breakpoints. Bands are evaluated most severe first, so
// the highest matching severity wins when several bands overlap.
func ClassifyVelocity(count, elapsedMinutes int) string {
	switch {
	case count >= 6 && elapsedMinutes <= 15:
		return domain.RiskCritical
	case count >= 4 && elapsedMinutes <= 10:
		return domain.RiskHigh
	case count >= 3 && elapsedMinutes <= 15:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}

// ClassifyIdentifier converts a stored reputation record into a scan verdict.
// It is a direct field passthrough today; this is the seam where richer
// identifier scoring models would slot in.
func ClassifyIdentifier(record domain.ReputationRecord) domain.Verdict {
	return domain.Verdict{
		Identifier: record.Identifier,
		IsFraud:    record.IsFraud,
		RiskScore:  record.RiskScore,
		ReportedBy: record.ReportedBy,
		Reason:     record.Reason,
	}
}

// DefaultVerdict is the answer for identifiers with no reputation record:
// unverified, but with no adverse history on file.
func DefaultVerdict(identifier string) domain.Verdict {
	return domain.Verdict{
		Identifier: identifier,
		IsFraud:    false,
		RiskScore:  domain.DefaultRiskScore,
		ReportedBy: 0,
		Reason:     domain.DefaultReason,
	}
}
