// Package threatfeed screens flagged email and SMS messages for common
// payment-scam patterns and keeps a reviewable feed of the results.
//
// Classification is keyword-based: malicious phrases are the textbook scam
// hooks (lottery wins, prize claims, relief funds), suspicious phrases are
// the pressure tactics that precede them (KYC deadlines, account blocks,
// verification demands). A message matching a malicious phrase is malicious
// regardless of any suspicious matches.
package threatfeed

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"upishield/fraud-engine/internal/domain"
)

// maliciousPhrases mark outright scam content.
var maliciousPhrases = []string{
	"lottery",
	"lucky draw",
	"you won",
	"claim your prize",
	"relief fund",
	"tax refund",
	"processing fee",
	"congratulations",
}

// suspiciousPhrases mark pressure and phishing tactics.
var suspiciousPhrases = []string{
	"kyc",
	"account will be blocked",
	"verify your",
	"suspended",
	"unusual activity",
	"suspicious login",
	"urgent",
	"click this link",
	"limited time",
}

// Classify assigns a severity to a message based on its subject and snippet.
func Classify(subject, snippet string) string {
	text := strings.ToLower(subject + " " + snippet)

	for _, p := range maliciousPhrases {
		if strings.Contains(text, p) {
			return domain.SeverityMalicious
		}
	}
	for _, p := range suspiciousPhrases {
		if strings.Contains(text, p) {
			return domain.SeveritySuspicious
		}
	}
	return domain.SeverityClean
}

// Feed is the thread-safe message store.
type Feed struct {
	mu       sync.RWMutex
	messages []domain.ThreatMessage
}

// New creates an empty Feed.
func New() *Feed {
	return &Feed{}
}

// Submit classifies a message, assigns it an id and receipt time if absent,
// and stores it. The stored message is returned.
func (f *Feed) Submit(msg domain.ThreatMessage) domain.ThreatMessage {
	msg.Severity = Classify(msg.Subject, msg.Snippet)
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.ReceivedAt.IsZero() {
		msg.ReceivedAt = time.Now().UTC()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msg)
	return msg
}

// List returns all messages, newest first.
func (f *Feed) List() []domain.ThreatMessage {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]domain.ThreatMessage, len(f.messages))
	copy(out, f.messages)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ReceivedAt.After(out[j].ReceivedAt)
	})
	return out
}

// SeverityCounts tallies stored messages by severity. Used by the
// summary report.
func (f *Feed) SeverityCounts() map[string]int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	counts := make(map[string]int, 3)
	for _, m := range f.messages {
		counts[m.Severity]++
	}
	return counts
}
