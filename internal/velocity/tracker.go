// Package velocity maintains per-sender sliding windows of transaction
// timestamps and reports frequency-based window state.
//
// Locking: the tracker is an arena of per-sender windows. A registry mutex
// guards only the sender→window map; each window carries its own mutex, so
// events for different senders never block each other while events for the
// same sender are fully serialized. Per-sender serialization is what keeps
// the monotonic-timestamp invariant enforceable.
package velocity

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"upishield/fraud-engine/internal/domain"
)

// ErrOutOfOrderEvent is returned when an event's timestamp precedes the
// sender's most recent recorded timestamp. The tracker assumes monotonic
// per-sender arrival and cannot correct clock skew; callers should log and
// drop or re-timestamp. The window is left untouched.
var ErrOutOfOrderEvent = errors.New("event timestamp precedes sender's last recorded event")

// DefaultWindow is the sliding window duration used when none is configured.
const DefaultWindow = 15 * time.Minute

// Tracker holds the velocity window for every sender seen so far.
type Tracker struct {
	window time.Duration

	mu      sync.Mutex // guards senders map only, never held during a Record
	senders map[string]*senderWindow
}

// senderWindow is one sender's ordered timestamp sequence. Timestamps are
// non-decreasing and all lie within the configured window of the latest.
type senderWindow struct {
	mu         sync.Mutex
	timestamps []time.Time
}

// NewTracker creates a Tracker with the given window duration.
// Non-positive durations fall back to DefaultWindow.
func NewTracker(window time.Duration) *Tracker {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Tracker{
		window:  window,
		senders: make(map[string]*senderWindow),
	}
}

// Window returns the configured window duration.
func (t *Tracker) Window() time.Duration { return t.window }

// Record appends an event to its sender's window, evicting entries older
// than the window, and returns the resulting window state. Equal timestamps
// are in order; only strictly earlier ones are rejected.
func (t *Tracker) Record(event domain.TransactionEvent) (domain.WindowState, error) {
	sw := t.windowFor(domain.NormalizeIdentifier(event.Sender))

	sw.mu.Lock()
	defer sw.mu.Unlock()

	if n := len(sw.timestamps); n > 0 && event.Timestamp.Before(sw.timestamps[n-1]) {
		return domain.WindowState{}, ErrOutOfOrderEvent
	}

	// Evict everything older than the window start. Timestamps are ordered,
	// so a single scan from the front finds the cut point.
	cutoff := event.Timestamp.Add(-t.window)
	keep := 0
	for keep < len(sw.timestamps) && sw.timestamps[keep].Before(cutoff) {
		keep++
	}
	sw.timestamps = append(sw.timestamps[keep:], event.Timestamp)

	count := len(sw.timestamps)
	elapsed := int(event.Timestamp.Sub(sw.timestamps[0]).Minutes())
	if elapsed < 1 {
		elapsed = 1 // avoid "in 0 mins" division artifacts
	}

	return domain.WindowState{
		Count:          count,
		WindowMinutes:  int(t.window.Minutes()),
		ElapsedMinutes: elapsed,
		Frequency:      describeFrequency(count, elapsed),
	}, nil
}

// Senders reports how many distinct senders currently have a window.
func (t *Tracker) Senders() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.senders)
}

// windowFor returns the sender's window, creating it on first sight.
func (t *Tracker) windowFor(sender string) *senderWindow {
	t.mu.Lock()
	defer t.mu.Unlock()
	sw, ok := t.senders[sender]
	if !ok {
		sw = &senderWindow{}
		t.senders[sender] = sw
	}
	return sw
}

// describeFrequency renders the human string shown to reviewers,
// e.g. "5th transaction in 8 mins".
func describeFrequency(count, elapsedMinutes int) string {
	unit := "mins"
	if elapsedMinutes == 1 {
		unit = "min"
	}
	return fmt.Sprintf("%s transaction in %d %s", ordinal(count), elapsedMinutes, unit)
}

// ordinal formats 1 → "1st", 2 → "2nd", 3 → "3rd", 4 → "4th", 11 → "11th", …
func ordinal(n int) string {
	suffix := "th"
	if n%100 < 11 || n%100 > 13 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
