package zendesk

import (
	"time"
)

// Throttle enforces a minimum spacing between outbound API calls so the
// migration stays under Zendesk's published requests-per-minute ceiling.
// It is not safe for concurrent use; the migration processes tickets
// strictly sequentially, so a single caller owns it.
type Throttle struct {
	interval time.Duration
	last     time.Time
	sleep    func(time.Duration)
}

// NewThrottle returns a throttle spacing calls to at most requestsPerMinute.
// A zero or negative rate disables throttling entirely.
func NewThrottle(requestsPerMinute int) *Throttle {
	var interval time.Duration
	if requestsPerMinute > 0 {
		interval = time.Minute / time.Duration(requestsPerMinute)
	}

	return &Throttle{
		interval: interval,
		sleep:    time.Sleep,
	}
}

// Wait blocks until at least the configured interval has passed since the
// previous call. The first call returns immediately.
func (t *Throttle) Wait() {
	if t.interval <= 0 {
		return
	}

	now := time.Now()
	if !t.last.IsZero() {
		if d := t.interval - now.Sub(t.last); d > 0 {
			t.sleep(d)
		}
	}

	t.last = time.Now()
}
