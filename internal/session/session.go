// Package session evaluates access-token expiry and emits periodic status
// updates until the session ends. The expiry instant is fixed when the
// token is issued; nothing here extends it.
package session

import (
	"context"
	"time"
)

const (
	// WarningThreshold flags a session with less than five minutes left.
	WarningThreshold = 5 * time.Minute
	// CriticalThreshold flags a session with less than one minute left.
	CriticalThreshold = time.Minute
	// DefaultCheckInterval is the once-per-second countdown tick.
	DefaultCheckInterval = time.Second
)

// Status is a snapshot of a session at a given instant.
type Status struct {
	ExpiresAt time.Time     `json:"expiresAt"`
	Remaining time.Duration `json:"-"`
	Warning   bool          `json:"warning"`
	Critical  bool          `json:"critical"`
	Expired   bool          `json:"expired"`
}

// RemainingSeconds is Remaining rounded down to whole seconds.
func (s Status) RemainingSeconds() int64 {
	return int64(s.Remaining / time.Second)
}

// Evaluate computes the status of a session ending at expiresAt.
func Evaluate(expiresAt, now time.Time) Status {
	remaining := expiresAt.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	return Status{
		ExpiresAt: expiresAt,
		Remaining: remaining,
		Warning:   remaining > 0 && remaining < WarningThreshold,
		Critical:  remaining > 0 && remaining < CriticalThreshold,
		Expired:   remaining == 0,
	}
}

// Watch sends a Status immediately and then on every interval. The final
// value sent has Expired set; the channel is closed after it, or when ctx
// is cancelled.
func Watch(ctx context.Context, expiresAt time.Time, interval time.Duration) <-chan Status {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	out := make(chan Status, 1)

	go func() {
		defer close(out)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			st := Evaluate(expiresAt, time.Now())
			select {
			case out <- st:
			case <-ctx.Done():
				return
			}
			if st.Expired {
				return
			}
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
