// Package lockout implements the per-account failed-attempt state machine.
//
// The state lives on the account record itself (failed attempts, window
// start, locked-until) and is mutated in memory; persisting the account is
// the caller's job, inside the same transaction that read it.
package lockout

import (
	"time"

	"github.com/MKhiriev/go-login-portal/internal/config"
	"github.com/MKhiriev/go-login-portal/models"
)

// Policy holds the lockout thresholds.
type Policy struct {
	// MaxAttempts is the number of failures inside one window that triggers
	// a lock.
	MaxAttempts int
	// Window is the span during which failures accumulate.
	Window time.Duration
	// Duration is how long a triggered lock lasts.
	Duration time.Duration
}

// NewPolicy builds a Policy from configuration.
func NewPolicy(cfg config.Lockout) Policy {
	return Policy{
		MaxAttempts: cfg.MaxAttempts,
		Window:      cfg.Window,
		Duration:    cfg.Duration,
	}
}

// IsLocked reports whether u is locked at now. An expired lock is cleared
// together with the counters and the account reports unlocked.
func (p Policy) IsLocked(u *models.User, now time.Time) bool {
	if u.LockedUntil == nil {
		return false
	}
	if !u.LockedUntil.After(now) {
		p.Clear(u)
		return false
	}
	return true
}

// RecordFailure registers one wrong-password attempt at now and reports
// whether it escalated into a lock.
//
// A failure outside the current window starts a new window instead of
// extending the old one. Applying a lock resets the counter and window.
func (p Policy) RecordFailure(u *models.User, now time.Time) bool {
	if u.FailedAttemptWindowStart == nil || now.Sub(*u.FailedAttemptWindowStart) > p.Window {
		start := now
		u.FailedAttemptWindowStart = &start
		u.FailedAttempts = 1
	} else {
		u.FailedAttempts++
	}

	if u.FailedAttempts < p.MaxAttempts {
		return false
	}

	until := now.Add(p.Duration)
	u.LockedUntil = &until
	u.FailedAttempts = 0
	u.FailedAttemptWindowStart = nil
	return true
}

// Clear resets the counter, the window and any lock.
func (p Policy) Clear(u *models.User) {
	u.FailedAttempts = 0
	u.FailedAttemptWindowStart = nil
	u.LockedUntil = nil
}
