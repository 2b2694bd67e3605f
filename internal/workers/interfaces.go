// Package workers provides abstractions for managing and running
// background workers in the application.
// It defines the Worker interface and a Workers aggregate that allows
// running multiple workers in a unified way.
package workers

import (
	"context"
	"time"
)

// Worker is the interface that must be implemented by any background worker.
//
// Run blocks until ctx is cancelled.
type Worker interface {
	Run(ctx context.Context)
}

// Sweeper evicts expired in-memory state and reports how many entries it
// removed. Implemented by the CAPTCHA challenge store and the login rate
// limiter.
type Sweeper interface {
	Sweep(now time.Time) int
}
