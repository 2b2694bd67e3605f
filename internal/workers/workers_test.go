// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MKhiriev/go-login-portal/internal/logger"
)

// mockWorker is a test implementation of the Worker interface that tracks
// how many times Run was called and blocks until the context is done.
type mockWorker struct {
	runCount atomic.Int32
}

func (m *mockWorker) Run(ctx context.Context) {
	m.runCount.Add(1)
	<-ctx.Done()
}

// countingSweeper records every Sweep call.
type countingSweeper struct {
	mu    sync.Mutex
	calls []time.Time
}

func (s *countingSweeper) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, now)
	return 1
}

func (s *countingSweeper) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// ─────────────────────────────────────────────
// Workers
// ─────────────────────────────────────────────

func TestWorkers_Run_AllWorkersAreCalled(t *testing.T) {
	w1, w2, w3 := &mockWorker{}, &mockWorker{}, &mockWorker{}
	ws := NewWorkers(w1, w2)
	ws.Add(w3)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		ws.Run(ctx)
		close(done)
	}()

	deadline := time.After(time.Second)
	for w1.runCount.Load()+w2.runCount.Load()+w3.runCount.Load() < 3 {
		select {
		case <-deadline:
			t.Fatal("workers were not started")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	for i, w := range []*mockWorker{w1, w2, w3} {
		if got := w.runCount.Load(); got != 1 {
			t.Errorf("worker[%d]: expected runCount=1, got %d", i, got)
		}
	}
}

func TestWorkers_Run_Empty(t *testing.T) {
	// returns immediately without workers
	NewWorkers().Run(context.Background())
	(&Workers{}).Run(context.Background())
}

// ─────────────────────────────────────────────
// SweepWorker
// ─────────────────────────────────────────────

func TestSweepWorker_SweepsUntilCancelled(t *testing.T) {
	target := &countingSweeper{}
	w := NewSweepWorker("test", target, time.Second, logger.Nop())
	w.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	deadline := time.After(time.Second)
	for target.count() < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected at least 3 sweeps, got %d", target.count())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancellation")
	}

	stopped := target.count()
	time.Sleep(30 * time.Millisecond)
	if target.count() != stopped {
		t.Errorf("sweeps continued after stop: %d -> %d", stopped, target.count())
	}
}

func TestNewSweepWorker_MinimumInterval(t *testing.T) {
	w := NewSweepWorker("test", &countingSweeper{}, 0, logger.Nop())

	if w.interval != minSweepInterval {
		t.Errorf("expected interval %v, got %v", minSweepInterval, w.interval)
	}
}
