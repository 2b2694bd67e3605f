// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/go-login-portal/internal/logger"
)

// minSweepInterval keeps a misconfigured interval from spinning.
const minSweepInterval = time.Second

// SweepWorker calls Sweep on its target every interval.
type SweepWorker struct {
	name     string
	target   Sweeper
	interval time.Duration
	logger   *logger.Logger
}

func NewSweepWorker(name string, target Sweeper, interval time.Duration, logger *logger.Logger) *SweepWorker {
	if interval < minSweepInterval {
		interval = minSweepInterval
	}

	return &SweepWorker{
		name:     name,
		target:   target,
		interval: interval,
		logger:   logger,
	}
}

func (w *SweepWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info().Str("worker", w.name).Dur("interval", w.interval).Msg("sweep worker started")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Str("worker", w.name).Msg("sweep worker stopped")
			return
		case now := <-ticker.C:
			if removed := w.target.Sweep(now); removed > 0 {
				w.logger.Debug().Str("worker", w.name).Int("removed", removed).Msg("swept expired entries")
			}
		}
	}
}
