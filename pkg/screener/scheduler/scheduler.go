// Package scheduler keeps the batch cache entry warm on a cron schedule.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// DefaultSpec refreshes a little inside the one-hour batch freshness window.
const DefaultSpec = "@every 50m"

// Refresher reloads a cached payload regardless of its age.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Warmer periodically refreshes a target. Overlapping runs are skipped.
type Warmer struct {
	target  Refresher
	cron    *cron.Cron
	timeout time.Duration
}

// NewWarmer creates a warmer whose runs are bounded by timeout.
func NewWarmer(target Refresher, timeout time.Duration) *Warmer {
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &Warmer{
		target:  target,
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		timeout: timeout,
	}
}

// Start schedules refreshes on spec (six-field cron with seconds, or a
// descriptor such as "@every 50m").
func (w *Warmer) Start(spec string) error {
	if spec == "" {
		spec = DefaultSpec
	}
	if _, err := w.cron.AddFunc(spec, w.run); err != nil {
		return err
	}
	w.cron.Start()
	log.Info().Str("schedule", spec).Msg("cache warmer started")
	return nil
}

// Stop stops scheduling and waits for a running refresh to finish.
func (w *Warmer) Stop() {
	<-w.cron.Stop().Done()
	log.Info().Msg("cache warmer stopped")
}

// RunNow triggers an immediate refresh in the background.
func (w *Warmer) RunNow() {
	go w.run()
}

func (w *Warmer) run() {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	start := time.Now()
	if err := w.target.Refresh(ctx); err != nil {
		log.Error().Err(err).Msg("cache warm failed")
		return
	}
	log.Debug().Dur("duration", time.Since(start)).Msg("cache warm completed")
}
