// Package scheduler runs the periodic maintenance jobs: the daily bulk
// clear of dedup caches and audit tables at 23:59 Moscow time, and an
// hourly prune keeping the audit tables inside their rolling window.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"quote_bot/internal/storage"
)

// Resetter clears in-memory pipeline state (the dedup caches).
type Resetter interface {
	Reset()
}

// Scheduler owns the cron jobs for operational hygiene.
type Scheduler struct {
	store storage.Storage
	eng   Resetter
	keep  time.Duration
	log   *slog.Logger
	cron  *cron.Cron
}

func New(store storage.Storage, eng Resetter, keep time.Duration, log *slog.Logger) (*Scheduler, error) {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		return nil, err
	}
	return &Scheduler{
		store: store,
		eng:   eng,
		keep:  keep,
		log:   log,
		cron:  cron.New(cron.WithLocation(loc)),
	}, nil
}

// Run registers the jobs and blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	if _, err := s.cron.AddFunc("59 23 * * *", func() { s.dailyClear(ctx) }); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("@hourly", func() { s.prune(ctx) }); err != nil {
		return err
	}

	s.cron.Start()
	<-ctx.Done()

	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	return nil
}

// dailyClear wipes the dedup caches and the audit tables in bulk.
func (s *Scheduler) dailyClear(ctx context.Context) {
	s.eng.Reset()
	if err := s.store.ClearAll(ctx); err != nil {
		s.log.Error("daily clear audit tables", "error", err)
		return
	}
	s.log.Info("daily maintenance clear done")
}

func (s *Scheduler) prune(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-s.keep)
	if err := s.store.PruneOlderThan(ctx, cutoff); err != nil {
		s.log.Error("prune audit tables", "error", err)
		return
	}
	s.log.Debug("audit tables pruned", "cutoff", cutoff)
}
