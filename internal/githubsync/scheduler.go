package githubsync

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler runs SyncAll on a cron schedule. Overlapping runs are skipped.
type Scheduler struct {
	cron *cron.Cron
	log  *logrus.Entry
}

// NewScheduler registers syncer.SyncAll under the standard five-field cron spec.
func NewScheduler(spec string, syncer *Syncer, logger logrus.FieldLogger) (*Scheduler, error) {
	log := logger.WithField("component", "sync-scheduler")
	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)))

	_, err := c.AddFunc(spec, func() {
		n, err := syncer.SyncAll(context.Background(), TriggerScheduled)
		entry := log.WithField("synced", n)
		if err != nil {
			entry.WithError(err).Warn("scheduled sync finished with errors")
			return
		}
		entry.Info("scheduled sync finished")
	})
	if err != nil {
		return nil, fmt.Errorf("parse sync schedule %q: %w", spec, err)
	}
	return &Scheduler{cron: c, log: log}, nil
}

// Start begins firing in the background.
func (s *Scheduler) Start() {
	s.log.Info("sync scheduler started")
	s.cron.Start()
}

// Stop prevents new runs and waits for a running one or ctx, whichever ends first.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
	s.log.Info("sync scheduler stopped")
}
