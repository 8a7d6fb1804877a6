package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"liquipedia-scraper/logging"
	"liquipedia-scraper/models"
)

// RunFunc performs one complete scrape
type RunFunc func(ctx context.Context) (*models.RunReport, error)

// Notifier is told about every finished run
type Notifier interface {
	NotifySuccess(ctx context.Context, report *models.RunReport) error
	NotifyFailure(ctx context.Context, err error) error
}

// Scheduler rebuilds the whole data set at a fixed interval. Runs never overlap.
type Scheduler struct {
	interval time.Duration
	run      RunFunc
	notifier Notifier

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a new scheduler. notifier may be nil.
func NewScheduler(interval time.Duration, run RunFunc, notifier Notifier) *Scheduler {
	return &Scheduler{
		interval: interval,
		run:      run,
		notifier: notifier,
	}
}

// Start runs once immediately, then once per interval, in a goroutine
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop(ctx)
	}()
}

// Stop stops the scheduler and waits for a run in progress to return
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	logging.L().Infof("Scheduler stopped")
}

// loop is the main scheduler loop
func (s *Scheduler) loop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs one run and reports its outcome
func (s *Scheduler) RunOnce(ctx context.Context) error {
	logging.L().Infof("Starting scheduled run")
	report, err := s.run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			logging.L().Infof("Run cancelled")
			return err
		}
		logging.L().Errorf("Run failed: %v", err)
		s.notify(func(n Notifier) error { return n.NotifyFailure(ctx, err) })
		return err
	}

	s.notify(func(n Notifier) error { return n.NotifySuccess(ctx, report) })
	return nil
}

func (s *Scheduler) notify(send func(Notifier) error) {
	if s.notifier == nil {
		return
	}
	if err := send(s.notifier); err != nil {
		logging.L().Warnf("Error sending notification: %v", err)
	}
}
