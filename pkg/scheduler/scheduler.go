package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-pkgz/lgr"
	"github.com/robfig/cron/v3"
)

// Refresher runs a refresh and tells whether anything is cached, implemented by Pipeline
type Refresher interface {
	Refresh(ctx context.Context) (Outcome, error)
	Empty(ctx context.Context) (bool, error)
}

// Config holds scheduler configuration
type Config struct {
	RefreshCron        string // cron spec, e.g. "@every 30m" or "0 * * * *", empty disables periodic refresh
	SkipInitialRefresh bool   // don't refresh on start when the cache is empty
}

// Scheduler triggers refreshes on start and on a cron schedule
type Scheduler struct {
	refresher Refresher
	cfg       Config
	schedule  cron.Schedule
	cron      *cron.Cron
	wg        sync.WaitGroup
	cancel    context.CancelFunc
}

// NewScheduler creates a new scheduler instance, the cron spec is validated here
func NewScheduler(refresher Refresher, cfg Config) (*Scheduler, error) {
	s := &Scheduler{refresher: refresher, cfg: cfg}
	if cfg.RefreshCron != "" {
		schedule, err := cron.ParseStandard(cfg.RefreshCron)
		if err != nil {
			return nil, fmt.Errorf("parse refresh schedule %q: %w", cfg.RefreshCron, err)
		}
		s.schedule = schedule
	}
	return s, nil
}

// Start begins the scheduler, it returns immediately
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	if !s.cfg.SkipInitialRefresh {
		s.wg.Add(1)
		go s.initialRefresh(ctx)
	}

	if s.schedule != nil {
		s.cron = cron.New(cron.WithChain(cron.Recover(cron.DiscardLogger), cron.SkipIfStillRunning(cron.DiscardLogger)))
		s.cron.Schedule(s.schedule, cron.FuncJob(func() { s.refresh(ctx, "scheduled") }))
		s.cron.Start()
		lgr.Printf("[INFO] scheduler started with refresh schedule %q", s.cfg.RefreshCron)
		return
	}
	lgr.Printf("[INFO] scheduler started without periodic refresh")
}

// Stop gracefully stops the scheduler, waiting for a running refresh to finish
func (s *Scheduler) Stop() {
	lgr.Printf("[INFO] stopping scheduler...")
	if s.cancel != nil {
		s.cancel()
	}
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	s.wg.Wait()
	lgr.Printf("[INFO] scheduler stopped")
}

// initialRefresh fills an empty cache right after start
func (s *Scheduler) initialRefresh(ctx context.Context) {
	defer s.wg.Done()
	empty, err := s.refresher.Empty(ctx)
	if err != nil {
		lgr.Printf("[ERROR] failed to check item cache: %v", err)
		return
	}
	if !empty {
		lgr.Printf("[DEBUG] item cache is not empty, skip initial refresh")
		return
	}
	s.refresh(ctx, "initial")
}

func (s *Scheduler) refresh(ctx context.Context, reason string) {
	if ctx.Err() != nil {
		return
	}
	lgr.Printf("[DEBUG] %s refresh started", reason)
	if _, err := s.refresher.Refresh(ctx); err != nil {
		lgr.Printf("[ERROR] %s refresh failed: %v", reason, err)
	}
}
