package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/QuackbackIO/quackback-sub007/common/logger"
)

// StaleRequeuer re-enqueues items stuck in ready_for_extraction.
type StaleRequeuer interface {
	RequeueStale(ctx context.Context, staleBefore time.Time, limit int32) (int, error)
}

type SweeperConfig struct {
	Interval   time.Duration
	StaleAfter time.Duration
	BatchSize  int32
	Now        func() time.Time
}

// Sweeper recovers items whose enqueue was lost after they were stored, which
// a duplicate ingest never re-submits.
type Sweeper struct {
	requeuer StaleRequeuer
	cfg      SweeperConfig

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func NewSweeper(requeuer StaleRequeuer, cfg SweeperConfig) *Sweeper {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Sweeper{
		requeuer:  requeuer,
		cfg:       cfg,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Run sweeps every Interval until Stop is called or ctx ends.
func (s *Sweeper) Run(ctx context.Context) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "intake.worker.sweeper",
	})

	defer close(s.stoppedCh)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "sweeper started",
		"interval", s.cfg.Interval,
		"stale_after", s.cfg.StaleAfter)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			slog.InfoContext(ctx, "sweeper stopping")
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce runs a single pass and returns the number of items re-enqueued.
func (s *Sweeper) SweepOnce(ctx context.Context) int {
	n, err := s.requeuer.RequeueStale(ctx, s.cfg.Now().Add(-s.cfg.StaleAfter), s.cfg.BatchSize)
	if err != nil {
		slog.ErrorContext(ctx, "sweep cycle error", "error", err)
		return 0
	}
	return n
}

// Stop signals the sweeper to stop and waits for Run to return.
func (s *Sweeper) Stop() {
	close(s.stopCh)
	<-s.stoppedCh
}
