package rental

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Sweeper is anything that can run one expiry sweep.
type Sweeper interface {
	Sweep(ctx context.Context) ([]int64, error)
}

// SweepScheduler runs the expiry sweep on a fixed interval so overdue
// rentals are released even when nobody touches the kiosk.
type SweepScheduler struct {
	sweeper   Sweeper
	interval  time.Duration
	timeout   time.Duration
	log       *slog.Logger
	ticker    *time.Ticker
	stopCh    chan struct{}
	doneCh    chan struct{}
	stopOnce  sync.Once
	isRunning bool
	stopped   bool
	mu        sync.Mutex
}

func NewSweepScheduler(sw Sweeper, interval time.Duration, log *slog.Logger) *SweepScheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	if log == nil {
		log = slog.Default()
	}
	return &SweepScheduler{
		sweeper:  sw,
		interval: interval,
		timeout:  30 * time.Second,
		log:      log,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins sweeping. It runs one sweep right away. A stopped
// scheduler stays stopped; build a new one instead.
func (s *SweepScheduler) Start() {
	s.mu.Lock()
	if s.isRunning || s.stopped { // 停止后不能重启
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.ticker = time.NewTicker(s.interval)
	s.mu.Unlock()

	s.log.Info("sweep scheduler started", "interval", s.interval)
	go s.run()
}

func (s *SweepScheduler) run() {
	defer close(s.doneCh)
	s.runSweep()
	for {
		select {
		case <-s.ticker.C:
			s.runSweep()
		case <-s.stopCh:
			s.log.Info("sweep scheduler stopped")
			return
		}
	}
}

func (s *SweepScheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	freed, err := s.sweeper.Sweep(ctx)
	if err != nil {
		s.log.Error("scheduled sweep failed", "error", err)
		return
	}
	if len(freed) > 0 {
		s.log.Info("scheduled sweep released items", "count", len(freed))
	}
}

// Stop halts the scheduler and waits for an in-flight sweep to finish.
func (s *SweepScheduler) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		running := s.isRunning
		if s.ticker != nil {
			s.ticker.Stop()
		}
		close(s.stopCh)
		s.isRunning = false
		s.stopped = true
		s.mu.Unlock()

		if running {
			<-s.doneCh
		}
	})
}

// RunNow triggers an immediate sweep outside the schedule.
func (s *SweepScheduler) RunNow(ctx context.Context) ([]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.sweeper.Sweep(ctx)
}
