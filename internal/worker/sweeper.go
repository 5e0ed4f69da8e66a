package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// SweepFacade removes expired idempotency records.
type SweepFacade interface {
	SweepIdempotency(ctx context.Context) (int, error)
}

// Sweeper periodically purges expired idempotency keys.
type Sweeper struct {
	facade   SweepFacade
	interval time.Duration
	logger   *slog.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewSweeper constructs Sweeper.
func NewSweeper(facade SweepFacade, interval time.Duration, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{facade: facade, interval: interval, logger: logger}
}

// Start launches the sweep loop.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.run(runCtx)
}

// Stop cancels the loop and waits for it to exit.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Sweeper) run(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.facade.SweepIdempotency(ctx)
			if err != nil {
				s.logger.Error("idempotency sweep failed", slog.String("error", err.Error()))
				continue
			}
			if removed > 0 {
				s.logger.Debug("expired idempotency keys removed", slog.Int("count", removed))
			}
		}
	}
}
