package service

import (
	"context"
	"sync"
	"time"

	"github.com/vanj900/precisionlocked/internal/domain"
	"go.uber.org/zap"
)

const defaultRetentionInterval = 1 * time.Hour

// RetentionService deletes old simulation runs (and their trajectories) on a
// periodic schedule. Trajectories are O(N) per run, so unbounded retention
// grows the dominant table without bound.
type RetentionService struct {
	runStore domain.RunStore
	logger   *zap.Logger

	interval time.Duration
	maxAge   time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewRetentionService(rs domain.RunStore, maxAge time.Duration, logger *zap.Logger) *RetentionService {
	return &RetentionService{
		runStore: rs,
		logger:   logger,
		interval: defaultRetentionInterval,
		maxAge:   maxAge,
		stopCh:   make(chan struct{}),
	}
}

func (s *RetentionService) SetInterval(d time.Duration) {
	s.interval = d
}

// Start runs retention on a periodic schedule in a background goroutine.
// A maxAge of zero disables deletion entirely.
func (s *RetentionService) Start() {
	if s.maxAge <= 0 {
		s.logger.Info("run retention disabled")
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("run retention started",
			zap.Duration("interval", s.interval),
			zap.Duration("max_age", s.maxAge))

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				s.run(ctx)
				cancel()
			case <-s.stopCh:
				s.logger.Info("run retention stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the retention worker.
func (s *RetentionService) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

func (s *RetentionService) run(ctx context.Context) {
	cutoff := time.Now().Add(-s.maxAge)

	deleted, err := s.runStore.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Error("failed to delete expired runs", zap.Error(err))
		return
	}
	if deleted > 0 {
		s.logger.Info("deleted expired runs",
			zap.Int64("count", deleted),
			zap.Time("cutoff", cutoff))
	}
}
