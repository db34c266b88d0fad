package status

import (
	"context"
	"errors"
	"sync"
	"time"

	"floorplan-sync/core/reconcile"
	"floorplan-sync/feature/report"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrShuttingDown is returned by Trigger once Shutdown has been called.
var ErrShuttingDown = errors.New("status service is shutting down")

// RunFunc performs one reconciliation run.
type RunFunc func(ctx context.Context) (*reconcile.RunReport, error)

// History reads archived run reports.
type History interface {
	List(ctx context.Context, limit int) ([]report.Entry, error)
	Get(ctx context.Context, id string) (*reconcile.RunReport, error)
}

// Service triggers runs and remembers the last outcome.
// Concurrent triggers share a single in-flight run.
type Service struct {
	run     RunFunc
	history History
	logger  *zap.Logger

	group singleflight.Group

	mu       sync.RWMutex
	last     *reconcile.RunReport
	running  bool
	closed   bool
	inflight sync.WaitGroup
}

// NewService creates a status service. history may be nil when archiving is off.
func NewService(run RunFunc, history History, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{run: run, history: history, logger: logger}
}

// Trigger starts a run, or joins the one already in progress.
// The run is detached from ctx so a dropped request cannot abort a transaction midway.
func (s *Service) Trigger(ctx context.Context) (*reconcile.RunReport, bool, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, false, ErrShuttingDown
	}
	s.inflight.Add(1)
	s.mu.Unlock()
	defer s.inflight.Done()

	v, err, shared := s.group.Do("run", func() (any, error) {
		s.setRunning(true)
		defer s.setRunning(false)

		rep, err := s.run(context.WithoutCancel(ctx))
		if rep != nil {
			s.mu.Lock()
			s.last = rep
			s.mu.Unlock()
		}
		return rep, err
	})
	rep, _ := v.(*reconcile.RunReport)
	return rep, shared, err
}

// Shutdown rejects new runs and waits for the one in progress, or until ctx is done.
func (s *Service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Last returns the most recent report, or nil before the first run.
func (s *Service) Last() *reconcile.RunReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Running reports whether a run is in progress.
func (s *Service) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// History returns the report archive, or nil.
func (s *Service) History() History {
	return s.history
}

// Schedule triggers a run every interval until ctx is done.
func (s *Service) Schedule(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("Run schedule started", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Run schedule stopped")
			return
		case <-ticker.C:
			if _, _, err := s.Trigger(ctx); errors.Is(err, ErrShuttingDown) {
				return
			} else if err != nil {
				s.logger.Error("Scheduled run failed", zap.Error(err))
			}
		}
	}
}

func (s *Service) setRunning(v bool) {
	s.mu.Lock()
	s.running = v
	s.mu.Unlock()
}
