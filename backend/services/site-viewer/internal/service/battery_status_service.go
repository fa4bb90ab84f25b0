package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"siteviewer/backend/services/site-viewer/internal/models"
	"siteviewer/backend/services/site-viewer/internal/observability/metrics"
)

// ErrNoData is returned when there is no snapshot to show.
var ErrNoData = errors.New("no data available")

// Runner produces a snapshot for the given reference time.
type Runner interface {
	Run(ctx context.Context, asOf time.Time) (*models.Snapshot, error)
}

// Notifier is told about every refresh outcome.
type Notifier interface {
	SnapshotUpdated(snapshot *models.Snapshot)
	RefreshFailed(err error)
}

// State is what the UI layer can show right now.
type State struct {
	Snapshot    *models.Snapshot
	LastError   error
	LastAttempt time.Time
}

// Stale reports whether the last refresh failed while an older snapshot is still served.
func (s State) Stale() bool {
	return s.Snapshot != nil && s.LastError != nil
}

// BatteryStatusService keeps the last good snapshot and runs refreshes.
// Overlapping refresh requests share one pipeline run.
type BatteryStatusService struct {
	runner   Runner
	notifier Notifier
	now      func() time.Time
	logger   *zap.Logger

	group singleflight.Group

	mu    sync.RWMutex
	state State
}

// NewBatteryStatusService returns service instance. notifier may be nil.
func NewBatteryStatusService(runner Runner, notifier Notifier, logger *zap.Logger) *BatteryStatusService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatteryStatusService{
		runner:   runner,
		notifier: notifier,
		now:      time.Now,
		logger:   logger,
	}
}

// Refresh runs the pipeline. On failure the previous snapshot stays in place and the
// error is returned. The run is detached from ctx cancellation because callers share it.
func (s *BatteryStatusService) Refresh(ctx context.Context) (*models.Snapshot, error) {
	result, err, shared := s.group.Do("refresh", func() (interface{}, error) {
		return s.refresh(context.WithoutCancel(ctx))
	})
	if shared {
		s.logger.Debug("joined in-flight refresh")
	}
	if err != nil {
		return nil, err
	}
	return result.(*models.Snapshot), nil
}

func (s *BatteryStatusService) refresh(ctx context.Context) (*models.Snapshot, error) {
	asOf := s.now()
	start := time.Now()
	snapshot, err := s.runner.Run(ctx, asOf)
	elapsed := time.Since(start)

	s.mu.Lock()
	s.state.LastAttempt = asOf
	if err != nil {
		s.state.LastError = err
		hasPrevious := s.state.Snapshot != nil
		s.mu.Unlock()

		metrics.ObserveRefresh(metrics.ResultError, elapsed)
		s.logger.Error("refresh failed",
			zap.Bool("serving_previous", hasPrevious), zap.Duration("elapsed", elapsed), zap.Error(err))
		if s.notifier != nil {
			s.notifier.RefreshFailed(err)
		}
		return nil, err
	}
	s.state.Snapshot = snapshot
	s.state.LastError = nil
	s.mu.Unlock()

	metrics.ObserveRefresh(metrics.ResultSuccess, elapsed)
	for reason, count := range snapshot.Stats.Dropped {
		metrics.AddRowsDropped(reason, count)
	}
	counts := make(map[string]int)
	for category, count := range snapshot.CountByCategory() {
		counts[category.String()] = count
	}
	metrics.SetSites(counts)

	s.logger.Info("refresh completed",
		zap.Int("sites", len(snapshot.Sites)), zap.Duration("elapsed", elapsed))
	if s.notifier != nil {
		s.notifier.SnapshotUpdated(snapshot)
	}
	return snapshot, nil
}

// State returns the current state.
func (s *BatteryStatusService) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Ensure returns the current state, refreshing first when nothing has been loaded yet.
// It fails with ErrNoData when there is still no snapshot.
func (s *BatteryStatusService) Ensure(ctx context.Context) (State, error) {
	if st := s.State(); st.Snapshot != nil {
		return st, nil
	}
	_, err := s.Refresh(ctx)
	st := s.State()
	if st.Snapshot != nil {
		return st, nil
	}
	if err == nil {
		err = st.LastError
	}
	return st, fmt.Errorf("%w: %v", ErrNoData, err)
}
