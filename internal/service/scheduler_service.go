package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/damnjuhl/calcalc/internal/models"
)

type dueLister interface {
	ListDue(ctx context.Context, now time.Time) ([]models.SyncSettings, error)
}

// SchedulerService periodically runs automatic syncs for users whose
// next_sync has elapsed. Users are processed sequentially; one failing
// user never blocks the rest.
type SchedulerService struct {
	settings dueLister
	sync     reconciler
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSchedulerService constructs the scheduler.
func NewSchedulerService(settings dueLister, syncSvc reconciler, interval time.Duration, logger *zap.Logger) *SchedulerService {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchedulerService{
		settings: settings,
		sync:     syncSvc,
		interval: interval,
		logger:   logger,
	}
}

// Start launches the ticker loop. Calling Start on a running scheduler is
// a no-op.
func (s *SchedulerService) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		s.logger.Info("sync scheduler started", zap.Duration("interval", s.interval))
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runDue(ctx)
			}
		}
	}()
}

// Stop halts the ticker loop and waits for an in-flight pass to finish.
func (s *SchedulerService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.cancel()
	<-s.done
	s.started = false
	s.logger.Info("sync scheduler stopped")
}

// runDue runs one scheduler pass over every user whose next_sync has
// elapsed, using each user's stored direction.
func (s *SchedulerService) runDue(ctx context.Context) {
	now := time.Now().UTC()
	due, err := s.settings.ListDue(ctx, now)
	if err != nil {
		s.logger.Error("failed to list due users", zap.Error(err))
		return
	}
	if len(due) == 0 {
		return
	}
	s.logger.Info("scheduler pass", zap.Int("due_users", len(due)))

	for i := range due {
		userID := due[i].UserID
		result, err := s.sync.Reconcile(ctx, userID, due[i].SyncDirection, nil)
		if err != nil {
			s.logger.Error("scheduled sync failed",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
			continue
		}
		if len(result.Errors) > 0 {
			s.logger.Warn("scheduled sync finished with item errors",
				zap.Int64("user_id", userID),
				zap.Int("errors", len(result.Errors)),
			)
		}
	}
}
