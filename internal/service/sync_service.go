package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/damnjuhl/calcalc/internal/models"
	"github.com/damnjuhl/calcalc/internal/provider"
	appErrors "github.com/damnjuhl/calcalc/pkg/errors"
)

type syncEventRepository interface {
	ImportRemote(ctx context.Context, userID int64, cal *models.Calendar, events []*models.Event) (int, error)
	ListUnlinked(ctx context.Context, userID int64) ([]models.Event, error)
	GetByIDs(ctx context.Context, userID int64, ids []string) ([]models.Event, error)
	LinkRemote(ctx context.Context, eventID, googleID, googleCalendarID string) error
}

type syncSettingsRepository interface {
	Get(ctx context.Context, userID int64) (*models.SyncSettings, error)
	StampSync(ctx context.Context, userID int64, lastSync time.Time, nextSync *time.Time) error
}

type sessionOpener interface {
	Session(ctx context.Context, tokens models.TokenPair) (provider.Session, error)
}

type syncLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// SyncService reconciles local events against the user's Google calendar.
// Both the HTTP handlers and the scheduler funnel into Reconcile; the
// per-user lock keeps those two paths from racing on the same rows.
type SyncService struct {
	events       syncEventRepository
	settings     syncSettingsRepository
	provider     sessionOpener
	locker       syncLocker
	lockTTL      time.Duration
	importWindow time.Duration
	metrics      *MetricsService
	logger       *zap.Logger
}

// NewSyncService constructs the reconciliation service.
func NewSyncService(
	events syncEventRepository,
	settings syncSettingsRepository,
	sessions sessionOpener,
	locker syncLocker,
	lockTTL time.Duration,
	importWindow time.Duration,
	metrics *MetricsService,
	logger *zap.Logger,
) *SyncService {
	if lockTTL <= 0 {
		lockTTL = 10 * time.Minute
	}
	if importWindow <= 0 {
		importWindow = 30 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncService{
		events:       events,
		settings:     settings,
		provider:     sessions,
		locker:       locker,
		lockTTL:      lockTTL,
		importWindow: importWindow,
		metrics:      metrics,
		logger:       logger,
	}
}

// Reconcile runs one sync pass for a user. An empty direction falls back to
// the stored preference. overrideEventIDs restricts the export phase to the
// given local events and routes already-linked ones through an update call.
//
// Item failures are collected in the result; only a missing connection, an
// invalid direction or a concurrent sync abort the pass entirely. Events
// deleted on one side are never removed from the other.
func (s *SyncService) Reconcile(ctx context.Context, userID int64, direction models.SyncDirection, overrideEventIDs []string) (*models.SyncResult, error) {
	settings, err := s.settings.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotConnected
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sync settings")
	}
	if !settings.Connected() || settings.DefaultCalendarID == nil || *settings.DefaultCalendarID == "" {
		return nil, appErrors.ErrNotConnected
	}

	if direction == "" {
		direction = settings.SyncDirection
	}
	if !direction.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid sync direction")
	}

	lockKey := fmt.Sprintf("sync:user:%d", userID)
	acquired, err := s.locker.Acquire(ctx, lockKey, s.lockTTL)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to acquire sync lock")
	}
	if !acquired {
		return nil, appErrors.ErrSyncInProgress
	}
	defer func() {
		if err := s.locker.Release(ctx, lockKey); err != nil {
			s.logger.Warn("failed to release sync lock", zap.Int64("user_id", userID), zap.Error(err))
		}
	}()

	session, err := s.provider.Session(ctx, settings.Tokens())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open calendar session")
	}

	calendarID := *settings.DefaultCalendarID
	result := &models.SyncResult{StartedAt: time.Now().UTC()}

	// Import runs before export so a remote event that also exists locally
	// unlinked is recognized before anything is pushed out. No content
	// dedup happens beyond that ordering: an unlinked local event that
	// coincidentally matches a remote one is still exported as a new event.
	if direction == models.SyncDirectionImport || direction == models.SyncDirectionBoth {
		s.runImport(ctx, session, userID, calendarID, result)
	}
	if direction == models.SyncDirectionExport || direction == models.SyncDirectionBoth {
		s.runExport(ctx, session, userID, calendarID, overrideEventIDs, result)
	}

	now := time.Now().UTC()
	result.FinishedAt = now
	nextSync := models.NextSyncAfter(settings.SyncFrequency, now)
	if err := s.settings.StampSync(ctx, userID, now, nextSync); err != nil {
		result.AddError(fmt.Sprintf("user:%d", userID), err)
	}

	s.metrics.ObserveSyncRun(result, now.Sub(result.StartedAt))
	s.logger.Info("sync completed",
		zap.Int64("user_id", userID),
		zap.String("direction", string(direction)),
		zap.Int("imported", result.Imported),
		zap.Int("exported", result.Exported),
		zap.Int("updated", result.Updated),
		zap.Int("errors", len(result.Errors)),
	)
	return result, nil
}

// runImport pulls remote events and upserts them locally. Mapping failures
// are isolated per event; a storage failure rolls back the whole batch and
// is recorded as a single error against the calendar.
func (s *SyncService) runImport(ctx context.Context, session provider.Session, userID int64, calendarID string, result *models.SyncResult) {
	timeMin := time.Now().UTC()
	timeMax := timeMin.Add(s.importWindow)

	remoteEvents, err := session.ListEvents(ctx, calendarID, timeMin, timeMax)
	if err != nil {
		result.AddError(calendarID, err)
		return
	}

	cal, err := session.GetCalendar(ctx, calendarID)
	if err != nil {
		result.AddError(calendarID, err)
		return
	}

	mapped := make([]*models.Event, 0, len(remoteEvents))
	for _, remote := range remoteEvents {
		event, err := provider.ToLocal(remote, calendarID)
		if err != nil {
			result.AddError(remote.Id, err)
			continue
		}
		event.UserID = userID
		mapped = append(mapped, event)
	}

	count, err := s.events.ImportRemote(ctx, userID, &models.Calendar{
		ID:         cal.ID,
		Name:       cal.Summary,
		TimezoneID: cal.TimeZone,
	}, mapped)
	if err != nil {
		result.AddError(calendarID, err)
		return
	}
	result.Imported = count
}

// runExport pushes unlinked local events to the remote calendar. Each
// create-then-link pair is its own atomic unit so earlier successes survive
// a later failure. With explicit event ids, linked events are sent as
// updates instead and counted separately.
func (s *SyncService) runExport(ctx context.Context, session provider.Session, userID int64, calendarID string, overrideEventIDs []string, result *models.SyncResult) {
	explicit := len(overrideEventIDs) > 0

	var (
		candidates []models.Event
		err        error
	)
	if explicit {
		candidates, err = s.events.GetByIDs(ctx, userID, overrideEventIDs)
	} else {
		candidates, err = s.events.ListUnlinked(ctx, userID)
	}
	if err != nil {
		result.AddError(fmt.Sprintf("user:%d", userID), err)
		return
	}

	for i := range candidates {
		event := &candidates[i]
		remote := provider.ToRemote(event)

		if explicit && event.Linked() {
			if _, err := session.UpdateEvent(ctx, *event.GoogleCalendarID, *event.GoogleID, remote); err != nil {
				result.AddError(event.ID, err)
				continue
			}
			result.Updated++
			continue
		}

		created, err := session.CreateEvent(ctx, calendarID, remote)
		if err != nil {
			result.AddError(event.ID, err)
			continue
		}
		if err := s.events.LinkRemote(ctx, event.ID, created.Id, calendarID); err != nil {
			result.AddError(event.ID, err)
			continue
		}
		result.Exported++
	}
}
