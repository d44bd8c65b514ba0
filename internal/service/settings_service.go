package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/damnjuhl/calcalc/internal/models"
	appErrors "github.com/damnjuhl/calcalc/pkg/errors"
)

type settingsRepository interface {
	Get(ctx context.Context, userID int64) (*models.SyncSettings, error)
	Upsert(ctx context.Context, userID int64, update models.SyncSettingsUpdate) (*models.SyncSettings, error)
	SetDefaultCalendar(ctx context.Context, userID int64, calendarID string) error
}

// SettingsService manages per-user sync preferences. next_sync is always
// recomputed here, never accepted from the client.
type SettingsService struct {
	repo      settingsRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSettingsService constructs the service.
func NewSettingsService(repo settingsRepository, validate *validator.Validate, logger *zap.Logger) *SettingsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{repo: repo, validator: validate, logger: logger}
}

// SyncSettingsResponse is the sync preference view returned to clients.
// Tokens never leave the service; only the connected flag does.
type SyncSettingsResponse struct {
	DefaultCalendarID *string              `json:"default_calendar_id,omitempty"`
	SyncDirection     models.SyncDirection `json:"sync_direction"`
	SyncFrequency     models.SyncFrequency `json:"sync_frequency"`
	LastSync          *time.Time           `json:"last_sync,omitempty"`
	NextSync          *time.Time           `json:"next_sync,omitempty"`
	IsConnected       bool                 `json:"is_connected"`
}

// UpdateSyncSettingsRequest updates direction and/or frequency.
type UpdateSyncSettingsRequest struct {
	SyncDirection *string `json:"sync_direction" validate:"omitempty,oneof=import export both"`
	SyncFrequency *string `json:"sync_frequency" validate:"omitempty,oneof=manual hourly daily weekly"`
}

// UpdateUIPreferencesRequest updates display preferences.
type UpdateUIPreferencesRequest struct {
	DarkMode *bool `json:"dark_mode" validate:"required"`
}

// UpdateFinancialPreferencesRequest updates the default tax rate.
type UpdateFinancialPreferencesRequest struct {
	DefaultTaxRate *float64 `json:"default_tax_rate" validate:"required,gte=0,lte=100"`
}

// Get returns the full settings row.
func (s *SettingsService) Get(ctx context.Context, userID int64) (*models.SyncSettings, error) {
	settings, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "settings not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load settings")
	}
	return settings, nil
}

// GetSync returns the sync preference view. A user without a settings row
// gets the defaults with the connected flag off.
func (s *SettingsService) GetSync(ctx context.Context, userID int64) (*SyncSettingsResponse, error) {
	settings, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &SyncSettingsResponse{
				SyncDirection: models.SyncDirectionBoth,
				SyncFrequency: models.SyncFrequencyDaily,
			}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sync settings")
	}
	return &SyncSettingsResponse{
		DefaultCalendarID: settings.DefaultCalendarID,
		SyncDirection:     settings.SyncDirection,
		SyncFrequency:     settings.SyncFrequency,
		LastSync:          settings.LastSync,
		NextSync:          settings.NextSync,
		IsConnected:       settings.Connected(),
	}, nil
}

// UpdateSync applies a partial preference update. A frequency change
// recomputes next_sync from now; switching to manual clears it.
func (s *SettingsService) UpdateSync(ctx context.Context, userID int64, req UpdateSyncSettingsRequest) (*SyncSettingsResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid sync settings payload")
	}

	update := models.SyncSettingsUpdate{}
	if req.SyncDirection != nil {
		direction := models.SyncDirection(*req.SyncDirection)
		update.SyncDirection = &direction
	}
	if req.SyncFrequency != nil {
		frequency := models.SyncFrequency(*req.SyncFrequency)
		update.SyncFrequency = &frequency
		update.NextSyncSet = true
		update.NextSync = models.NextSyncAfter(frequency, time.Now().UTC())
	}

	settings, err := s.repo.Upsert(ctx, userID, update)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update sync settings")
	}
	return &SyncSettingsResponse{
		DefaultCalendarID: settings.DefaultCalendarID,
		SyncDirection:     settings.SyncDirection,
		SyncFrequency:     settings.SyncFrequency,
		LastSync:          settings.LastSync,
		NextSync:          settings.NextSync,
		IsConnected:       settings.Connected(),
	}, nil
}

// UpdateUI stores display preferences.
func (s *SettingsService) UpdateUI(ctx context.Context, userID int64, req UpdateUIPreferencesRequest) (*models.SyncSettings, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid ui preferences payload")
	}
	settings, err := s.repo.Upsert(ctx, userID, models.SyncSettingsUpdate{DarkMode: req.DarkMode})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update ui preferences")
	}
	return settings, nil
}

// UpdateFinancial stores the default tax rate applied to new events.
func (s *SettingsService) UpdateFinancial(ctx context.Context, userID int64, req UpdateFinancialPreferencesRequest) (*models.SyncSettings, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid financial preferences payload")
	}
	settings, err := s.repo.Upsert(ctx, userID, models.SyncSettingsUpdate{DefaultTaxRate: req.DefaultTaxRate})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update financial preferences")
	}
	return settings, nil
}

// SetDefaultCalendar points future syncs at a different calendar.
func (s *SettingsService) SetDefaultCalendar(ctx context.Context, userID int64, calendarID string) error {
	if calendarID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "calendar id is required")
	}
	if err := s.repo.SetDefaultCalendar(ctx, userID, calendarID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "settings not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update default calendar")
	}
	return nil
}
