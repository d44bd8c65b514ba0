package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/damnjuhl/calcalc/internal/models"
)

const settingsColumns = `user_id, email, google_auth_token, google_refresh_token, default_calendar_id, sync_direction, sync_frequency, last_sync, next_sync, default_tax_rate, dark_mode, created_at, updated_at`

// SettingsRepository persists per-user sync settings and OAuth tokens.
type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository constructs a settings repository.
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get fetches the settings row for a user. sql.ErrNoRows passes through so
// callers can distinguish missing settings from other failures.
func (r *SettingsRepository) Get(ctx context.Context, userID int64) (*models.SyncSettings, error) {
	query := fmt.Sprintf(`SELECT %s FROM user_settings WHERE user_id = $1`, settingsColumns)
	var settings models.SyncSettings
	if err := r.db.GetContext(ctx, &settings, query, userID); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Upsert applies a partial update; only non-nil fields change. When no row
// exists one is created with defaults for everything the update leaves out.
func (r *SettingsRepository) Upsert(ctx context.Context, userID int64, update models.SyncSettingsUpdate) (*models.SyncSettings, error) {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{userID}
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Email != nil {
		add("email", *update.Email)
	}
	if update.GoogleAuthToken != nil {
		add("google_auth_token", *update.GoogleAuthToken)
	}
	if update.GoogleRefreshToken != nil {
		add("google_refresh_token", *update.GoogleRefreshToken)
	}
	if update.DefaultCalendarID != nil {
		add("default_calendar_id", *update.DefaultCalendarID)
	}
	if update.SyncDirection != nil {
		add("sync_direction", string(*update.SyncDirection))
	}
	if update.SyncFrequency != nil {
		add("sync_frequency", string(*update.SyncFrequency))
	}
	if update.NextSyncSet {
		add("next_sync", update.NextSync)
	}
	if update.DefaultTaxRate != nil {
		add("default_tax_rate", *update.DefaultTaxRate)
	}
	if update.DarkMode != nil {
		add("dark_mode", *update.DarkMode)
	}

	query := fmt.Sprintf(`UPDATE user_settings SET %s WHERE user_id = $1 RETURNING %s`,
		strings.Join(sets, ", "), settingsColumns)

	var settings models.SyncSettings
	err := r.db.GetContext(ctx, &settings, query, args...)
	if err == nil {
		return &settings, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update settings: %w", err)
	}

	return r.insert(ctx, userID, update)
}

func (r *SettingsRepository) insert(ctx context.Context, userID int64, update models.SyncSettingsUpdate) (*models.SyncSettings, error) {
	email := ""
	if update.Email != nil {
		email = *update.Email
	}
	direction := models.SyncDirectionBoth
	if update.SyncDirection != nil {
		direction = *update.SyncDirection
	}
	frequency := models.SyncFrequencyDaily
	if update.SyncFrequency != nil {
		frequency = *update.SyncFrequency
	}
	taxRate := 0.0
	if update.DefaultTaxRate != nil {
		taxRate = *update.DefaultTaxRate
	}
	darkMode := false
	if update.DarkMode != nil {
		darkMode = *update.DarkMode
	}

	query := fmt.Sprintf(`INSERT INTO user_settings (
	user_id, email, google_auth_token, google_refresh_token, default_calendar_id,
	sync_direction, sync_frequency, next_sync, default_tax_rate, dark_mode, created_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
RETURNING %s`, settingsColumns)

	var settings models.SyncSettings
	err := r.db.GetContext(ctx, &settings, query,
		userID,
		email,
		update.GoogleAuthToken,
		update.GoogleRefreshToken,
		update.DefaultCalendarID,
		string(direction),
		string(frequency),
		update.NextSync,
		taxRate,
		darkMode,
	)
	if err != nil {
		return nil, fmt.Errorf("insert settings: %w", err)
	}
	return &settings, nil
}

// StampSync records a completed sync and the recomputed next due time.
func (r *SettingsRepository) StampSync(ctx context.Context, userID int64, lastSync time.Time, nextSync *time.Time) error {
	const query = `UPDATE user_settings SET last_sync = $2, next_sync = $3, updated_at = NOW() WHERE user_id = $1`
	if _, err := r.db.ExecContext(ctx, query, userID, lastSync, nextSync); err != nil {
		return fmt.Errorf("stamp sync: %w", err)
	}
	return nil
}

// SetDefaultCalendar changes the calendar that syncs target.
func (r *SettingsRepository) SetDefaultCalendar(ctx context.Context, userID int64, calendarID string) error {
	const query = `UPDATE user_settings SET default_calendar_id = $2, updated_at = NOW() WHERE user_id = $1`
	result, err := r.db.ExecContext(ctx, query, userID, calendarID)
	if err != nil {
		return fmt.Errorf("set default calendar: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListDue returns users whose scheduled sync time has passed and who still
// hold Google credentials.
func (r *SettingsRepository) ListDue(ctx context.Context, now time.Time) ([]models.SyncSettings, error) {
	query := fmt.Sprintf(`SELECT %s FROM user_settings
WHERE next_sync IS NOT NULL AND next_sync <= $1 AND google_auth_token IS NOT NULL
ORDER BY next_sync ASC`, settingsColumns)
	var due []models.SyncSettings
	if err := r.db.SelectContext(ctx, &due, query, now); err != nil {
		return nil, fmt.Errorf("list due syncs: %w", err)
	}
	return due, nil
}
