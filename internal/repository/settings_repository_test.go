package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damnjuhl/calcalc/internal/models"
)

var settingsTestColumns = []string{
	"user_id", "email", "google_auth_token", "google_refresh_token",
	"default_calendar_id", "sync_direction", "sync_frequency",
	"last_sync", "next_sync", "default_tax_rate", "dark_mode",
	"created_at", "updated_at",
}

func newSettingsRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func settingsRow(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(settingsTestColumns).
		AddRow(int64(7), "damnjuhl", "access-token", "refresh-token",
			"primary", "both", "daily", nil, nil, 20.0, false, now, now)
}

func TestSettingsRepositoryGet(t *testing.T) {
	db, mock, cleanup := newSettingsRepoMock(t)
	defer cleanup()
	repo := NewSettingsRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM user_settings WHERE user_id = \\$1").
		WithArgs(int64(7)).
		WillReturnRows(settingsRow(time.Now()))

	settings, err := repo.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), settings.UserID)
	assert.True(t, settings.Connected())
	assert.Equal(t, models.SyncDirectionBoth, settings.SyncDirection)
}

func TestSettingsRepositoryGetMissingRow(t *testing.T) {
	db, mock, cleanup := newSettingsRepoMock(t)
	defer cleanup()
	repo := NewSettingsRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM user_settings").
		WithArgs(int64(7)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), 7)
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestSettingsRepositoryUpsertUpdatesExistingRow(t *testing.T) {
	db, mock, cleanup := newSettingsRepoMock(t)
	defer cleanup()
	repo := NewSettingsRepository(db)

	direction := models.SyncDirectionImport
	mock.ExpectQuery("UPDATE user_settings SET").
		WithArgs(int64(7), "import").
		WillReturnRows(settingsRow(time.Now()))

	settings, err := repo.Upsert(context.Background(), 7, models.SyncSettingsUpdate{
		SyncDirection: &direction,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), settings.UserID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsRepositoryUpsertInsertsMissingRow(t *testing.T) {
	db, mock, cleanup := newSettingsRepoMock(t)
	defer cleanup()
	repo := NewSettingsRepository(db)

	darkMode := true
	mock.ExpectQuery("UPDATE user_settings SET").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("INSERT INTO user_settings").
		WithArgs(int64(7), "", nil, nil, nil, "both", "daily", nil, 0.0, true).
		WillReturnRows(settingsRow(time.Now()))

	settings, err := repo.Upsert(context.Background(), 7, models.SyncSettingsUpdate{
		DarkMode: &darkMode,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), settings.UserID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsRepositoryStampSync(t *testing.T) {
	db, mock, cleanup := newSettingsRepoMock(t)
	defer cleanup()
	repo := NewSettingsRepository(db)

	last := time.Now().UTC()
	next := last.Add(24 * time.Hour)
	mock.ExpectExec("UPDATE user_settings SET last_sync = \\$2, next_sync = \\$3").
		WithArgs(int64(7), last, next).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.StampSync(context.Background(), 7, last, &next))
}

func TestSettingsRepositorySetDefaultCalendar(t *testing.T) {
	db, mock, cleanup := newSettingsRepoMock(t)
	defer cleanup()
	repo := NewSettingsRepository(db)

	mock.ExpectExec("UPDATE user_settings SET default_calendar_id = \\$2").
		WithArgs(int64(7), "work").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetDefaultCalendar(context.Background(), 7, "work"))
}

func TestSettingsRepositorySetDefaultCalendarMissingRow(t *testing.T) {
	db, mock, cleanup := newSettingsRepoMock(t)
	defer cleanup()
	repo := NewSettingsRepository(db)

	mock.ExpectExec("UPDATE user_settings SET default_calendar_id = \\$2").
		WithArgs(int64(42), "work").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetDefaultCalendar(context.Background(), 42, "work")
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestSettingsRepositoryListDue(t *testing.T) {
	db, mock, cleanup := newSettingsRepoMock(t)
	defer cleanup()
	repo := NewSettingsRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM user_settings\\s+WHERE next_sync IS NOT NULL").
		WithArgs(now).
		WillReturnRows(settingsRow(now))

	due, err := repo.ListDue(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, int64(7), due[0].UserID)
}
