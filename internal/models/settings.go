package models

import "time"

// SyncDirection controls which phases a reconciliation pass runs.
type SyncDirection string

const (
	SyncDirectionImport SyncDirection = "import"
	SyncDirectionExport SyncDirection = "export"
	SyncDirectionBoth   SyncDirection = "both"
)

// Valid reports whether the direction is one of the supported values.
func (d SyncDirection) Valid() bool {
	switch d {
	case SyncDirectionImport, SyncDirectionExport, SyncDirectionBoth:
		return true
	}
	return false
}

// SyncFrequency determines how often the scheduler re-runs a user's sync.
type SyncFrequency string

const (
	SyncFrequencyManual SyncFrequency = "manual"
	SyncFrequencyHourly SyncFrequency = "hourly"
	SyncFrequencyDaily  SyncFrequency = "daily"
	SyncFrequencyWeekly SyncFrequency = "weekly"
)

// Valid reports whether the frequency is one of the supported values.
func (f SyncFrequency) Valid() bool {
	switch f {
	case SyncFrequencyManual, SyncFrequencyHourly, SyncFrequencyDaily, SyncFrequencyWeekly:
		return true
	}
	return false
}

// Interval returns the wait between syncs, or false for manual frequency.
func (f SyncFrequency) Interval() (time.Duration, bool) {
	switch f {
	case SyncFrequencyHourly:
		return time.Hour, true
	case SyncFrequencyDaily:
		return 24 * time.Hour, true
	case SyncFrequencyWeekly:
		return 7 * 24 * time.Hour, true
	}
	return 0, false
}

// NextSyncAfter computes the next scheduled sync for a pass completed at t.
// Manual frequency yields nil: the user only syncs on demand.
func NextSyncAfter(f SyncFrequency, t time.Time) *time.Time {
	interval, ok := f.Interval()
	if !ok {
		return nil
	}
	next := t.Add(interval)
	return &next
}

// TokenPair carries the OAuth tokens stored for a connected user.
type TokenPair struct {
	AccessToken  string `json:"-"`
	RefreshToken string `json:"-"`
}

// SyncSettings is the per-user sync preference row, including the stored
// OAuth tokens. next_sync is NULL exactly when frequency is manual.
type SyncSettings struct {
	UserID             int64         `db:"user_id" json:"user_id"`
	Email              string        `db:"email" json:"email"`
	GoogleAuthToken    *string       `db:"google_auth_token" json:"-"`
	GoogleRefreshToken *string       `db:"google_refresh_token" json:"-"`
	DefaultCalendarID  *string       `db:"default_calendar_id" json:"default_calendar_id,omitempty"`
	SyncDirection      SyncDirection `db:"sync_direction" json:"sync_direction"`
	SyncFrequency      SyncFrequency `db:"sync_frequency" json:"sync_frequency"`
	LastSync           *time.Time    `db:"last_sync" json:"last_sync,omitempty"`
	NextSync           *time.Time    `db:"next_sync" json:"next_sync,omitempty"`
	DefaultTaxRate     float64       `db:"default_tax_rate" json:"default_tax_rate"`
	DarkMode           bool          `db:"dark_mode" json:"dark_mode"`
	CreatedAt          time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time     `db:"updated_at" json:"updated_at"`
}

// Connected reports whether the user has usable Google credentials.
func (s *SyncSettings) Connected() bool {
	return s.GoogleAuthToken != nil && *s.GoogleAuthToken != ""
}

// Tokens returns the stored token pair.
func (s *SyncSettings) Tokens() TokenPair {
	pair := TokenPair{}
	if s.GoogleAuthToken != nil {
		pair.AccessToken = *s.GoogleAuthToken
	}
	if s.GoogleRefreshToken != nil {
		pair.RefreshToken = *s.GoogleRefreshToken
	}
	return pair
}

// SyncSettingsUpdate is a partial update: nil fields are left unchanged.
// NextSyncSet distinguishes "set next_sync to NULL" from "leave it alone".
type SyncSettingsUpdate struct {
	Email              *string
	GoogleAuthToken    *string
	GoogleRefreshToken *string
	DefaultCalendarID  *string
	SyncDirection      *SyncDirection
	SyncFrequency      *SyncFrequency
	NextSync           *time.Time
	NextSyncSet        bool
	DefaultTaxRate     *float64
	DarkMode           *bool
}
