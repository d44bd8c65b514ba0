package models

import "time"

// Event statuses and transparency values follow the Google Calendar vocabulary.
const (
	EventStatusConfirmed = "confirmed"
	EventStatusTentative = "tentative"
	EventStatusCancelled = "cancelled"

	TransparencyOpaque      = "opaque"
	TransparencyTransparent = "transparent"
)

// Event is a locally stored calendar event. GoogleID and GoogleCalendarID are
// set together when the event is linked to a remote one; both are NULL for
// purely local events. Income, expenses and tax rate ride along on the same
// row but are never touched by sync updates.
type Event struct {
	ID               string    `db:"event_id" json:"id"`
	UserID           int64     `db:"user_id" json:"user_id"`
	CalendarID       string    `db:"calendar_id" json:"calendar_id"`
	Summary          string    `db:"summary" json:"summary"`
	Description      string    `db:"description" json:"description"`
	Location         string    `db:"location" json:"location"`
	StartTime        time.Time `db:"start_time" json:"start_time"`
	EndTime          time.Time `db:"end_time" json:"end_time"`
	AllDay           bool      `db:"all_day" json:"all_day"`
	TimezoneID       string    `db:"timezone_id" json:"timezone_id"`
	Transparency     string    `db:"transparency" json:"transparency"`
	Status           string    `db:"status" json:"status"`
	Sequence         int       `db:"sequence" json:"sequence"`
	RecurringID      *string   `db:"recurring_id" json:"recurring_id,omitempty"`
	GoogleID         *string   `db:"google_id" json:"google_id,omitempty"`
	GoogleCalendarID *string   `db:"google_calendar_id" json:"google_calendar_id,omitempty"`
	Income           float64   `db:"income" json:"income"`
	Expenses         float64   `db:"expenses" json:"expenses"`
	TaxRate          float64   `db:"tax_rate" json:"tax_rate"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`

	RecurrenceRule string     `db:"-" json:"recurrence_rule,omitempty"`
	ExDate         string     `db:"-" json:"exdate,omitempty"`
	Attendees      []Attendee `db:"-" json:"attendees,omitempty"`
}

// Linked reports whether the event carries a remote identifier.
func (e *Event) Linked() bool {
	return e.GoogleID != nil && *e.GoogleID != ""
}

// Attendee is an invitee on an event.
type Attendee struct {
	EventID        string `db:"event_id" json:"-"`
	Email          string `db:"email" json:"email"`
	DisplayName    string `db:"display_name" json:"display_name"`
	ResponseStatus string `db:"response_status" json:"response_status"`
}

// Calendar mirrors the metadata of a remote calendar that events belong to.
type Calendar struct {
	ID         string `db:"calendar_id" json:"id"`
	Name       string `db:"name" json:"name"`
	TimezoneID string `db:"timezone_id" json:"timezone_id"`
}

// RemoteCalendar describes a calendar as reported by the provider.
type RemoteCalendar struct {
	ID          string `json:"id"`
	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
	TimeZone    string `json:"time_zone,omitempty"`
	Primary     bool   `json:"primary"`
}
