package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/damnjuhl/calcalc/internal/models"
)

const eventColumns = `event_id, user_id, calendar_id, summary, description, location, start_time, end_time, all_day, timezone_id, transparency, status, sequence, recurring_id, google_id, google_calendar_id, income, expenses, tax_rate, created_at, updated_at`

// EventRepository persists calendar events and their sync linkage.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs an event repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// ImportRemote upserts the calendar metadata and all mapped remote events in
// a single transaction. Events are keyed by (user_id, google_id): an existing
// linked row has its mapped fields overwritten while income, expenses and tax
// rate stay untouched. Attendee and recurrence rows are replaced wholesale.
// Any failure rolls back the whole batch.
func (r *EventRepository) ImportRemote(ctx context.Context, userID int64, cal *models.Calendar, events []*models.Event) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const calQuery = `INSERT INTO calendars (calendar_id, name, timezone_id)
VALUES ($1, $2, $3)
ON CONFLICT (calendar_id) DO UPDATE SET name = $2, timezone_id = $3`
	if _, err := tx.ExecContext(ctx, calQuery, cal.ID, cal.Name, cal.TimezoneID); err != nil {
		return 0, fmt.Errorf("upsert calendar %s: %w", cal.ID, err)
	}

	count := 0
	for _, event := range events {
		if err := upsertRemoteEvent(ctx, tx, userID, event); err != nil {
			return 0, err
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return count, nil
}

func upsertRemoteEvent(ctx context.Context, tx *sqlx.Tx, userID int64, event *models.Event) error {
	now := time.Now().UTC()
	const query = `INSERT INTO events (
	event_id, user_id, calendar_id, summary, description, location,
	start_time, end_time, all_day, timezone_id, transparency, status,
	sequence, recurring_id, google_id, google_calendar_id, created_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $17)
ON CONFLICT (user_id, google_id) WHERE google_id IS NOT NULL DO UPDATE SET
	calendar_id = EXCLUDED.calendar_id,
	summary = EXCLUDED.summary,
	description = EXCLUDED.description,
	location = EXCLUDED.location,
	start_time = EXCLUDED.start_time,
	end_time = EXCLUDED.end_time,
	all_day = EXCLUDED.all_day,
	timezone_id = EXCLUDED.timezone_id,
	transparency = EXCLUDED.transparency,
	status = EXCLUDED.status,
	sequence = EXCLUDED.sequence,
	recurring_id = EXCLUDED.recurring_id,
	google_calendar_id = EXCLUDED.google_calendar_id,
	updated_at = EXCLUDED.updated_at
RETURNING event_id`

	var eventID string
	err := tx.QueryRowxContext(ctx, query,
		uuid.NewString(),
		userID,
		event.CalendarID,
		event.Summary,
		event.Description,
		event.Location,
		event.StartTime,
		event.EndTime,
		event.AllDay,
		event.TimezoneID,
		event.Transparency,
		event.Status,
		event.Sequence,
		event.RecurringID,
		event.GoogleID,
		event.GoogleCalendarID,
		now,
	).Scan(&eventID)
	if err != nil {
		return fmt.Errorf("upsert event %s: %w", derefString(event.GoogleID), err)
	}

	if event.RecurrenceRule != "" || event.ExDate != "" {
		const recurrenceQuery = `INSERT INTO recurrences (event_id, rrule, exdate)
VALUES ($1, $2, $3)
ON CONFLICT (event_id) DO UPDATE SET rrule = $2, exdate = $3`
		if _, err := tx.ExecContext(ctx, recurrenceQuery, eventID, event.RecurrenceRule, event.ExDate); err != nil {
			return fmt.Errorf("upsert recurrence for event %s: %w", eventID, err)
		}
	} else {
		if _, err := tx.ExecContext(ctx, "DELETE FROM recurrences WHERE event_id = $1", eventID); err != nil {
			return fmt.Errorf("clear recurrence for event %s: %w", eventID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM attendees WHERE event_id = $1", eventID); err != nil {
		return fmt.Errorf("clear attendees for event %s: %w", eventID, err)
	}
	if len(event.Attendees) > 0 {
		const attendeeQuery = `INSERT INTO attendees (event_id, email, display_name, response_status)
VALUES ($1, $2, $3, $4)`
		for _, attendee := range event.Attendees {
			if _, err := tx.ExecContext(ctx, attendeeQuery, eventID, attendee.Email, attendee.DisplayName, attendee.ResponseStatus); err != nil {
				return fmt.Errorf("insert attendee for event %s: %w", eventID, err)
			}
		}
	}

	return nil
}

// ListUnlinked returns the user's events that have no remote counterpart yet.
func (r *EventRepository) ListUnlinked(ctx context.Context, userID int64) ([]models.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE user_id = $1 AND google_id IS NULL ORDER BY start_time ASC`, eventColumns)
	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query, userID); err != nil {
		return nil, fmt.Errorf("list unlinked events: %w", err)
	}
	return events, nil
}

// GetByIDs fetches the user's events matching the given identifiers.
func (r *EventRepository) GetByIDs(ctx context.Context, userID int64, ids []string) ([]models.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE user_id = $1 AND event_id = ANY($2) ORDER BY start_time ASC`, eventColumns)
	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query, userID, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("get events by ids: %w", err)
	}
	return events, nil
}

// LinkRemote records the provider-assigned identifiers on a local event,
// transitioning it from local-only to linked.
func (r *EventRepository) LinkRemote(ctx context.Context, eventID, googleID, googleCalendarID string) error {
	const query = `UPDATE events SET google_id = $2, google_calendar_id = $3, updated_at = $4 WHERE event_id = $1`
	if _, err := r.db.ExecContext(ctx, query, eventID, googleID, googleCalendarID, time.Now().UTC()); err != nil {
		return fmt.Errorf("link event %s: %w", eventID, err)
	}
	return nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
