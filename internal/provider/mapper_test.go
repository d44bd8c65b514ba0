package provider

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/calendar/v3"

	"github.com/damnjuhl/calcalc/internal/models"
)

func TestToLocalTimedEvent(t *testing.T) {
	remote := &calendar.Event{
		Id:          "g-1",
		Summary:     "Wedding shoot",
		Description: "Full day coverage",
		Location:    "Riverside Park",
		Status:      "confirmed",
		Sequence:    3,
		Start:       &calendar.EventDateTime{DateTime: "2026-09-01T10:00:00Z", TimeZone: "UTC"},
		End:         &calendar.EventDateTime{DateTime: "2026-09-01T18:00:00Z", TimeZone: "UTC"},
	}

	event, err := ToLocal(remote, "primary")
	require.NoError(t, err)

	assert.Equal(t, "Wedding shoot", event.Summary)
	assert.Equal(t, "primary", event.CalendarID)
	assert.False(t, event.AllDay)
	assert.Equal(t, time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC), event.StartTime)
	assert.Equal(t, time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC), event.EndTime)
	assert.Equal(t, 3, event.Sequence)
	require.NotNil(t, event.GoogleID)
	assert.Equal(t, "g-1", *event.GoogleID)
	require.NotNil(t, event.GoogleCalendarID)
	assert.Equal(t, "primary", *event.GoogleCalendarID)
}

func TestToLocalAllDayEvent(t *testing.T) {
	remote := &calendar.Event{
		Id:    "g-2",
		Start: &calendar.EventDateTime{Date: "2026-09-01"},
		End:   &calendar.EventDateTime{Date: "2026-09-02"},
	}

	event, err := ToLocal(remote, "primary")
	require.NoError(t, err)

	assert.True(t, event.AllDay)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), event.StartTime)
	assert.Equal(t, time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC), event.EndTime)
}

func TestToLocalDefaults(t *testing.T) {
	remote := &calendar.Event{
		Id:    "g-3",
		Start: &calendar.EventDateTime{DateTime: "2026-09-01T10:00:00Z"},
		End:   &calendar.EventDateTime{DateTime: "2026-09-01T11:00:00Z"},
	}

	event, err := ToLocal(remote, "primary")
	require.NoError(t, err)

	assert.Empty(t, event.Summary)
	assert.Equal(t, models.EventStatusConfirmed, event.Status)
	assert.Equal(t, models.TransparencyOpaque, event.Transparency)
}

func TestToLocalMissingBoundaries(t *testing.T) {
	_, err := ToLocal(&calendar.Event{Id: "g-4"}, "primary")
	require.Error(t, err)

	_, err = ToLocal(&calendar.Event{
		Id:    "g-5",
		Start: &calendar.EventDateTime{},
		End:   &calendar.EventDateTime{},
	}, "primary")
	require.Error(t, err)
}

func TestToLocalRecurrenceAndAttendees(t *testing.T) {
	remote := &calendar.Event{
		Id:         "g-6",
		Start:      &calendar.EventDateTime{DateTime: "2026-09-01T10:00:00Z"},
		End:        &calendar.EventDateTime{DateTime: "2026-09-01T11:00:00Z"},
		Recurrence: []string{"RRULE:FREQ=WEEKLY;BYDAY=TU", "EXDATE:20260908T100000Z"},
		Attendees: []*calendar.EventAttendee{
			{Email: "client@example.com", DisplayName: "Client"},
			{Email: "second@example.com", ResponseStatus: "accepted"},
		},
	}

	event, err := ToLocal(remote, "primary")
	require.NoError(t, err)

	assert.Equal(t, "FREQ=WEEKLY;BYDAY=TU", event.RecurrenceRule)
	assert.Equal(t, "20260908T100000Z", event.ExDate)
	require.Len(t, event.Attendees, 2)
	assert.Equal(t, "needsAction", event.Attendees[0].ResponseStatus)
	assert.Equal(t, "accepted", event.Attendees[1].ResponseStatus)
}

func TestToRemoteTimedEvent(t *testing.T) {
	event := &models.Event{
		Summary:      "Portrait session",
		Status:       models.EventStatusConfirmed,
		Transparency: models.TransparencyOpaque,
		StartTime:    time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
		EndTime:      time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
		TimezoneID:   "UTC",
		Sequence:     1,
	}

	remote := ToRemote(event)

	assert.Empty(t, remote.Id)
	assert.Equal(t, "Portrait session", remote.Summary)
	require.NotNil(t, remote.Start)
	assert.Equal(t, "2026-09-01T10:00:00Z", remote.Start.DateTime)
	assert.Equal(t, "UTC", remote.Start.TimeZone)
	assert.Empty(t, remote.Start.Date)
}

func TestToRemoteAllDayEvent(t *testing.T) {
	event := &models.Event{
		Summary:   "Holiday",
		AllDay:    true,
		StartTime: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC),
	}

	remote := ToRemote(event)

	require.NotNil(t, remote.Start)
	assert.Equal(t, "2026-09-01", remote.Start.Date)
	assert.Empty(t, remote.Start.DateTime)
	assert.Equal(t, "2026-09-02", remote.End.Date)
}

func TestRoundTripPreservesRecurrence(t *testing.T) {
	remote := &calendar.Event{
		Id:         "g-7",
		Summary:    "Weekly retainer",
		Start:      &calendar.EventDateTime{DateTime: "2026-09-01T09:00:00Z", TimeZone: "UTC"},
		End:        &calendar.EventDateTime{DateTime: "2026-09-01T10:00:00Z", TimeZone: "UTC"},
		Recurrence: []string{"RRULE:FREQ=WEEKLY"},
	}

	event, err := ToLocal(remote, "primary")
	require.NoError(t, err)

	back := ToRemote(event)
	require.Len(t, back.Recurrence, 1)
	assert.Equal(t, "RRULE:FREQ=WEEKLY", back.Recurrence[0])
	assert.Equal(t, remote.Summary, back.Summary)
	assert.Equal(t, remote.Start.DateTime, back.Start.DateTime)
}
