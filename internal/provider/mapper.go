package provider

import (
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/damnjuhl/calcalc/internal/models"
)

const dateOnlyLayout = "2006-01-02"

// ToLocal maps a remote event onto the local record shape. Date-only start
// and end mean an all-day event anchored at the date's midnight boundary.
// Optional fields missing on the remote side become empty values; a missing
// start or end is the only fatal condition.
func ToLocal(remote *calendar.Event, calendarID string) (*models.Event, error) {
	if remote.Start == nil || remote.End == nil {
		return nil, fmt.Errorf("event %s: missing start or end", remote.Id)
	}

	var (
		start, end time.Time
		allDay     bool
		err        error
	)
	switch {
	case remote.Start.DateTime != "":
		start, err = time.Parse(time.RFC3339, remote.Start.DateTime)
		if err != nil {
			return nil, fmt.Errorf("event %s: bad start time: %w", remote.Id, err)
		}
		end, err = time.Parse(time.RFC3339, remote.End.DateTime)
		if err != nil {
			return nil, fmt.Errorf("event %s: bad end time: %w", remote.Id, err)
		}
	case remote.Start.Date != "":
		start, err = time.Parse(dateOnlyLayout, remote.Start.Date)
		if err != nil {
			return nil, fmt.Errorf("event %s: bad start date: %w", remote.Id, err)
		}
		end, err = time.Parse(dateOnlyLayout, remote.End.Date)
		if err != nil {
			return nil, fmt.Errorf("event %s: bad end date: %w", remote.Id, err)
		}
		allDay = true
	default:
		return nil, fmt.Errorf("event %s: no start time or date", remote.Id)
	}

	status := remote.Status
	if status == "" {
		status = models.EventStatusConfirmed
	}
	transparency := remote.Transparency
	if transparency == "" {
		transparency = models.TransparencyOpaque
	}

	event := &models.Event{
		CalendarID:       calendarID,
		Summary:          remote.Summary,
		Description:      remote.Description,
		Location:         remote.Location,
		StartTime:        start,
		EndTime:          end,
		AllDay:           allDay,
		TimezoneID:       remote.Start.TimeZone,
		Transparency:     transparency,
		Status:           status,
		Sequence:         int(remote.Sequence),
		GoogleID:         &remote.Id,
		GoogleCalendarID: &calendarID,
	}

	if remote.RecurringEventId != "" {
		event.RecurringID = &remote.RecurringEventId
	}
	for _, rule := range remote.Recurrence {
		switch {
		case strings.HasPrefix(rule, "RRULE:"):
			event.RecurrenceRule = strings.TrimPrefix(rule, "RRULE:")
		case strings.HasPrefix(rule, "EXDATE:"):
			event.ExDate = strings.TrimPrefix(rule, "EXDATE:")
		}
	}
	for _, attendee := range remote.Attendees {
		responseStatus := attendee.ResponseStatus
		if responseStatus == "" {
			responseStatus = "needsAction"
		}
		event.Attendees = append(event.Attendees, models.Attendee{
			Email:          attendee.Email,
			DisplayName:    attendee.DisplayName,
			ResponseStatus: responseStatus,
		})
	}

	return event, nil
}

// ToRemote maps a local event into the provider representation. All-day
// events emit date-only boundaries, timed events a timestamp plus timezone.
// The remote identifier is never set here; creates let the provider assign
// one and updates pass it out of band.
func ToRemote(event *models.Event) *calendar.Event {
	remote := &calendar.Event{
		Summary:      event.Summary,
		Description:  event.Description,
		Location:     event.Location,
		Status:       event.Status,
		Transparency: event.Transparency,
		Sequence:     int64(event.Sequence),
	}

	if event.AllDay {
		remote.Start = &calendar.EventDateTime{Date: event.StartTime.Format(dateOnlyLayout)}
		remote.End = &calendar.EventDateTime{Date: event.EndTime.Format(dateOnlyLayout)}
	} else {
		remote.Start = &calendar.EventDateTime{
			DateTime: event.StartTime.Format(time.RFC3339),
			TimeZone: event.TimezoneID,
		}
		remote.End = &calendar.EventDateTime{
			DateTime: event.EndTime.Format(time.RFC3339),
			TimeZone: event.TimezoneID,
		}
	}

	if event.RecurrenceRule != "" {
		remote.Recurrence = append(remote.Recurrence, "RRULE:"+event.RecurrenceRule)
	}
	if event.ExDate != "" {
		remote.Recurrence = append(remote.Recurrence, "EXDATE:"+event.ExDate)
	}
	for _, attendee := range event.Attendees {
		remote.Attendees = append(remote.Attendees, &calendar.EventAttendee{
			Email:          attendee.Email,
			DisplayName:    attendee.DisplayName,
			ResponseStatus: attendee.ResponseStatus,
		})
	}

	return remote
}
