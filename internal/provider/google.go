package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/damnjuhl/calcalc/internal/models"
	"github.com/damnjuhl/calcalc/pkg/config"
)

// Error is a failed call against the remote calendar API. The caller decides
// whether to retry or record it; the client itself never retries.
type Error struct {
	StatusCode int
	Op         string
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("google calendar %s: %s (status %d)", e.Op, e.Message, e.StatusCode)
}

func wrapAPIError(op string, err error) error {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return &Error{StatusCode: gErr.Code, Op: op, Message: gErr.Message}
	}
	return &Error{Op: op, Message: err.Error()}
}

// Session issues authenticated calls for one user's token pair.
type Session interface {
	ListCalendars(ctx context.Context) ([]models.RemoteCalendar, error)
	GetCalendar(ctx context.Context, calendarID string) (*models.RemoteCalendar, error)
	ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]*calendar.Event, error)
	CreateEvent(ctx context.Context, calendarID string, event *calendar.Event) (*calendar.Event, error)
	UpdateEvent(ctx context.Context, calendarID, eventID string, event *calendar.Event) (*calendar.Event, error)
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
}

// Client wraps the application's OAuth configuration for the Calendar API.
type Client struct {
	oauth *oauth2.Config
}

// NewClient builds a Client from the configured application credentials.
func NewClient(cfg config.GoogleConfig) *Client {
	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{calendar.CalendarScope, calendar.CalendarEventsScope},
			Endpoint:     google.Endpoint,
		},
	}
}

// AuthURL returns the consent URL. Offline access yields a refresh token and
// prompt=consent forces re-approval so the refresh token is always returned.
func (c *Client) AuthURL(state string) string {
	return c.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// ExchangeCode trades an authorization code for a token pair.
func (c *Client) ExchangeCode(ctx context.Context, code string) (models.TokenPair, error) {
	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return models.TokenPair{}, wrapAPIError("exchange code", err)
	}
	return models.TokenPair{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}, nil
}

// Session builds an authenticated Calendar session for the given tokens. The
// token source refreshes the access token transparently when it expires.
func (c *Client) Session(ctx context.Context, tokens models.TokenPair) (Session, error) {
	token := &oauth2.Token{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}
	svc, err := calendar.NewService(ctx, option.WithTokenSource(c.oauth.TokenSource(ctx, token)))
	if err != nil {
		return nil, wrapAPIError("new service", err)
	}
	return &googleSession{svc: svc}, nil
}

type googleSession struct {
	svc *calendar.Service
}

func (s *googleSession) ListCalendars(ctx context.Context) ([]models.RemoteCalendar, error) {
	list, err := s.svc.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, wrapAPIError("list calendars", err)
	}

	calendars := make([]models.RemoteCalendar, 0, len(list.Items))
	for _, item := range list.Items {
		calendars = append(calendars, models.RemoteCalendar{
			ID:          item.Id,
			Summary:     item.Summary,
			Description: item.Description,
			TimeZone:    item.TimeZone,
			Primary:     item.Primary,
		})
	}
	return calendars, nil
}

func (s *googleSession) GetCalendar(ctx context.Context, calendarID string) (*models.RemoteCalendar, error) {
	item, err := s.svc.CalendarList.Get(calendarID).Context(ctx).Do()
	if err != nil {
		return nil, wrapAPIError("get calendar", err)
	}
	return &models.RemoteCalendar{
		ID:          item.Id,
		Summary:     item.Summary,
		Description: item.Description,
		TimeZone:    item.TimeZone,
		Primary:     item.Primary,
	}, nil
}

// ListEvents returns expanded recurring instances ordered by start time. A
// zero timeMin defaults to now and a zero timeMax to thirty days ahead.
func (s *googleSession) ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]*calendar.Event, error) {
	if timeMin.IsZero() {
		timeMin = time.Now().UTC()
	}
	if timeMax.IsZero() {
		timeMax = timeMin.Add(30 * 24 * time.Hour)
	}

	var events []*calendar.Event
	pageToken := ""
	for {
		call := s.svc.Events.List(calendarID).
			ShowDeleted(false).
			SingleEvents(true).
			TimeMin(timeMin.Format(time.RFC3339)).
			TimeMax(timeMax.Format(time.RFC3339)).
			OrderBy("startTime").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		page, err := call.Do()
		if err != nil {
			return nil, wrapAPIError("list events", err)
		}
		events = append(events, page.Items...)

		if page.NextPageToken == "" {
			return events, nil
		}
		pageToken = page.NextPageToken
	}
}

func (s *googleSession) CreateEvent(ctx context.Context, calendarID string, event *calendar.Event) (*calendar.Event, error) {
	created, err := s.svc.Events.Insert(calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, wrapAPIError("create event", err)
	}
	return created, nil
}

func (s *googleSession) UpdateEvent(ctx context.Context, calendarID, eventID string, event *calendar.Event) (*calendar.Event, error) {
	updated, err := s.svc.Events.Update(calendarID, eventID, event).Context(ctx).Do()
	if err != nil {
		return nil, wrapAPIError("update event", err)
	}
	return updated, nil
}

func (s *googleSession) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	if err := s.svc.Events.Delete(calendarID, eventID).Context(ctx).Do(); err != nil {
		return wrapAPIError("delete event", err)
	}
	return nil
}
