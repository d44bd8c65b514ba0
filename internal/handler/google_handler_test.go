package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damnjuhl/calcalc/internal/middleware"
	"github.com/damnjuhl/calcalc/internal/models"
	appErrors "github.com/damnjuhl/calcalc/pkg/errors"
)

type googleAuthServiceMock struct {
	callbackResult *models.SyncResult
	callbackErr    error
	calendars      []models.RemoteCalendar
	calendarsErr   error
	callbackUser   int64
}

func (m *googleAuthServiceMock) AuthURL(state string) string {
	return "https://accounts.example.com/consent?state=" + state
}

func (m *googleAuthServiceMock) HandleCallback(ctx context.Context, userID int64, code string) (*models.SyncResult, error) {
	m.callbackUser = userID
	if m.callbackErr != nil {
		return nil, m.callbackErr
	}
	return m.callbackResult, nil
}

func (m *googleAuthServiceMock) ListCalendars(ctx context.Context, userID int64) ([]models.RemoteCalendar, error) {
	if m.calendarsErr != nil {
		return nil, m.calendarsErr
	}
	return m.calendars, nil
}

type googleSyncServiceMock struct {
	result    *models.SyncResult
	err       error
	direction models.SyncDirection
	eventIDs  []string
}

func (m *googleSyncServiceMock) Reconcile(ctx context.Context, userID int64, direction models.SyncDirection, overrideEventIDs []string) (*models.SyncResult, error) {
	m.direction = direction
	m.eventIDs = overrideEventIDs
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

type defaultCalendarServiceMock struct {
	calendarID string
	err        error
}

func (m *defaultCalendarServiceMock) SetDefaultCalendar(ctx context.Context, userID int64, calendarID string) error {
	m.calendarID = calendarID
	return m.err
}

type stateTokenMock struct {
	claims *models.JWTClaims
	err    error
}

func (m *stateTokenMock) IssueStateToken(userID int64, email string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return "state-token", nil
}

func (m *stateTokenMock) ValidateStateToken(tokenString string) (*models.JWTClaims, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.claims, nil
}

func newGoogleTestContext(t *testing.T, method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, target, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestGoogleHandlerSyncAnonymous(t *testing.T) {
	handler := NewGoogleHandler(&googleAuthServiceMock{}, &googleSyncServiceMock{}, &defaultCalendarServiceMock{}, &stateTokenMock{}, "http://localhost:3001", nil)
	c, w := newGoogleTestContext(t, http.MethodPost, "/google/sync", nil)

	handler.Sync(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGoogleHandlerSyncUsesStoredDirection(t *testing.T) {
	syncMock := &googleSyncServiceMock{result: &models.SyncResult{Imported: 2}}
	handler := NewGoogleHandler(&googleAuthServiceMock{}, syncMock, &defaultCalendarServiceMock{}, &stateTokenMock{}, "http://localhost:3001", nil)
	c, w := newGoogleTestContext(t, http.MethodPost, "/google/sync", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: 7})

	handler.Sync(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.SyncDirection(""), syncMock.direction)
}

func TestGoogleHandlerSyncNotConnected(t *testing.T) {
	syncMock := &googleSyncServiceMock{err: appErrors.ErrNotConnected}
	handler := NewGoogleHandler(&googleAuthServiceMock{}, syncMock, &defaultCalendarServiceMock{}, &stateTokenMock{}, "http://localhost:3001", nil)
	c, w := newGoogleTestContext(t, http.MethodPost, "/google/sync", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: 7})

	handler.Sync(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGoogleHandlerSyncInProgress(t *testing.T) {
	syncMock := &googleSyncServiceMock{err: appErrors.ErrSyncInProgress}
	handler := NewGoogleHandler(&googleAuthServiceMock{}, syncMock, &defaultCalendarServiceMock{}, &stateTokenMock{}, "http://localhost:3001", nil)
	c, w := newGoogleTestContext(t, http.MethodPost, "/google/sync", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: 7})

	handler.Sync(c)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGoogleHandlerImportForcesDirection(t *testing.T) {
	syncMock := &googleSyncServiceMock{result: &models.SyncResult{}}
	handler := NewGoogleHandler(&googleAuthServiceMock{}, syncMock, &defaultCalendarServiceMock{}, &stateTokenMock{}, "http://localhost:3001", nil)
	c, w := newGoogleTestContext(t, http.MethodPost, "/google/import", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: 7})

	handler.Import(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.SyncDirectionImport, syncMock.direction)
}

func TestGoogleHandlerExportWithEventIDs(t *testing.T) {
	syncMock := &googleSyncServiceMock{result: &models.SyncResult{Exported: 1, Updated: 1}}
	handler := NewGoogleHandler(&googleAuthServiceMock{}, syncMock, &defaultCalendarServiceMock{}, &stateTokenMock{}, "http://localhost:3001", nil)
	body, _ := json.Marshal(exportRequest{EventIDs: []string{"local-1", "local-2"}})
	c, w := newGoogleTestContext(t, http.MethodPost, "/google/export", body)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: 7})

	handler.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.SyncDirectionExport, syncMock.direction)
	assert.Equal(t, []string{"local-1", "local-2"}, syncMock.eventIDs)
}

func TestGoogleHandlerAuthURLUsesStateToken(t *testing.T) {
	handler := NewGoogleHandler(&googleAuthServiceMock{}, &googleSyncServiceMock{}, &defaultCalendarServiceMock{}, &stateTokenMock{}, "http://localhost:3001", nil)
	c, w := newGoogleTestContext(t, http.MethodGet, "/google/auth-url", nil)
	c.Request.Header.Set("Authorization", "Bearer raw-access-token")
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: 7})

	handler.AuthURL(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "state=state-token")
	assert.NotContains(t, w.Body.String(), "raw-access-token")
}

func TestGoogleHandlerAuthURLAnonymous(t *testing.T) {
	handler := NewGoogleHandler(&googleAuthServiceMock{}, &googleSyncServiceMock{}, &defaultCalendarServiceMock{}, &stateTokenMock{}, "http://localhost:3001", nil)
	c, w := newGoogleTestContext(t, http.MethodGet, "/google/auth-url", nil)

	handler.AuthURL(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGoogleHandlerCallbackInvalidState(t *testing.T) {
	validator := &stateTokenMock{err: errors.New("bad token")}
	handler := NewGoogleHandler(&googleAuthServiceMock{}, &googleSyncServiceMock{}, &defaultCalendarServiceMock{}, validator, "http://localhost:3001", nil)
	c, w := newGoogleTestContext(t, http.MethodGet, "/google/callback?state=bogus&code=abc", nil)

	handler.Callback(c)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "google=error")
}

func TestGoogleHandlerCallbackSuccessRedirects(t *testing.T) {
	authMock := &googleAuthServiceMock{callbackResult: &models.SyncResult{Imported: 3}}
	validator := &stateTokenMock{claims: &models.JWTClaims{UserID: 7}}
	handler := NewGoogleHandler(authMock, &googleSyncServiceMock{}, &defaultCalendarServiceMock{}, validator, "http://localhost:3001", nil)
	c, w := newGoogleTestContext(t, http.MethodGet, "/google/callback?state=token&code=abc", nil)

	handler.Callback(c)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, int64(7), authMock.callbackUser)
	assert.Contains(t, w.Header().Get("Location"), "http://localhost:3001/settings?google=connected")
}

func TestGoogleHandlerCalendars(t *testing.T) {
	authMock := &googleAuthServiceMock{calendars: []models.RemoteCalendar{{ID: "primary", Primary: true}}}
	handler := NewGoogleHandler(authMock, &googleSyncServiceMock{}, &defaultCalendarServiceMock{}, &stateTokenMock{}, "http://localhost:3001", nil)
	c, w := newGoogleTestContext(t, http.MethodGet, "/google/calendars", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: 7})

	handler.Calendars(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "primary")
}

func TestGoogleHandlerUpdateDefaultCalendar(t *testing.T) {
	settingsMock := &defaultCalendarServiceMock{}
	handler := NewGoogleHandler(&googleAuthServiceMock{}, &googleSyncServiceMock{}, settingsMock, &stateTokenMock{}, "http://localhost:3001", nil)
	body, _ := json.Marshal(defaultCalendarRequest{CalendarID: "work"})
	c, w := newGoogleTestContext(t, http.MethodPut, "/google/default-calendar", body)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: 7})

	handler.UpdateDefaultCalendar(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "work", settingsMock.calendarID)
}
