package handler

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/damnjuhl/calcalc/internal/models"
	appErrors "github.com/damnjuhl/calcalc/pkg/errors"
	"github.com/damnjuhl/calcalc/pkg/response"
)

type googleAuthService interface {
	AuthURL(state string) string
	HandleCallback(ctx context.Context, userID int64, code string) (*models.SyncResult, error)
	ListCalendars(ctx context.Context, userID int64) ([]models.RemoteCalendar, error)
}

type googleSyncService interface {
	Reconcile(ctx context.Context, userID int64, direction models.SyncDirection, overrideEventIDs []string) (*models.SyncResult, error)
}

type defaultCalendarService interface {
	SetDefaultCalendar(ctx context.Context, userID int64, calendarID string) error
}

type stateTokenService interface {
	IssueStateToken(userID int64, email string) (string, error)
	ValidateStateToken(tokenString string) (*models.JWTClaims, error)
}

// GoogleHandler exposes the Google Calendar connect and sync endpoints.
type GoogleHandler struct {
	auth        googleAuthService
	sync        googleSyncService
	settings    defaultCalendarService
	tokens      stateTokenService
	frontendURL string
	logger      *zap.Logger
}

// NewGoogleHandler builds a new handler.
func NewGoogleHandler(auth googleAuthService, sync googleSyncService, settings defaultCalendarService, tokens stateTokenService, frontendURL string, logger *zap.Logger) *GoogleHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GoogleHandler{
		auth:        auth,
		sync:        sync,
		settings:    settings,
		tokens:      tokens,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

type syncRequest struct {
	Direction string `json:"direction"`
}

type exportRequest struct {
	EventIDs []string `json:"event_ids"`
}

type defaultCalendarRequest struct {
	CalendarID string `json:"calendar_id"`
}

// AuthURL godoc
// @Summary Get Google OAuth consent URL
// @Tags Google
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /google/auth-url [get]
func (h *GoogleHandler) AuthURL(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	// The consent redirect comes back from Google without an Authorization
	// header, so a short-lived state token carries the caller's identity
	// through the round trip.
	state, err := h.tokens.IssueStateToken(claims.UserID, claims.Email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"auth_url": h.auth.AuthURL(state)})
}

// Callback godoc
// @Summary Complete the Google OAuth flow
// @Tags Google
// @Param code query string true "Authorization code"
// @Param state query string true "OAuth state"
// @Success 302
// @Router /google/callback [get]
func (h *GoogleHandler) Callback(c *gin.Context) {
	claims, err := h.tokens.ValidateStateToken(c.Query("state"))
	if err != nil {
		h.logger.Warn("oauth callback with invalid state", zap.Error(err))
		h.redirectFrontend(c, "error", "invalid state")
		return
	}

	result, err := h.auth.HandleCallback(c.Request.Context(), claims.UserID, c.Query("code"))
	if err != nil {
		h.logger.Error("oauth callback failed", zap.Int64("user_id", claims.UserID), zap.Error(err))
		h.redirectFrontend(c, "error", appErrors.FromError(err).Message)
		return
	}

	h.logger.Info("oauth callback completed",
		zap.Int64("user_id", claims.UserID),
		zap.Int("imported", result.Imported),
	)
	h.redirectFrontend(c, "connected", "")
}

// Sync godoc
// @Summary Run a sync pass
// @Tags Google
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body syncRequest false "Sync options"
// @Success 200 {object} response.Envelope
// @Router /google/sync [post]
func (h *GoogleHandler) Sync(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req syncRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid sync payload"))
			return
		}
	}

	result, err := h.sync.Reconcile(c.Request.Context(), claims.UserID, models.SyncDirection(req.Direction), nil)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Import godoc
// @Summary Import events from Google Calendar
// @Tags Google
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /google/import [post]
func (h *GoogleHandler) Import(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	result, err := h.sync.Reconcile(c.Request.Context(), claims.UserID, models.SyncDirectionImport, nil)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Export godoc
// @Summary Export local events to Google Calendar
// @Tags Google
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body exportRequest false "Export options"
// @Success 200 {object} response.Envelope
// @Router /google/export [post]
func (h *GoogleHandler) Export(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req exportRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export payload"))
			return
		}
	}

	result, err := h.sync.Reconcile(c.Request.Context(), claims.UserID, models.SyncDirectionExport, req.EventIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Calendars godoc
// @Summary List calendars of the connected account
// @Tags Google
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /google/calendars [get]
func (h *GoogleHandler) Calendars(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	calendars, err := h.auth.ListCalendars(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, calendars)
}

// UpdateDefaultCalendar godoc
// @Summary Set the default sync calendar
// @Tags Google
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body defaultCalendarRequest true "Default calendar"
// @Success 200 {object} response.Envelope
// @Router /google/default-calendar [put]
func (h *GoogleHandler) UpdateDefaultCalendar(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req defaultCalendarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid default calendar payload"))
		return
	}

	if err := h.settings.SetDefaultCalendar(c.Request.Context(), claims.UserID, req.CalendarID); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"default_calendar_id": req.CalendarID})
}

func (h *GoogleHandler) redirectFrontend(c *gin.Context, status, message string) {
	target := h.frontendURL + "/settings?google=" + url.QueryEscape(status)
	if message != "" {
		target += "&message=" + url.QueryEscape(message)
	}
	c.Redirect(http.StatusFound, target)
}
