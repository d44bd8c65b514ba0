package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/damnjuhl/calcalc/internal/models"
	"github.com/damnjuhl/calcalc/internal/service"
	appErrors "github.com/damnjuhl/calcalc/pkg/errors"
	"github.com/damnjuhl/calcalc/pkg/response"
)

type settingsService interface {
	Get(ctx context.Context, userID int64) (*models.SyncSettings, error)
	GetSync(ctx context.Context, userID int64) (*service.SyncSettingsResponse, error)
	UpdateSync(ctx context.Context, userID int64, req service.UpdateSyncSettingsRequest) (*service.SyncSettingsResponse, error)
	UpdateUI(ctx context.Context, userID int64, req service.UpdateUIPreferencesRequest) (*models.SyncSettings, error)
	UpdateFinancial(ctx context.Context, userID int64, req service.UpdateFinancialPreferencesRequest) (*models.SyncSettings, error)
}

// SettingsHandler exposes user preference endpoints.
type SettingsHandler struct {
	service settingsService
}

// NewSettingsHandler builds a new handler.
func NewSettingsHandler(service settingsService) *SettingsHandler {
	return &SettingsHandler{service: service}
}

// settingsView strips credential columns from the stored row.
type settingsView struct {
	UserID         int64                `json:"user_id"`
	Email          string               `json:"email"`
	SyncDirection  models.SyncDirection `json:"sync_direction"`
	SyncFrequency  models.SyncFrequency `json:"sync_frequency"`
	DefaultTaxRate float64              `json:"default_tax_rate"`
	DarkMode       bool                 `json:"dark_mode"`
	IsConnected    bool                 `json:"is_connected"`
}

func toSettingsView(settings *models.SyncSettings) settingsView {
	return settingsView{
		UserID:         settings.UserID,
		Email:          settings.Email,
		SyncDirection:  settings.SyncDirection,
		SyncFrequency:  settings.SyncFrequency,
		DefaultTaxRate: settings.DefaultTaxRate,
		DarkMode:       settings.DarkMode,
		IsConnected:    settings.Connected(),
	}
}

// Get godoc
// @Summary Get user settings
// @Tags Settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	settings, err := h.service.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, toSettingsView(settings))
}

// GetSync godoc
// @Summary Get sync preferences
// @Tags Settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /settings/sync [get]
func (h *SettingsHandler) GetSync(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	settings, err := h.service.GetSync(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings)
}

// UpdateSync godoc
// @Summary Update sync preferences
// @Tags Settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.UpdateSyncSettingsRequest true "Sync preferences"
// @Success 200 {object} response.Envelope
// @Router /settings/sync [post]
func (h *SettingsHandler) UpdateSync(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.UpdateSyncSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid sync settings payload"))
		return
	}

	settings, err := h.service.UpdateSync(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings)
}

// UpdateUI godoc
// @Summary Update display preferences
// @Tags Settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.UpdateUIPreferencesRequest true "Display preferences"
// @Success 200 {object} response.Envelope
// @Router /settings/ui [post]
func (h *SettingsHandler) UpdateUI(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.UpdateUIPreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid ui preferences payload"))
		return
	}

	settings, err := h.service.UpdateUI(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, toSettingsView(settings))
}

// UpdateFinancial godoc
// @Summary Update financial preferences
// @Tags Settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.UpdateFinancialPreferencesRequest true "Financial preferences"
// @Success 200 {object} response.Envelope
// @Router /settings/financial [post]
func (h *SettingsHandler) UpdateFinancial(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.UpdateFinancialPreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid financial preferences payload"))
		return
	}

	settings, err := h.service.UpdateFinancial(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, toSettingsView(settings))
}
