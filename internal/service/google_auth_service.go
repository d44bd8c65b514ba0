package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/damnjuhl/calcalc/internal/models"
	"github.com/damnjuhl/calcalc/internal/provider"
	appErrors "github.com/damnjuhl/calcalc/pkg/errors"
)

type oauthClient interface {
	AuthURL(state string) string
	ExchangeCode(ctx context.Context, code string) (models.TokenPair, error)
	Session(ctx context.Context, tokens models.TokenPair) (provider.Session, error)
}

type connectSettingsRepository interface {
	Get(ctx context.Context, userID int64) (*models.SyncSettings, error)
	Upsert(ctx context.Context, userID int64, update models.SyncSettingsUpdate) (*models.SyncSettings, error)
}

type reconciler interface {
	Reconcile(ctx context.Context, userID int64, direction models.SyncDirection, overrideEventIDs []string) (*models.SyncResult, error)
}

// GoogleAuthService owns the OAuth connect flow and calendar listing for a
// connected account.
type GoogleAuthService struct {
	oauth    oauthClient
	settings connectSettingsRepository
	sync     reconciler
	logger   *zap.Logger
}

// NewGoogleAuthService constructs the service.
func NewGoogleAuthService(oauth oauthClient, settings connectSettingsRepository, sync reconciler, logger *zap.Logger) *GoogleAuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GoogleAuthService{oauth: oauth, settings: settings, sync: sync, logger: logger}
}

// AuthURL returns the provider consent URL carrying the caller's identity in
// the OAuth state parameter.
func (s *GoogleAuthService) AuthURL(state string) string {
	return s.oauth.AuthURL(state)
}

// HandleCallback completes the connect flow: exchanges the code, stores the
// tokens with the account's primary calendar as default, and runs an initial
// import so the user sees their events right away.
func (s *GoogleAuthService) HandleCallback(ctx context.Context, userID int64, code string) (*models.SyncResult, error) {
	if code == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "authorization code is required")
	}

	tokens, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to exchange authorization code")
	}

	session, err := s.oauth.Session(ctx, tokens)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open calendar session")
	}

	calendars, err := session.ListCalendars(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list calendars")
	}

	primary := pickPrimaryCalendar(calendars)
	if primary == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no calendars found for this account")
	}

	email := "user"
	if at := strings.Index(primary.ID, "@"); at > 0 {
		email = primary.ID[:at]
	}
	frequency := models.SyncFrequencyDaily
	update := models.SyncSettingsUpdate{
		Email:             &email,
		GoogleAuthToken:   &tokens.AccessToken,
		DefaultCalendarID: &primary.ID,
		SyncFrequency:     &frequency,
	}
	if tokens.RefreshToken != "" {
		update.GoogleRefreshToken = &tokens.RefreshToken
	}
	if _, err := s.settings.Upsert(ctx, userID, update); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store google credentials")
	}

	result, err := s.sync.Reconcile(ctx, userID, models.SyncDirectionImport, nil)
	if err != nil {
		return nil, err
	}
	s.logger.Info("google account connected",
		zap.Int64("user_id", userID),
		zap.String("calendar_id", primary.ID),
		zap.Int("imported", result.Imported),
	)
	return result, nil
}

// ListCalendars returns the remote calendars of the connected account.
func (s *GoogleAuthService) ListCalendars(ctx context.Context, userID int64) ([]models.RemoteCalendar, error) {
	settings, err := s.settings.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotConnected
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sync settings")
	}
	if !settings.Connected() {
		return nil, appErrors.ErrNotConnected
	}

	session, err := s.oauth.Session(ctx, settings.Tokens())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open calendar session")
	}
	calendars, err := session.ListCalendars(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list calendars")
	}
	return calendars, nil
}

func pickPrimaryCalendar(calendars []models.RemoteCalendar) *models.RemoteCalendar {
	for i := range calendars {
		if calendars[i].Primary {
			return &calendars[i]
		}
	}
	if len(calendars) > 0 {
		return &calendars[0]
	}
	return nil
}
