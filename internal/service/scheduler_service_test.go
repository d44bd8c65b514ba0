package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damnjuhl/calcalc/internal/models"
)

type stubDueLister struct {
	due     []models.SyncSettings
	listErr error
}

func (l *stubDueLister) ListDue(ctx context.Context, now time.Time) ([]models.SyncSettings, error) {
	if l.listErr != nil {
		return nil, l.listErr
	}
	return l.due, nil
}

type stubReconciler struct {
	calls   []int64
	failFor map[int64]error
}

func (r *stubReconciler) Reconcile(ctx context.Context, userID int64, direction models.SyncDirection, overrideEventIDs []string) (*models.SyncResult, error) {
	r.calls = append(r.calls, userID)
	if err, ok := r.failFor[userID]; ok {
		return nil, err
	}
	return &models.SyncResult{}, nil
}

func TestSchedulerRunDueProcessesEveryUser(t *testing.T) {
	lister := &stubDueLister{due: []models.SyncSettings{
		{UserID: 1, SyncDirection: models.SyncDirectionBoth},
		{UserID: 2, SyncDirection: models.SyncDirectionImport},
		{UserID: 3, SyncDirection: models.SyncDirectionExport},
	}}
	recon := &stubReconciler{}
	scheduler := NewSchedulerService(lister, recon, time.Minute, nil)

	scheduler.runDue(context.Background())
	assert.Equal(t, []int64{1, 2, 3}, recon.calls)
}

func TestSchedulerRunDueContinuesPastFailures(t *testing.T) {
	lister := &stubDueLister{due: []models.SyncSettings{
		{UserID: 1, SyncDirection: models.SyncDirectionBoth},
		{UserID: 2, SyncDirection: models.SyncDirectionBoth},
		{UserID: 3, SyncDirection: models.SyncDirectionBoth},
	}}
	recon := &stubReconciler{failFor: map[int64]error{2: errors.New("token revoked")}}
	scheduler := NewSchedulerService(lister, recon, time.Minute, nil)

	scheduler.runDue(context.Background())
	assert.Equal(t, []int64{1, 2, 3}, recon.calls)
}

func TestSchedulerRunDueListFailure(t *testing.T) {
	lister := &stubDueLister{listErr: errors.New("db down")}
	recon := &stubReconciler{}
	scheduler := NewSchedulerService(lister, recon, time.Minute, nil)

	scheduler.runDue(context.Background())
	assert.Empty(t, recon.calls)
}

func TestSchedulerStartStopIdempotent(t *testing.T) {
	lister := &stubDueLister{}
	recon := &stubReconciler{}
	scheduler := NewSchedulerService(lister, recon, time.Hour, nil)

	ctx := context.Background()
	scheduler.Start(ctx)
	scheduler.Start(ctx)
	scheduler.Stop()
	scheduler.Stop()

	require.NotPanics(t, func() { scheduler.Stop() })
}
