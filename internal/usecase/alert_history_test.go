package usecase

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PulseGateway/internal/domain/models"
	xhttp "PulseGateway/pkg/http"
	xlogger "PulseGateway/pkg/logger"
)

func historyStatus(t *testing.T, err error) int {
	t.Helper()
	var appErr *xhttp.AppError
	require.True(t, errors.As(err, &appErr), "want AppError, got %v", err)
	return appErr.Status
}

func TestAlertHistoryDisabled(t *testing.T) {
	uc := NewAlertHistoryUseCase(nil, xlogger.NewNop())
	_, err := uc.Query(context.Background(), models.AlertHistoryRequest{})
	assert.Equal(t, http.StatusServiceUnavailable, historyStatus(t, err))
}

func TestAlertHistoryDefaultWindow(t *testing.T) {
	store := &fakeStore{}
	uc := NewAlertHistoryUseCase(store, xlogger.NewNop())
	uc.now = func() time.Time { return fixedNow }

	evs, err := uc.Query(context.Background(), models.AlertHistoryRequest{Severity: "high", Limit: 50})
	require.NoError(t, err)
	assert.NotNil(t, evs)
	assert.Equal(t, fixedNow, store.lastQ.To)
	assert.Equal(t, fixedNow.Add(-24*time.Hour), store.lastQ.From)
	assert.Equal(t, "high", store.lastQ.Severity)
	assert.Equal(t, 50, store.lastQ.Limit)
}

func TestAlertHistoryBounds(t *testing.T) {
	store := &fakeStore{}
	uc := NewAlertHistoryUseCase(store, xlogger.NewNop())

	_, err := uc.Query(context.Background(), models.AlertHistoryRequest{From: "yesterday"})
	assert.Equal(t, http.StatusBadRequest, historyStatus(t, err))

	_, err = uc.Query(context.Background(), models.AlertHistoryRequest{From: "2024-03-08", To: "2024-03-07"})
	assert.Equal(t, http.StatusBadRequest, historyStatus(t, err))
	assert.False(t, store.queried)

	_, err = uc.Query(context.Background(), models.AlertHistoryRequest{From: "2024-03-06", To: "2024-03-07T12:00:00Z"})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC), store.lastQ.From)

	store.err = errUpstream
	_, err = uc.Query(context.Background(), models.AlertHistoryRequest{})
	assert.Equal(t, http.StatusInternalServerError, historyStatus(t, err))
}
