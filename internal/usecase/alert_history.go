package usecase

import (
	"context"
	"time"

	"PulseGateway/internal/domain/models"
	domrepo "PulseGateway/internal/domain/repository"
	xhttp "PulseGateway/pkg/http"
	xlogger "PulseGateway/pkg/logger"
	"PulseGateway/pkg/util"
)

const defaultHistoryWindow = 24 * time.Hour

// AlertHistoryUseCase reads past board events from ClickHouse.
type AlertHistoryUseCase struct {
	store  domrepo.AlertStore
	logger *xlogger.Logger
	now    func() time.Time
}

// NewAlertHistoryUseCase accepts a nil store when ClickHouse is disabled.
func NewAlertHistoryUseCase(store domrepo.AlertStore, logger *xlogger.Logger) *AlertHistoryUseCase {
	return &AlertHistoryUseCase{store: store, logger: logger.With("alert_history"), now: time.Now}
}

// Query defaults to the last 24 hours. Unparseable bounds are rejected.
func (uc *AlertHistoryUseCase) Query(ctx context.Context, req models.AlertHistoryRequest) ([]*models.AlertEvent, error) {
	if uc.store == nil {
		return nil, xhttp.UnavailableError("Alert history is not enabled")
	}
	q, err := uc.historyQuery(req)
	if err != nil {
		return nil, err
	}
	evs, err := uc.store.Query(ctx, q)
	if err != nil {
		uc.logger.Error("alert history query failed", xlogger.Error(err))
		return nil, xhttp.InternalError("Failed to load alert history").WithError(err)
	}
	return nonNil(evs), nil
}

func (uc *AlertHistoryUseCase) historyQuery(req models.AlertHistoryRequest) (models.AlertHistoryQuery, error) {
	to := uc.now()
	if req.To != "" {
		t, ok := util.ParseTime(req.To)
		if !ok {
			return models.AlertHistoryQuery{}, xhttp.BadRequestErrorf("invalid 'to' time: %s", req.To)
		}
		to = t
	}
	from := to.Add(-defaultHistoryWindow)
	if req.From != "" {
		t, ok := util.ParseTime(req.From)
		if !ok {
			return models.AlertHistoryQuery{}, xhttp.BadRequestErrorf("invalid 'from' time: %s", req.From)
		}
		from = t
	}
	if from.After(to) {
		return models.AlertHistoryQuery{}, xhttp.BadRequestError("'from' must not be after 'to'")
	}
	return models.AlertHistoryQuery{From: from, To: to, Severity: req.Severity, Limit: req.Limit}, nil
}
