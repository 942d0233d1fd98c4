package usecase

import (
	"context"
	"fmt"

	"PulseGateway/internal/domain/models"
	domrepo "PulseGateway/internal/domain/repository"
	xlogger "PulseGateway/pkg/logger"
	"PulseGateway/pkg/queue"
)

// CareAlertForwardJob drains the outbox into the care backend's POST /alerts.
// Failures are retried by the queue.
type CareAlertForwardJob struct {
	api    domrepo.CareAPI
	logger *xlogger.Logger
}

func NewCareAlertForwardJob(api domrepo.CareAPI, logger *xlogger.Logger) *CareAlertForwardJob {
	return &CareAlertForwardJob{api: api, logger: logger.With("care_forward")}
}

func (j *CareAlertForwardJob) Name() string { return "care_alert_forwarder" }

func (j *CareAlertForwardJob) Type() string { return MsgTypeCareAlert }

func (j *CareAlertForwardJob) Handle(ctx context.Context, payload interface{}) error {
	body, err := queue.ParsePayload[models.CareAlertCreate](payload)
	if err != nil {
		return fmt.Errorf("care alert payload: %w", err)
	}
	created, err := j.api.CreateAlert(ctx, *body)
	if err != nil {
		return fmt.Errorf("create care alert %q: %w", body.Title, err)
	}
	j.logger.Info("alert forwarded to care backend",
		xlogger.Int("care_id", created.ID),
		xlogger.String("severity", body.Severity))
	return nil
}

var _ queue.Job = (*CareAlertForwardJob)(nil)
