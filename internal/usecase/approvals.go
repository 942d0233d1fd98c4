package usecase

import (
	"context"
	"sync"

	"PulseGateway/internal/domain/models"
	domrepo "PulseGateway/internal/domain/repository"
	xhttp "PulseGateway/pkg/http"
	xlogger "PulseGateway/pkg/logger"
)

// ApprovalsUseCase forwards approvals and remembers which action ids were approved.
type ApprovalsUseCase struct {
	api    domrepo.PulseAPI
	logger *xlogger.Logger

	mu       sync.RWMutex
	approved map[string]struct{}
}

func NewApprovalsUseCase(api domrepo.PulseAPI, logger *xlogger.Logger) *ApprovalsUseCase {
	return &ApprovalsUseCase{api: api, logger: logger.With("approvals"), approved: make(map[string]struct{})}
}

// Approve posts the approval; the id joins the approved set only on success.
func (uc *ApprovalsUseCase) Approve(ctx context.Context, req models.ApproveActionRequest) (*models.ApproveActionResult, error) {
	res, err := uc.api.ApproveAction(ctx, req)
	if err != nil {
		uc.logger.Error("approve action failed", xlogger.String("action_id", req.ActionID), xlogger.Error(err))
		return nil, xhttp.BadGatewayError("Failed to approve action").WithError(err)
	}
	uc.mu.Lock()
	uc.approved[req.ActionID] = struct{}{}
	uc.mu.Unlock()

	uc.logger.Info("action approved",
		xlogger.String("action_id", req.ActionID),
		xlogger.String("category", req.Category))
	return res, nil
}

func (uc *ApprovalsUseCase) IsApproved(id string) bool {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	_, ok := uc.approved[id]
	return ok
}

// Approved lists approved ids in no particular order.
func (uc *ApprovalsUseCase) Approved() []string {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	out := make([]string, 0, len(uc.approved))
	for id := range uc.approved {
		out = append(out, id)
	}
	return out
}
