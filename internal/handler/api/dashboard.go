package api

import (
	models "PulseGateway/internal/domain/models"
	"PulseGateway/internal/usecase"
	xhttp "PulseGateway/pkg/http"
	xlogger "PulseGateway/pkg/logger"

	"github.com/labstack/echo/v4"
)

// DashboardHandler serves the operations dashboard, resources and action approval.
type DashboardHandler struct {
	logger    *xlogger.Logger
	dashboard *usecase.DashboardUseCase
	resources *usecase.ResourcesUseCase
	approvals *usecase.ApprovalsUseCase
}

func NewDashboardHandler(
	logger *xlogger.Logger,
	dashboard *usecase.DashboardUseCase,
	resources *usecase.ResourcesUseCase,
	approvals *usecase.ApprovalsUseCase,
) *DashboardHandler {
	return &DashboardHandler{logger: logger.With("dashboard_handler"), dashboard: dashboard, resources: resources, approvals: approvals}
}

func (h *DashboardHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/dashboard", h.Dashboard)
	g.GET("/resources", h.Resources)
	g.POST("/actions/approve", h.Approve)
	g.GET("/actions/approved", h.Approved)
}

func (h *DashboardHandler) Dashboard(c echo.Context) error {
	req := &models.DashboardRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.dashboard.Get(c.Request().Context(), clientKey(c), *req)
	if err != nil {
		return viewErrorResponse(c, h.logger, "dashboard", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *DashboardHandler) Resources(c echo.Context) error {
	res, err := h.resources.Get(c.Request().Context(), clientKey(c))
	if err != nil {
		return viewErrorResponse(c, h.logger, "resources", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *DashboardHandler) Approve(c echo.Context) error {
	req := &models.ApproveActionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.approvals.Approve(c.Request().Context(), *req)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *DashboardHandler) Approved(c echo.Context) error {
	ids := h.approvals.Approved()
	return xhttp.ListResponse(c, ids, int64(len(ids)))
}
