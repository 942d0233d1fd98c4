package api

import (
	models "PulseGateway/internal/domain/models"
	"PulseGateway/internal/usecase"
	xhttp "PulseGateway/pkg/http"
	xlogger "PulseGateway/pkg/logger"

	"github.com/labstack/echo/v4"
)

// CareHandler serves the care backend session, hospital overview and document search.
type CareHandler struct {
	logger   *xlogger.Logger
	hospital *usecase.HospitalUseCase
}

func NewCareHandler(logger *xlogger.Logger, hospital *usecase.HospitalUseCase) *CareHandler {
	return &CareHandler{logger: logger.With("care_handler"), hospital: hospital}
}

func (h *CareHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/session", h.Session)
	g.POST("/session/login", h.Login)
	g.POST("/session/logout", h.Logout)
	g.GET("/hospital/dashboard", h.Overview)
	g.GET("/hospital/:id/dashboard", h.Overview)
	g.GET("/documents/search", h.SearchDocuments)
}

func (h *CareHandler) Session(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.hospital.Session())
}

func (h *CareHandler) Login(c echo.Context) error {
	req := &models.LoginRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	info, err := h.hospital.Login(c.Request().Context(), *req)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, info)
}

func (h *CareHandler) Logout(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.hospital.Logout())
}

func (h *CareHandler) Overview(c echo.Context) error {
	var id int
	if raw := c.Param("id"); raw != "" {
		n := xhttp.ParseIntDefault(raw, 0)
		if n <= 0 {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("invalid hospital id: %s", raw))
		}
		id = n
	}
	res, err := h.hospital.Overview(c.Request().Context(), id)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *CareHandler) SearchDocuments(c echo.Context) error {
	req := &models.DocumentSearchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	hits, err := h.hospital.SearchDocuments(c.Request().Context(), *req)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, hits, int64(len(hits)))
}
