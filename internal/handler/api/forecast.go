package api

import (
	"fmt"
	"net/http"

	models "PulseGateway/internal/domain/models"
	"PulseGateway/internal/usecase"
	xhttp "PulseGateway/pkg/http"
	xlogger "PulseGateway/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ForecastHandler serves the forecast lab, its exports and the scenario sandbox.
type ForecastHandler struct {
	logger    *xlogger.Logger
	lab       *usecase.ForecastLabUseCase
	export    *usecase.ExportUseCase
	scenarios *usecase.ScenarioUseCase
}

func NewForecastHandler(
	logger *xlogger.Logger,
	lab *usecase.ForecastLabUseCase,
	export *usecase.ExportUseCase,
	scenarios *usecase.ScenarioUseCase,
) *ForecastHandler {
	return &ForecastHandler{logger: logger.With("forecast_handler"), lab: lab, export: export, scenarios: scenarios}
}

func (h *ForecastHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/forecast", h.Forecast)
	g.GET("/forecast/export.csv", h.exportAs(usecase.ExportCSV))
	g.GET("/forecast/export.xlsx", h.exportAs(usecase.ExportXLSX))
	g.GET("/scenarios", h.Scenarios)
}

func (h *ForecastHandler) Forecast(c echo.Context) error {
	req := &models.ForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.lab.Get(c.Request().Context(), clientKey(c), *req)
	if err != nil {
		return viewErrorResponse(c, h.logger, "forecast", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ForecastHandler) exportAs(format usecase.ExportFormat) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := &models.ForecastRequest{}
		if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
			return xhttp.BadRequestResponse(c, verr)
		}
		file, err := h.export.Export(c.Request().Context(), *req, format)
		if err != nil {
			return xhttp.AppErrorResponse(c, err)
		}
		c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Filename))
		return c.Blob(http.StatusOK, file.ContentType, file.Body)
	}
}

func (h *ForecastHandler) Scenarios(c echo.Context) error {
	req := &models.ScenarioRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.scenarios.Get(c.Request().Context(), clientKey(c), *req)
	if err != nil {
		return viewErrorResponse(c, h.logger, "scenarios", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, res)
}
