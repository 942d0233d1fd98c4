package api

import (
	models "PulseGateway/internal/domain/models"
	"PulseGateway/internal/usecase"
	xhttp "PulseGateway/pkg/http"
	xlogger "PulseGateway/pkg/logger"

	"github.com/labstack/echo/v4"
)

// InsightsHandler serves weather, agent results and the assistant chat.
type InsightsHandler struct {
	logger  *xlogger.Logger
	weather *usecase.WeatherUseCase
	agent   *usecase.AgentResultsUseCase
	chat    *usecase.ChatUseCase
}

func NewInsightsHandler(
	logger *xlogger.Logger,
	weather *usecase.WeatherUseCase,
	agent *usecase.AgentResultsUseCase,
	chat *usecase.ChatUseCase,
) *InsightsHandler {
	return &InsightsHandler{logger: logger.With("insights_handler"), weather: weather, agent: agent, chat: chat}
}

func (h *InsightsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/weather", h.Weather)
	g.GET("/agent-results", h.AgentResults)
	g.POST("/agent-chat", h.Chat)
	g.POST("/agent-chat/conversations", h.StartConversation)
	g.GET("/agent-chat/conversations/:id", h.Conversation)
}

func (h *InsightsHandler) Weather(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=300")
	return xhttp.SuccessResponse(c, h.weather.Conditions(c.Request().Context()))
}

func (h *InsightsHandler) AgentResults(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.agent.Get(c.Request().Context()))
}

func (h *InsightsHandler) Chat(c echo.Context) error {
	req := &models.ChatRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.chat.Send(c.Request().Context(), clientKey(c), *req)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *InsightsHandler) StartConversation(c echo.Context) error {
	return xhttp.CreatedResponse(c, h.chat.Start())
}

func (h *InsightsHandler) Conversation(c echo.Context) error {
	conv, ok := h.chat.History(c.Param("id"))
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("Conversation %s not found", c.Param("id")))
	}
	return xhttp.SuccessResponse(c, conv)
}
