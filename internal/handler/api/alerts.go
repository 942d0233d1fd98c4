package api

import (
	"net/http"
	"time"

	models "PulseGateway/internal/domain/models"
	"PulseGateway/internal/usecase"
	xhttp "PulseGateway/pkg/http"
	xlogger "PulseGateway/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	streamBuffer    = 64
	streamPing      = 30 * time.Second
	streamWriteWait = 10 * time.Second
)

// AlertsHandler serves the alert board, acknowledgements, history and the live stream.
type AlertsHandler struct {
	logger   *xlogger.Logger
	alerts   *usecase.AlertsUseCase
	board    *usecase.AlertBoard
	history  *usecase.AlertHistoryUseCase
	upgrader websocket.Upgrader
}

func NewAlertsHandler(
	logger *xlogger.Logger,
	alerts *usecase.AlertsUseCase,
	board *usecase.AlertBoard,
	history *usecase.AlertHistoryUseCase,
) *AlertsHandler {
	return &AlertsHandler{
		logger:  logger.With("alerts_handler"),
		alerts:  alerts,
		board:   board,
		history: history,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *AlertsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/alerts")
	g.GET("", h.List)
	g.POST("/:id/ack", h.Acknowledge)
	g.GET("/history", h.History)
	g.GET("/stream", h.Stream)
}

// List refreshes the board from upstream and returns it partitioned.
func (h *AlertsHandler) List(c echo.Context) error {
	res, err := h.alerts.Refresh(c.Request().Context(), clientKey(c))
	if err != nil {
		return viewErrorResponse(c, h.logger, "alerts", err)
	}
	return xhttp.SuccessResponse(c, res)
}

// Acknowledge always answers with the board; an unknown id changes nothing.
func (h *AlertsHandler) Acknowledge(c echo.Context) error {
	id := c.Param("id")
	part, found := h.alerts.Acknowledge(c.Request().Context(), id)
	if !found {
		h.logger.Debug("acknowledge of unknown alert", xlogger.String("alert_id", id))
	}
	return xhttp.SuccessResponse(c, part)
}

func (h *AlertsHandler) History(c echo.Context) error {
	req := &models.AlertHistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	evs, err := h.history.Query(c.Request().Context(), *req)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, evs, int64(len(evs)))
}

// Stream pushes the current board, then every board event, over a websocket.
func (h *AlertsHandler) Stream(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("alert stream upgrade failed", xlogger.Error(err))
		return nil
	}
	defer conn.Close()

	events, cancel := h.board.Subscribe(streamBuffer)
	defer cancel()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	if err := conn.WriteJSON(map[string]interface{}{"type": "snapshot", "board": h.board.Partition()}); err != nil {
		return nil
	}

	ping := time.NewTicker(streamPing)
	defer ping.Stop()
	for {
		select {
		case <-closed:
			return nil
		case <-c.Request().Context().Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteJSON(ev); err != nil {
				h.logger.Debug("alert stream write failed", xlogger.Error(err))
				return nil
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		}
	}
}
