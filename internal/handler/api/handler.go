package api

import (
	"errors"
	"strings"

	"PulseGateway/internal/usecase"
	xhttp "PulseGateway/pkg/http"
	xlogger "PulseGateway/pkg/logger"

	"github.com/labstack/echo/v4"
)

// HeaderClientID lets one browser tab identify itself; requests without it are keyed by IP.
const HeaderClientID = "X-Client-ID"

// Router registers every gateway handler on one Echo instance.
type Router struct {
	handlers []xhttp.Handler
}

func NewRouter(handlers ...xhttp.Handler) *Router {
	return &Router{handlers: handlers}
}

func (r *Router) RegisterRoutes(e *echo.Echo) {
	for _, h := range r.handlers {
		h.RegisterRoutes(e)
	}
}

func clientKey(c echo.Context) string {
	if id := strings.TrimSpace(c.Request().Header.Get(HeaderClientID)); id != "" {
		return id
	}
	return c.RealIP()
}

// viewErrorResponse maps a superseded request to 409 and anything else through AppErrorResponse.
func viewErrorResponse(c echo.Context, l *xlogger.Logger, view string, err error) error {
	if errors.Is(err, usecase.ErrSuperseded) {
		return xhttp.AppErrorResponse(c, xhttp.ConflictError("Superseded by a newer request"))
	}
	l.Error(view+" usecase error", xlogger.Error(err))
	return xhttp.AppErrorResponse(c, err)
}
