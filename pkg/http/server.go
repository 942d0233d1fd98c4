package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"PulseGateway/pkg/http/middleware"
	applogger "PulseGateway/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ServerOption func(*serverConfig)

type serverConfig struct {
	addr          string
	readTimeout   time.Duration
	writeTimeout  time.Duration
	cors          bool
	metricsPath   string
	slowThreshold time.Duration
	probes        map[string]echo.HandlerFunc
	log           *applogger.Logger
}

func WithPort(port int) ServerOption {
	return func(c *serverConfig) { c.addr = fmt.Sprintf(":%d", port) }
}

func WithCORS(enabled bool) ServerOption {
	return func(c *serverConfig) { c.cors = enabled }
}

func WithLogger(l *applogger.Logger) ServerOption {
	return func(c *serverConfig) { c.log = l }
}

// WithTimeouts sets the read and write deadlines. Shutdown is bounded by
// the context passed to Stop.
func WithTimeouts(read, write time.Duration) ServerOption {
	return func(c *serverConfig) {
		c.readTimeout = read
		c.writeTimeout = write
	}
}

// WithMetricsPath mounts the Prometheus handler; "" disables request metrics too.
func WithMetricsPath(path string) ServerOption {
	return func(c *serverConfig) { c.metricsPath = path }
}

// WithSlowThreshold logs requests slower than d at warn level.
func WithSlowThreshold(d time.Duration) ServerOption {
	return func(c *serverConfig) { c.slowThreshold = d }
}

// WithProbe mounts a GET handler outside the API groups, e.g. /readyz.
func WithProbe(path string, h echo.HandlerFunc) ServerOption {
	return func(c *serverConfig) { c.probes[path] = h }
}

// Server is the Echo instance serving the gateway routes and probes.
type Server struct {
	e   *echo.Echo
	cfg serverConfig
}

func NewServer(routes Handler, opts ...ServerOption) *Server {
	cfg := serverConfig{
		addr:         ":8080",
		readTimeout:  10 * time.Second,
		writeTimeout: 30 * time.Second,
		cors:         true,
		metricsPath:  "/metrics",
		probes:       map[string]echo.HandlerFunc{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.log == nil {
		cfg.log = applogger.NewNop()
	}

	e := echo.New()
	e.HideBanner, e.HidePort = true, true
	e.Server.ReadTimeout = cfg.readTimeout
	e.Server.WriteTimeout = cfg.writeTimeout

	e.Use(middleware.Recover(cfg.log), middleware.RequestLogging(cfg.log))
	if cfg.metricsPath != "" {
		e.Use(middleware.Metrics(cfg.log, cfg.slowThreshold))
		e.GET(cfg.metricsPath, echo.WrapHandler(promhttp.Handler()))
	}
	if cfg.cors {
		e.Use(middleware.CORS(middleware.CORSConfig{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "X-Client-ID"},
		}))
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	for path, h := range cfg.probes {
		e.GET(path, h)
	}
	if routes != nil {
		routes.RegisterRoutes(e)
	}
	return &Server{e: e, cfg: cfg}
}

// Start binds the listener, so a port clash is returned here, then serves in
// the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.addr, err)
	}
	s.e.Listener = ln

	go func() {
		s.cfg.log.Info("http server listening", applogger.String("addr", ln.Addr().String()))
		if err := s.e.Start(""); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.cfg.log.Error("http server stopped unexpectedly", applogger.Error(err))
		}
	}()
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if err := s.e.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	s.cfg.log.Info("http server stopped")
	return nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.e.ServeHTTP(w, r) }
