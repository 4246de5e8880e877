// Package server exposes score resolution and liftover over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
	"go.uber.org/zap"

	"github.com/inodb/spliceai-lookup/internal/liftover"
	"github.com/inodb/spliceai-lookup/internal/resolve"
)

// ScoreResolver resolves a variant identifier to scores.
type ScoreResolver interface {
	Resolve(ctx context.Context, variantText, genomeVersion string, distance, mask int) *resolve.Result
}

// Lifter runs liftover requests.
type Lifter interface {
	Liftover(ctx context.Context, req liftover.Request) (*liftover.Result, error)
}

// Config holds server settings.
type Config struct {
	// MaxDistance is the largest accepted scoring distance.
	MaxDistance int
	// QuietRemoteAddrs are client addresses whose requests are not logged,
	// typically uptime checkers.
	QuietRemoteAddrs []string
	// Version is reported by the service description.
	Version string
}

// DefaultMaxDistance is the default limit on the scoring distance.
const DefaultMaxDistance = 10000

// Server is the HTTP front end.
type Server struct {
	echo     *echo.Echo
	resolver ScoreResolver
	lifter   Lifter
	cfg      Config
	quiet    map[string]bool
	logger   *zap.Logger
}

const loggerKey = "logger"

// New creates a server and registers its routes.
func New(r ScoreResolver, l Lifter, cfg Config) *Server {
	if cfg.MaxDistance <= 0 {
		cfg.MaxDistance = DefaultMaxDistance
	}

	s := &Server{
		echo:     echo.New(),
		resolver: r,
		lifter:   l,
		cfg:      cfg,
		quiet:    make(map[string]bool),
		logger:   zap.NewNop(),
	}
	for _, addr := range cfg.QuietRemoteAddrs {
		s.quiet[addr] = true
	}

	e := s.echo
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.Secure())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.POST},
	}))
	e.Use(s.requestLogging)

	methods := []string{echo.GET, echo.POST}
	e.GET("/", s.serviceInfo)
	e.Match(methods, "/spliceai", s.spliceAI)
	e.Match(methods, "/spliceai/", s.spliceAI)
	e.Match(methods, "/liftover", s.liftover)
	e.Match(methods, "/liftover/", s.liftover)

	return s
}

// SetLogger sets the request logger.
func (s *Server) SetLogger(l *zap.Logger) {
	s.logger = l
}

// Handler returns the HTTP handler serving all routes.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr and serves until Shutdown. It returns
// http.ErrServerClosed after a clean shutdown.
func (s *Server) Start(addr string) error {
	s.logger.Info("listening", zap.String("address", addr))
	return s.echo.Start(addr)
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// requestLogging tags each request with an ID and logs its outcome.
// Handlers log through requestLogger so quiet clients stay silent.
func (s *Server) requestLogging(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := uuid.New().String()
		c.Response().Header().Set(echo.HeaderXRequestID, id)

		remote := c.RealIP()
		logger := zap.NewNop()
		if !s.quiet[remote] {
			logger = s.logger.With(
				zap.String("request_id", id),
				zap.String("remote_addr", remote))
		}
		c.Set(loggerKey, logger)

		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}

		logger.Info("request",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Request().URL.Path),
			zap.Int("status", c.Response().Status),
			zap.Duration("elapsed", time.Since(start)))
		return nil
	}
}

func requestLogger(c echo.Context) *zap.Logger {
	if l, ok := c.Get(loggerKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

func errorJSON(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
}

func (s *Server) serviceInfo(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"name":        "spliceai-lookup",
		"description": "SpliceAI delta scores from precomputed files or the model, and hg19/hg38 liftover",
		"version":     s.cfg.Version,
		"endpoints": map[string]interface{}{
			"/spliceai/": map[string]interface{}{
				"params":  []string{"variant", "hg", "distance", "mask"},
				"example": spliceAIExample,
			},
			"/liftover/": map[string]interface{}{
				"params":  []string{"hg", "format", "chrom", "start", "end", "pos", "ref", "alt"},
				"example": liftoverExample,
			},
		},
	})
}
