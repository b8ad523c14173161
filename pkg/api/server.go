// Package api serves the glucose REST endpoints on top of a reading store.
package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/slickwilli/neoview/pkg/store"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 1000
)

type Server struct {
	store        store.Store
	logger       *zap.Logger
	historyLimit int
	now          func() time.Time
	newID        func() string
}

type Option func(*Server)

// WithHistoryLimit sets the page size used when ?limit is absent.
func WithHistoryLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.historyLimit = n
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func NewServer(st store.Store, logger *zap.Logger, opts ...Option) *Server {
	s := &Server{
		store:        st,
		logger:       logger.Named("api"),
		historyLimit: DefaultHistoryLimit,
		now:          time.Now,
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewApp builds the fiber application with middleware and all routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "NeoView Glucose Monitor API",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(requestLogger(s.logger))
	s.InstallRouter(app)
	return app
}

func (s *Server) InstallRouter(app *fiber.App) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "NeoView Glucose Monitor API is running",
		})
	})

	api := app.Group("/api/glucose")
	api.Post("/", s.PostReading)
	api.Get("/latest", s.GetLatest)
	api.Get("/history", s.GetHistory)
	api.Get("/stats", s.GetStats)
	api.Delete("/clear", s.DeleteAll)
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	if code >= fiber.StatusInternalServerError {
		s.logger.Error("unhandled request error", zap.String("path", c.Path()), zap.Error(err))
	}
	return c.Status(code).JSON(fiber.Map{"detail": err.Error()})
}

func requestLogger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		if err := c.Next(); err != nil {
			if err := c.App().Config().ErrorHandler(c, err); err != nil {
				return err
			}
		}
		logger.Info(
			"request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
		)
		return nil
	}
}
