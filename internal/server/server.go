package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

const shutdownTimeout = 10 * time.Second

// Config holds the HTTP server settings.
type Config struct {
	Addr        string
	UploadDir   string
	MaxUploadMB int
}

type Server struct {
	app    *fiber.App
	addr   string
	logger *slog.Logger
}

// New builds the fiber app and registers the routes.
func New(cfg Config, svc Answerer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 32
	}

	var (
		app = fiber.New(fiber.Config{
			ErrorHandler:          ErrorHandler,
			BodyLimit:             cfg.MaxUploadMB * 1024 * 1024,
			DisableStartupMessage: true,
		})
		handler = NewHandler(svc, cfg.UploadDir, logger)
		check   = app.Group("/check")
		apiv1   = app.Group("/api/v1")
	)

	app.Get("/", handler.HandleWelcome)
	check.Get("/healthy", handler.HandleHealthy)
	apiv1.Post("/upload", handler.HandleUpload)
	apiv1.Post("/question", handler.HandleQuestion)

	return &Server{app: app, addr: cfg.Addr, logger: logger}
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App { return s.app }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server started", "addr", s.addr)
		errCh <- s.app.Listen(s.addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}
