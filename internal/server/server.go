// Package server exposes the assistant over HTTP with an Echo router,
// health and metrics endpoints, and context-aware graceful shutdown.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/codechat/internal/config"
	"github.com/fyrsmithlabs/codechat/internal/crm"
	"github.com/fyrsmithlabs/codechat/internal/index"
	"github.com/fyrsmithlabs/codechat/internal/orchestrator"
	"github.com/fyrsmithlabs/codechat/internal/retrieval"
	"github.com/fyrsmithlabs/codechat/internal/tasks"
)

// Backend is the application surface the HTTP layer delegates to.
type Backend interface {
	Ask(ctx context.Context, question string) *orchestrator.Answer
	Search(ctx context.Context, query string, maxResults int) []retrieval.SearchResult
	Reindex(ctx context.Context) (*index.Stats, error)
}

// Server is the HTTP front end.
type Server struct {
	cfg     config.ServerConfig
	backend Backend
	crm     *crm.Store
	tasks   *tasks.Store
	echo    *echo.Echo
	logger  *zap.Logger
}

// HealthResponse is the JSON body for GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// NewServer creates the HTTP server and registers all routes.
func NewServer(cfg config.ServerConfig, backend Backend, crmStore *crm.Store, taskStore *tasks.Store, logger *zap.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		cfg:     cfg,
		backend: backend,
		crm:     crmStore,
		tasks:   taskStore,
		echo:    e,
		logger:  logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := s.echo.Group("/api")
	api.POST("/ask", s.handleAsk)
	api.GET("/search", s.handleSearch)
	api.POST("/index", s.handleIndex)
	api.GET("/tickets", s.handleTickets)
	api.GET("/tasks", s.handleTasks)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok", Service: "codechat"})
}

type askRequest struct {
	Question string `json:"question"`
}

func (s *Server) handleAsk(c echo.Context) error {
	var req askRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Question == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "question is required"})
	}

	answer := s.backend.Ask(c.Request().Context(), req.Question)
	return c.JSON(http.StatusOK, answer)
}

type searchResponse struct {
	Query   string                   `json:"query"`
	Count   int                      `json:"count"`
	Results []retrieval.SearchResult `json:"results"`
}

func (s *Server) handleSearch(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "query parameter q is required"})
	}

	maxResults := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "limit must be a non-negative integer"})
		}
		maxResults = n
	}

	results := s.backend.Search(c.Request().Context(), query, maxResults)
	return c.JSON(http.StatusOK, searchResponse{Query: query, Count: len(results), Results: results})
}

func (s *Server) handleIndex(c echo.Context) error {
	stats, err := s.backend.Reindex(c.Request().Context())
	if err != nil {
		s.logger.Error("reindex failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, stats)
}

func (s *Server) handleTickets(c echo.Context) error {
	tickets, err := s.crm.SearchTickets(c.QueryParam("q"), c.QueryParam("user_id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{"count": len(tickets), "tickets": tickets})
}

func (s *Server) handleTasks(c echo.Context) error {
	list, err := s.tasks.List(tasks.Filter{
		Status:   c.QueryParam("status"),
		Priority: c.QueryParam("priority"),
		Assignee: c.QueryParam("assignee"),
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{"count": len(list), "tasks": list})
}

// Start runs the server until ctx is cancelled, then shuts down gracefully.
// Returns http.ErrServerClosed on clean shutdown.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)

	errCh := make(chan error, 1)
	go func() {
		if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("server start: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return http.ErrServerClosed
	}
}

// Echo exposes the router for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
