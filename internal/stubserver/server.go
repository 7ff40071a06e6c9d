// Package stubserver serves an in-memory copy of the admin backend's News
// resource for local development and tests.
package stubserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Adda-Baaj/newsdesk/internal/logger"
)

const newsPath = "/News/"

type createRequest struct {
	Title        string `json:"title"`
	NewsContent  string `json:"news_content"`
	NewsImageURL string `json:"news_image_url"`
}

// Server wires the Store to echo routes.
type Server struct {
	store *Store
	log   logger.Logger
	e     *echo.Echo
}

func New(store *Store, log logger.Logger) *Server {
	if store == nil {
		store = NewStore(nil)
	}
	if log == nil {
		log = logger.NopLogger{}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{store: store, log: log, e: e}
	e.Use(middleware.Recover())
	e.Use(s.requestLog)
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	for _, p := range []string{newsPath, strings.TrimSuffix(newsPath, "/")} {
		s.e.GET(p, s.list)
		s.e.POST(p, s.create)
		s.e.PUT(p, s.update)
		s.e.DELETE(p, s.delete)
	}
	s.e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}

// Handler exposes the routes, mainly for httptest.
func (s *Server) Handler() http.Handler { return s.e }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.InfoObj("stub server listening", "stub_server", map[string]any{"addr": addr})
		errCh <- s.e.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.e.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	}
}

func (s *Server) list(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.List())
}

func (s *Server) create(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return s.handleError(c, err, http.StatusBadRequest, "invalid request body")
	}
	if req.Title == "" || req.NewsContent == "" {
		return s.handleError(c, nil, http.StatusUnprocessableEntity, "title and news_content are required")
	}

	item, err := s.store.Create(req.Title, req.NewsContent, req.NewsImageURL)
	if errors.Is(err, ErrNewsExists) {
		return s.handleError(c, err, http.StatusConflict, "news with this title already exists")
	}
	if err != nil {
		return s.handleError(c, err, http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusCreated, item)
}

func (s *Server) update(c echo.Context) error {
	title := c.QueryParam("title")
	content := c.QueryParam("news_content")
	if title == "" || content == "" {
		return s.handleError(c, nil, http.StatusUnprocessableEntity, "title and news_content are required")
	}

	item, err := s.store.Update(title, content)
	if errors.Is(err, ErrNewsNotFound) {
		return s.handleError(c, err, http.StatusNotFound, "news not found")
	}
	if err != nil {
		return s.handleError(c, err, http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, item)
}

func (s *Server) delete(c echo.Context) error {
	title := c.QueryParam("title")
	if title == "" {
		return s.handleError(c, nil, http.StatusUnprocessableEntity, "title is required")
	}

	if err := s.store.Delete(title); errors.Is(err, ErrNewsNotFound) {
		return s.handleError(c, err, http.StatusNotFound, "news not found")
	} else if err != nil {
		return s.handleError(c, err, http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "news deleted"})
}

func (s *Server) handleError(c echo.Context, err error, status int, message string) error {
	fields := map[string]any{
		"status":  status,
		"message": message,
		"path":    c.Request().URL.Path,
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	s.log.WarnObj("stub request rejected", "stub_error", fields)
	return c.JSON(status, map[string]string{"error": message})
}

func (s *Server) requestLog(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}
		s.log.DebugObj("stub request", "stub_request", map[string]any{
			"method":      c.Request().Method,
			"path":        c.Request().URL.Path,
			"status":      c.Response().Status,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}
}
