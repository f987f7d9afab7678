// Package server exposes the add-on over HTTP: the host posts UI events to
// /addon/events, and the OAuth provider redirects to /oauth/callback.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v5"
	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"go.uber.org/zap"

	"mail2slack/pkg/addon"
	"mail2slack/pkg/auth"
	"mail2slack/pkg/cards"
	"mail2slack/pkg/config"
	"mail2slack/pkg/logger"
	"mail2slack/pkg/slackapi"
	"mail2slack/pkg/version"
)

// EventsPath receives add-on UI events.
const EventsPath = "/addon/events"

// Server is the add-on HTTP server.
type Server struct {
	config     *config.Config
	logger     *logger.Logger
	service    *addon.Service
	gate       *auth.Gate
	echo       *echo.Echo
	httpServer *http.Server
	startedAt  time.Time
}

// NewServer creates a new Server.
func NewServer(cfg *config.Config, log *logger.Logger, service *addon.Service, gate *auth.Gate) *Server {
	s := &Server{
		config:    cfg,
		logger:    log.Named("server"),
		service:   service,
		gate:      gate,
		startedAt: time.Now(),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	e := echo.New()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(s.accessLog)

	e.GET("/health", s.handleHealth)
	e.GET(config.CallbackPath, s.handleCallback)

	events := e.Group("/addon")
	if secret := s.config.Server.EventSecret; secret != "" {
		events.Use(echojwt.WithConfig(echojwt.Config{
			KeyFunc: func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method")
				}
				return []byte(secret), nil
			},
		}))
	}
	events.POST("/events", s.handleEvent)

	s.echo = e
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Addr is the listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
}

// Start listens in the background.
func (s *Server) Start() error {
	addr := s.Addr()
	s.logger.Info("HTTP server starting", zap.String("addr", addr))

	// Use http.Server directly so shutdown is driven by the fx lifecycle.
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.echo,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop gracefully stops the server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("HTTP server stopping")
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

func (s *Server) accessLog(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c *echo.Context) error {
		started := time.Now()
		err := next(c)

		fields := []zap.Field{
			zap.String("method", c.Request().Method),
			zap.String("path", c.Request().URL.Path),
			zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			zap.Duration("elapsed", time.Since(started)),
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}
		s.logger.Debug("HTTP request", fields...)
		return err
	}
}

// --- Handlers ---

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"version":        version.GetVersion(),
		"uptime_seconds": int64(time.Since(s.startedAt).Seconds()),
	})
}

func (s *Server) handleCallback(c *echo.Context) error {
	text := s.gate.CompleteCallback(c.Request().Context(), c.Request().URL.Query())
	return c.HTML(http.StatusOK, text)
}

func (s *Server) handleEvent(c *echo.Context) error {
	var ev addon.Event
	if err := c.Bind(&ev); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid event"})
	}
	if s.config.Server.EventSecret != "" {
		// With event auth on, the verified subject is the user.
		sub := tokenSubject(c)
		if ev.User != "" && ev.User != sub {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "user does not match token subject"})
		}
		ev.User = sub
	}

	resp, err := s.service.Dispatch(c.Request().Context(), ev)
	if err != nil {
		return s.handleDispatchError(c, ev, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleDispatchError(c *echo.Context, ev addon.Event, err error) error {
	var authErr *auth.AuthorizationRequiredError
	var apiErr *slackapi.APICallFailedError

	switch {
	case errors.As(err, &authErr):
		return c.JSON(http.StatusUnauthorized, cards.AuthorizationPrompt(authErr.URL, authErr.ResourceDisplayName))
	case errors.Is(err, addon.ErrUnknownAction), errors.Is(err, addon.ErrMissingUser):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.As(err, &apiErr):
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "API call failed"})
	default:
		s.logger.Error("Event failed", zap.String("action", ev.Action), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

// tokenSubject returns the bearer token's subject, empty when there is none.
func tokenSubject(c *echo.Context) string {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok || token == nil {
		return ""
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	sub, _ := claims["sub"].(string)
	return strings.TrimSpace(sub)
}
