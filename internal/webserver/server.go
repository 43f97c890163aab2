// Package webserver hosts the HTTP API: an Echo instance with a public
// group, a JWT-protected group and an admin group carrying the role check.
// Handler packages register routes through the package-level Api/Admin
// helpers, mirroring how the rest of the codebase reaches the server.
package webserver

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/openmallhq/openmall/config"
	"github.com/openmallhq/openmall/pkg/metrics"
)

var server *WebServer

type WebServer struct {
	cfg   *config.AppConfig
	db    *gorm.DB
	root  *echo.Echo
	pub   *echo.Group
	api   *echo.Group
	admin *echo.Group
}

// Init builds the package server instance. Must be called before any route
// registration.
func Init(cfg *config.AppConfig, db *gorm.DB) *WebServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(injectDB(db))
	e.Use(requestStats())

	s := &WebServer{
		cfg:   cfg,
		db:    db,
		root:  e,
		pub:   e.Group("/api"),
		api:   e.Group("/api", jwtMiddleware(cfg.Web.Secret)),
		admin: e.Group("/api/admin", jwtMiddleware(cfg.Web.Secret), adminOnly),
	}
	server = s
	return s
}

// Start listens until the context is cancelled.
func (s *WebServer) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Web.Host, s.cfg.Web.Port)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.root.Shutdown(shutdownCtx)
	}()
	zap.L().Info("web server listening", zap.String("addr", addr))
	return s.root.Start(addr)
}

// Handler exposes the root handler for tests.
func (s *WebServer) Handler() *echo.Echo { return s.root }

func injectDB(db *gorm.DB) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("db", db)
			return next(c)
		}
	}
}

func requestStats() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			metrics.IncrCounter("http_requests", 1)
			if c.Response().Status >= 500 {
				metrics.IncrCounter("http_errors", 1)
			}
			latency := time.Since(start)
			if latency > time.Second {
				zap.L().Warn("slow request",
					zap.String("method", c.Request().Method),
					zap.String("path", c.Path()),
					zap.Duration("latency", latency))
			}
			return err
		}
	}
}

// GetDB returns the request-scoped database handle.
func GetDB(c echo.Context) *gorm.DB {
	return c.Get("db").(*gorm.DB)
}

// Public routes, no credential required.

func PubGET(path string, h echo.HandlerFunc)  { server.pub.GET(path, h) }
func PubPOST(path string, h echo.HandlerFunc) { server.pub.POST(path, h) }

// Authenticated routes.

func ApiGET(path string, h echo.HandlerFunc)    { server.api.GET(path, h) }
func ApiPOST(path string, h echo.HandlerFunc)   { server.api.POST(path, h) }
func ApiPUT(path string, h echo.HandlerFunc)    { server.api.PUT(path, h) }
func ApiDELETE(path string, h echo.HandlerFunc) { server.api.DELETE(path, h) }

// Admin routes, credential plus admin role claim.

func AdminGET(path string, h echo.HandlerFunc)    { server.admin.GET(path, h) }
func AdminPOST(path string, h echo.HandlerFunc)   { server.admin.POST(path, h) }
func AdminPUT(path string, h echo.HandlerFunc)    { server.admin.PUT(path, h) }
func AdminDELETE(path string, h echo.HandlerFunc) { server.admin.DELETE(path, h) }
