// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Sessions        SessionStore
	Version         string
	PredictEndpoint string
	FieldName       string
	StreamBufferKB  int
	// BaseContext bounds prediction cycles; cancel it on shutdown.
	BaseContext context.Context
}

// Handlers holds all handler instances
type Handlers struct {
	Health HealthHandler
	Page   PageHandler
	State  StateHandler
	Stream StateStreamHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health: NewHealthHandler(deps.Version, deps.Sessions, deps.PredictEndpoint),
		Page:   NewPageHandler(deps.Sessions, deps.FieldName, deps.BaseContext),
		State:  NewStateHandler(deps.Sessions),
		Stream: NewStateStreamHandler(deps.Sessions, deps.StreamBufferKB),
	}
}

// RegisterRoutes registers all routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	e.GET("/", handlers.Page.HandleIndex)

	apiGroup := e.Group("/api")
	apiGroup.GET("/health", handlers.Health.HandleHealth)
	apiGroup.POST("/submit", handlers.Page.HandleSubmit)
	apiGroup.GET("/state", handlers.State.HandleState)
	apiGroup.GET("/chart.svg", handlers.State.HandleChart)
	apiGroup.GET("/preview", handlers.State.HandlePreview)
	apiGroup.GET("/ws/state", handlers.Stream.HandleStateStream)
}

// SetupMiddleware configures the error handler and panic recovery
func SetupMiddleware(e *echo.Echo) {
	e.HTTPErrorHandler = ErrorHandler

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))
}
