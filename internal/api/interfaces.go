// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"github.com/labstack/echo/v4"

	"github.com/leafscan/backend/internal/session"
)

// PageHandler renders the upload page and runs submissions
type PageHandler interface {
	HandleIndex(c echo.Context) error
	HandleSubmit(c echo.Context) error
}

// StateHandler exposes the session UI state
type StateHandler interface {
	HandleState(c echo.Context) error
	HandleChart(c echo.Context) error
	HandlePreview(c echo.Context) error
}

// StateStreamHandler pushes UI state changes over WebSocket
type StateStreamHandler interface {
	HandleStateStream(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// SessionStore defines the interface for UI session lookup
// This allows mocking in tests
type SessionStore interface {
	GetOrCreate(id string) (*session.SessionState, bool)
	Touch(id string) (*session.SessionState, bool)
	Count() int
}
