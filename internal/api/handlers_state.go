// handlers_state.go - Session state, chart and preview handlers
package api

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/leafscan/backend/internal/preview"
	"github.com/leafscan/backend/internal/render"
)

// MIMEMsgpack is the content type of msgpack-encoded state.
const MIMEMsgpack = "application/msgpack"

// StateHandlerImpl implements the StateHandler interface
type StateHandlerImpl struct {
	sessions SessionStore
}

// NewStateHandler creates a new state handler
func NewStateHandler(sessions SessionStore) *StateHandlerImpl {
	return &StateHandlerImpl{sessions: sessions}
}

// HandleState returns the session UI state as JSON, or msgpack on request.
func (h *StateHandlerImpl) HandleState(c echo.Context) error {
	state := currentSession(c, h.sessions).Controller.State()
	c.Response().Header().Set("Cache-Control", "no-store")

	if strings.Contains(c.Request().Header.Get(echo.HeaderAccept), MIMEMsgpack) {
		data, err := msgpack.Marshal(state)
		if err != nil {
			return NewInternalError("failed to encode msgpack", err)
		}
		return c.Blob(http.StatusOK, MIMEMsgpack, data)
	}
	return c.JSON(http.StatusOK, state)
}

// HandleChart renders the current confidence chart as SVG, or PNG with ?format=png.
func (h *StateHandlerImpl) HandleChart(c echo.Context) error {
	spec := currentSession(c, h.sessions).Controller.State().Chart
	if spec == nil {
		return NewNotFoundError("chart")
	}

	var buf bytes.Buffer
	contentType := "image/svg+xml"
	var err error
	switch c.QueryParam("format") {
	case "", "svg":
		err = render.WriteSVG(spec, &buf)
	case "png":
		contentType = "image/png"
		err = render.WritePNG(spec, &buf)
	default:
		return NewBadRequestError("unsupported chart format", nil)
	}
	if err != nil {
		return NewInternalError("failed to render chart", err)
	}

	c.Response().Header().Set("Cache-Control", "no-store")
	return c.Blob(http.StatusOK, contentType, buf.Bytes())
}

// HandlePreview returns the decoded bytes of the preview image.
func (h *StateHandlerImpl) HandlePreview(c echo.Context) error {
	p := currentSession(c, h.sessions).Controller.State().Preview
	if !p.Visible || p.DataURL == "" {
		return NewNotFoundError("preview")
	}

	contentType, data, err := preview.Decode(p.DataURL)
	if err != nil {
		return NewInternalError("failed to decode preview", err)
	}
	return c.Blob(http.StatusOK, contentType, data)
}
