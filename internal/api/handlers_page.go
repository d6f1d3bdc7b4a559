// handlers_page.go - Upload page and submission handlers
package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/leafscan/backend/internal/controller"
	"github.com/leafscan/backend/internal/logging"
	"github.com/leafscan/backend/internal/models"
	"github.com/leafscan/backend/internal/predict"
	"github.com/leafscan/backend/internal/render"
	"github.com/leafscan/backend/internal/web"
)

// ChartPath is where the current chart image is served.
const ChartPath = "/api/chart.svg"

// PageHandlerImpl implements the PageHandler interface
type PageHandlerImpl struct {
	sessions  SessionStore
	fieldName string
	baseCtx   context.Context
}

// NewPageHandler creates a new page handler. Cycles run under baseCtx so a
// dropped request does not abort a prediction other tabs are waiting on.
func NewPageHandler(sessions SessionStore, fieldName string, baseCtx context.Context) *PageHandlerImpl {
	if fieldName == "" {
		fieldName = predict.DefaultFieldName
	}
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	return &PageHandlerImpl{
		sessions:  sessions,
		fieldName: fieldName,
		baseCtx:   baseCtx,
	}
}

// HandleIndex renders the page from the session state.
func (h *PageHandlerImpl) HandleIndex(c echo.Context) error {
	s := currentSession(c, h.sessions)
	state := s.Controller.State()

	var buf bytes.Buffer
	if err := web.RenderPage(&buf, render.Page(state, ChartPath)); err != nil {
		return NewInternalError("failed to render page", err)
	}
	if state.Alert != "" {
		s.Controller.DismissAlert()
	}

	c.Response().Header().Set("Cache-Control", "no-store")
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

// HandleSubmit runs one upload-predict-render cycle and waits for both tasks.
// Form posts are answered with 303 back to the page; JSON clients get the
// state, or the rendered page view with ?view=page.
func (h *PageHandlerImpl) HandleSubmit(c echo.Context) error {
	s := currentSession(c, h.sessions)

	file, err := readFileSelection(c, h.fieldName)
	if err != nil {
		return NewBadRequestError("failed to read uploaded file", err)
	}

	cycle, err := s.Controller.Submit(h.baseCtx, file)
	switch {
	case errors.Is(err, controller.ErrClosed):
		return NewServiceUnavailableError("session closed, reload the page")
	case predict.IsKind(err, predict.KindNoFileSelected):
		// The alert is part of the state.
	case err != nil:
		return NewInternalError("failed to start prediction", err)
	default:
		if err := cycle.Wait(c.Request().Context()); err != nil {
			logging.Component("Submit", cycle.ID).Debugf("client left before the cycle settled: %v", err)
			return nil
		}
	}

	if wantsJSON(c) {
		state := s.Controller.State()
		if state.Alert != "" {
			s.Controller.DismissAlert()
		}
		if c.QueryParam("view") == "page" {
			return c.JSON(http.StatusOK, render.Page(state, ChartPath))
		}
		return c.JSON(http.StatusOK, state)
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

// readFileSelection returns nil when the form carries no chosen file.
func readFileSelection(c echo.Context, field string) (*models.FileSelection, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}
	if fh.Filename == "" {
		return nil, nil
	}

	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	return models.NewFileSelection(fh.Filename, fh.Header.Get(echo.HeaderContentType), data), nil
}

func wantsJSON(c echo.Context) bool {
	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}
