// Package backend serves the POST /predict endpoint the UI talks to.
package backend

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/leafscan/backend/internal/catalog"
	"github.com/leafscan/backend/internal/classifier"
	"github.com/leafscan/backend/internal/logging"
	"github.com/leafscan/backend/internal/models"
	"github.com/leafscan/backend/internal/storage"
)

// FieldName is the multipart field carrying the image.
const FieldName = "file"

// MaxImageBytes caps how much of an upload is read.
const MaxImageBytes = 32 << 20

// PredictHandler handles prediction requests
type PredictHandler interface {
	HandlePredict(c echo.Context) error
	HandleRecentUploads(c echo.Context) error
	HandleGetUpload(c echo.Context) error
}

// PredictHandlerImpl implements PredictHandler
type PredictHandlerImpl struct {
	store       storage.Store
	model       classifier.Model
	catalog     *catalog.Catalog
	keepUploads bool
}

// NewPredictHandler creates a new prediction handler
func NewPredictHandler(store storage.Store, model classifier.Model, cat *catalog.Catalog, keepUploads bool) *PredictHandlerImpl {
	return &PredictHandlerImpl{
		store:       store,
		model:       model,
		catalog:     cat,
		keepUploads: keepUploads,
	}
}

func errorJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, models.PredictionResponse{Error: msg})
}

// HandlePredict classifies the uploaded leaf image.
func (h *PredictHandlerImpl) HandlePredict(c echo.Context) error {
	fh, err := c.FormFile(FieldName)
	if err != nil {
		// A file input submitted with nothing chosen arrives as a plain value.
		if form := c.Request().MultipartForm; form != nil {
			if _, ok := form.Value[FieldName]; ok {
				return errorJSON(c, http.StatusBadRequest, "No selected file")
			}
		}
		return errorJSON(c, http.StatusBadRequest, "No file part")
	}
	if fh.Filename == "" {
		return errorJSON(c, http.StatusBadRequest, "No selected file")
	}

	src, err := fh.Open()
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Failed to read uploaded file")
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, MaxImageBytes+1))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Failed to read uploaded file")
	}
	if len(data) > MaxImageBytes {
		return errorJSON(c, http.StatusRequestEntityTooLarge, "File too large")
	}

	contentType := models.DetectContentType(fh.Filename, data)
	info, err := h.store.Save(fh.Filename, contentType, bytes.NewReader(data))
	if err != nil {
		logging.Errorf("[Predict] failed to save %s: %v", fh.Filename, err)
		return errorJSON(c, http.StatusInternalServerError, "Failed to save uploaded file")
	}
	log := logging.Component("Predict", info.ID)
	if !h.keepUploads {
		defer h.store.Delete(info.ID)
	}

	resp, status, err := h.predict(data)
	if err != nil {
		log.Warnf("%s: %v", fh.Filename, err)
		h.store.SetStatus(info.ID, "error")
		return errorJSON(c, status, resp.Error)
	}

	log.Infof("%s (%d bytes) -> %s", fh.Filename, info.Size, resp.Prediction)
	h.store.SetStatus(info.ID, "classified")
	return c.JSON(http.StatusOK, resp)
}

// predict returns the response body and, on failure, the HTTP status.
func (h *PredictHandlerImpl) predict(data []byte) (*models.PredictionResponse, int, error) {
	defer logging.TimeTrack(time.Now(), "classify")

	res, err := classifier.Classify(h.model, data)
	if err != nil {
		if errors.Is(err, classifier.ErrInvalidImage) {
			return &models.PredictionResponse{Error: "Invalid image file"}, http.StatusBadRequest, err
		}
		return &models.PredictionResponse{Error: "Prediction failed"}, http.StatusInternalServerError, err
	}

	details, err := h.catalog.Details(res.Label)
	if err != nil {
		msg := fmt.Sprintf("No details available for %s", res.Label)
		return &models.PredictionResponse{Error: msg}, http.StatusInternalServerError, err
	}

	return &models.PredictionResponse{
		Prediction:       res.Label,
		Details:          details,
		Labels:           res.Labels,
		ConfidenceLevels: res.Scores,
	}, http.StatusOK, nil
}

// HandleRecentUploads lists the latest stored uploads.
func (h *PredictHandlerImpl) HandleRecentUploads(c echo.Context) error {
	limit := 20
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		limit = n
	}
	files, err := h.store.List(limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, files)
}

// HandleGetUpload streams a stored upload back.
func (h *PredictHandlerImpl) HandleGetUpload(c echo.Context) error {
	id := c.Param("id")
	info, err := h.store.Get(id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "upload not found")
	}
	rc, err := h.store.Open(id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "upload not found")
	}
	defer rc.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	return c.Stream(http.StatusOK, contentType, rc)
}

// RegisterRoutes registers the backend routes with the Echo instance
func RegisterRoutes(e *echo.Echo, h PredictHandler) {
	e.POST("/predict", h.HandlePredict)
	e.GET("/uploads/recent", h.HandleRecentUploads)
	e.GET("/uploads/:id", h.HandleGetUpload)
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}
