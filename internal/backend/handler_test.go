package backend

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leafscan/backend/internal/catalog"
	"github.com/leafscan/backend/internal/classifier"
	"github.com/leafscan/backend/internal/models"
	"github.com/leafscan/backend/internal/storage"
)

func leafPNG(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	h.Set("Content-Type", "application/octet-stream")
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

type fixedModel struct {
	labels []string
	scores []float64
}

func (m fixedModel) Labels() []string                              { return m.labels }
func (m fixedModel) Predict(*classifier.Tensor) ([]float64, error) { return m.scores, nil }

func newTestHandler(t *testing.T, model classifier.Model, keep bool) (*PredictHandlerImpl, *storage.LocalStore) {
	t.Helper()
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	if model == nil {
		model, err = classifier.NewCentroidModel(catalog.Default())
		require.NoError(t, err)
	}
	return NewPredictHandler(store, model, catalog.Default(), keep), store
}

func doPredict(t *testing.T, h *PredictHandlerImpl, body *bytes.Buffer, contentType string) (*httptest.ResponseRecorder, models.PredictionResponse) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/predict", body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, h.HandlePredict(c))

	var resp models.PredictionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestHandlePredict_Success(t *testing.T) {
	h, store := newTestHandler(t, nil, true)
	body, ct := multipartBody(t, "file", "leaf1.png", leafPNG(t, color.RGBA{R: 0x3c, G: 0x7a, B: 0x32, A: 255}))

	rec, resp := doPredict(t, h, body, ct)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Healthy", resp.Prediction)
	require.NotNil(t, resp.Details)
	assert.Equal(t, "The plant is in good health and does not require any treatment.", resp.Details.Impact)
	assert.Equal(t, catalog.Default().Labels(), resp.Labels)
	assert.Len(t, resp.ConfidenceLevels, 8)
	assert.Empty(t, resp.Error)

	files, _ := store.List(0)
	require.Len(t, files, 1)
	assert.Equal(t, "leaf1.png", files[0].Name)
	assert.Equal(t, "image/png", files[0].ContentType)
	assert.Equal(t, "classified", files[0].Status)
}

func TestHandlePredict_Errors(t *testing.T) {
	tests := []struct {
		name       string
		field      string
		filename   string
		data       []byte
		wantStatus int
		wantError  string
	}{
		{"missing field", "image", "leaf.png", []byte("x"), http.StatusBadRequest, "No file part"},
		{"empty filename", "file", "", []byte{}, http.StatusBadRequest, "No selected file"},
		{"not an image", "file", "notes.txt", []byte("hello"), http.StatusBadRequest, "Invalid image file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandler(t, nil, true)
			body, ct := multipartBody(t, tt.field, tt.filename, tt.data)

			rec, resp := doPredict(t, h, body, ct)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantError, resp.Error)
			assert.Empty(t, resp.Prediction)
		})
	}
}

func TestHandlePredict_NotMultipart(t *testing.T) {
	h, _ := newTestHandler(t, nil, true)

	rec, resp := doPredict(t, h, bytes.NewBufferString(`{"file":"x"}`), echo.MIMEApplicationJSON)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No file part", resp.Error)
}

func TestHandlePredict_LabelWithoutDetails(t *testing.T) {
	labels := catalog.Default().Labels()
	scores := make([]float64, len(labels))
	scores[2] = 1 // Cutting Weevil
	h, store := newTestHandler(t, fixedModel{labels: labels, scores: scores}, true)
	body, ct := multipartBody(t, "file", "weevil.png", leafPNG(t, color.White))

	rec, resp := doPredict(t, h, body, ct)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "No details available for Cutting Weevil", resp.Error)

	files, _ := store.List(0)
	require.Len(t, files, 1)
	assert.Equal(t, "error", files[0].Status)
}

func TestHandlePredict_DiscardsUploads(t *testing.T) {
	h, store := newTestHandler(t, nil, false)
	body, ct := multipartBody(t, "file", "leaf.png", leafPNG(t, color.Black))

	rec, _ := doPredict(t, h, body, ct)

	assert.Equal(t, http.StatusOK, rec.Code)
	files, _ := store.List(0)
	assert.Empty(t, files)
}

func TestHandleRecentUploads(t *testing.T) {
	h, store := newTestHandler(t, nil, true)
	_, err := store.Save("a.png", "image/png", bytes.NewReader([]byte("a")))
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/uploads/recent?limit=5", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if assert.NoError(t, h.HandleRecentUploads(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"name":"a.png"`)
	}

	req = httptest.NewRequest(http.MethodGet, "/uploads/recent?limit=zero", nil)
	c = e.NewContext(req, httptest.NewRecorder())
	assert.Error(t, h.HandleRecentUploads(c))
}

func TestHandleGetUpload(t *testing.T) {
	h, store := newTestHandler(t, nil, true)
	info, err := store.Save("a.png", "image/png", bytes.NewReader([]byte("png-bytes")))
	require.NoError(t, err)

	e := echo.New()
	RegisterRoutes(e, h)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/"+info.ID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "png-bytes", rec.Body.String())

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRegisterRoutes(t *testing.T) {
	h, _ := newTestHandler(t, nil, true)
	e := echo.New()
	RegisterRoutes(e, h)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	body, ct := multipartBody(t, "file", "leaf.png", leafPNG(t, color.White))
	req = httptest.NewRequest(http.MethodPost, "/predict", body)
	req.Header.Set(echo.HeaderContentType, ct)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"prediction":"Powdery Mildew"`)
}
