package web

import (
	"bytes"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leafscan/backend/internal/models"
	"github.com/leafscan/backend/internal/render"
)

func TestHasEmbeddedFiles(t *testing.T) {
	assert.True(t, HasEmbeddedFiles())

	staticFS, err := GetFileSystem()
	require.NoError(t, err)
	f, err := staticFS.Open("static/app.js")
	require.NoError(t, err)
	f.Close()
}

func TestRenderPage_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderPage(&buf, render.Page(models.UIState{}, "/api/chart.svg")))
	html := buf.String()

	for _, id := range []string{`id="upload-form"`, `id="file"`, `id="uploaded-image"`, `id="result"`, `id="disease-chart"`} {
		assert.Contains(t, html, id)
	}
	assert.Contains(t, html, `class="container"`)
	assert.Contains(t, html, `<button type="submit">`)
	assert.Contains(t, html, `<div id="result" style="display: none;">`)
	assert.NotContains(t, html, "alert-data")
	assert.NotContains(t, html, `id="pending"`)
}

func TestRenderPage_WithResult(t *testing.T) {
	state := models.UIState{
		Result: models.ResultPanel{
			Visible: true,
			Mode:    models.ResultModeReport,
			Report:  &models.Report{Prediction: "Healthy", Description: "fine"},
		},
		Preview:  models.PreviewImage{Visible: true, DataURL: "data:image/png;base64,AAAA"},
		Chart:    &models.ChartSpec{Labels: []string{"Healthy"}, Values: []float64{1}},
		Layout:   models.Layout{ContainerMinHeight: "auto", ContainerHeight: "auto"},
		Revision: 4,
	}

	var buf bytes.Buffer
	require.NoError(t, RenderPage(&buf, render.Page(state, "/api/chart.svg")))
	html := buf.String()

	assert.Contains(t, html, `style="min-height: auto; height: auto;"`)
	assert.Contains(t, html, "<h2>Predicted Disease: Healthy</h2>")
	assert.Contains(t, html, `src="data:image/png;base64,AAAA"`)
	assert.Contains(t, html, `src="/api/chart.svg?rev=4"`)
}

func TestRenderPage_Alert(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderPage(&buf, render.Page(models.UIState{Alert: models.NoFileAlert}, "/api/chart.svg")))
	assert.Contains(t, buf.String(), `"Please select a file to upload."`)
}

func TestRegisterStaticRoutes(t *testing.T) {
	e := echo.New()
	require.NoError(t, RegisterStaticRoutes(e))

	req := httptest.NewRequest(http.MethodGet, "/static/app.css", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".container")
}

func TestAppScript_ReportsSubmitFailures(t *testing.T) {
	staticFS, err := GetFileSystem()
	require.NoError(t, err)
	script, err := fs.ReadFile(staticFS, "static/app.js")
	require.NoError(t, err)

	js := string(script)
	assert.Contains(t, js, "/api/submit?view=page")
	assert.Contains(t, js, "if (!response.ok)")
	assert.Contains(t, js, "showError(response.statusText")
	assert.Contains(t, js, "response.json().then(apply)")
	assert.Contains(t, js, "'Error: ' + message")
}
