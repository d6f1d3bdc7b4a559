// Package web provides the embedded page template and static assets.
package web

import (
	"embed"
	"html/template"
	"io"
	"io/fs"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/leafscan/backend/internal/render"
)

//go:embed dist/*
var staticFiles embed.FS

var pageTemplate = template.Must(template.ParseFS(staticFiles, "dist/index.html"))

// GetFileSystem returns the embedded filesystem with the dist folder as root.
func GetFileSystem() (fs.FS, error) {
	return fs.Sub(staticFiles, "dist")
}

// RenderPage writes the upload page for v.
func RenderPage(w io.Writer, v render.PageView) error {
	return pageTemplate.ExecuteTemplate(w, "index.html", v)
}

// RegisterStaticRoutes serves /static/* from the embedded assets.
// The page itself is rendered by the API handlers.
func RegisterStaticRoutes(e *echo.Echo) error {
	staticFS, err := GetFileSystem()
	if err != nil {
		return err
	}

	fileServer := http.FileServer(http.FS(staticFS))
	e.GET("/static/*", echo.WrapHandler(fileServer))
	return nil
}

// HasEmbeddedFiles returns true if the page template and assets are embedded.
func HasEmbeddedFiles() bool {
	entries, err := staticFiles.ReadDir("dist")
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if entry.Name() == "index.html" {
			return true
		}
	}
	return false
}
