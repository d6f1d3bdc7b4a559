package models

import (
	"net/http"
	"path/filepath"
	"strings"
)

// FileSelection is the single file a user picked in the upload form.
type FileSelection struct {
	Name        string
	ContentType string
	Data        []byte
}

// NewFileSelection builds a selection, sniffing the MIME type when the caller
// does not know it.
func NewFileSelection(name, contentType string, data []byte) *FileSelection {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = DetectContentType(name, data)
	}
	return &FileSelection{
		Name:        name,
		ContentType: contentType,
		Data:        data,
	}
}

// Empty reports whether nothing was chosen. A chosen file may still be zero bytes.
func (f *FileSelection) Empty() bool {
	return f == nil || f.Name == ""
}

// DetectContentType guesses a MIME type from the content, falling back to the
// file extension for types net/http does not sniff.
func DetectContentType(name string, data []byte) string {
	if len(data) > 0 {
		if ct := http.DetectContentType(data); ct != "application/octet-stream" {
			return ct
		}
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".bmp":
		return "image/bmp"
	}
	return "application/octet-stream"
}
