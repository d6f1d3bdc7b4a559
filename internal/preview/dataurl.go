// Package preview turns a selected file into a base64 data URL for local display.
package preview

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/leafscan/backend/internal/models"
)

// ErrNotDataURL is returned when decoding something that is not a base64 data URL.
var ErrNotDataURL = errors.New("not a base64 data URL")

// DataURL encodes the file as data:<mime>;base64,<payload>.
func DataURL(file *models.FileSelection) string {
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	var b strings.Builder
	b.Grow(len("data:;base64,") + len(contentType) + base64.StdEncoding.EncodedLen(len(file.Data)))
	b.WriteString("data:")
	b.WriteString(contentType)
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(file.Data))
	return b.String()
}

// Decode splits a data URL produced by DataURL back into MIME type and bytes.
func Decode(dataURL string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return "", nil, ErrNotDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrNotDataURL
	}
	contentType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, ErrNotDataURL
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decoding data URL payload: %w", err)
	}
	return contentType, data, nil
}
