// Package predict uploads a selected file to the prediction backend and decodes
// its answer.
package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/leafscan/backend/internal/models"
)

// DefaultFieldName is the multipart field carrying the file.
const DefaultFieldName = "file"

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 8 << 20

// Client posts files to a fixed prediction endpoint.
type Client struct {
	Endpoint   string
	FieldName  string
	HTTPClient *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithTimeout sets the HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.HTTPClient.Timeout = d }
}

// WithFieldName overrides the multipart field name.
func WithFieldName(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.FieldName = name
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.HTTPClient = hc
		}
	}
}

// NewClient creates a client for the given endpoint URL.
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		Endpoint:  endpoint,
		FieldName: DefaultFieldName,
		HTTPClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BuildPayload encodes the file as multipart form data under fieldName and
// returns the body with its content type.
func BuildPayload(fieldName string, file *models.FileSelection) (*bytes.Buffer, string, error) {
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		escapeQuotes(fieldName), escapeQuotes(file.Name)))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)

	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("creating form part: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, "", fmt.Errorf("writing form part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart writer: %w", err)
	}
	return body, writer.FormDataContentType(), nil
}

// Predict issues exactly one POST with the file and decodes the JSON answer.
// A returned response may still carry an Error field; interpreting the shape
// is left to the caller.
func (c *Client) Predict(ctx context.Context, file *models.FileSelection) (*models.PredictionResponse, error) {
	if file.Empty() {
		return nil, NewNoFileSelectedError()
	}

	body, contentType, err := BuildPayload(c.FieldName, file)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, NewTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, NewNetworkFailure(resp.StatusCode, StatusText(resp))
	}

	return DecodeResponse(io.LimitReader(resp.Body, maxResponseBytes))
}

// DecodeResponse parses a prediction body. The body must hold exactly one
// JSON value; trailing content is a format error.
func DecodeResponse(r io.Reader) (*models.PredictionResponse, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, NewTransportError(err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, NewResponseFormatError("Unexpected end of JSON input", io.ErrUnexpectedEOF)
	}

	var out models.PredictionResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, NewResponseFormatError(err.Error(), err)
	}
	return &out, nil
}

// StatusText returns the reason phrase the server sent, falling back to the
// canonical text for the code, e.g. "Internal Server Error".
func StatusText(resp *http.Response) string {
	code := strconv.Itoa(resp.StatusCode)
	if text := strings.TrimSpace(strings.TrimPrefix(resp.Status, code)); text != "" {
		return text
	}
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return code
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
