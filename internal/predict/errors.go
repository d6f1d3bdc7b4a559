// errors.go - Error taxonomy for one upload-predict-render cycle
package predict

import (
	"errors"
	"fmt"
)

// Kind classifies a cycle failure.
type Kind string

const (
	KindNoFileSelected       Kind = "NO_FILE_SELECTED"
	KindNetworkFailure       Kind = "NETWORK_FAILURE"
	KindResponseFormat       Kind = "RESPONSE_FORMAT_ERROR"
	KindUnknownResponseShape Kind = "UNKNOWN_RESPONSE_SHAPE"
)

// UnknownResponseMessage is shown when a response has neither prediction nor error.
const UnknownResponseMessage = "Unknown response format"

// Error is a typed cycle failure. Message is what the user sees after "Error: ".
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int
	Cause      error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Display returns the text rendered in the result area.
func (e *Error) Display() string {
	return "Error: " + e.Message
}

// NewNoFileSelectedError is raised before any network activity.
func NewNoFileSelectedError() *Error {
	return &Error{Kind: KindNoFileSelected, Message: "no file selected"}
}

// NewNetworkFailure wraps a non-success HTTP status. Message is the status text.
func NewNetworkFailure(statusCode int, statusText string) *Error {
	return &Error{Kind: KindNetworkFailure, Message: statusText, StatusCode: statusCode}
}

// NewTransportError wraps a request that never produced a response.
func NewTransportError(cause error) *Error {
	return &Error{Kind: KindNetworkFailure, Message: "Failed to reach prediction service", Cause: cause}
}

// NewResponseFormatError wraps an unparseable or incomplete body.
func NewResponseFormatError(message string, cause error) *Error {
	return &Error{Kind: KindResponseFormat, Message: message, Cause: cause}
}

// NewUnknownResponseShapeError is raised for valid JSON lacking prediction and error.
func NewUnknownResponseShapeError() *Error {
	return &Error{Kind: KindUnknownResponseShape, Message: UnknownResponseMessage}
}

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Kind == kind
}

// DisplayText maps any error to the result area text.
func DisplayText(err error) string {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Display()
	}
	return "Error: " + err.Error()
}
