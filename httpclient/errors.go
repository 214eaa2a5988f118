package httpclient

import (
	"errors"
	"fmt"
	"time"
)

// ClientError represents the different failure categories of the client.
type ClientError interface {
	error
	Type() ErrorType
}

// ErrorType defines the category of client error.
type ErrorType string

const (
	// NetworkError covers transport-level connectivity failures.
	NetworkError ErrorType = "network"
	// TimeoutError covers per-attempt timeout expiry.
	TimeoutError ErrorType = "timeout"
	// HTTPError covers responses with a non-success status code.
	HTTPError ErrorType = "http"
	// InvalidRequestError covers malformed requests: conflicting body
	// options, unresolvable URLs, bad credentials.
	InvalidRequestError ErrorType = "invalid_request"
	// InvalidAuthKindError covers unrecognized auth scheme tags.
	InvalidAuthKindError ErrorType = "invalid_auth_kind"
	// FileNotFoundError covers missing local files on upload.
	FileNotFoundError ErrorType = "file_not_found"
	// ResponseParseError covers body decode failures in ParseResponse.
	ResponseParseError ErrorType = "response_parse"
)

type networkError struct {
	message string
	wrapped error
}

func (e *networkError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("network error: %s: %v", e.message, e.wrapped)
	}
	return fmt.Sprintf("network error: %s", e.message)
}

func (e *networkError) Type() ErrorType { return NetworkError }

func (e *networkError) Unwrap() error { return e.wrapped }

type timeoutError struct {
	message string
	timeout time.Duration
}

func (e *timeoutError) Error() string {
	return fmt.Sprintf("timeout error: %s (timeout: %v)", e.message, e.timeout)
}

func (e *timeoutError) Type() ErrorType { return TimeoutError }

type httpError struct {
	message    string
	statusCode int
	body       []byte
}

func (e *httpError) Error() string {
	return fmt.Sprintf("HTTP error: %s (status: %d)", e.message, e.statusCode)
}

func (e *httpError) Type() ErrorType { return HTTPError }

// StatusCode returns the response status that produced the error.
func (e *httpError) StatusCode() int { return e.statusCode }

// Body returns the raw response body captured with the error.
func (e *httpError) Body() []byte { return e.body }

type invalidRequestError struct {
	message string
	field   string
}

func (e *invalidRequestError) Error() string {
	if e.field != "" {
		return fmt.Sprintf("invalid request: %s (field: %s)", e.message, e.field)
	}
	return fmt.Sprintf("invalid request: %s", e.message)
}

func (e *invalidRequestError) Type() ErrorType { return InvalidRequestError }

type invalidAuthKindError struct {
	kind string
}

func (e *invalidAuthKindError) Error() string {
	return fmt.Sprintf("invalid auth kind: %q (must be one of: none, bearer, api_key, basic)", e.kind)
}

func (e *invalidAuthKindError) Type() ErrorType { return InvalidAuthKindError }

type fileNotFoundError struct {
	path    string
	wrapped error
}

func (e *fileNotFoundError) Error() string {
	return fmt.Sprintf("file not found: %s", e.path)
}

func (e *fileNotFoundError) Type() ErrorType { return FileNotFoundError }

func (e *fileNotFoundError) Unwrap() error { return e.wrapped }

type responseParseError struct {
	message string
	wrapped error
}

func (e *responseParseError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("response parse error: %s: %v", e.message, e.wrapped)
	}
	return fmt.Sprintf("response parse error: %s", e.message)
}

func (e *responseParseError) Type() ErrorType { return ResponseParseError }

func (e *responseParseError) Unwrap() error { return e.wrapped }

// NewNetworkError creates a new network error.
func NewNetworkError(message string, wrapped error) ClientError {
	return &networkError{message: message, wrapped: wrapped}
}

// NewTimeoutError creates a new timeout error.
func NewTimeoutError(message string, timeout time.Duration) ClientError {
	return &timeoutError{message: message, timeout: timeout}
}

// NewHTTPError creates a new HTTP status error.
func NewHTTPError(message string, statusCode int, body []byte) ClientError {
	return &httpError{message: message, statusCode: statusCode, body: body}
}

// NewInvalidRequestError creates a new invalid request error.
func NewInvalidRequestError(message, field string) ClientError {
	return &invalidRequestError{message: message, field: field}
}

// NewInvalidAuthKindError creates an error for an unrecognized auth kind.
func NewInvalidAuthKindError(kind string) ClientError {
	return &invalidAuthKindError{kind: kind}
}

// NewFileNotFoundError creates an error for a missing local file.
func NewFileNotFoundError(path string, wrapped error) ClientError {
	return &fileNotFoundError{path: path, wrapped: wrapped}
}

// NewResponseParseError creates a new response parse error.
func NewResponseParseError(message string, wrapped error) ClientError {
	return &responseParseError{message: message, wrapped: wrapped}
}

// IsErrorType checks whether err belongs to a specific error category.
func IsErrorType(err error, errorType ErrorType) bool {
	if err == nil {
		return false
	}
	var clientErr ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type() == errorType
	}
	return false
}

// IsHTTPStatusError checks whether err is an HTTP error with the given status.
func IsHTTPStatusError(err error, statusCode int) bool {
	var he *httpError
	if errors.As(err, &he) {
		return he.StatusCode() == statusCode
	}
	return false
}

// IsSuccessStatus reports whether a status code is in the 2xx range.
func IsSuccessStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
