// Package errors defines the JSON error envelope returned by the HTTP server
// and the mapping from domain errors to HTTP status codes.
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/3leaps/simpleindex/pkg/provider"
)

// RequestIDHeader carries the request correlation ID.
const RequestIDHeader = "X-Request-ID"

// Error codes used in envelopes.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeGatewayTimeout     = "GATEWAY_TIMEOUT"
	CodeInternal           = "INTERNAL_ERROR"
)

// ErrorBody is the payload of an error envelope.
type ErrorBody struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	RequestID string                 `json:"request_id,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// HTTPErrorResponse is the envelope: {"error": {...}}.
type HTTPErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// HTTPError is an error that already knows its HTTP status and code.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Details map[string]interface{}
	Err     error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// WithDetails returns a copy of e carrying details.
func (e *HTTPError) WithDetails(details map[string]interface{}) *HTTPError {
	cp := *e
	cp.Details = details
	return &cp
}

// New creates an HTTPError.
func New(status int, code, message string) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message}
}

// NotFound creates a 404 error.
func NotFound(message string) *HTTPError {
	return New(http.StatusNotFound, CodeNotFound, message)
}

// MethodNotAllowed creates a 405 error.
func MethodNotAllowed(message string) *HTTPError {
	return New(http.StatusMethodNotAllowed, CodeMethodNotAllowed, message)
}

// ServiceUnavailable creates a 503 error.
func ServiceUnavailable(message string) *HTTPError {
	return New(http.StatusServiceUnavailable, CodeServiceUnavailable, message)
}

// Classify maps err to an HTTP status and envelope code.
//
//   - *HTTPError: its own status and code
//   - missing object: 404
//   - throttled or unavailable store: 503
//   - any other store failure: 502
//   - deadline exceeded: 504
//   - anything else: 500
func Classify(err error) (int, string) {
	var httpErr *HTTPError
	if stderrors.As(err, &httpErr) {
		return httpErr.Status, httpErr.Code
	}

	switch {
	case provider.IsNotFound(err):
		return http.StatusNotFound, CodeNotFound
	case provider.IsThrottled(err), provider.IsProviderUnavailable(err):
		return http.StatusServiceUnavailable, provider.Code(err)
	}

	var provErr *provider.ProviderError
	if stderrors.As(err, &provErr) {
		return http.StatusBadGateway, provider.Code(err)
	}

	if stderrors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, CodeGatewayTimeout
	}
	return http.StatusInternalServerError, CodeInternal
}

// Envelope builds the response body for err. Internal errors get a generic
// message so details of unexpected failures are not exposed.
func Envelope(err error, requestID string) (int, HTTPErrorResponse) {
	status, code := Classify(err)

	body := ErrorBody{Code: code, RequestID: requestID}
	var httpErr *HTTPError
	switch {
	case stderrors.As(err, &httpErr):
		body.Message = httpErr.Message
		body.Details = httpErr.Details
	case status == http.StatusInternalServerError:
		body.Message = http.StatusText(status)
	default:
		body.Message = err.Error()
	}
	return status, HTTPErrorResponse{Error: body}
}

// RespondWithError writes the envelope for err.
func RespondWithError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := r.Header.Get(RequestIDHeader)
	status, resp := Envelope(err, requestID)
	WriteJSON(w, status, resp)
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
