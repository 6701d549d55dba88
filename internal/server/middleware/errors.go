package middleware

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	apperrors "github.com/3leaps/simpleindex/internal/errors"
)

// ErrorResponse is the JSON error envelope written by the middleware.
type ErrorResponse = apperrors.HTTPErrorResponse

// Recovery converts panics in downstream handlers into a 500 envelope. The
// panic value is logged, never returned to the client.
func Recovery(logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				requestID := r.Header.Get(apperrors.RequestIDHeader)
				logger.Error("handler panic",
					zap.Any("panic", rec),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("request_id", requestID),
					zap.Stack("stack"),
				)
				body := apperrors.ErrorBody{
					Code:      apperrors.CodeInternal,
					Message:   http.StatusText(http.StatusInternalServerError),
					RequestID: requestID,
				}
				writeErrorResponse(w, body, http.StatusInternalServerError)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func writeErrorResponse(w http.ResponseWriter, body apperrors.ErrorBody, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: body})
}
