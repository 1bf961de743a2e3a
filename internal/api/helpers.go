package api

import (
	"encoding/json"
	"net/http"

	"github.com/livp123/netxconf/pkg/errors"
)

// ErrorCode is the machine-readable part of an error response.
type ErrorCode string

const (
	ErrCodeInvalidRequest ErrorCode = "invalid_request"
	ErrCodeNotFound       ErrorCode = "not_found"
	ErrCodeUnauthorized   ErrorCode = "unauthorized"
	ErrCodeUnavailable    ErrorCode = "unavailable"
	ErrCodeInternalError  ErrorCode = "internal_error"
)

// APIError is the body of every non-2xx JSON response.
// APIError 是所有非 2xx JSON 响应的主体。
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// ErrorResponse wraps an APIError.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// DataResponse wraps successful payloads.
type DataResponse struct {
	Data any `json:"data"`
}

// writeJSON writes data wrapped in DataResponse.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(DataResponse{Data: data})
}

func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(text))
}

func writeAPIError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: APIError{Code: code, Message: message}})
}

// writeError maps err onto a status code by its sentinel.
// writeError 根据错误类型映射 HTTP 状态码。
func writeError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	writeAPIError(w, status, code, message)
}

func classify(err error) (int, ErrorCode) {
	switch {
	case errors.Is(err, errors.ErrNotFound):
		return http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, errors.ErrFormat),
		errors.Is(err, errors.ErrDuplicateTable),
		errors.Is(err, errors.ErrInvalidQuery),
		errors.Is(err, errors.ErrInvalidKey):
		return http.StatusBadRequest, ErrCodeInvalidRequest
	case errors.Is(err, errors.ErrUnauthorized), errors.Is(err, errors.ErrTokenExpired):
		return http.StatusUnauthorized, ErrCodeUnauthorized
	default:
		return http.StatusInternalServerError, ErrCodeInternalError
	}
}
