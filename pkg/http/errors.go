package http

import (
	"fmt"
	"net/http"
)

// AppError is an error that knows the status it should be reported with.
// Handlers render it through AppErrorResponse.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error { return e.Err }

// WithError attaches the underlying cause. The cause is logged, never rendered.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

var errorCodes = map[int]string{
	http.StatusBadRequest:          "ERR_BAD_REQUEST",
	http.StatusUnauthorized:        "ERR_UNAUTHORIZED",
	http.StatusNotFound:            "ERR_NOT_FOUND",
	http.StatusConflict:            "ERR_CONFLICT",
	http.StatusTooManyRequests:     "ERR_TOO_MANY_REQUESTS",
	http.StatusInternalServerError: "ERR_INTERNAL",
	http.StatusBadGateway:          "ERR_BAD_GATEWAY",
	http.StatusServiceUnavailable:  "ERR_UNAVAILABLE",
}

func statusError(status int, message string) *AppError {
	return &AppError{Code: errorCodes[status], Message: message, Status: status}
}

func BadRequestError(message string) *AppError {
	return statusError(http.StatusBadRequest, message)
}

func UnauthorizedError(message string) *AppError {
	return statusError(http.StatusUnauthorized, message)
}

func NotFoundError(message string) *AppError {
	return statusError(http.StatusNotFound, message)
}

func ConflictError(message string) *AppError {
	return statusError(http.StatusConflict, message)
}

func TooManyRequestsError(message string) *AppError {
	return statusError(http.StatusTooManyRequests, message)
}

func InternalError(message string) *AppError {
	return statusError(http.StatusInternalServerError, message)
}

func BadGatewayError(message string) *AppError {
	return statusError(http.StatusBadGateway, message)
}

func UnavailableError(message string) *AppError {
	return statusError(http.StatusServiceUnavailable, message)
}

func BadRequestErrorf(format string, a ...interface{}) *AppError {
	return BadRequestError(fmt.Sprintf(format, a...))
}

func NotFoundErrorf(format string, a ...interface{}) *AppError {
	return NotFoundError(fmt.Sprintf(format, a...))
}
