package upstream

import (
	"errors"

	xhttp "PulseGateway/pkg/http"
)

// AsStatus unwraps a non-2xx upstream response.
func AsStatus(err error) (*xhttp.StatusError, bool) {
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// BadGateway wraps an upstream failure for endpoints with no fallback.
func BadGateway(message string, err error) *xhttp.AppError {
	return xhttp.BadGatewayError(message).WithError(err)
}
