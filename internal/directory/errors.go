package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrServer           = errors.New("server error")
	ErrInvalidResponse  = errors.New("invalid response")
	ErrDecodingFailed   = errors.New("failed to decode response")
	ErrMalformedFailure = errors.New("failed to decode failure response")
)

// ConnectivityError reports a transport failure. The request never produced a
// response, so replaying it unchanged is safe.
type ConnectivityError struct {
	Op  Operation
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("%s: connectivity error: %v", e.Op, e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// FailResponse is a structured 4xx answer. StatusCode comes from the HTTP
// response, the rest from the body.
type FailResponse struct {
	Success    bool                `json:"success"`
	StatusCode int                 `json:"-"`
	Message    string              `json:"message,omitempty"`
	Fails      map[string][]string `json:"fails,omitempty"`
}

func (f *FailResponse) Error() string {
	if f.Message == "" {
		return fmt.Sprintf("request failed with status %d", f.StatusCode)
	}
	return fmt.Sprintf("request failed with status %d: %s", f.StatusCode, f.Message)
}

func IsConnectivity(err error) bool {
	var connErr *ConnectivityError
	return errors.As(err, &connErr)
}

// AsFailResponse returns the FailResponse in err's chain, if any.
func AsFailResponse(err error) (*FailResponse, bool) {
	var fail *FailResponse
	if errors.As(err, &fail) {
		return fail, true
	}
	return nil, false
}

// IsStatus reports whether err is a FailResponse carrying the given status.
func IsStatus(err error, statusCode int) bool {
	fail, ok := AsFailResponse(err)
	return ok && fail.StatusCode == statusCode
}

// IsCanceled reports a caller cancellation. Transport timeouts also match
// context.DeadlineExceeded but arrive wrapped in ConnectivityError and are
// excluded.
func IsCanceled(err error) bool {
	if IsConnectivity(err) {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func decodeFailure(statusCode int, body []byte) error {
	var fail FailResponse
	if err := json.Unmarshal(body, &fail); err != nil {
		return fmt.Errorf("%w (status %d): %v", ErrMalformedFailure, statusCode, err)
	}
	fail.StatusCode = statusCode
	return &fail
}

// outcomeLabel names the error kind for metrics.
func outcomeLabel(err error) string {
	if err == nil {
		return "success"
	}
	if _, ok := AsFailResponse(err); ok {
		return "fail_response"
	}
	switch {
	case IsConnectivity(err):
		return "connectivity"
	case IsCanceled(err):
		return "canceled"
	case errors.Is(err, ErrServer):
		return "server_error"
	case errors.Is(err, ErrInvalidResponse):
		return "invalid_response"
	case errors.Is(err, ErrDecodingFailed):
		return "decoding_failed"
	case errors.Is(err, ErrMalformedFailure):
		return "malformed_failure"
	default:
		return "error"
	}
}
