package domain

import (
	"errors"
	"fmt"
)

// Workflow error taxonomy. Every network-originated failure is converted into
// one of these at the workflow boundary; raw transport errors never reach the
// presentation layer.
var (
	ErrServerUnavailable = errors.New("server unavailable")
	ErrNetworkTimeout    = errors.New("network timeout")
	ErrHostUnreachable   = errors.New("host unreachable")
)

// ValidationError reports a local input failure; no network call was made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ServerError carries a non-2xx status and any structured message the server
// returned.
type ServerError struct {
	Code    int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server error %d", e.Code)
	}
	return fmt.Sprintf("server error %d: %s", e.Code, e.Message)
}

// UnknownError wraps any failure the taxonomy has no better name for.
type UnknownError struct {
	Message string
}

func (e *UnknownError) Error() string {
	if e.Message == "" {
		return "unknown error"
	}
	return e.Message
}
