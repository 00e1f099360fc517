package models

import (
	"errors"
	"strings"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInvalidTransition = errors.New("invalid milestone status transition")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrNotConfigured     = errors.New("not configured")
	ErrUpstream          = errors.New("upstream service error")
	ErrUpstreamTimeout   = errors.New("upstream service timed out")
	ErrUpstreamDown      = errors.New("upstream service unreachable")
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors collects every failed field of a request.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, e := range v {
		parts = append(parts, e.Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, ValidationError{Field: field, Message: message})
}

// Err returns nil when nothing was collected.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// UpstreamError is a failed call to an external service. Status is the HTTP
// status relayed to the dashboard client.
type UpstreamError struct {
	Status  int
	Message string
	Details map[string]string
	Err     error
}

func (e *UpstreamError) Error() string {
	return e.Message
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
