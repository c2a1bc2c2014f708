package weather

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means a collaborator answered, but had no match.
	ErrNotFound = errors.New("not found")
	// ErrConnection means the upstream could not be reached at all.
	ErrConnection = errors.New("connection failed")
	// ErrEmptyInput is the reason carried by FailureEmptyInput.
	ErrEmptyInput = errors.New("city name is empty")
)

// ResolverError wraps an unexpected failure from a geocoding or timezone provider.
type ResolverError struct {
	Op  string
	Err error
}

func (e *ResolverError) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *ResolverError) Unwrap() error { return e.Err }

// ProviderError is a failure reported by (or while talking to) a weather API.
// Message keeps the provider's own text for diagnostics; Code is the
// provider's status code when it sent one.
type ProviderError struct {
	Code    int
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("weather provider error %d: %s", e.Code, e.Message)
	}
	return "weather provider error: " + e.Message
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ConnectionError builds the ProviderError used for DNS, timeout and refused
// connections.
func ConnectionError(cause error) *ProviderError {
	return &ProviderError{
		Message: ErrConnection.Error(),
		Err:     fmt.Errorf("%w: %v", ErrConnection, cause),
	}
}

// FailureKind tags which stage of the pipeline failed.
type FailureKind int

const (
	FailureEmptyInput FailureKind = iota + 1
	FailureLocation
	FailureTimezone
	FailureWeather
	FailureCanceled
)

func (k FailureKind) String() string {
	switch k {
	case FailureEmptyInput:
		return "empty_input"
	case FailureLocation:
		return "location_failed"
	case FailureTimezone:
		return "timezone_failed"
	case FailureWeather:
		return "weather_failed"
	case FailureCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// PipelineFailure is the only error type Pipeline.Run returns.
type PipelineFailure struct {
	Kind FailureKind
	Err  error
}

func (f *PipelineFailure) Error() string {
	if f.Err == nil {
		return f.Kind.String()
	}
	return f.Kind.String() + ": " + f.Err.Error()
}

func (f *PipelineFailure) Unwrap() error { return f.Err }

// NotFound reports whether the failing step answered "no match" rather than
// erroring.
func (f *PipelineFailure) NotFound() bool {
	return errors.Is(f.Err, ErrNotFound)
}

// AsFailure extracts a *PipelineFailure from err.
func AsFailure(err error) (*PipelineFailure, bool) {
	var f *PipelineFailure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}
