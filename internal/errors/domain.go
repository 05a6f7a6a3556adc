package errors

import (
	"fmt"
)

// ValidationError reports structurally invalid caller input: too few
// tickers, an inverted date range, an unknown linkage method. It surfaces
// immediately and is never retried.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("validation failed for %s: %s (got %v)", e.Field, e.Message, e.Value)
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// NewValidation creates a ValidationError for a single field.
func NewValidation(field, message string, value interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: message, Value: value}
}

// InsufficientDataError reports a structurally valid request whose
// resulting numeric series are too short or degenerate to analyze: an
// aligned price history below the minimum observation count, a correlation
// matrix with non-finite entries from a constant series. The offending
// entity is always named so batch callers can report which input failed.
type InsufficientDataError struct {
	Entity   string `json:"entity"`
	Reason   string `json:"reason"`
	Required int    `json:"required,omitempty"`
	Actual   int    `json:"actual,omitempty"`
}

// Error implements the error interface
func (e *InsufficientDataError) Error() string {
	if e.Required > 0 {
		return fmt.Sprintf("insufficient data for %s: %s (need %d, have %d)", e.Entity, e.Reason, e.Required, e.Actual)
	}
	return fmt.Sprintf("insufficient data for %s: %s", e.Entity, e.Reason)
}

// NewInsufficientData creates an InsufficientDataError without counts.
func NewInsufficientData(entity, reason string) *InsufficientDataError {
	return &InsufficientDataError{Entity: entity, Reason: reason}
}

// NewInsufficientObservations creates an InsufficientDataError carrying the
// required and actual observation counts.
func NewInsufficientObservations(entity string, required, actual int) *InsufficientDataError {
	return &InsufficientDataError{
		Entity:   entity,
		Reason:   "not enough overlapping observations",
		Required: required,
		Actual:   actual,
	}
}

// InvalidParameterError reports a degenerate pricing input (non-positive
// time to expiry, volatility, spot or strike). Inside a chain computation
// it degrades the affected contract to a nil implied volatility; surfaced
// from a direct pricer call it is a hard error.
type InvalidParameterError struct {
	Parameter string  `json:"parameter"`
	Message   string  `json:"message"`
	Value     float64 `json:"value"`
}

// Error implements the error interface
func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s (got %g)", e.Parameter, e.Message, e.Value)
}

// NewInvalidParameter creates an InvalidParameterError.
func NewInvalidParameter(parameter, message string, value float64) *InvalidParameterError {
	return &InvalidParameterError{Parameter: parameter, Message: message, Value: value}
}

// UpstreamError reports a failed call to an external data provider. It names
// the provider and operation so API responses can say which dependency broke
// without leaking request internals.
type UpstreamError struct {
	Provider string `json:"provider"`
	Op       string `json:"op"`
	Err      error  `json:"-"`
}

// Error implements the error interface
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Provider, e.Op, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NewUpstream creates an UpstreamError.
func NewUpstream(provider, op string, err error) *UpstreamError {
	return &UpstreamError{Provider: provider, Op: op, Err: err}
}
