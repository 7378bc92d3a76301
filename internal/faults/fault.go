// Package faults implements the fault-to-response mapping core: typed
// application errors, RFC 7807 problem documents, an ordered rule mapper,
// and a sealed handler that converts anything a route raises into a safe
// HTTP response.
package faults

import (
	"fmt"
)

// Kind classifies a fault for mapping and metrics
type Kind string

const (
	KindValidation Kind = "VALIDATION"
	KindNotFound   Kind = "NOT_FOUND"
	KindConflict   Kind = "CONFLICT"
	KindForbidden  Kind = "FORBIDDEN"
	KindArithmetic Kind = "ARITHMETIC"
	KindHeader     Kind = "HEADER"
	KindInternal   Kind = "INTERNAL"
)

// Fault represents an application-specific error raised during request
// handling. It carries a kind for dispatch, an optional cause, and free-form
// context for logging.
type Fault struct {
	Kind    Kind
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (f *Fault) Error() string {
	if f.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", f.Kind, f.Message, f.Cause)
	}
	return fmt.Sprintf("[%s] %s", f.Kind, f.Message)
}

// Unwrap allows errors.Is and errors.As to work with Fault
func (f *Fault) Unwrap() error {
	return f.Cause
}

// WithContext adds context to the fault
func (f *Fault) WithContext(key string, value interface{}) *Fault {
	if f.Context == nil {
		f.Context = make(map[string]interface{})
	}
	f.Context[key] = value
	return f
}

// New creates a new fault
func New(kind Kind, message string, cause error) *Fault {
	return &Fault{
		Kind:    kind,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// Sentinel faults raised by the demonstration routes. Matched with errors.Is.
var (
	ErrDivideByZero = New(KindArithmetic, "division by zero", nil)
)

// Helper constructors for common fault kinds

// NewValidation creates a validation fault
func NewValidation(message string) *Fault {
	return New(KindValidation, message, nil)
}

// NewNotFound creates a not found fault
func NewNotFound(resource string) *Fault {
	return New(KindNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewConflict creates a conflict fault
func NewConflict(message string) *Fault {
	return New(KindConflict, message, nil)
}

// NewForbidden creates a permission fault
func NewForbidden(message string) *Fault {
	return New(KindForbidden, message, nil)
}

// NewInternal creates an internal fault
func NewInternal(message string, cause error) *Fault {
	return New(KindInternal, message, cause)
}

// IllegalHeaderError reports a request header that failed validation.
// The raw value is kept for server-side inspection only; responders must
// never copy it into a response body.
type IllegalHeaderError struct {
	Name  string
	Value string
}

// Error includes the raw value so server logs show what was rejected.
func (e *IllegalHeaderError) Error() string {
	return fmt.Sprintf("illegal value %q for header %s", e.Value, e.Name)
}
