package errors

import (
	"fmt"
)

// Category represents the subsystem that reported the diagnostic.
type Category string

const (
	CategoryReactivity Category = "reactivity"
	CategoryScheduler  Category = "scheduler"
	CategoryPatch      Category = "patch"
	CategoryHydration  Category = "hydration"
	CategoryComponent  Category = "component"
	CategoryConfig     Category = "config"
	CategoryCLI        Category = "cli"
)

// Severity separates recoverable warnings from reported errors.
type Severity string

const (
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

// Error is a structured diagnostic with a code, explanation and hint.
type Error struct {
	// Code is a unique identifier (e.g., "E101").
	Code string

	// Category is the reporting subsystem.
	Category Category

	// Severity defaults to SeverityWarn for registry codes.
	Severity Severity

	// Message is a short description.
	Message string

	// Detail is a longer explanation.
	Detail string

	// Suggestion is a hint on how to fix the problem.
	Suggestion string

	// Trace names the component chain the diagnostic was raised in,
	// innermost first.
	Trace []string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// WithMessagef replaces the registry message with a specific one.
func (e *Error) WithMessagef(format string, args ...any) *Error {
	e.Message = fmt.Sprintf(format, args...)
	return e
}

// WithSuggestion adds a fix suggestion.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// WithDetail replaces the detailed explanation.
func (e *Error) WithDetail(d string) *Error {
	e.Detail = d
	return e
}

// WithTrace records the component chain.
func (e *Error) WithTrace(trace []string) *Error {
	e.Trace = trace
	return e
}

// Wrap wraps another error.
func (e *Error) Wrap(err error) *Error {
	e.Wrapped = err
	return e
}

// New creates an Error from a registered code.
func New(code string) *Error {
	template, ok := registry[code]
	if !ok {
		return &Error{
			Code:     code,
			Severity: SeverityWarn,
			Message:  "Unknown diagnostic",
		}
	}
	sev := template.Severity
	if sev == "" {
		sev = SeverityWarn
	}
	return &Error{
		Code:     code,
		Category: template.Category,
		Severity: sev,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates an Error with a formatted message and no code.
func Newf(category Category, format string, args ...any) *Error {
	return &Error{
		Category: category,
		Severity: SeverityWarn,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps err in an Error carrying code. An *Error is returned as is.
func FromError(err error, code string) *Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}
	return New(code).Wrap(err)
}
