// Package errors provides structured error types for better observability
// and programmatic error handling across the application.
//
// Example usage:
//
//	err := errors.Wrap(
//	    errors.ErrCodeUnsupported,
//	    "no family root for detected architecture",
//	    cause,
//	)
package errors
