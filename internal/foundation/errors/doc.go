// Package errors provides foundational, type-safe error primitives used across sitebuilder.
//
// This package contains classified error types and helpers for robust error handling,
// including a fluent builder API for constructing ClassifiedError values with context.
//
// Key features:
//   - ErrorCategory: Broad error classification (config, template, content, media, etc.)
//   - ErrorSeverity: Impact level (fatal, error, warning, info)
//   - ClassifiedError: Structured error with category, severity, and context
//   - ErrorBuilder: Fluent API for creating classified errors
//   - CLI adapter mapping categories to process exit codes
//
// Example usage:
//
//	err := errors.NewError(errors.CategoryTemplate, "template not found").
//		Fatal().
//		WithContext("template", name).
//		WithCause(originalErr).
//		Build()
package errors
