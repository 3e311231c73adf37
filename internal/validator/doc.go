// Package validator provides struct validation for Tradeboard.
//
// This package wraps go-playground/validator to provide:
//   - Consistent validation across all handlers
//   - Human-readable error messages
//   - Structured validation error responses
//
// # Usage
//
// Use validator.Validate() on any input struct:
//
//	if err := validator.Validate(myStruct); err != nil {
//	    // err is a validator.ValidationErrors
//	}
//
// # Custom Validations
//
// Custom validations can be registered in the init() function.
// The validator instance is package-level and thread-safe.
package validator
