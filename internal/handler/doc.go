// Package handler contains HTTP request handlers for Tradeboard.
//
// Handlers are the entry point for HTTP requests, responsible for:
//   - Request parsing and validation
//   - Authentication context extraction
//   - Calling appropriate services
//   - Response formatting
//   - Error response mapping
//
// # Route Organization
//
// Routes are organized by resource under /api/v1 with JWT
// authentication; health, version and metrics endpoints are served
// unauthenticated at the root.
//
// # Error Handling
//
// Handlers convert domain errors to appropriate HTTP status codes
// using the apperrors package for consistent error responses.
//
// # Thread Safety
//
// All handlers are safe for concurrent use.
package handler
