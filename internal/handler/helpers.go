package handler

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tradeboard/tradeboard/internal/middleware"
	apperrors "github.com/tradeboard/tradeboard/internal/pkg/errors"
)

// Pagination represents pagination parameters for list operations.
type Pagination struct {
	Limit  int
	Offset int
}

// DefaultPagination provides default pagination values.
var DefaultPagination = Pagination{Limit: 50, Offset: 0}

// RequireUserID extracts the user ID from the request context.
// Returns the user ID and nil on success. The returned error is
// non-nil when no user is authenticated, so handlers must stop and
// propagate it to the error handler.
func RequireUserID(c *fiber.Ctx) (uuid.UUID, error) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "User ID not found")
	}
	return userID, nil
}

// ParsePagination extracts limit and offset query parameters with validation.
// maxLimit specifies the maximum allowed limit (0 for no maximum).
func ParsePagination(c *fiber.Ctx, maxLimit int) Pagination {
	p := Pagination{
		Limit:  parseQueryInt(c, "limit", DefaultPagination.Limit),
		Offset: parseQueryInt(c, "offset", DefaultPagination.Offset),
	}

	if p.Limit < 0 {
		p.Limit = DefaultPagination.Limit
	}
	if maxLimit > 0 && p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}

	return p
}

// parseQueryInt parses an integer query parameter with a default value.
func parseQueryInt(c *fiber.Ctx, key string, defaultValue int) int {
	val := c.Query(key)
	if val == "" {
		return defaultValue
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return intVal
}

// parseQueryTime parses an RFC 3339 query parameter.
// Returns the zero time if the parameter is empty or invalid.
func parseQueryTime(c *fiber.Ctx, key string) time.Time {
	val := c.Query(key)
	if val == "" {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return time.Time{}
	}
	return ts
}

// parseParamUUID parses a UUID path parameter. The returned error is
// non-nil on a malformed value, so handlers must stop and propagate it.
func parseParamUUID(c *fiber.Ctx, key string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(key))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid "+key)
	}
	return id, nil
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// errorResponse creates a standardized JSON error response.
func errorResponse(c *fiber.Ctx, statusCode int, message string) error {
	errorName := "Error"
	switch statusCode {
	case fiber.StatusBadRequest:
		errorName = "Bad Request"
	case fiber.StatusUnauthorized:
		errorName = "Unauthorized"
	case fiber.StatusForbidden:
		errorName = "Forbidden"
	case fiber.StatusNotFound:
		errorName = "Not Found"
	case fiber.StatusConflict:
		errorName = "Conflict"
	case fiber.StatusServiceUnavailable:
		errorName = "Service Unavailable"
	case fiber.StatusInternalServerError:
		errorName = "Internal Server Error"
	}

	return c.Status(statusCode).JSON(ErrorResponse{
		Error:   errorName,
		Message: message,
	})
}

// serviceError maps an application error onto a JSON error response.
// Internal failures are logged and hidden behind the fallback message.
func serviceError(c *fiber.Ctx, logger *zap.Logger, err error, fallback string) error {
	if appErr := apperrors.GetAppError(err); appErr != nil && appErr.StatusCode != fiber.StatusInternalServerError {
		return errorResponse(c, appErr.StatusCode, appErr.Message)
	}
	logger.Error(fallback, zap.Error(err))
	return errorResponse(c, fiber.StatusInternalServerError, fallback)
}
