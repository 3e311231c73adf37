// Package testutil provides shared test utilities for the Tradeboard API.
package testutil

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/tradeboard/tradeboard/internal/middleware"
)

// TestUserMiddleware creates a middleware that sets the user ID in context.
// Use this in tests to simulate authenticated requests.
func TestUserMiddleware(userID uuid.UUID) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(string(middleware.ContextKeyUserID), userID)
		return c.Next()
	}
}

// TestAuthMiddleware creates a middleware that sets both the user ID and
// email in context. Use this in tests to simulate fully authenticated requests.
func TestAuthMiddleware(userID uuid.UUID, email string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(string(middleware.ContextKeyUserID), userID)
		c.Locals(string(middleware.ContextKeyUserEmail), email)
		return c.Next()
	}
}
