package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/tradeboard/tradeboard/internal/domain"
)

// ContextKey type for context keys
type ContextKey string

const (
	// Context keys
	ContextKeyUserID    ContextKey = "userID"
	ContextKeyUserEmail ContextKey = "userEmail"
)

// TokenVerifier validates an access token and returns its claims.
// Satisfied by service.AuthService.
type TokenVerifier interface {
	VerifyToken(token string) (*domain.JWTClaims, error)
}

// AuthMiddleware handles authentication
type AuthMiddleware struct {
	verifier TokenVerifier
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
	}
}

// RequireAuth validates JWT authentication
func (m *AuthMiddleware) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractBearerToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "Unauthorized",
				"message": "Authorization header required",
			})
		}

		claims, err := m.verifier.VerifyToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "Unauthorized",
				"message": "Invalid or expired token",
			})
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "Unauthorized",
				"message": "Invalid user ID in token",
			})
		}

		c.Locals(string(ContextKeyUserID), userID)
		c.Locals(string(ContextKeyUserEmail), claims.Email)

		return c.Next()
	}
}

// OptionalAuth tries to authenticate but continues even if it fails
func (m *AuthMiddleware) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractBearerToken(c)
		if token != "" {
			claims, err := m.verifier.VerifyToken(token)
			if err == nil {
				if userID, err := uuid.Parse(claims.UserID); err == nil {
					c.Locals(string(ContextKeyUserID), userID)
					c.Locals(string(ContextKeyUserEmail), claims.Email)
				}
			}
		}

		return c.Next()
	}
}

// extractBearerToken extracts JWT from Authorization header
func extractBearerToken(c *fiber.Ctx) string {
	auth := c.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// GetUserID gets the user ID from context
func GetUserID(c *fiber.Ctx) (uuid.UUID, bool) {
	userID, ok := c.Locals(string(ContextKeyUserID)).(uuid.UUID)
	return userID, ok
}

// GetUserEmail gets the authenticated user's email from context
func GetUserEmail(c *fiber.Ctx) (string, bool) {
	email, ok := c.Locals(string(ContextKeyUserEmail)).(string)
	return email, ok
}
