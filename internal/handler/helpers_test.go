package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradeboard/tradeboard/internal/testutil"
)

func TestRequireUserID(t *testing.T) {
	t.Run("stops the handler when no user is set", func(t *testing.T) {
		app := fiber.New()
		reached := false
		app.Post("/guarded", func(c *fiber.Ctx) error {
			if _, err := RequireUserID(c); err != nil {
				return err
			}
			reached = true
			return c.SendStatus(fiber.StatusOK)
		})

		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/guarded", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.False(t, reached)
	})

	t.Run("returns the user from the request context", func(t *testing.T) {
		userID := uuid.New()
		app := fiber.New()
		app.Use(testutil.TestUserMiddleware(userID))

		var got uuid.UUID
		app.Get("/guarded", func(c *fiber.Ctx) error {
			id, err := RequireUserID(c)
			if err != nil {
				return err
			}
			got = id
			return c.SendStatus(fiber.StatusOK)
		})

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/guarded", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, userID, got)
	})
}

func TestParseParamUUID(t *testing.T) {
	t.Run("stops the handler on a malformed id", func(t *testing.T) {
		app := fiber.New()
		reached := false
		app.Get("/items/:id", func(c *fiber.Ctx) error {
			if _, err := parseParamUUID(c, "id"); err != nil {
				return err
			}
			reached = true
			return c.SendStatus(fiber.StatusOK)
		})

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/items/not-a-uuid", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.False(t, reached)
	})

	t.Run("parses a valid id", func(t *testing.T) {
		id := uuid.New()
		app := fiber.New()

		var got uuid.UUID
		app.Get("/items/:id", func(c *fiber.Ctx) error {
			parsed, err := parseParamUUID(c, "id")
			if err != nil {
				return err
			}
			got = parsed
			return c.SendStatus(fiber.StatusOK)
		})

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/items/"+id.String(), nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, id, got)
	})
}
