// Package middleware provides request logging, tracing, metrics, rate limiting,
// and session middleware for the HTTP API.
package middleware

import (
	"context"

	"communityhub/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CurrentUserSource resolves the profile's signed-in user, or nil for a guest.
type CurrentUserSource interface {
	Current(ctx context.Context) (*models.User, error)
}

const userLocal = "user"

// LoadCurrentUser stores the session user, if any, in Fiber locals and the request context.
func LoadCurrentUser(src CurrentUserSource) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := src.Current(c.UserContext())
		if err != nil {
			return models.RespondWithError(c, models.StatusFor(err), err)
		}
		if user != nil {
			c.Locals(userLocal, user)
			c.Locals("userID", user.ID)
			c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, user.ID))
		}
		return c.Next()
	}
}

// CurrentUser returns the user loaded by LoadCurrentUser, or nil for a guest.
func CurrentUser(c *fiber.Ctx) *models.User {
	u, _ := c.Locals(userLocal).(*models.User)
	return u
}

// RequireUser rejects guests.
func RequireUser(c *fiber.Ctx) error {
	if CurrentUser(c) == nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Login required"))
	}
	return c.Next()
}

// RequireAdmin rejects guests and non-admin users.
func RequireAdmin(c *fiber.Ctx) error {
	user := CurrentUser(c)
	if user == nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Login required"))
	}
	if !user.IsAdmin() {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Admin access required"))
	}
	return c.Next()
}
