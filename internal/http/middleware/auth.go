package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/linkpro/linkpro/internal/app/model"
	"github.com/linkpro/linkpro/internal/app/service"
)

const userLocalsKey = "auth_user"

// RequireUser validates the bearer token and stores the resolved user in the
// request locals. Requests without a valid token are rejected with 401.
func RequireUser(identity *service.IdentityService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		tok, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tok == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing bearer token",
			})
		}

		user, err := identity.ValidateToken(c.UserContext(), tok)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or expired token",
			})
		}

		c.Locals(userLocalsKey, user)
		return c.Next()
	}
}

// UserFromCtx returns the authenticated user set by RequireUser, or nil.
func UserFromCtx(c *fiber.Ctx) *model.User {
	user, _ := c.Locals(userLocalsKey).(*model.User)
	return user
}
