package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"webtemplate-backend/internal/apperr"
	"webtemplate-backend/internal/metadata"
)

// Middleware returns a Fiber middleware that validates JWT tokens
// and sets the UserContext on the request.
func Middleware(tokens *TokenIssuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return apperr.UnauthorizedError("Missing auth token")
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return apperr.UnauthorizedError("Invalid auth header format")
		}

		claims, err := tokens.Parse(strings.TrimSpace(parts[1]))
		if err != nil {
			return apperr.UnauthorizedError("Invalid or expired token")
		}

		c.Locals("user", &metadata.UserContext{
			ID:    claims.Subject,
			Email: claims.Email,
			Roles: claims.Roles,
		})

		return c.Next()
	}
}

// RequireRole rejects users that have none of roles.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := GetUser(c)
		if user == nil {
			return apperr.UnauthorizedError("Missing auth token")
		}
		if !user.HasAnyRole(roles...) {
			return apperr.ForbiddenError("Requires one of the roles: " + strings.Join(roles, ", "))
		}
		return c.Next()
	}
}

// GetUser extracts the UserContext from a Fiber context.
func GetUser(c *fiber.Ctx) *metadata.UserContext {
	user, _ := c.Locals("user").(*metadata.UserContext)
	return user
}
