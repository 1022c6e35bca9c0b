package middleware

import (
	"log"
	"strings"

	"blogapi/internal/services"

	"github.com/gofiber/fiber/v2"
)

// Identity is the authenticated caller attached to the request by
// AuthRequired.
type Identity struct {
	UserID string
}

const identityKey = "identity"

// AuthRequired is a Fiber middleware that checks for a valid bearer token and
// attaches the caller's Identity to the request. Requests without a valid
// token are rejected with 401 and never reach the handler.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "No token provided",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization header format must be 'Bearer <token>'",
			})
		}

		userID, err := authService.ValidateToken(parts[1])
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals(identityKey, Identity{UserID: userID})
		return c.Next()
	}
}

// IdentityFromCtx returns the Identity set by AuthRequired. The second return
// is false on routes the middleware did not run for.
func IdentityFromCtx(c *fiber.Ctx) (Identity, bool) {
	identity, ok := c.Locals(identityKey).(Identity)
	return identity, ok
}
