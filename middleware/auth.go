// middleware/auth.go
package middleware

import (
	"log"
	"strings"

	"auracoins-server/services"

	"github.com/gofiber/fiber/v2"
)

// UserContextMiddleware resolves the requesting user and attaches the
// session context to c.Locals. Identity normally arrives as gateway
// headers; a bare X-Session-Token is validated against the auth service
// instead. No ambient session state — everything flows through the
// request context.
func UserContextMiddleware(authClient *services.AuthServiceClient) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Get("X-User-ID")
		rolesStr := c.Get("X-User-Roles")
		email := c.Get("X-User-Email")
		name := c.Get("X-User-Name")

		if userID == "" {
			sessionToken := c.Get("X-Session-Token")
			if sessionToken == "" {
				log.Printf("❌ [USER_CTX] No user identity on secured route: %s", c.Path())
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "missing X-User-ID or X-Session-Token header",
				})
			}
			session, err := authClient.ValidateSession(sessionToken)
			if err != nil {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "invalid or expired session",
				})
			}
			userID = session.UserID
			email = session.Email
			name = session.Name
			rolesStr = strings.Join(session.Roles, ",")
		}

		var roles []string
		if rolesStr != "" {
			for _, r := range strings.Split(rolesStr, ",") {
				r = strings.TrimSpace(r)
				if r != "" {
					roles = append(roles, r)
				}
			}
		}

		c.Locals("user_id", userID)
		c.Locals("user_email", email)
		c.Locals("user_name", name)
		c.Locals("user_roles", roles)

		return c.Next()
	}
}

// AdminOnlyMiddleware gates /s/admin routes on the admin role.
func AdminOnlyMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		roles, _ := c.Locals("user_roles").([]string)
		for _, r := range roles {
			if r == "admin" {
				return c.Next()
			}
		}
		log.Printf("🚫 [ADMIN] Non-admin access attempt on %s by %v", c.Path(), c.Locals("user_id"))
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "admin role required",
		})
	}
}
