package middleware

import (
	"errors"
	"log"
	"strings"

	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

const principalKey = "principal"

// AuthRequired verifies the bearer token and stores the resulting principal
// in the request locals.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, err := authService.Verify(bearerToken(c.Get(fiber.HeaderAuthorization)))
		if err != nil {
			log.Printf("JWT validation failed for %s %s: %v", c.Method(), c.Path(), err)
			return deny(c, err)
		}
		c.Locals(principalKey, principal)
		return c.Next()
	}
}

// RequireRole lets the request through only when the principal stored by
// AuthRequired has role.
func RequireRole(authService *services.AuthService, role services.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := authService.RequireRole(Principal(c), role); err != nil {
			return deny(c, err)
		}
		return c.Next()
	}
}

// Require composes AuthRequired and RequireRole into one route guard.
func Require(authService *services.AuthService, role services.Role) []fiber.Handler {
	return []fiber.Handler{AuthRequired(authService), RequireRole(authService, role)}
}

// Principal returns the authenticated principal, or nil on public routes.
func Principal(c *fiber.Ctx) *services.Principal {
	p, _ := c.Locals(principalKey).(*services.Principal)
	return p
}

// bearerToken extracts <token> from "Bearer <token>". Anything else yields "".
func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func deny(c *fiber.Ctx, err error) error {
	status := fiber.StatusUnauthorized
	if errors.Is(err, services.ErrForbidden) {
		status = fiber.StatusForbidden
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
