package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Ki11erRabbit/jwt-pizza-service/internal/model"
)

// PrincipalLocalKey holds the authenticated *model.Principal, if any.
const PrincipalLocalKey = "principal"

// Authenticator resolves a presented credential to a principal. A nil
// principal with a nil error means the credential is not valid.
type Authenticator interface {
	Authenticate(ctx context.Context, credential string) (*model.Principal, error)
}

// Principal reads the bearer credential and stores the principal it
// resolves to. Anonymous requests pass through untouched.
func Principal(a Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		credential := bearer(c.Get(fiber.HeaderAuthorization))
		if credential == "" {
			return c.Next()
		}
		p, err := a.Authenticate(c.UserContext(), credential)
		if err != nil {
			return err
		}
		if p != nil {
			c.Locals(PrincipalLocalKey, p)
		}
		return c.Next()
	}
}

// RequireAuth rejects requests without a principal.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if PrincipalFrom(c) == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
		}
		return c.Next()
	}
}

// PrincipalFrom returns the request's principal or nil.
func PrincipalFrom(c *fiber.Ctx) *model.Principal {
	p, _ := c.Locals(PrincipalLocalKey).(*model.Principal)
	return p
}

func bearer(header string) string {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
