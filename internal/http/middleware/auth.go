package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"crmapi/internal/auth"
)

// PrincipalLocalKey stores the authenticated auth.Principal in Fiber's context locals.
const PrincipalLocalKey = "principal"

// Authenticator resolves a bearer token to the caller.
type Authenticator interface {
	Authenticate(token string) (*auth.Principal, error)
}

// Auth requires a valid bearer token on every request except the given
// public paths. Failures surface as 401 through the app's ErrorHandler.
func Auth(a Authenticator, public ...string) fiber.Handler {
	open := make(map[string]bool, len(public))
	for _, p := range public {
		open[p] = true
	}
	return func(c *fiber.Ctx) error {
		if open[c.Path()] {
			return c.Next()
		}
		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}
		p, err := a.Authenticate(strings.TrimSpace(token))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}
		c.Locals(PrincipalLocalKey, *p)
		return c.Next()
	}
}

// PrincipalFromCtx returns the principal stored by Auth.
func PrincipalFromCtx(c *fiber.Ctx) (auth.Principal, bool) {
	p, ok := c.Locals(PrincipalLocalKey).(auth.Principal)
	return p, ok
}
