package auth

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/caretrack/caretrack/internal/platform/apperr"
)

// RequireRole returns middleware that allows only the listed roles. ADMIN
// always passes.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := IdentityFromContext(c.Request().Context())
			if !ok {
				return apperr.InvalidToken("not authenticated")
			}
			if identity.IsAdmin() {
				return next(c)
			}
			for _, required := range roles {
				if identity.Role == required {
					return next(c)
				}
			}
			return apperr.Forbidden(fmt.Sprintf("required role: %s", strings.Join(roles, " or ")))
		}
	}
}
