package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/caretrack/caretrack/internal/platform/apperr"
)

type contextKey string

const identityKey contextKey = "identity"

// Roles.
const (
	RoleAdmin     = "ADMIN"
	RoleCaregiver = "CAREGIVER"
	RolePatient   = "PATIENT"
)

// Identity is the authenticated caller attached to the request context.
type Identity struct {
	ID    uuid.UUID
	Email string
	Role  string
}

// IsAdmin reports whether the caller carries the ADMIN role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// UserResolver checks the token subject against the live user record so that
// deleted or deactivated accounts fail even with an unexpired token.
type UserResolver interface {
	// ResolveUser returns the account's current email, role, and active flag.
	ResolveUser(ctx context.Context, id uuid.UUID) (email, role string, active bool, err error)
}

// Middleware returns the bearer-token middleware. It parses the token,
// re-resolves the subject against the user store, and places the Identity in
// the request context.
func Middleware(issuer *TokenIssuer, users UserResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return apperr.InvalidToken("missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return apperr.InvalidToken("invalid authorization format")
			}

			claims, err := issuer.Parse(parts[1])
			if err != nil {
				return err
			}

			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				return apperr.InvalidToken("could not validate credentials")
			}

			email, role, active, err := users.ResolveUser(c.Request().Context(), userID)
			if err != nil {
				return err
			}
			if !active {
				return apperr.InactiveAccount("account is deactivated")
			}

			identity := Identity{ID: userID, Email: email, Role: role}
			ctx := context.WithValue(c.Request().Context(), identityKey, identity)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// IdentityFromContext retrieves the authenticated caller. The second return
// is false outside authenticated routes.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// WithIdentity places an identity in the context. Used by tests and internal
// callers that bypass the HTTP middleware.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}
