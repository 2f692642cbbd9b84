package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/caretrack/caretrack/internal/platform/apperr"
)

// -- Tokens --

func TestIssueAndParse(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	userID := uuid.New()

	token, err := issuer.Issue(userID, "dr@example.com", RoleCaregiver)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.Subject != userID.String() {
		t.Errorf("expected subject %s, got %s", userID, claims.Subject)
	}
	if claims.Email != "dr@example.com" {
		t.Errorf("unexpected email %s", claims.Email)
	}
	if claims.Role != RoleCaregiver {
		t.Errorf("unexpected role %s", claims.Role)
	}
}

func TestParse_WrongSecret(t *testing.T) {
	token, _ := NewTokenIssuer("secret-a", time.Hour).Issue(uuid.New(), "a@b.c", RoleCaregiver)

	_, err := NewTokenIssuer("secret-b", time.Hour).Parse(token)
	if !apperr.IsKind(err, apperr.KindInvalidToken) {
		t.Errorf("expected invalid_token, got %v", err)
	}
}

func TestParse_Expired(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", -time.Minute)
	token, _ := issuer.Issue(uuid.New(), "a@b.c", RoleCaregiver)

	_, err := issuer.Parse(token)
	if !apperr.IsKind(err, apperr.KindInvalidToken) {
		t.Errorf("expected invalid_token for expired token, got %v", err)
	}
}

func TestParse_Garbage(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	_, err := issuer.Parse("not.a.token")
	if !apperr.IsKind(err, apperr.KindInvalidToken) {
		t.Errorf("expected invalid_token, got %v", err)
	}
}

// -- Middleware --

type stubResolver struct {
	email  string
	role   string
	active bool
	err    error
}

func (s *stubResolver) ResolveUser(_ context.Context, _ uuid.UUID) (string, string, bool, error) {
	return s.email, s.role, s.active, s.err
}

func runMiddleware(t *testing.T, authHeader string, resolver UserResolver, issuer *TokenIssuer) (Identity, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var captured Identity
	handler := Middleware(issuer, resolver)(func(c echo.Context) error {
		captured, _ = IdentityFromContext(c.Request().Context())
		return nil
	})
	return captured, handler(c)
}

func TestMiddleware_ValidToken(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	userID := uuid.New()
	token, _ := issuer.Issue(userID, "dr@example.com", RoleCaregiver)
	resolver := &stubResolver{email: "dr@example.com", role: RoleCaregiver, active: true}

	identity, err := runMiddleware(t, "Bearer "+token, resolver, issuer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identity.ID != userID {
		t.Errorf("expected identity id %s, got %s", userID, identity.ID)
	}
}

func TestMiddleware_MissingHeader(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	_, err := runMiddleware(t, "", &stubResolver{active: true}, issuer)
	if !apperr.IsKind(err, apperr.KindInvalidToken) {
		t.Errorf("expected invalid_token, got %v", err)
	}
}

func TestMiddleware_DeactivatedAccount(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	token, _ := issuer.Issue(uuid.New(), "dr@example.com", RoleCaregiver)
	resolver := &stubResolver{email: "dr@example.com", role: RoleCaregiver, active: false}

	_, err := runMiddleware(t, "Bearer "+token, resolver, issuer)
	if !apperr.IsKind(err, apperr.KindInactiveAccount) {
		t.Errorf("expected inactive_account, got %v", err)
	}
}

func TestMiddleware_DeletedAccount(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	token, _ := issuer.Issue(uuid.New(), "dr@example.com", RoleCaregiver)
	resolver := &stubResolver{err: apperr.NotFound("account no longer exists")}

	_, err := runMiddleware(t, "Bearer "+token, resolver, issuer)
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("expected not_found, got %v", err)
	}
}

// -- RequireRole --

func callWithRole(t *testing.T, role string, mw echo.MiddlewareFunc) error {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if role != "" {
		ctx := WithIdentity(req.Context(), Identity{ID: uuid.New(), Role: role})
		req = req.WithContext(ctx)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return mw(func(c echo.Context) error { return nil })(c)
}

func TestRequireRole_Allowed(t *testing.T) {
	if err := callWithRole(t, RoleCaregiver, RequireRole(RoleCaregiver)); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRequireRole_AdminBypass(t *testing.T) {
	if err := callWithRole(t, RoleAdmin, RequireRole(RoleCaregiver)); err != nil {
		t.Errorf("expected admin to pass, got %v", err)
	}
}

func TestRequireRole_WrongRole(t *testing.T) {
	err := callWithRole(t, RolePatient, RequireRole(RoleCaregiver))
	if !apperr.IsKind(err, apperr.KindForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}
}

func TestRequireRole_Unauthenticated(t *testing.T) {
	err := callWithRole(t, "", RequireRole(RoleCaregiver))
	if !apperr.IsKind(err, apperr.KindInvalidToken) {
		t.Errorf("expected invalid_token, got %v", err)
	}
}

// -- Ownership guard --

type stubPatientOwner struct {
	owner uuid.UUID
	found bool
}

func (s *stubPatientOwner) CaregiverOf(_ context.Context, _ uuid.UUID) (uuid.UUID, bool, error) {
	return s.owner, s.found, nil
}

type stubTreatmentOwner struct {
	owner uuid.UUID
	found bool
}

func (s *stubTreatmentOwner) CaregiverOfTreatment(_ context.Context, _ uuid.UUID) (uuid.UUID, bool, error) {
	return s.owner, s.found, nil
}

func TestGuard_OwnerAllowed(t *testing.T) {
	caregiverID := uuid.New()
	guard := NewGuard(&stubPatientOwner{owner: caregiverID, found: true}, &stubTreatmentOwner{})

	err := guard.CheckPatient(context.Background(), Identity{ID: caregiverID, Role: RoleCaregiver}, uuid.New())
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestGuard_ForeignPatientForbidden(t *testing.T) {
	guard := NewGuard(&stubPatientOwner{owner: uuid.New(), found: true}, &stubTreatmentOwner{})

	err := guard.CheckPatient(context.Background(), Identity{ID: uuid.New(), Role: RoleCaregiver}, uuid.New())
	if !apperr.IsKind(err, apperr.KindForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}
}

func TestGuard_MissingPatientForbidden(t *testing.T) {
	// A missing row must be indistinguishable from a foreign one.
	guard := NewGuard(&stubPatientOwner{found: false}, &stubTreatmentOwner{})

	err := guard.CheckPatient(context.Background(), Identity{ID: uuid.New(), Role: RoleCaregiver}, uuid.New())
	if !apperr.IsKind(err, apperr.KindForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}
}

func TestGuard_AdminBypass(t *testing.T) {
	guard := NewGuard(&stubPatientOwner{found: false}, &stubTreatmentOwner{found: false})
	admin := Identity{ID: uuid.New(), Role: RoleAdmin}

	if err := guard.CheckPatient(context.Background(), admin, uuid.New()); err != nil {
		t.Errorf("expected admin to pass patient check, got %v", err)
	}
	if err := guard.CheckTreatment(context.Background(), admin, uuid.New()); err != nil {
		t.Errorf("expected admin to pass treatment check, got %v", err)
	}
}

func TestGuard_TreatmentOwnership(t *testing.T) {
	caregiverID := uuid.New()
	guard := NewGuard(&stubPatientOwner{}, &stubTreatmentOwner{owner: caregiverID, found: true})

	if err := guard.CheckTreatment(context.Background(), Identity{ID: caregiverID, Role: RoleCaregiver}, uuid.New()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	err := guard.CheckTreatment(context.Background(), Identity{ID: uuid.New(), Role: RoleCaregiver}, uuid.New())
	if !apperr.IsKind(err, apperr.KindForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}
}
