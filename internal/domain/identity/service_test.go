package identity

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/caretrack/caretrack/internal/platform/apperr"
	"github.com/caretrack/caretrack/internal/platform/auth"
)

// -- Mock repository --

type mockUserRepo struct {
	users map[uuid.UUID]*User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[uuid.UUID]*User)}
}

func (m *mockUserRepo) Create(_ context.Context, u *User) error {
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	u.UpdatedAt = time.Now()
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	return u, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (m *mockUserRepo) Update(_ context.Context, u *User) error {
	if _, ok := m.users[u.ID]; !ok {
		return apperr.NotFound("user not found")
	}
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepo) List(_ context.Context, limit, skip int) ([]*User, int, error) {
	var all []*User
	for _, u := range m.users {
		all = append(all, u)
	}
	return all, len(all), nil
}

func newTestService() *Service {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	return NewService(newMockUserRepo(), issuer, bcrypt.MinCost)
}

// -- Tests --

func TestRegister(t *testing.T) {
	svc := newTestService()
	u, err := svc.Register(context.Background(), RegisterInput{
		Email:    "  Dr.Smith@Example.com ",
		Name:     "Dr. Smith",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Email != "dr.smith@example.com" {
		t.Errorf("expected normalized email, got %s", u.Email)
	}
	if u.Role != auth.RoleCaregiver {
		t.Errorf("expected default role CAREGIVER, got %s", u.Role)
	}
	if !u.IsActive {
		t.Error("expected new account to be active")
	}
	if u.Timezone != "UTC" || u.Language != "en" {
		t.Errorf("expected UTC/en defaults, got %s/%s", u.Timezone, u.Language)
	}
	if !u.NotifyEmail || !u.NotifyPush {
		t.Error("expected email and push notifications on by default")
	}
	if u.HashedPassword == "password123" {
		t.Error("password stored in plain text")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := newTestService()
	in := RegisterInput{Email: "dr@example.com", Name: "A", Password: "password123"}
	if _, err := svc.Register(context.Background(), in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	in.Email = "DR@EXAMPLE.COM"
	_, err := svc.Register(context.Background(), in)
	if !apperr.IsKind(err, apperr.KindDuplicateResource) {
		t.Errorf("expected duplicate_resource, got %v", err)
	}
}

func TestRegister_ShortPassword(t *testing.T) {
	svc := newTestService()
	_, err := svc.Register(context.Background(), RegisterInput{
		Email: "dr@example.com", Name: "A", Password: "short",
	})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected validation, got %v", err)
	}
}

func TestRegister_InvalidRole(t *testing.T) {
	svc := newTestService()
	_, err := svc.Register(context.Background(), RegisterInput{
		Email: "dr@example.com", Name: "A", Password: "password123", Role: "SUPERUSER",
	})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected validation, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	svc := newTestService()
	u, _ := svc.Register(context.Background(), RegisterInput{
		Email: "dr@example.com", Name: "A", Password: "password123",
	})

	sess, err := svc.Authenticate(context.Background(), "dr@example.com", "password123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.AccessToken == "" {
		t.Error("expected an access token")
	}
	if sess.TokenType != "bearer" {
		t.Errorf("expected token_type bearer, got %s", sess.TokenType)
	}
	if sess.User.ID != u.ID {
		t.Error("session user mismatch")
	}
	if sess.User.LastLogin == nil {
		t.Error("expected last_login to be stamped")
	}
}

func TestAuthenticate_WrongPasswordAndUnknownEmailIndistinguishable(t *testing.T) {
	svc := newTestService()
	svc.Register(context.Background(), RegisterInput{
		Email: "dr@example.com", Name: "A", Password: "password123",
	})

	_, errWrong := svc.Authenticate(context.Background(), "dr@example.com", "wrong-pass")
	_, errUnknown := svc.Authenticate(context.Background(), "nobody@example.com", "password123")

	if !apperr.IsKind(errWrong, apperr.KindInvalidCredentials) {
		t.Errorf("expected invalid_credentials for wrong password, got %v", errWrong)
	}
	if !apperr.IsKind(errUnknown, apperr.KindInvalidCredentials) {
		t.Errorf("expected invalid_credentials for unknown email, got %v", errUnknown)
	}
	if errWrong.Error() != errUnknown.Error() {
		t.Error("wrong password and unknown email must fail identically")
	}
}

func TestAuthenticate_InactiveAccount(t *testing.T) {
	svc := newTestService()
	u, _ := svc.Register(context.Background(), RegisterInput{
		Email: "dr@example.com", Name: "A", Password: "password123",
	})
	svc.ToggleActive(context.Background(), u.ID)

	_, err := svc.Authenticate(context.Background(), "dr@example.com", "password123")
	if !apperr.IsKind(err, apperr.KindInactiveAccount) {
		t.Errorf("expected inactive_account, got %v", err)
	}
}

func TestResolveUser_Deleted(t *testing.T) {
	svc := newTestService()
	_, _, _, err := svc.ResolveUser(context.Background(), uuid.New())
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("expected not_found, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc := newTestService()
	u, _ := svc.Register(context.Background(), RegisterInput{
		Email: "dr@example.com", Name: "A", Password: "password123",
	})

	if err := svc.ChangePassword(context.Background(), u.ID, "password123", "newpassword456"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "dr@example.com", "newpassword456"); err != nil {
		t.Errorf("new password rejected: %v", err)
	}
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	svc := newTestService()
	u, _ := svc.Register(context.Background(), RegisterInput{
		Email: "dr@example.com", Name: "A", Password: "password123",
	})

	err := svc.ChangePassword(context.Background(), u.ID, "not-the-password", "newpassword456")
	if !apperr.IsKind(err, apperr.KindInvalidCredentials) {
		t.Errorf("expected invalid_credentials, got %v", err)
	}
}

func TestUpdateProfile_Partial(t *testing.T) {
	svc := newTestService()
	u, _ := svc.Register(context.Background(), RegisterInput{
		Email: "dr@example.com", Name: "A", Password: "password123",
	})

	name := "Dr. Smith"
	off := false
	updated, err := svc.UpdateProfile(context.Background(), u.ID, UpdateProfileInput{
		Name: &name, NotifyPush: &off,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "Dr. Smith" {
		t.Errorf("expected updated name, got %s", updated.Name)
	}
	if updated.NotifyPush {
		t.Error("expected push notifications off")
	}
	if updated.Email != "dr@example.com" {
		t.Error("untouched field changed")
	}
}

func TestToggleActive(t *testing.T) {
	svc := newTestService()
	u, _ := svc.Register(context.Background(), RegisterInput{
		Email: "dr@example.com", Name: "A", Password: "password123",
	})

	toggled, err := svc.ToggleActive(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toggled.IsActive {
		t.Error("expected account deactivated")
	}
	toggled, _ = svc.ToggleActive(context.Background(), u.ID)
	if !toggled.IsActive {
		t.Error("expected account reactivated")
	}
}
