package identity

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/caretrack/caretrack/internal/platform/apperr"
	"github.com/caretrack/caretrack/internal/platform/auth"
)

var validRoles = map[string]bool{
	auth.RoleAdmin:     true,
	auth.RoleCaregiver: true,
	auth.RolePatient:   true,
}

type Service struct {
	repo       Repository
	tokens     *auth.TokenIssuer
	bcryptCost int
}

func NewService(repo Repository, tokens *auth.TokenIssuer, bcryptCost int) *Service {
	return &Service{repo: repo, tokens: tokens, bcryptCost: bcryptCost}
}

// Register creates a new account. The role defaults to CAREGIVER and the
// email must be unused.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return nil, apperr.Validation("a valid email is required")
	}
	if in.Name == "" {
		return nil, apperr.Validation("name is required")
	}
	if len(in.Password) < 8 {
		return nil, apperr.Validation("password must be at least 8 characters")
	}
	if in.Role == "" {
		in.Role = auth.RoleCaregiver
	}
	if !validRoles[in.Role] {
		return nil, apperr.Validation("invalid role: %s", in.Role)
	}

	if _, err := s.repo.GetByEmail(ctx, in.Email); err == nil {
		return nil, apperr.Duplicate("email already registered")
	} else if !apperr.IsKind(err, apperr.KindNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	u := &User{
		Email:          in.Email,
		Name:           in.Name,
		HashedPassword: string(hash),
		Role:           in.Role,
		IsActive:       true,
		Phone:          in.Phone,
		Timezone:       defaultStr(in.Timezone, "UTC"),
		Language:       defaultStr(in.Language, "en"),
		NotifyEmail:    true,
		NotifyPush:     true,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate verifies credentials and issues a session token. Unknown
// email and wrong password fail identically.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, apperr.InvalidCredentials("incorrect email or password")
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password)) != nil {
		return nil, apperr.InvalidCredentials("incorrect email or password")
	}
	if !u.IsActive {
		return nil, apperr.InactiveAccount("account is deactivated")
	}

	token, err := s.tokens.Issue(u.ID, u.Email, u.Role)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	u.LastLogin = &now
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}

	return &Session{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(s.tokens.Expiry().Seconds()),
		User:        u,
	}, nil
}

// ResolveUser implements the auth middleware's user lookup, so tokens for
// deleted or deactivated accounts stop working before expiry.
func (s *Service) ResolveUser(ctx context.Context, id uuid.UUID) (string, string, bool, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return "", "", false, apperr.NotFound("account no longer exists")
		}
		return "", "", false, err
	}
	return u.Email, u.Role, u.IsActive, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateProfile applies a partial update to the caller's own profile.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, in UpdateProfileInput) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if *in.Name == "" {
			return nil, apperr.Validation("name cannot be empty")
		}
		u.Name = *in.Name
	}
	if in.Phone != nil {
		u.Phone = in.Phone
	}
	if in.Timezone != nil {
		u.Timezone = *in.Timezone
	}
	if in.Language != nil {
		u.Language = *in.Language
	}
	if in.NotifyEmail != nil {
		u.NotifyEmail = *in.NotifyEmail
	}
	if in.NotifySMS != nil {
		u.NotifySMS = *in.NotifySMS
	}
	if in.NotifyPush != nil {
		u.NotifyPush = *in.NotifyPush
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ChangePassword rotates the caller's password after verifying the current
// one.
func (s *Service) ChangePassword(ctx context.Context, id uuid.UUID, current, newPassword string) error {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(current)) != nil {
		return apperr.InvalidCredentials("current password is incorrect")
	}
	if len(newPassword) < 8 {
		return apperr.Validation("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return err
	}
	u.HashedPassword = string(hash)
	return s.repo.Update(ctx, u)
}

// List returns all accounts, newest first. Admin only at the HTTP layer.
func (s *Service) List(ctx context.Context, limit, skip int) ([]*User, int, error) {
	return s.repo.List(ctx, limit, skip)
}

// ToggleActive flips an account's active flag. Accounts are never deleted.
func (s *Service) ToggleActive(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.IsActive = !u.IsActive
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func defaultStr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
