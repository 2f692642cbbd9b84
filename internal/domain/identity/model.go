// Package identity owns user accounts, registration, login sessions, and
// the admin user management surface.
package identity

import (
	"time"

	"github.com/google/uuid"
)

// User maps to the users table. Accounts are never hard-deleted; admins
// toggle is_active instead.
type User struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	Email          string     `db:"email" json:"email"`
	Name           string     `db:"name" json:"name"`
	HashedPassword string     `db:"hashed_password" json:"-"`
	Role           string     `db:"role" json:"role"`
	IsActive       bool       `db:"is_active" json:"is_active"`
	Phone          *string    `db:"phone" json:"phone,omitempty"`
	Timezone       string     `db:"timezone" json:"timezone"`
	Language       string     `db:"language" json:"language"`
	NotifyEmail    bool       `db:"notify_email" json:"notify_email"`
	NotifySMS      bool       `db:"notify_sms" json:"notify_sms"`
	NotifyPush     bool       `db:"notify_push" json:"notify_push"`
	LastLogin      *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// Session is the payload returned at login.
type Session struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	User        *User  `json:"user"`
}

// RegisterInput is the registration request body.
type RegisterInput struct {
	Email    string  `json:"email"`
	Name     string  `json:"name"`
	Password string  `json:"password"`
	Role     string  `json:"role"`
	Phone    *string `json:"phone"`
	Timezone string  `json:"timezone"`
	Language string  `json:"language"`
}

// UpdateProfileInput carries a partial profile update; nil fields are left
// unchanged.
type UpdateProfileInput struct {
	Name        *string `json:"name"`
	Phone       *string `json:"phone"`
	Timezone    *string `json:"timezone"`
	Language    *string `json:"language"`
	NotifyEmail *bool   `json:"notify_email"`
	NotifySMS   *bool   `json:"notify_sms"`
	NotifyPush  *bool   `json:"notify_push"`
}
