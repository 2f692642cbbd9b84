// Package patient owns patient records and their caregiver scoping.
package patient

import (
	"time"

	"github.com/google/uuid"
)

// EmergencyContact is stored as a JSONB column on the patient row.
type EmergencyContact struct {
	Name         string  `json:"name"`
	Phone        string  `json:"phone"`
	Relationship string  `json:"relationship"`
	Email        *string `json:"email,omitempty"`
}

// Patient maps to the patients table. Every patient belongs to exactly one
// caregiver.
type Patient struct {
	ID                uuid.UUID         `db:"id" json:"id"`
	CaregiverID       uuid.UUID         `db:"caregiver_id" json:"caregiver_id"`
	Name              string            `db:"name" json:"name"`
	Email             string            `db:"email" json:"email"`
	Phone             *string           `db:"phone" json:"phone,omitempty"`
	DateOfBirth       *time.Time        `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender            *string           `db:"gender" json:"gender,omitempty"`
	Address           *string           `db:"address" json:"address,omitempty"`
	EmergencyContact  *EmergencyContact `db:"emergency_contact" json:"emergency_contact,omitempty"`
	MedicalHistory    []string          `db:"medical_history" json:"medical_history"`
	Allergies         []string          `db:"allergies" json:"allergies"`
	Timezone          string            `db:"timezone" json:"timezone"`
	PreferredLanguage string            `db:"preferred_language" json:"preferred_language"`
	CreatedAt         time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time         `db:"updated_at" json:"updated_at"`
}

var validGenders = map[string]bool{
	"male": true, "female": true, "other": true,
}

// CreateInput is the patient creation request body.
type CreateInput struct {
	Name              string            `json:"name"`
	Email             string            `json:"email"`
	Phone             *string           `json:"phone"`
	DateOfBirth       *time.Time        `json:"date_of_birth"`
	Gender            *string           `json:"gender"`
	Address           *string           `json:"address"`
	EmergencyContact  *EmergencyContact `json:"emergency_contact"`
	MedicalHistory    []string          `json:"medical_history"`
	Allergies         []string          `json:"allergies"`
	Timezone          string            `json:"timezone"`
	PreferredLanguage string            `json:"preferred_language"`
}

// UpdateInput carries a partial patient update; nil fields are left
// unchanged.
type UpdateInput struct {
	Name              *string           `json:"name"`
	Email             *string           `json:"email"`
	Phone             *string           `json:"phone"`
	DateOfBirth       *time.Time        `json:"date_of_birth"`
	Gender            *string           `json:"gender"`
	Address           *string           `json:"address"`
	EmergencyContact  *EmergencyContact `json:"emergency_contact"`
	MedicalHistory    []string          `json:"medical_history"`
	Allergies         []string          `json:"allergies"`
	Timezone          *string           `json:"timezone"`
	PreferredLanguage *string           `json:"preferred_language"`
}

// ListFilter narrows the caregiver-scoped patient listing.
type ListFilter struct {
	Search string
	Gender string
}
