// Package treatment owns the treatment lifecycle and the reminder alarms
// attached to each treatment.
package treatment

import (
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/caretrack/caretrack/internal/platform/apperr"
)

// Treatment statuses. COMPLETED and CANCELLED are terminal.
const (
	StatusActive    = "ACTIVE"
	StatusSuspended = "SUSPENDED"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
)

// Treatment maps to the treatments table.
type Treatment struct {
	ID           uuid.UUID `db:"id" json:"id"`
	PatientID    uuid.UUID `db:"patient_id" json:"patient_id"`
	MedicationID uuid.UUID `db:"medication_id" json:"medication_id"`
	CreatedBy    uuid.UUID `db:"created_by" json:"created_by"`
	Dosage       string    `db:"dosage" json:"dosage"`
	Frequency    int       `db:"frequency" json:"frequency"`
	DurationDays int       `db:"duration_days" json:"duration_days"`
	StartDate    time.Time `db:"start_date" json:"start_date"`
	EndDate      time.Time `db:"end_date" json:"end_date"`
	Instructions *string   `db:"instructions" json:"instructions,omitempty"`
	Notes        *string   `db:"notes" json:"notes,omitempty"`
	Status       string    `db:"status" json:"status"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Alarm maps to the alarms table. Time is a wall-clock "HH:MM" string in the
// patient's timezone.
type Alarm struct {
	ID            uuid.UUID `db:"id" json:"id"`
	TreatmentID   uuid.UUID `db:"treatment_id" json:"treatment_id"`
	Time          string    `db:"time" json:"time"`
	IsActive      bool      `db:"is_active" json:"is_active"`
	SoundEnabled  bool      `db:"sound_enabled" json:"sound_enabled"`
	VisualEnabled bool      `db:"visual_enabled" json:"visual_enabled"`
	Description   string    `db:"description" json:"description"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Alarm times must be zero-padded 24h wall-clock values; "8:30" is invalid.
var alarmTimePattern = regexp.MustCompile(`^\d{2}:\d{2}$`)

// ValidateAlarmTime checks the "HH:MM" format, hour 00-23 and minute 00-59.
func ValidateAlarmTime(t string) error {
	if !alarmTimePattern.MatchString(t) {
		return apperr.InvalidTimeFormat("alarm time must be in HH:MM format, got %q", t)
	}
	hour, _ := strconv.Atoi(t[:2])
	minute, _ := strconv.Atoi(t[3:])
	if hour > 23 {
		return apperr.InvalidTimeFormat("alarm hour must be 00-23, got %q", t)
	}
	if minute > 59 {
		return apperr.InvalidTimeFormat("alarm minute must be 00-59, got %q", t)
	}
	return nil
}

// CreateInput is the treatment creation request body.
type CreateInput struct {
	PatientID    uuid.UUID `json:"patient_id"`
	MedicationID uuid.UUID `json:"medication_id"`
	Dosage       string    `json:"dosage"`
	Frequency    int       `json:"frequency"`
	DurationDays int       `json:"duration_days"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	Instructions *string   `json:"instructions"`
	Notes        *string   `json:"notes"`
}

// UpdateInput carries a partial treatment update; nil fields are left
// unchanged.
type UpdateInput struct {
	Dosage       *string    `json:"dosage"`
	Frequency    *int       `json:"frequency"`
	DurationDays *int       `json:"duration_days"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	Instructions *string    `json:"instructions"`
	Notes        *string    `json:"notes"`
}

// ListFilter narrows the caregiver-scoped treatment listing.
type ListFilter struct {
	PatientID    uuid.UUID
	MedicationID uuid.UUID
	Status       string
}

// AlarmInput is a single alarm in create, update, and sync requests.
type AlarmInput struct {
	Time          string  `json:"time"`
	IsActive      *bool   `json:"is_active"`
	SoundEnabled  *bool   `json:"sound_enabled"`
	VisualEnabled *bool   `json:"visual_enabled"`
	Description   *string `json:"description"`
}

func (in AlarmInput) toAlarm(treatmentID uuid.UUID) *Alarm {
	a := &Alarm{
		TreatmentID:   treatmentID,
		Time:          in.Time,
		IsActive:      true,
		SoundEnabled:  true,
		VisualEnabled: true,
	}
	if in.IsActive != nil {
		a.IsActive = *in.IsActive
	}
	if in.SoundEnabled != nil {
		a.SoundEnabled = *in.SoundEnabled
	}
	if in.VisualEnabled != nil {
		a.VisualEnabled = *in.VisualEnabled
	}
	if in.Description != nil {
		a.Description = *in.Description
	}
	return a
}
