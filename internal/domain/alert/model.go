// Package alert owns patient care alerts raised by missed doses, low
// compliance, and treatment end.
package alert

import (
	"time"

	"github.com/google/uuid"
)

// Alert types.
const (
	TypeMissedDose    = "missed_dose"
	TypeLateDose      = "late_dose"
	TypeLowCompliance = "low_compliance"
	TypeTreatmentEnd  = "treatment_end"
)

// Severities.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

var validTypes = map[string]bool{
	TypeMissedDose: true, TypeLateDose: true, TypeLowCompliance: true, TypeTreatmentEnd: true,
}

var validSeverities = map[string]bool{
	SeverityLow: true, SeverityMedium: true, SeverityHigh: true,
}

// Alert maps to the alerts table.
type Alert struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	PatientID   uuid.UUID  `db:"patient_id" json:"patient_id"`
	TreatmentID *uuid.UUID `db:"treatment_id" json:"treatment_id,omitempty"`
	Type        string     `db:"type" json:"type"`
	Severity    string     `db:"severity" json:"severity"`
	Message     string     `db:"message" json:"message"`
	IsRead      bool       `db:"is_read" json:"is_read"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// CreateInput is the alert creation request body.
type CreateInput struct {
	PatientID   uuid.UUID  `json:"patient_id"`
	TreatmentID *uuid.UUID `json:"treatment_id"`
	Type        string     `json:"type"`
	Severity    string     `json:"severity"`
	Message     string     `json:"message"`
}
