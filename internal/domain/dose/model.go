// Package dose owns dose records, the ground truth for compliance
// reporting.
package dose

import (
	"time"

	"github.com/google/uuid"
)

// Dose statuses.
const (
	StatusPending = "pending"
	StatusTaken   = "taken"
	StatusMissed  = "missed"
	StatusSnoozed = "snoozed"
)

var validStatuses = map[string]bool{
	StatusPending: true, StatusTaken: true, StatusMissed: true, StatusSnoozed: true,
}

// Record maps to the dose_records table.
type Record struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	TreatmentID   uuid.UUID  `db:"treatment_id" json:"treatment_id"`
	PatientID     uuid.UUID  `db:"patient_id" json:"patient_id"`
	ScheduledTime time.Time  `db:"scheduled_time" json:"scheduled_time"`
	ActualTime    *time.Time `db:"actual_time" json:"actual_time,omitempty"`
	Status        string     `db:"status" json:"status"`
	Notes         *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

// RecordInput is the dose recording request body.
type RecordInput struct {
	ScheduledTime time.Time  `json:"scheduled_time"`
	ActualTime    *time.Time `json:"actual_time"`
	Status        string     `json:"status"`
	Notes         *string    `json:"notes"`
}

// ListFilter narrows dose listings to a time window.
type ListFilter struct {
	From *time.Time
	To   *time.Time
}
