// Package reporting serves the read-only dashboards. Everything here is
// computed from live rows; nothing in this package mutates state.
package reporting

import (
	"time"

	"github.com/google/uuid"
)

// Overview is the caregiver dashboard headline block.
type Overview struct {
	Patients            int `json:"patients"`
	ActiveTreatments    int `json:"active_treatments"`
	SuspendedTreatments int `json:"suspended_treatments"`
	CompletedTreatments int `json:"completed_treatments"`
	CancelledTreatments int `json:"cancelled_treatments"`
	UnreadAlerts        int `json:"unread_alerts"`
}

// DayCounts are the raw dose tallies for one calendar day.
type DayCounts struct {
	Day       time.Time
	Scheduled int
	Taken     int
	Missed    int
}

// TrendPoint is one day in the compliance trend, with the compliance rate
// over that day's scheduled doses.
type TrendPoint struct {
	Date      string  `json:"date"`
	Scheduled int     `json:"scheduled"`
	Taken     int     `json:"taken"`
	Missed    int     `json:"missed"`
	Rate      float64 `json:"rate"`
}

// MedicationCount is one bar of the medication distribution.
type MedicationCount struct {
	MedicationID uuid.UUID `json:"medication_id"`
	Name         string    `json:"name"`
	Treatments   int       `json:"treatments"`
}

// UpcomingDose is a reminder due within the lookahead window.
type UpcomingDose struct {
	TreatmentID    uuid.UUID `json:"treatment_id"`
	PatientID      uuid.UUID `json:"patient_id"`
	PatientName    string    `json:"patient_name"`
	MedicationName string    `json:"medication_name"`
	Time           string    `json:"time"`
}

// PatientStats is the per-patient treatment and compliance summary.
type PatientStats struct {
	PatientID           uuid.UUID `json:"patient_id"`
	ActiveTreatments    int       `json:"active_treatments"`
	SuspendedTreatments int       `json:"suspended_treatments"`
	CompletedTreatments int       `json:"completed_treatments"`
	CancelledTreatments int       `json:"cancelled_treatments"`
	TotalDoses          int       `json:"total_doses"`
	TakenDoses          int       `json:"taken_doses"`
	MissedDoses         int       `json:"missed_doses"`
	ComplianceRate      float64   `json:"compliance_rate"`
}
