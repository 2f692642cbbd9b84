package reporting

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository runs the read-only aggregate queries behind the dashboards.
type Repository interface {
	Overview(ctx context.Context, caregiverID uuid.UUID) (*Overview, error)
	// DoseCountsByDay tallies the caregiver's dose records per calendar day
	// in [from, to). Days without records are absent.
	DoseCountsByDay(ctx context.Context, caregiverID uuid.UUID, from, to time.Time) ([]DayCounts, error)
	MedicationDistribution(ctx context.Context, caregiverID uuid.UUID) ([]MedicationCount, error)
	// UpcomingAlarms returns active alarms on the caregiver's ACTIVE
	// treatments, ordered by time.
	UpcomingAlarms(ctx context.Context, caregiverID uuid.UUID) ([]UpcomingDose, error)
	PatientStats(ctx context.Context, patientID uuid.UUID) (*PatientStats, error)
}
