package treatment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists treatments. Lookups that miss return a not_found
// error.
type Repository interface {
	Create(ctx context.Context, t *Treatment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Treatment, error)
	Update(ctx context.Context, t *Treatment) error
	ListByCaregiver(ctx context.Context, caregiverID uuid.UUID, f ListFilter, limit, skip int) ([]*Treatment, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, skip int) ([]*Treatment, int, error)
	// ActiveMedicationIDs returns the medications referenced by the
	// patient's ACTIVE treatments, for duplicate-therapy checks.
	ActiveMedicationIDs(ctx context.Context, patientID uuid.UUID) ([]uuid.UUID, error)
	// HasActiveTreatments reports an ACTIVE treatment whose end date falls
	// on or after the given day. Used to block patient deletion.
	HasActiveTreatments(ctx context.Context, patientID uuid.UUID, onOrAfter time.Time) (bool, error)
	// CaregiverOfTreatment resolves the ownership chain for the access
	// guard.
	CaregiverOfTreatment(ctx context.Context, treatmentID uuid.UUID) (uuid.UUID, bool, error)
}

// AlarmRepository persists reminder alarms under a treatment.
type AlarmRepository interface {
	// ListAlarms returns the treatment's alarms ordered by time ascending.
	ListAlarms(ctx context.Context, treatmentID uuid.UUID) ([]*Alarm, error)
	CreateAlarm(ctx context.Context, a *Alarm) error
	GetAlarm(ctx context.Context, treatmentID, alarmID uuid.UUID) (*Alarm, error)
	UpdateAlarm(ctx context.Context, a *Alarm) error
	DeleteAlarm(ctx context.Context, treatmentID, alarmID uuid.UUID) error
	// ReplaceAlarms atomically deletes the treatment's alarms and inserts
	// the given set.
	ReplaceAlarms(ctx context.Context, treatmentID uuid.UUID, alarms []*Alarm) error
}
