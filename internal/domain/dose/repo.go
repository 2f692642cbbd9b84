package dose

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists dose records.
type Repository interface {
	Create(ctx context.Context, r *Record) error
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)
	Update(ctx context.Context, r *Record) error
	ListByTreatment(ctx context.Context, treatmentID uuid.UUID, f ListFilter, limit, skip int) ([]*Record, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, f ListFilter, limit, skip int) ([]*Record, int, error)
}
