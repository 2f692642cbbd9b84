package patient

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists patient records. Lookups that miss return a not_found
// error.
type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByEmail(ctx context.Context, email string) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	// Delete removes the patient row; treatments and their dependents
	// cascade at the schema level.
	Delete(ctx context.Context, id uuid.UUID) error
	ListByCaregiver(ctx context.Context, caregiverID uuid.UUID, f ListFilter, limit, skip int) ([]*Patient, int, error)
	// CaregiverOf resolves the ownership chain for the access guard.
	CaregiverOf(ctx context.Context, patientID uuid.UUID) (uuid.UUID, bool, error)
}
