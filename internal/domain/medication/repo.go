package medication

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists catalog entries. Lookups that miss return a not_found
// error.
type Repository interface {
	Create(ctx context.Context, m *Medication) error
	GetByID(ctx context.Context, id uuid.UUID) (*Medication, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*Medication, error)
	// FindDuplicate matches on (lower(name), dosage, unit).
	FindDuplicate(ctx context.Context, name, dosage, unit string) (*Medication, error)
	Update(ctx context.Context, m *Medication) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f ListFilter, limit, skip int) ([]*Medication, int, error)
	// SearchNames returns up to limit catalog names matching the prefix,
	// for autocomplete.
	SearchNames(ctx context.Context, prefix string, limit int) ([]string, error)
	// InActiveUse reports whether any ACTIVE treatment references the
	// medication.
	InActiveUse(ctx context.Context, id uuid.UUID) (bool, error)
}
