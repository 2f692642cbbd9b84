package alert

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists alerts.
type Repository interface {
	Create(ctx context.Context, a *Alert) error
	GetByID(ctx context.Context, id uuid.UUID) (*Alert, error)
	Update(ctx context.Context, a *Alert) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, unreadOnly bool, limit, skip int) ([]*Alert, int, error)
	// CountUnreadByCaregiver counts unread alerts across the caregiver's
	// patients, for the dashboard.
	CountUnreadByCaregiver(ctx context.Context, caregiverID uuid.UUID) (int, error)
}
