package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/caretrack/caretrack/internal/platform/apperr"
)

// PatientOwnerResolver reports the caregiver that owns a patient.
type PatientOwnerResolver interface {
	// CaregiverOf returns the owning caregiver id, or false when the patient
	// does not exist.
	CaregiverOf(ctx context.Context, patientID uuid.UUID) (uuid.UUID, bool, error)
}

// TreatmentOwnerResolver reports the caregiver that owns a treatment, through
// its patient.
type TreatmentOwnerResolver interface {
	CaregiverOfTreatment(ctx context.Context, treatmentID uuid.UUID) (uuid.UUID, bool, error)
}

// Guard enforces the caregiver ownership chain. A missing row and a foreign
// row both fail forbidden so callers cannot probe for existence.
type Guard struct {
	patients   PatientOwnerResolver
	treatments TreatmentOwnerResolver
}

func NewGuard(patients PatientOwnerResolver, treatments TreatmentOwnerResolver) *Guard {
	return &Guard{patients: patients, treatments: treatments}
}

// CheckPatient allows ADMIN, or the caregiver that owns the patient.
func (g *Guard) CheckPatient(ctx context.Context, identity Identity, patientID uuid.UUID) error {
	if identity.IsAdmin() {
		return nil
	}
	ownerID, found, err := g.patients.CaregiverOf(ctx, patientID)
	if err != nil {
		return err
	}
	if !found || ownerID != identity.ID {
		return apperr.Forbidden("access to this patient is not allowed")
	}
	return nil
}

// CheckTreatment allows ADMIN, or the caregiver that owns the treatment's
// patient.
func (g *Guard) CheckTreatment(ctx context.Context, identity Identity, treatmentID uuid.UUID) error {
	if identity.IsAdmin() {
		return nil
	}
	ownerID, found, err := g.treatments.CaregiverOfTreatment(ctx, treatmentID)
	if err != nil {
		return err
	}
	if !found || ownerID != identity.ID {
		return apperr.Forbidden("access to this treatment is not allowed")
	}
	return nil
}
