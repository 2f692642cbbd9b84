package alert

import (
	"context"

	"github.com/google/uuid"

	"github.com/caretrack/caretrack/internal/platform/apperr"
	"github.com/caretrack/caretrack/internal/platform/auth"
)

type Service struct {
	repo  Repository
	guard *auth.Guard
}

func NewService(repo Repository, guard *auth.Guard) *Service {
	return &Service{repo: repo, guard: guard}
}

// Create raises an alert on a patient. Used by internal jobs and admins.
func (s *Service) Create(ctx context.Context, actor auth.Identity, in CreateInput) (*Alert, error) {
	if in.PatientID == uuid.Nil {
		return nil, apperr.Validation("patient_id is required")
	}
	if err := s.guard.CheckPatient(ctx, actor, in.PatientID); err != nil {
		return nil, err
	}
	if !validTypes[in.Type] {
		return nil, apperr.Validation("type must be one of missed_dose, late_dose, low_compliance, treatment_end")
	}
	if in.Severity == "" {
		in.Severity = SeverityMedium
	}
	if !validSeverities[in.Severity] {
		return nil, apperr.Validation("severity must be one of low, medium, high")
	}
	if in.Message == "" {
		return nil, apperr.Validation("message is required")
	}

	a := &Alert{
		PatientID:   in.PatientID,
		TreatmentID: in.TreatmentID,
		Type:        in.Type,
		Severity:    in.Severity,
		Message:     in.Message,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// UnreadCount returns the unread alert total across the actor's
// patients, for the notification badge.
func (s *Service) UnreadCount(ctx context.Context, actor auth.Identity) (int, error) {
	return s.repo.CountUnreadByCaregiver(ctx, actor.ID)
}

// ListByPatient returns a patient's alerts, optionally only unread.
func (s *Service) ListByPatient(ctx context.Context, actor auth.Identity, patientID uuid.UUID, unreadOnly bool, limit, skip int) ([]*Alert, int, error) {
	if err := s.guard.CheckPatient(ctx, actor, patientID); err != nil {
		return nil, 0, err
	}
	return s.repo.ListByPatient(ctx, patientID, unreadOnly, limit, skip)
}

// MarkRead flags an alert as read.
func (s *Service) MarkRead(ctx context.Context, actor auth.Identity, id uuid.UUID) (*Alert, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.CheckPatient(ctx, actor, a.PatientID); err != nil {
		return nil, err
	}
	if a.IsRead {
		return a, nil
	}
	a.IsRead = true
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}
