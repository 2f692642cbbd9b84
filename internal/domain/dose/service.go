package dose

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/caretrack/caretrack/internal/platform/apperr"
	"github.com/caretrack/caretrack/internal/platform/auth"
)

// TreatmentSource resolves a treatment to its patient, so every record
// carries both foreign keys.
type TreatmentSource interface {
	TreatmentPatient(ctx context.Context, treatmentID uuid.UUID) (uuid.UUID, error)
}

type Service struct {
	repo       Repository
	treatments TreatmentSource
	guard      *auth.Guard
}

func NewService(repo Repository, treatments TreatmentSource, guard *auth.Guard) *Service {
	return &Service{repo: repo, treatments: treatments, guard: guard}
}

// Record stores a dose event under a treatment. Status defaults to pending.
func (s *Service) Record(ctx context.Context, actor auth.Identity, treatmentID uuid.UUID, in RecordInput) (*Record, error) {
	if err := s.guard.CheckTreatment(ctx, actor, treatmentID); err != nil {
		return nil, err
	}
	patientID, err := s.treatments.TreatmentPatient(ctx, treatmentID)
	if err != nil {
		return nil, err
	}

	if in.ScheduledTime.IsZero() {
		return nil, apperr.Validation("scheduled_time is required")
	}
	if in.Status == "" {
		in.Status = StatusPending
	}
	if !validStatuses[in.Status] {
		return nil, apperr.Validation("status must be one of pending, taken, missed, snoozed")
	}

	d := &Record{
		TreatmentID:   treatmentID,
		PatientID:     patientID,
		ScheduledTime: in.ScheduledTime,
		ActualTime:    in.ActualTime,
		Status:        in.Status,
		Notes:         in.Notes,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// MarkTaken marks a dose as taken at the given moment (now when zero).
func (s *Service) MarkTaken(ctx context.Context, actor auth.Identity, recordID uuid.UUID, at time.Time) (*Record, error) {
	return s.setStatus(ctx, actor, recordID, StatusTaken, at)
}

// MarkMissed marks a dose as missed.
func (s *Service) MarkMissed(ctx context.Context, actor auth.Identity, recordID uuid.UUID) (*Record, error) {
	return s.setStatus(ctx, actor, recordID, StatusMissed, time.Time{})
}

func (s *Service) setStatus(ctx context.Context, actor auth.Identity, recordID uuid.UUID, status string, at time.Time) (*Record, error) {
	d, err := s.repo.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.CheckTreatment(ctx, actor, d.TreatmentID); err != nil {
		return nil, err
	}

	d.Status = status
	if status == StatusTaken {
		if at.IsZero() {
			at = time.Now()
		}
		d.ActualTime = &at
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// ListByTreatment returns a treatment's dose history.
func (s *Service) ListByTreatment(ctx context.Context, actor auth.Identity, treatmentID uuid.UUID, f ListFilter, limit, skip int) ([]*Record, int, error) {
	if err := s.guard.CheckTreatment(ctx, actor, treatmentID); err != nil {
		return nil, 0, err
	}
	return s.repo.ListByTreatment(ctx, treatmentID, f, limit, skip)
}

// ListByPatient returns a patient's dose history across treatments.
func (s *Service) ListByPatient(ctx context.Context, actor auth.Identity, patientID uuid.UUID, f ListFilter, limit, skip int) ([]*Record, int, error) {
	if err := s.guard.CheckPatient(ctx, actor, patientID); err != nil {
		return nil, 0, err
	}
	return s.repo.ListByPatient(ctx, patientID, f, limit, skip)
}
