package treatment

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/caretrack/caretrack/internal/platform/apperr"
	"github.com/caretrack/caretrack/internal/platform/auth"
)

// CatalogEntry is the slice of the medication catalog the treatment core
// needs.
type CatalogEntry struct {
	ID          uuid.UUID
	Name        string
	GenericName string
}

// Catalog resolves medication ids against the drug catalog.
type Catalog interface {
	Entry(ctx context.Context, id uuid.UUID) (*CatalogEntry, error)
}

// ConflictDetector checks a new medication against the patient's active
// treatments before a treatment is created. The default detector flags
// duplicate generic-name therapy.
type ConflictDetector interface {
	Check(ctx context.Context, patientID uuid.UUID, med *CatalogEntry) error
}

type Service struct {
	repo      Repository
	alarms    AlarmRepository
	catalog   Catalog
	patients  auth.PatientOwnerResolver
	guard     *auth.Guard
	conflicts ConflictDetector
}

func NewService(repo Repository, alarms AlarmRepository, catalog Catalog, patients auth.PatientOwnerResolver, guard *auth.Guard) *Service {
	s := &Service{
		repo:     repo,
		alarms:   alarms,
		catalog:  catalog,
		patients: patients,
		guard:    guard,
	}
	s.conflicts = &genericNameDetector{repo: repo, catalog: catalog}
	return s
}

// SetConflictDetector swaps the duplicate-therapy detector.
func (s *Service) SetConflictDetector(d ConflictDetector) {
	s.conflicts = d
}

// genericNameDetector flags a new medication whose generic name matches one
// already in use by an ACTIVE treatment of the same patient.
type genericNameDetector struct {
	repo    Repository
	catalog Catalog
}

func (d *genericNameDetector) Check(ctx context.Context, patientID uuid.UUID, med *CatalogEntry) error {
	if med.GenericName == "" {
		return nil
	}
	ids, err := d.repo.ActiveMedicationIDs(ctx, patientID)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if id == med.ID {
			return apperr.MedicationConflict("patient already has an active treatment with %s", med.Name)
		}
		other, err := d.catalog.Entry(ctx, id)
		if err != nil {
			if apperr.IsKind(err, apperr.KindNotFound) {
				continue
			}
			return err
		}
		if strings.EqualFold(other.GenericName, med.GenericName) {
			return apperr.MedicationConflict("patient already takes %s, which shares the generic %s with %s",
				other.Name, med.GenericName, med.Name)
		}
	}
	return nil
}

func validateCreate(in CreateInput) error {
	if in.PatientID == uuid.Nil {
		return apperr.Validation("patient_id is required")
	}
	if in.MedicationID == uuid.Nil {
		return apperr.Validation("medication_id is required")
	}
	if l := len(in.Dosage); l < 1 || l > 100 {
		return apperr.Validation("dosage must be between 1 and 100 characters")
	}
	if in.Frequency < 1 || in.Frequency > 24 {
		return apperr.Validation("frequency must be between 1 and 24 per day")
	}
	if in.DurationDays < 1 || in.DurationDays > 3650 {
		return apperr.Validation("duration_days must be between 1 and 3650")
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return apperr.Validation("start_date and end_date are required")
	}
	if !in.EndDate.After(in.StartDate) {
		return apperr.InvalidDateRange("end_date must be after start_date")
	}
	return nil
}

// Create runs the creation contract: date ordering, medication existence,
// duplicate-therapy check, then persists the treatment as ACTIVE.
func (s *Service) Create(ctx context.Context, actor auth.Identity, in CreateInput) (*Treatment, error) {
	if err := validateCreate(in); err != nil {
		return nil, err
	}
	if err := s.guard.CheckPatient(ctx, actor, in.PatientID); err != nil {
		return nil, err
	}
	if _, found, err := s.patients.CaregiverOf(ctx, in.PatientID); err != nil {
		return nil, err
	} else if !found {
		return nil, apperr.NotFound("patient not found")
	}

	med, err := s.catalog.Entry(ctx, in.MedicationID)
	if err != nil {
		return nil, err
	}

	if err := s.conflicts.Check(ctx, in.PatientID, med); err != nil {
		return nil, err
	}

	t := &Treatment{
		PatientID:    in.PatientID,
		MedicationID: in.MedicationID,
		CreatedBy:    actor.ID,
		Dosage:       in.Dosage,
		Frequency:    in.Frequency,
		DurationDays: in.DurationDays,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		Instructions: in.Instructions,
		Notes:        in.Notes,
		Status:       StatusActive,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Get returns a treatment the actor is allowed to see.
func (s *Service) Get(ctx context.Context, actor auth.Identity, id uuid.UUID) (*Treatment, error) {
	if err := s.guard.CheckTreatment(ctx, actor, id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Update applies a partial update. When only one date changes it is
// validated against the stored other date.
func (s *Service) Update(ctx context.Context, actor auth.Identity, id uuid.UUID, in UpdateInput) (*Treatment, error) {
	if err := s.guard.CheckTreatment(ctx, actor, id); err != nil {
		return nil, err
	}
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Dosage != nil {
		if l := len(*in.Dosage); l < 1 || l > 100 {
			return nil, apperr.Validation("dosage must be between 1 and 100 characters")
		}
		t.Dosage = *in.Dosage
	}
	if in.Frequency != nil {
		if *in.Frequency < 1 || *in.Frequency > 24 {
			return nil, apperr.Validation("frequency must be between 1 and 24 per day")
		}
		t.Frequency = *in.Frequency
	}
	if in.DurationDays != nil {
		if *in.DurationDays < 1 || *in.DurationDays > 3650 {
			return nil, apperr.Validation("duration_days must be between 1 and 3650")
		}
		t.DurationDays = *in.DurationDays
	}

	start, end := t.StartDate, t.EndDate
	if in.StartDate != nil {
		start = *in.StartDate
	}
	if in.EndDate != nil {
		end = *in.EndDate
	}
	if !end.After(start) {
		return nil, apperr.InvalidDateRange("end_date must be after start_date")
	}
	t.StartDate, t.EndDate = start, end

	if in.Instructions != nil {
		t.Instructions = in.Instructions
	}
	if in.Notes != nil {
		t.Notes = in.Notes
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// List returns the caregiver's treatments with optional filters.
func (s *Service) List(ctx context.Context, actor auth.Identity, f ListFilter, limit, skip int) ([]*Treatment, int, error) {
	if f.Status != "" {
		switch f.Status {
		case StatusActive, StatusSuspended, StatusCompleted, StatusCancelled:
		default:
			return nil, 0, apperr.Validation("invalid status filter: %s", f.Status)
		}
	}
	return s.repo.ListByCaregiver(ctx, actor.ID, f, limit, skip)
}

// ListByPatient returns one patient's treatments, ownership-gated.
func (s *Service) ListByPatient(ctx context.Context, actor auth.Identity, patientID uuid.UUID, limit, skip int) ([]*Treatment, int, error) {
	if err := s.guard.CheckPatient(ctx, actor, patientID); err != nil {
		return nil, 0, err
	}
	return s.repo.ListByPatient(ctx, patientID, limit, skip)
}

func terminal(status string) bool {
	return status == StatusCompleted || status == StatusCancelled
}

// Activate resumes a SUSPENDED treatment. Activating an ACTIVE treatment is
// an idempotent no-op.
func (s *Service) Activate(ctx context.Context, actor auth.Identity, id uuid.UUID) (*Treatment, error) {
	if err := s.guard.CheckTreatment(ctx, actor, id); err != nil {
		return nil, err
	}
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if terminal(t.Status) {
		return nil, apperr.Conflict("treatment is %s and accepts no further changes", strings.ToLower(t.Status))
	}
	if t.Status == StatusActive {
		return t, nil
	}
	t.Status = StatusActive
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Suspend pauses a treatment, recording the reason in its notes.
func (s *Service) Suspend(ctx context.Context, actor auth.Identity, id uuid.UUID, reason string) (*Treatment, error) {
	if err := s.guard.CheckTreatment(ctx, actor, id); err != nil {
		return nil, err
	}
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if terminal(t.Status) {
		return nil, apperr.Conflict("treatment is %s and accepts no further changes", strings.ToLower(t.Status))
	}
	t.Status = StatusSuspended
	appendNote(t, "Suspended", reason)
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Complete finishes a treatment, recording closing notes.
func (s *Service) Complete(ctx context.Context, actor auth.Identity, id uuid.UUID, notes string) (*Treatment, error) {
	if err := s.guard.CheckTreatment(ctx, actor, id); err != nil {
		return nil, err
	}
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if terminal(t.Status) {
		return nil, apperr.Conflict("treatment is %s and accepts no further changes", strings.ToLower(t.Status))
	}
	t.Status = StatusCompleted
	appendNote(t, "Completed", notes)
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Cancel soft-deletes a treatment by moving it to CANCELLED. The row is kept
// for history and reporting.
func (s *Service) Cancel(ctx context.Context, actor auth.Identity, id uuid.UUID) (*Treatment, error) {
	if err := s.guard.CheckTreatment(ctx, actor, id); err != nil {
		return nil, err
	}
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if terminal(t.Status) {
		return nil, apperr.Conflict("treatment is %s and accepts no further changes", strings.ToLower(t.Status))
	}
	t.Status = StatusCancelled
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func appendNote(t *Treatment, prefix, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	entry := prefix + ": " + text
	if t.Notes == nil || *t.Notes == "" {
		t.Notes = &entry
		return
	}
	combined := *t.Notes + "\n" + entry
	t.Notes = &combined
}

// -- Alarms --

// ListAlarms returns a treatment's alarms ordered by time.
func (s *Service) ListAlarms(ctx context.Context, actor auth.Identity, treatmentID uuid.UUID) ([]*Alarm, error) {
	if err := s.guard.CheckTreatment(ctx, actor, treatmentID); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByID(ctx, treatmentID); err != nil {
		return nil, err
	}
	alarms, err := s.alarms.ListAlarms(ctx, treatmentID)
	if err != nil {
		return nil, err
	}
	if alarms == nil {
		alarms = []*Alarm{}
	}
	return alarms, nil
}

// CreateAlarm adds a reminder to a treatment.
func (s *Service) CreateAlarm(ctx context.Context, actor auth.Identity, treatmentID uuid.UUID, in AlarmInput) (*Alarm, error) {
	if err := s.guard.CheckTreatment(ctx, actor, treatmentID); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByID(ctx, treatmentID); err != nil {
		return nil, err
	}
	if err := ValidateAlarmTime(in.Time); err != nil {
		return nil, err
	}
	a := in.toAlarm(treatmentID)
	if err := s.alarms.CreateAlarm(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// UpdateAlarm applies a partial update to one alarm.
func (s *Service) UpdateAlarm(ctx context.Context, actor auth.Identity, treatmentID, alarmID uuid.UUID, in AlarmInput) (*Alarm, error) {
	if err := s.guard.CheckTreatment(ctx, actor, treatmentID); err != nil {
		return nil, err
	}
	a, err := s.alarms.GetAlarm(ctx, treatmentID, alarmID)
	if err != nil {
		return nil, err
	}

	if in.Time != "" {
		if err := ValidateAlarmTime(in.Time); err != nil {
			return nil, err
		}
		a.Time = in.Time
	}
	if in.IsActive != nil {
		a.IsActive = *in.IsActive
	}
	if in.SoundEnabled != nil {
		a.SoundEnabled = *in.SoundEnabled
	}
	if in.VisualEnabled != nil {
		a.VisualEnabled = *in.VisualEnabled
	}
	if in.Description != nil {
		a.Description = *in.Description
	}

	if err := s.alarms.UpdateAlarm(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// DeleteAlarm removes one alarm from a treatment.
func (s *Service) DeleteAlarm(ctx context.Context, actor auth.Identity, treatmentID, alarmID uuid.UUID) error {
	if err := s.guard.CheckTreatment(ctx, actor, treatmentID); err != nil {
		return err
	}
	return s.alarms.DeleteAlarm(ctx, treatmentID, alarmID)
}

// SyncAlarms replaces the treatment's alarm set in one transaction. Every
// entry is validated first; any invalid entry fails the whole call and the
// stored set is untouched. The result is the new set ordered by time.
func (s *Service) SyncAlarms(ctx context.Context, actor auth.Identity, treatmentID uuid.UUID, inputs []AlarmInput) ([]*Alarm, error) {
	if err := s.guard.CheckTreatment(ctx, actor, treatmentID); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByID(ctx, treatmentID); err != nil {
		return nil, err
	}

	for i, in := range inputs {
		if err := ValidateAlarmTime(in.Time); err != nil {
			return nil, apperr.InvalidTimeFormat("alarm %d: %s", i, err.(*apperr.Error).Message)
		}
	}

	alarms := make([]*Alarm, 0, len(inputs))
	for _, in := range inputs {
		alarms = append(alarms, in.toAlarm(treatmentID))
	}
	sort.SliceStable(alarms, func(i, j int) bool { return alarms[i].Time < alarms[j].Time })

	if err := s.alarms.ReplaceAlarms(ctx, treatmentID, alarms); err != nil {
		return nil, err
	}
	return alarms, nil
}
