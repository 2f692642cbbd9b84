package patient

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/caretrack/caretrack/internal/platform/apperr"
	"github.com/caretrack/caretrack/internal/platform/auth"
)

// TreatmentChecker reports whether a patient still has a live treatment.
// Implemented by the treatment repository.
type TreatmentChecker interface {
	HasActiveTreatments(ctx context.Context, patientID uuid.UUID, onOrAfter time.Time) (bool, error)
}

type Service struct {
	repo       Repository
	treatments TreatmentChecker
	guard      *auth.Guard
}

func NewService(repo Repository, treatments TreatmentChecker, guard *auth.Guard) *Service {
	return &Service{repo: repo, treatments: treatments, guard: guard}
}

// Create registers a patient under the acting caregiver. Admins may create
// on behalf of a caregiver by passing caregiverID; everyone else owns what
// they create.
func (s *Service) Create(ctx context.Context, actor auth.Identity, in CreateInput) (*Patient, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Name == "" {
		return nil, apperr.Validation("name is required")
	}
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return nil, apperr.Validation("a valid email is required")
	}
	if in.Gender != nil && !validGenders[*in.Gender] {
		return nil, apperr.Validation("gender must be male, female, or other")
	}

	if _, err := s.repo.GetByEmail(ctx, in.Email); err == nil {
		return nil, apperr.Duplicate("a patient with this email already exists")
	} else if !apperr.IsKind(err, apperr.KindNotFound) {
		return nil, err
	}

	p := &Patient{
		CaregiverID:       actor.ID,
		Name:              in.Name,
		Email:             in.Email,
		Phone:             in.Phone,
		DateOfBirth:       in.DateOfBirth,
		Gender:            in.Gender,
		Address:           in.Address,
		EmergencyContact:  in.EmergencyContact,
		MedicalHistory:    emptyIfNil(in.MedicalHistory),
		Allergies:         emptyIfNil(in.Allergies),
		Timezone:          defaultStr(in.Timezone, "UTC"),
		PreferredLanguage: defaultStr(in.PreferredLanguage, "en"),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Get returns a patient the actor is allowed to see.
func (s *Service) Get(ctx context.Context, actor auth.Identity, id uuid.UUID) (*Patient, error) {
	if err := s.guard.CheckPatient(ctx, actor, id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Update applies a partial update to an owned patient.
func (s *Service) Update(ctx context.Context, actor auth.Identity, id uuid.UUID, in UpdateInput) (*Patient, error) {
	if err := s.guard.CheckPatient(ctx, actor, id); err != nil {
		return nil, err
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if *in.Name == "" {
			return nil, apperr.Validation("name cannot be empty")
		}
		p.Name = *in.Name
	}
	if in.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*in.Email))
		if email == "" || !strings.Contains(email, "@") {
			return nil, apperr.Validation("a valid email is required")
		}
		if email != p.Email {
			if other, err := s.repo.GetByEmail(ctx, email); err == nil && other.ID != p.ID {
				return nil, apperr.Duplicate("a patient with this email already exists")
			} else if err != nil && !apperr.IsKind(err, apperr.KindNotFound) {
				return nil, err
			}
			p.Email = email
		}
	}
	if in.Phone != nil {
		p.Phone = in.Phone
	}
	if in.DateOfBirth != nil {
		p.DateOfBirth = in.DateOfBirth
	}
	if in.Gender != nil {
		if !validGenders[*in.Gender] {
			return nil, apperr.Validation("gender must be male, female, or other")
		}
		p.Gender = in.Gender
	}
	if in.Address != nil {
		p.Address = in.Address
	}
	if in.EmergencyContact != nil {
		p.EmergencyContact = in.EmergencyContact
	}
	if in.MedicalHistory != nil {
		p.MedicalHistory = in.MedicalHistory
	}
	if in.Allergies != nil {
		p.Allergies = in.Allergies
	}
	if in.Timezone != nil {
		p.Timezone = *in.Timezone
	}
	if in.PreferredLanguage != nil {
		p.PreferredLanguage = *in.PreferredLanguage
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a patient. Blocked while the patient has an ACTIVE
// treatment that has not yet passed its end date; otherwise the delete
// cascades to treatments, alarms, dose records, and alerts.
func (s *Service) Delete(ctx context.Context, actor auth.Identity, id uuid.UUID) error {
	if err := s.guard.CheckPatient(ctx, actor, id); err != nil {
		return err
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	today := time.Now().Truncate(24 * time.Hour)
	live, err := s.treatments.HasActiveTreatments(ctx, id, today)
	if err != nil {
		return err
	}
	if live {
		return apperr.DependentExists("patient has active treatments and cannot be deleted")
	}

	return s.repo.Delete(ctx, id)
}

// List returns the actor's patients. Admins see their own id's scope unless
// they query on behalf of a caregiver via the filter.
func (s *Service) List(ctx context.Context, actor auth.Identity, f ListFilter, limit, skip int) ([]*Patient, int, error) {
	return s.repo.ListByCaregiver(ctx, actor.ID, f, limit, skip)
}

// AddHistoryEntry appends an entry to the patient's medical history.
func (s *Service) AddHistoryEntry(ctx context.Context, actor auth.Identity, id uuid.UUID, entry string) (*Patient, error) {
	return s.appendList(ctx, actor, id, entry, func(p *Patient) *[]string { return &p.MedicalHistory })
}

// RemoveHistoryEntry removes an entry from the patient's medical history.
func (s *Service) RemoveHistoryEntry(ctx context.Context, actor auth.Identity, id uuid.UUID, entry string) (*Patient, error) {
	return s.removeList(ctx, actor, id, entry, func(p *Patient) *[]string { return &p.MedicalHistory })
}

// AddAllergy appends an allergy to the patient's record.
func (s *Service) AddAllergy(ctx context.Context, actor auth.Identity, id uuid.UUID, entry string) (*Patient, error) {
	return s.appendList(ctx, actor, id, entry, func(p *Patient) *[]string { return &p.Allergies })
}

// RemoveAllergy removes an allergy from the patient's record.
func (s *Service) RemoveAllergy(ctx context.Context, actor auth.Identity, id uuid.UUID, entry string) (*Patient, error) {
	return s.removeList(ctx, actor, id, entry, func(p *Patient) *[]string { return &p.Allergies })
}

func (s *Service) appendList(ctx context.Context, actor auth.Identity, id uuid.UUID, entry string, field func(*Patient) *[]string) (*Patient, error) {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return nil, apperr.Validation("entry cannot be empty")
	}
	if err := s.guard.CheckPatient(ctx, actor, id); err != nil {
		return nil, err
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	list := field(p)
	for _, e := range *list {
		if strings.EqualFold(e, entry) {
			return p, nil
		}
	}
	*list = append(*list, entry)

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) removeList(ctx context.Context, actor auth.Identity, id uuid.UUID, entry string, field func(*Patient) *[]string) (*Patient, error) {
	if err := s.guard.CheckPatient(ctx, actor, id); err != nil {
		return nil, err
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	list := field(p)
	kept := (*list)[:0]
	for _, e := range *list {
		if !strings.EqualFold(e, entry) {
			kept = append(kept, e)
		}
	}
	*list = kept

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func defaultStr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
