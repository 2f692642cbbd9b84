package medication

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/caretrack/caretrack/internal/platform/apperr"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create adds a catalog entry. The normalized (name, dosage, unit) triple
// must be unused.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Medication, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, apperr.Validation("name is required")
	}
	if in.Dosage == "" {
		return nil, apperr.Validation("dosage is required")
	}
	if !validUnits[in.Unit] {
		return nil, apperr.Validation("unit must be one of mg, ml, tablets, capsules, drops, patches")
	}

	if _, err := s.repo.FindDuplicate(ctx, in.Name, in.Dosage, in.Unit); err == nil {
		return nil, apperr.Duplicate("medication %q with dosage %s %s already exists", in.Name, in.Dosage, in.Unit)
	} else if !apperr.IsKind(err, apperr.KindNotFound) {
		return nil, err
	}

	m := &Medication{
		Name:              in.Name,
		Description:       in.Description,
		Dosage:            in.Dosage,
		Unit:              in.Unit,
		Instructions:      in.Instructions,
		SideEffects:       emptyIfNil(in.SideEffects),
		Contraindications: emptyIfNil(in.Contraindications),
		BrandName:         in.BrandName,
		GenericName:       in.GenericName,
		Manufacturer:      in.Manufacturer,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Medication, error) {
	return s.repo.GetByID(ctx, id)
}

// Update applies a partial update. Changing name, dosage, or unit re-runs
// the duplicate check against the rest of the catalog.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Medication, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.Validation("name cannot be empty")
		}
		m.Name = name
	}
	if in.Dosage != nil {
		if *in.Dosage == "" {
			return nil, apperr.Validation("dosage cannot be empty")
		}
		m.Dosage = *in.Dosage
	}
	if in.Unit != nil {
		if !validUnits[*in.Unit] {
			return nil, apperr.Validation("unit must be one of mg, ml, tablets, capsules, drops, patches")
		}
		m.Unit = *in.Unit
	}
	if in.Name != nil || in.Dosage != nil || in.Unit != nil {
		if other, err := s.repo.FindDuplicate(ctx, m.Name, m.Dosage, m.Unit); err == nil && other.ID != m.ID {
			return nil, apperr.Duplicate("medication %q with dosage %s %s already exists", m.Name, m.Dosage, m.Unit)
		} else if err != nil && !apperr.IsKind(err, apperr.KindNotFound) {
			return nil, err
		}
	}

	if in.Description != nil {
		m.Description = in.Description
	}
	if in.Instructions != nil {
		m.Instructions = in.Instructions
	}
	if in.SideEffects != nil {
		m.SideEffects = in.SideEffects
	}
	if in.Contraindications != nil {
		m.Contraindications = in.Contraindications
	}
	if in.BrandName != nil {
		m.BrandName = in.BrandName
	}
	if in.GenericName != nil {
		m.GenericName = in.GenericName
	}
	if in.Manufacturer != nil {
		m.Manufacturer = in.Manufacturer
	}

	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Delete removes a catalog entry. Blocked while any ACTIVE treatment still
// references it.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	inUse, err := s.repo.InActiveUse(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return apperr.DependentExists("medication is referenced by active treatments")
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter, limit, skip int) ([]*Medication, int, error) {
	return s.repo.List(ctx, f, limit, skip)
}

// SearchNames returns catalog names for autocomplete.
func (s *Service) SearchNames(ctx context.Context, prefix string, limit int) ([]string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return []string{}, nil
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	names, err := s.repo.SearchNames(ctx, prefix, limit)
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// AddSideEffect appends a side effect to the entry.
func (s *Service) AddSideEffect(ctx context.Context, id uuid.UUID, entry string) (*Medication, error) {
	return s.appendList(ctx, id, entry, func(m *Medication) *[]string { return &m.SideEffects })
}

// RemoveSideEffect removes a side effect from the entry.
func (s *Service) RemoveSideEffect(ctx context.Context, id uuid.UUID, entry string) (*Medication, error) {
	return s.removeList(ctx, id, entry, func(m *Medication) *[]string { return &m.SideEffects })
}

// AddContraindication appends a contraindication to the entry.
func (s *Service) AddContraindication(ctx context.Context, id uuid.UUID, entry string) (*Medication, error) {
	return s.appendList(ctx, id, entry, func(m *Medication) *[]string { return &m.Contraindications })
}

// RemoveContraindication removes a contraindication from the entry.
func (s *Service) RemoveContraindication(ctx context.Context, id uuid.UUID, entry string) (*Medication, error) {
	return s.removeList(ctx, id, entry, func(m *Medication) *[]string { return &m.Contraindications })
}

// CheckInteractions flags duplicate therapy: pairs among the given
// medications that share a generic name.
func (s *Service) CheckInteractions(ctx context.Context, id uuid.UUID, withIDs []uuid.UUID) ([]Interaction, error) {
	target, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if target.GenericName == nil || *target.GenericName == "" || len(withIDs) == 0 {
		return []Interaction{}, nil
	}

	others, err := s.repo.GetByIDs(ctx, withIDs)
	if err != nil {
		return nil, err
	}

	interactions := []Interaction{}
	for _, other := range others {
		if other.ID == target.ID || other.GenericName == nil {
			continue
		}
		if strings.EqualFold(*target.GenericName, *other.GenericName) {
			interactions = append(interactions, Interaction{
				MedicationID:     target.ID,
				MedicationName:   target.Name,
				WithMedicationID: other.ID,
				WithMedication:   other.Name,
				GenericName:      *target.GenericName,
				Description:      fmt.Sprintf("%s and %s share the generic %s; combined use duplicates therapy", target.Name, other.Name, *target.GenericName),
			})
		}
	}
	return interactions, nil
}

func (s *Service) appendList(ctx context.Context, id uuid.UUID, entry string, field func(*Medication) *[]string) (*Medication, error) {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return nil, apperr.Validation("entry cannot be empty")
	}
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	list := field(m)
	for _, e := range *list {
		if strings.EqualFold(e, entry) {
			return m, nil
		}
	}
	*list = append(*list, entry)

	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) removeList(ctx context.Context, id uuid.UUID, entry string, field func(*Medication) *[]string) (*Medication, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	list := field(m)
	kept := (*list)[:0]
	for _, e := range *list {
		if !strings.EqualFold(e, entry) {
			kept = append(kept, e)
		}
	}
	*list = kept

	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
