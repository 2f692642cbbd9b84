package alert

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/caretrack/caretrack/internal/platform/apperr"
	"github.com/caretrack/caretrack/internal/platform/auth"
)

// -- Mocks --

type mockAlertRepo struct {
	alerts map[uuid.UUID]*Alert
	owners map[uuid.UUID]uuid.UUID // patient -> caregiver
}

func newMockAlertRepo() *mockAlertRepo {
	return &mockAlertRepo{
		alerts: make(map[uuid.UUID]*Alert),
		owners: make(map[uuid.UUID]uuid.UUID),
	}
}

func (m *mockAlertRepo) Create(_ context.Context, a *Alert) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	m.alerts[a.ID] = a
	return nil
}

func (m *mockAlertRepo) GetByID(_ context.Context, id uuid.UUID) (*Alert, error) {
	a, ok := m.alerts[id]
	if !ok {
		return nil, apperr.NotFound("alert not found")
	}
	return a, nil
}

func (m *mockAlertRepo) Update(_ context.Context, a *Alert) error {
	if _, ok := m.alerts[a.ID]; !ok {
		return apperr.NotFound("alert not found")
	}
	m.alerts[a.ID] = a
	return nil
}

func (m *mockAlertRepo) ListByPatient(_ context.Context, patientID uuid.UUID, unreadOnly bool, limit, skip int) ([]*Alert, int, error) {
	var result []*Alert
	for _, a := range m.alerts {
		if a.PatientID != patientID {
			continue
		}
		if unreadOnly && a.IsRead {
			continue
		}
		result = append(result, a)
	}
	return result, len(result), nil
}

func (m *mockAlertRepo) CountUnreadByCaregiver(_ context.Context, caregiverID uuid.UUID) (int, error) {
	count := 0
	for _, a := range m.alerts {
		if m.owners[a.PatientID] == caregiverID && !a.IsRead {
			count++
		}
	}
	return count, nil
}

// CaregiverOf lets the repo double as the patient owner resolver in tests.
func (m *mockAlertRepo) CaregiverOf(_ context.Context, patientID uuid.UUID) (uuid.UUID, bool, error) {
	owner, ok := m.owners[patientID]
	return owner, ok, nil
}

type noTreatments struct{}

func (noTreatments) CaregiverOfTreatment(_ context.Context, _ uuid.UUID) (uuid.UUID, bool, error) {
	return uuid.Nil, false, nil
}

func newTestService() (*Service, *mockAlertRepo, auth.Identity, uuid.UUID) {
	repo := newMockAlertRepo()
	actor := auth.Identity{ID: uuid.New(), Role: auth.RoleAdmin}
	patientID := uuid.New()
	repo.owners[patientID] = actor.ID
	svc := NewService(repo, auth.NewGuard(repo, noTreatments{}))
	return svc, repo, actor, patientID
}

func validInput(patientID uuid.UUID) CreateInput {
	return CreateInput{
		PatientID: patientID,
		Type:      TypeMissedDose,
		Severity:  SeverityHigh,
		Message:   "Dose of Aspirin at 08:00 was missed",
	}
}

// -- Tests --

func TestCreateAlert(t *testing.T) {
	svc, _, actor, patientID := newTestService()

	a, err := svc.Create(context.Background(), actor, validInput(patientID))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.IsRead {
		t.Error("expected new alert to be unread")
	}
}

func TestCreateAlert_MissingPatient(t *testing.T) {
	svc, _, actor, patientID := newTestService()
	in := validInput(patientID)
	in.PatientID = uuid.Nil

	_, err := svc.Create(context.Background(), actor, in)
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected validation, got %v", err)
	}
}

func TestCreateAlert_InvalidType(t *testing.T) {
	svc, _, actor, patientID := newTestService()
	in := validInput(patientID)
	in.Type = "reminder"

	_, err := svc.Create(context.Background(), actor, in)
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected validation, got %v", err)
	}
}

func TestCreateAlert_SeverityDefaultsToMedium(t *testing.T) {
	svc, _, actor, patientID := newTestService()
	in := validInput(patientID)
	in.Severity = ""

	a, err := svc.Create(context.Background(), actor, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Severity != SeverityMedium {
		t.Errorf("expected medium, got %s", a.Severity)
	}
}

func TestCreateAlert_MessageRequired(t *testing.T) {
	svc, _, actor, patientID := newTestService()
	in := validInput(patientID)
	in.Message = ""

	_, err := svc.Create(context.Background(), actor, in)
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected validation, got %v", err)
	}
}

func TestCreateAlert_ForeignPatientForbidden(t *testing.T) {
	svc, _, _, patientID := newTestService()

	stranger := auth.Identity{ID: uuid.New(), Role: auth.RoleCaregiver}
	_, err := svc.Create(context.Background(), stranger, validInput(patientID))
	if !apperr.IsKind(err, apperr.KindForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}
}

func TestListByPatient_UnreadOnly(t *testing.T) {
	svc, _, actor, patientID := newTestService()
	a, _ := svc.Create(context.Background(), actor, validInput(patientID))
	svc.Create(context.Background(), actor, validInput(patientID))
	svc.MarkRead(context.Background(), actor, a.ID)

	alerts, total, err := svc.ListByPatient(context.Background(), actor, patientID, true, 100, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(alerts) != 1 {
		t.Fatalf("expected 1 unread alert, got %d", total)
	}
	if alerts[0].IsRead {
		t.Error("read alert leaked into the unread listing")
	}
}

func TestMarkRead_Idempotent(t *testing.T) {
	svc, repo, actor, patientID := newTestService()
	a, _ := svc.Create(context.Background(), actor, validInput(patientID))

	first, err := svc.MarkRead(context.Background(), actor, a.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !first.IsRead {
		t.Error("expected alert marked read")
	}

	again, err := svc.MarkRead(context.Background(), actor, a.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !again.IsRead {
		t.Error("expected alert to stay read")
	}
	if !repo.alerts[a.ID].IsRead {
		t.Error("stored alert must be read")
	}
}

func TestUnreadCount(t *testing.T) {
	svc, _, actor, patientID := newTestService()
	a, _ := svc.Create(context.Background(), actor, validInput(patientID))
	svc.Create(context.Background(), actor, validInput(patientID))
	svc.MarkRead(context.Background(), actor, a.ID)

	count, err := svc.UnreadCount(context.Background(), actor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 unread, got %d", count)
	}
}
