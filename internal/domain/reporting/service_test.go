package reporting

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/caretrack/caretrack/internal/platform/apperr"
	"github.com/caretrack/caretrack/internal/platform/auth"
)

// -- Mocks --

type mockReportRepo struct {
	overview *Overview
	counts   []DayCounts
	dist     []MedicationCount
	alarms   []UpcomingDose
	stats    map[uuid.UUID]*PatientStats
	owners   map[uuid.UUID]uuid.UUID // patient -> caregiver
}

func newMockReportRepo() *mockReportRepo {
	return &mockReportRepo{
		stats:  make(map[uuid.UUID]*PatientStats),
		owners: make(map[uuid.UUID]uuid.UUID),
	}
}

func (m *mockReportRepo) Overview(_ context.Context, _ uuid.UUID) (*Overview, error) {
	return m.overview, nil
}

func (m *mockReportRepo) DoseCountsByDay(_ context.Context, _ uuid.UUID, from, to time.Time) ([]DayCounts, error) {
	var result []DayCounts
	for _, c := range m.counts {
		if !c.Day.Before(from) && c.Day.Before(to) {
			result = append(result, c)
		}
	}
	return result, nil
}

func (m *mockReportRepo) MedicationDistribution(_ context.Context, _ uuid.UUID) ([]MedicationCount, error) {
	return m.dist, nil
}

func (m *mockReportRepo) UpcomingAlarms(_ context.Context, _ uuid.UUID) ([]UpcomingDose, error) {
	return m.alarms, nil
}

func (m *mockReportRepo) PatientStats(_ context.Context, patientID uuid.UUID) (*PatientStats, error) {
	s, ok := m.stats[patientID]
	if !ok {
		return nil, apperr.NotFound("patient not found")
	}
	return s, nil
}

func (m *mockReportRepo) CaregiverOf(_ context.Context, patientID uuid.UUID) (uuid.UUID, bool, error) {
	owner, ok := m.owners[patientID]
	return owner, ok, nil
}

type noTreatments struct{}

func (noTreatments) CaregiverOfTreatment(_ context.Context, _ uuid.UUID) (uuid.UUID, bool, error) {
	return uuid.Nil, false, nil
}

func newTestService() (*Service, *mockReportRepo, auth.Identity) {
	repo := newMockReportRepo()
	actor := auth.Identity{ID: uuid.New(), Role: auth.RoleCaregiver}
	return NewService(repo, auth.NewGuard(repo, noTreatments{})), repo, actor
}

func day(offset int) time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, offset)
}

// -- Tests --

func TestComplianceTrend_FillsEveryDay(t *testing.T) {
	svc, repo, actor := newTestService()
	repo.counts = []DayCounts{
		{Day: day(0), Scheduled: 4, Taken: 3, Missed: 1},
		{Day: day(-2), Scheduled: 2, Taken: 2},
	}

	points, err := svc.ComplianceTrend(context.Background(), actor, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 7 {
		t.Fatalf("expected 7 points, got %d", len(points))
	}

	last := points[6]
	if last.Date != day(0).Format("2006-01-02") {
		t.Errorf("expected today last, got %s", last.Date)
	}
	if last.Scheduled != 4 || last.Taken != 3 || last.Missed != 1 {
		t.Errorf("unexpected counts %+v", last)
	}
	if last.Rate != 0.75 {
		t.Errorf("expected rate 0.75, got %f", last.Rate)
	}

	// Days without records still appear, zeroed.
	quiet := points[5]
	if quiet.Scheduled != 0 || quiet.Rate != 0 {
		t.Errorf("expected a zero point, got %+v", quiet)
	}
}

func TestComplianceTrend_DefaultWindow(t *testing.T) {
	svc, _, actor := newTestService()
	points, err := svc.ComplianceTrend(context.Background(), actor, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 7 {
		t.Errorf("expected 7-day default, got %d", len(points))
	}
}

func TestComplianceTrend_WindowCapped(t *testing.T) {
	svc, _, actor := newTestService()
	_, err := svc.ComplianceTrend(context.Background(), actor, 91)
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected validation, got %v", err)
	}
}

func TestUpcomingDoses_WrapsAroundMidnight(t *testing.T) {
	svc, repo, actor := newTestService()
	repo.alarms = []UpcomingDose{
		{Time: "06:00"}, {Time: "12:00"}, {Time: "21:00"},
	}

	now := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	got, err := svc.UpcomingDoses(context.Background(), actor, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"12:00", "21:00", "06:00"}
	if len(got) != len(want) {
		t.Fatalf("expected %d reminders, got %d", len(want), len(got))
	}
	for i, u := range got {
		if u.Time != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], u.Time)
		}
	}
}

func TestUpcomingDoses_EmptyIsNotNil(t *testing.T) {
	svc, _, actor := newTestService()
	got, err := svc.UpcomingDoses(context.Background(), actor, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Error("expected an empty slice, got nil")
	}
}

func TestMedicationDistribution_EmptyIsNotNil(t *testing.T) {
	svc, _, actor := newTestService()
	dist, err := svc.MedicationDistribution(context.Background(), actor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dist == nil {
		t.Error("expected an empty slice, got nil")
	}
}

func TestPatientStatistics(t *testing.T) {
	svc, repo, actor := newTestService()
	patientID := uuid.New()
	repo.owners[patientID] = actor.ID
	repo.stats[patientID] = &PatientStats{
		PatientID: patientID, TotalDoses: 10, TakenDoses: 8, MissedDoses: 2,
	}

	stats, err := svc.PatientStatistics(context.Background(), actor, patientID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.ComplianceRate != 0.8 {
		t.Errorf("expected compliance 0.8, got %f", stats.ComplianceRate)
	}
}

func TestPatientStatistics_NoDoses(t *testing.T) {
	svc, repo, actor := newTestService()
	patientID := uuid.New()
	repo.owners[patientID] = actor.ID
	repo.stats[patientID] = &PatientStats{PatientID: patientID}

	stats, err := svc.PatientStatistics(context.Background(), actor, patientID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.ComplianceRate != 0 {
		t.Errorf("expected compliance 0 with no doses, got %f", stats.ComplianceRate)
	}
}

func TestPatientStatistics_ForeignPatientForbidden(t *testing.T) {
	svc, repo, _ := newTestService()
	patientID := uuid.New()
	repo.owners[patientID] = uuid.New()
	repo.stats[patientID] = &PatientStats{PatientID: patientID}

	stranger := auth.Identity{ID: uuid.New(), Role: auth.RoleCaregiver}
	_, err := svc.PatientStatistics(context.Background(), stranger, patientID)
	if !apperr.IsKind(err, apperr.KindForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}
}
