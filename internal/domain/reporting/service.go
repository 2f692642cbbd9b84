package reporting

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/caretrack/caretrack/internal/platform/apperr"
	"github.com/caretrack/caretrack/internal/platform/auth"
)

const (
	defaultTrendDays = 7
	maxTrendDays     = 90
)

type Service struct {
	repo  Repository
	guard *auth.Guard
}

func NewService(repo Repository, guard *auth.Guard) *Service {
	return &Service{repo: repo, guard: guard}
}

// Overview returns the caregiver's dashboard headline numbers.
func (s *Service) Overview(ctx context.Context, actor auth.Identity) (*Overview, error) {
	return s.repo.Overview(ctx, actor.ID)
}

// ComplianceTrend returns one point per day over the trailing window,
// including days without any scheduled dose.
func (s *Service) ComplianceTrend(ctx context.Context, actor auth.Identity, days int) ([]TrendPoint, error) {
	if days <= 0 {
		days = defaultTrendDays
	}
	if days > maxTrendDays {
		return nil, apperr.Validation("days must be at most %d", maxTrendDays)
	}

	to := time.Now().UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	from := to.AddDate(0, 0, -days)

	counts, err := s.repo.DoseCountsByDay(ctx, actor.ID, from, to)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]DayCounts, len(counts))
	for _, c := range counts {
		byDay[c.Day.UTC().Format("2006-01-02")] = c
	}

	points := make([]TrendPoint, 0, days)
	for day := from; day.Before(to); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		c := byDay[key]
		p := TrendPoint{
			Date:      key,
			Scheduled: c.Scheduled,
			Taken:     c.Taken,
			Missed:    c.Missed,
		}
		if c.Scheduled > 0 {
			p.Rate = float64(c.Taken) / float64(c.Scheduled)
		}
		points = append(points, p)
	}
	return points, nil
}

// MedicationDistribution counts the caregiver's treatments per medication.
func (s *Service) MedicationDistribution(ctx context.Context, actor auth.Identity) ([]MedicationCount, error) {
	dist, err := s.repo.MedicationDistribution(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if dist == nil {
		dist = []MedicationCount{}
	}
	return dist, nil
}

// UpcomingDoses returns reminders due within the next 24 hours, in firing
// order starting from the current wall-clock time.
func (s *Service) UpcomingDoses(ctx context.Context, actor auth.Identity, now time.Time) ([]UpcomingDose, error) {
	alarms, err := s.repo.UpcomingAlarms(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	// Alarms are daily; within 24h every active alarm fires exactly once.
	// Order them starting at the current time of day, wrapping past
	// midnight.
	cutoff := now.Format("15:04")
	var before, after []UpcomingDose
	for _, a := range alarms {
		if a.Time >= cutoff {
			after = append(after, a)
		} else {
			before = append(before, a)
		}
	}
	ordered := append(after, before...)
	if ordered == nil {
		ordered = []UpcomingDose{}
	}
	return ordered, nil
}

// PatientStatistics returns the per-patient summary, ownership-gated.
func (s *Service) PatientStatistics(ctx context.Context, actor auth.Identity, patientID uuid.UUID) (*PatientStats, error) {
	if err := s.guard.CheckPatient(ctx, actor, patientID); err != nil {
		return nil, err
	}
	stats, err := s.repo.PatientStats(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if stats.TotalDoses > 0 {
		stats.ComplianceRate = float64(stats.TakenDoses) / float64(stats.TotalDoses)
	}
	return stats, nil
}
