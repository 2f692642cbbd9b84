package reporting

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/caretrack/caretrack/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *repoPG) Overview(ctx context.Context, caregiverID uuid.UUID) (*Overview, error) {
	var o Overview
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM patients WHERE caregiver_id = $1),
			COUNT(*) FILTER (WHERE t.status = 'ACTIVE'),
			COUNT(*) FILTER (WHERE t.status = 'SUSPENDED'),
			COUNT(*) FILTER (WHERE t.status = 'COMPLETED'),
			COUNT(*) FILTER (WHERE t.status = 'CANCELLED'),
			(SELECT COUNT(*) FROM alerts a
				JOIN patients p ON p.id = a.patient_id
				WHERE p.caregiver_id = $1 AND a.is_read = FALSE)
		FROM treatments t
		JOIN patients p ON p.id = t.patient_id
		WHERE p.caregiver_id = $1`,
		caregiverID,
	).Scan(&o.Patients, &o.ActiveTreatments, &o.SuspendedTreatments,
		&o.CompletedTreatments, &o.CancelledTreatments, &o.UnreadAlerts)
	return &o, err
}

func (r *repoPG) DoseCountsByDay(ctx context.Context, caregiverID uuid.UUID, from, to time.Time) ([]DayCounts, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT date_trunc('day', d.scheduled_time) AS day,
			COUNT(*),
			COUNT(*) FILTER (WHERE d.status = 'taken'),
			COUNT(*) FILTER (WHERE d.status = 'missed')
		FROM dose_records d
		JOIN patients p ON p.id = d.patient_id
		WHERE p.caregiver_id = $1 AND d.scheduled_time >= $2 AND d.scheduled_time < $3
		GROUP BY day
		ORDER BY day ASC`,
		caregiverID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []DayCounts
	for rows.Next() {
		var c DayCounts
		if err := rows.Scan(&c.Day, &c.Scheduled, &c.Taken, &c.Missed); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (r *repoPG) MedicationDistribution(ctx context.Context, caregiverID uuid.UUID) ([]MedicationCount, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT m.id, m.name, COUNT(*)
		FROM treatments t
		JOIN patients p ON p.id = t.patient_id
		JOIN medications m ON m.id = t.medication_id
		WHERE p.caregiver_id = $1
		GROUP BY m.id, m.name
		ORDER BY COUNT(*) DESC, m.name ASC`,
		caregiverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dist []MedicationCount
	for rows.Next() {
		var mc MedicationCount
		if err := rows.Scan(&mc.MedicationID, &mc.Name, &mc.Treatments); err != nil {
			return nil, err
		}
		dist = append(dist, mc)
	}
	return dist, rows.Err()
}

func (r *repoPG) UpcomingAlarms(ctx context.Context, caregiverID uuid.UUID) ([]UpcomingDose, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT t.id, p.id, p.name, m.name, a.time
		FROM alarms a
		JOIN treatments t ON t.id = a.treatment_id
		JOIN patients p ON p.id = t.patient_id
		JOIN medications m ON m.id = t.medication_id
		WHERE p.caregiver_id = $1 AND a.is_active AND t.status = 'ACTIVE'
		ORDER BY a.time ASC`,
		caregiverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var doses []UpcomingDose
	for rows.Next() {
		var d UpcomingDose
		if err := rows.Scan(&d.TreatmentID, &d.PatientID, &d.PatientName, &d.MedicationName, &d.Time); err != nil {
			return nil, err
		}
		doses = append(doses, d)
	}
	return doses, rows.Err()
}

func (r *repoPG) PatientStats(ctx context.Context, patientID uuid.UUID) (*PatientStats, error) {
	s := PatientStats{PatientID: patientID}
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status = 'ACTIVE'),
			COUNT(*) FILTER (WHERE status = 'SUSPENDED'),
			COUNT(*) FILTER (WHERE status = 'COMPLETED'),
			COUNT(*) FILTER (WHERE status = 'CANCELLED')
		FROM treatments WHERE patient_id = $1`,
		patientID,
	).Scan(&s.ActiveTreatments, &s.SuspendedTreatments, &s.CompletedTreatments, &s.CancelledTreatments)
	if err != nil {
		return nil, err
	}

	err = r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = 'taken'),
			COUNT(*) FILTER (WHERE status = 'missed')
		FROM dose_records WHERE patient_id = $1`,
		patientID,
	).Scan(&s.TotalDoses, &s.TakenDoses, &s.MissedDoses)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
