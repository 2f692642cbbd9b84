package treatment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/caretrack/caretrack/internal/platform/apperr"
	"github.com/caretrack/caretrack/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG returns the PostgreSQL treatment and alarm repository.
func NewRepoPG(pool *pgxpool.Pool) *repoPG {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const treatmentCols = `id, patient_id, medication_id, created_by, dosage, frequency,
	duration_days, start_date, end_date, instructions, notes, status,
	created_at, updated_at`

func scanTreatment(row pgx.Row) (*Treatment, error) {
	var t Treatment
	err := row.Scan(&t.ID, &t.PatientID, &t.MedicationID, &t.CreatedBy, &t.Dosage, &t.Frequency,
		&t.DurationDays, &t.StartDate, &t.EndDate, &t.Instructions, &t.Notes, &t.Status,
		&t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("treatment not found")
	}
	return &t, err
}

func (r *repoPG) Create(ctx context.Context, t *Treatment) error {
	t.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO treatments (id, patient_id, medication_id, created_by, dosage, frequency,
			duration_days, start_date, end_date, instructions, notes, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING created_at, updated_at`,
		t.ID, t.PatientID, t.MedicationID, t.CreatedBy, t.Dosage, t.Frequency,
		t.DurationDays, t.StartDate, t.EndDate, t.Instructions, t.Notes, t.Status,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Treatment, error) {
	return scanTreatment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+treatmentCols+` FROM treatments WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, t *Treatment) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE treatments SET dosage=$2, frequency=$3, duration_days=$4,
			start_date=$5, end_date=$6, instructions=$7, notes=$8, status=$9,
			updated_at=NOW()
		WHERE id = $1`,
		t.ID, t.Dosage, t.Frequency, t.DurationDays,
		t.StartDate, t.EndDate, t.Instructions, t.Notes, t.Status)
	return err
}

func (r *repoPG) ListByCaregiver(ctx context.Context, caregiverID uuid.UUID, f ListFilter, limit, skip int) ([]*Treatment, int, error) {
	where := `WHERE p.caregiver_id = $1`
	args := []interface{}{caregiverID}

	if f.PatientID != uuid.Nil {
		args = append(args, f.PatientID)
		where += fmt.Sprintf(` AND t.patient_id = $%d`, len(args))
	}
	if f.MedicationID != uuid.Nil {
		args = append(args, f.MedicationID)
		where += fmt.Sprintf(` AND t.medication_id = $%d`, len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where += fmt.Sprintf(` AND t.status = $%d`, len(args))
	}

	from := ` FROM treatments t JOIN patients p ON p.id = t.patient_id `

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*)`+from+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, skip)
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT t.id, t.patient_id, t.medication_id, t.created_by, t.dosage, t.frequency,
			t.duration_days, t.start_date, t.end_date, t.instructions, t.notes, t.status,
			t.created_at, t.updated_at`+from+where+
			fmt.Sprintf(` ORDER BY t.created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var treatments []*Treatment
	for rows.Next() {
		t, err := scanTreatment(rows)
		if err != nil {
			return nil, 0, err
		}
		treatments = append(treatments, t)
	}
	return treatments, total, rows.Err()
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, skip int) ([]*Treatment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM treatments WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+treatmentCols+` FROM treatments WHERE patient_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, patientID, limit, skip)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var treatments []*Treatment
	for rows.Next() {
		t, err := scanTreatment(rows)
		if err != nil {
			return nil, 0, err
		}
		treatments = append(treatments, t)
	}
	return treatments, total, rows.Err()
}

func (r *repoPG) ActiveMedicationIDs(ctx context.Context, patientID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT medication_id FROM treatments WHERE patient_id = $1 AND status = $2`,
		patientID, StatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *repoPG) HasActiveTreatments(ctx context.Context, patientID uuid.UUID, onOrAfter time.Time) (bool, error) {
	var live bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM treatments
			WHERE patient_id = $1 AND status = $2 AND end_date >= $3
		)`, patientID, StatusActive, onOrAfter).Scan(&live)
	return live, err
}

func (r *repoPG) CaregiverOfTreatment(ctx context.Context, treatmentID uuid.UUID) (uuid.UUID, bool, error) {
	var caregiverID uuid.UUID
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT p.caregiver_id FROM treatments t
		 JOIN patients p ON p.id = t.patient_id
		 WHERE t.id = $1`, treatmentID).Scan(&caregiverID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, err
	}
	return caregiverID, true, nil
}

// -- Alarms --

const alarmCols = `id, treatment_id, time, is_active, sound_enabled, visual_enabled,
	description, created_at, updated_at`

func scanAlarm(row pgx.Row) (*Alarm, error) {
	var a Alarm
	err := row.Scan(&a.ID, &a.TreatmentID, &a.Time, &a.IsActive, &a.SoundEnabled, &a.VisualEnabled,
		&a.Description, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("alarm not found")
	}
	return &a, err
}

func (r *repoPG) ListAlarms(ctx context.Context, treatmentID uuid.UUID) ([]*Alarm, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+alarmCols+` FROM alarms WHERE treatment_id = $1 ORDER BY time ASC`, treatmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alarms []*Alarm
	for rows.Next() {
		a, err := scanAlarm(rows)
		if err != nil {
			return nil, err
		}
		alarms = append(alarms, a)
	}
	return alarms, rows.Err()
}

func (r *repoPG) CreateAlarm(ctx context.Context, a *Alarm) error {
	a.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO alarms (id, treatment_id, time, is_active, sound_enabled, visual_enabled, description)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at, updated_at`,
		a.ID, a.TreatmentID, a.Time, a.IsActive, a.SoundEnabled, a.VisualEnabled, a.Description,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
}

func (r *repoPG) GetAlarm(ctx context.Context, treatmentID, alarmID uuid.UUID) (*Alarm, error) {
	return scanAlarm(r.conn(ctx).QueryRow(ctx,
		`SELECT `+alarmCols+` FROM alarms WHERE id = $1 AND treatment_id = $2`, alarmID, treatmentID))
}

func (r *repoPG) UpdateAlarm(ctx context.Context, a *Alarm) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE alarms SET time=$2, is_active=$3, sound_enabled=$4, visual_enabled=$5,
			description=$6, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.Time, a.IsActive, a.SoundEnabled, a.VisualEnabled, a.Description)
	return err
}

func (r *repoPG) DeleteAlarm(ctx context.Context, treatmentID, alarmID uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM alarms WHERE id = $1 AND treatment_id = $2`, alarmID, treatmentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("alarm not found")
	}
	return nil
}

func (r *repoPG) ReplaceAlarms(ctx context.Context, treatmentID uuid.UUID, alarms []*Alarm) error {
	return db.RunInTx(ctx, r.pool, func(ctx context.Context) error {
		if _, err := r.conn(ctx).Exec(ctx,
			`DELETE FROM alarms WHERE treatment_id = $1`, treatmentID); err != nil {
			return err
		}
		for _, a := range alarms {
			if err := r.CreateAlarm(ctx, a); err != nil {
				return err
			}
		}
		return nil
	})
}
