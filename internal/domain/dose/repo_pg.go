package dose

import (
	"context"
	"errors"
	"fmt"

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

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const doseCols = `id, treatment_id, patient_id, scheduled_time, actual_time, status, notes, created_at`

func scanRecord(row pgx.Row) (*Record, error) {
	var d Record
	err := row.Scan(&d.ID, &d.TreatmentID, &d.PatientID, &d.ScheduledTime, &d.ActualTime,
		&d.Status, &d.Notes, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("dose record not found")
	}
	return &d, err
}

func (r *repoPG) Create(ctx context.Context, d *Record) error {
	d.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO dose_records (id, treatment_id, patient_id, scheduled_time, actual_time, status, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at`,
		d.ID, d.TreatmentID, d.PatientID, d.ScheduledTime, d.ActualTime, d.Status, d.Notes,
	).Scan(&d.CreatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	return scanRecord(r.conn(ctx).QueryRow(ctx,
		`SELECT `+doseCols+` FROM dose_records WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, d *Record) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE dose_records SET actual_time=$2, status=$3, notes=$4
		WHERE id = $1`,
		d.ID, d.ActualTime, d.Status, d.Notes)
	return err
}

func (r *repoPG) ListByTreatment(ctx context.Context, treatmentID uuid.UUID, f ListFilter, limit, skip int) ([]*Record, int, error) {
	return r.list(ctx, `treatment_id`, treatmentID, f, limit, skip)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, f ListFilter, limit, skip int) ([]*Record, int, error) {
	return r.list(ctx, `patient_id`, patientID, f, limit, skip)
}

func (r *repoPG) list(ctx context.Context, col string, id uuid.UUID, f ListFilter, limit, skip int) ([]*Record, int, error) {
	where := `WHERE ` + col + ` = $1`
	args := []interface{}{id}

	if f.From != nil {
		args = append(args, *f.From)
		where += fmt.Sprintf(` AND scheduled_time >= $%d`, len(args))
	}
	if f.To != nil {
		args = append(args, *f.To)
		where += fmt.Sprintf(` AND scheduled_time <= $%d`, len(args))
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM dose_records `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, skip)
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+doseCols+` FROM dose_records `+where+
			fmt.Sprintf(` ORDER BY scheduled_time DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		d, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, d)
	}
	return records, total, rows.Err()
}
