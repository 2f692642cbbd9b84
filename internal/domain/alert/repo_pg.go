package alert

import (
	"context"
	"errors"

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

const alertCols = `id, patient_id, treatment_id, type, severity, message, is_read, created_at`

func scanAlert(row pgx.Row) (*Alert, error) {
	var a Alert
	err := row.Scan(&a.ID, &a.PatientID, &a.TreatmentID, &a.Type, &a.Severity, &a.Message,
		&a.IsRead, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("alert not found")
	}
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Alert) error {
	a.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO alerts (id, patient_id, treatment_id, type, severity, message, is_read)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at`,
		a.ID, a.PatientID, a.TreatmentID, a.Type, a.Severity, a.Message, a.IsRead,
	).Scan(&a.CreatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Alert, error) {
	return scanAlert(r.conn(ctx).QueryRow(ctx,
		`SELECT `+alertCols+` FROM alerts WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, a *Alert) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE alerts SET is_read=$2 WHERE id = $1`, a.ID, a.IsRead)
	return err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, unreadOnly bool, limit, skip int) ([]*Alert, int, error) {
	where := `WHERE patient_id = $1`
	args := []interface{}{patientID}
	if unreadOnly {
		where += ` AND is_read = FALSE`
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM alerts `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, skip)
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+alertCols+` FROM alerts `+where+` ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var alerts []*Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, 0, err
		}
		alerts = append(alerts, a)
	}
	return alerts, total, rows.Err()
}

func (r *repoPG) CountUnreadByCaregiver(ctx context.Context, caregiverID uuid.UUID) (int, error) {
	var count int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM alerts a
		 JOIN patients p ON p.id = a.patient_id
		 WHERE p.caregiver_id = $1 AND a.is_read = FALSE`, caregiverID).Scan(&count)
	return count, err
}
