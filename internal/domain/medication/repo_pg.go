package medication

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

const medCols = `id, name, description, dosage, unit, instructions,
	side_effects, contraindications, brand_name, generic_name, manufacturer,
	created_at, updated_at`

func scanMedication(row pgx.Row) (*Medication, error) {
	var m Medication
	err := row.Scan(&m.ID, &m.Name, &m.Description, &m.Dosage, &m.Unit, &m.Instructions,
		&m.SideEffects, &m.Contraindications, &m.BrandName, &m.GenericName, &m.Manufacturer,
		&m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("medication not found")
	}
	if m.SideEffects == nil {
		m.SideEffects = []string{}
	}
	if m.Contraindications == nil {
		m.Contraindications = []string{}
	}
	return &m, err
}

func (r *repoPG) Create(ctx context.Context, m *Medication) error {
	m.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO medications (id, name, description, dosage, unit, instructions,
			side_effects, contraindications, brand_name, generic_name, manufacturer)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at, updated_at`,
		m.ID, m.Name, m.Description, m.Dosage, m.Unit, m.Instructions,
		m.SideEffects, m.Contraindications, m.BrandName, m.GenericName, m.Manufacturer,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Medication, error) {
	return scanMedication(r.conn(ctx).QueryRow(ctx,
		`SELECT `+medCols+` FROM medications WHERE id = $1`, id))
}

func (r *repoPG) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*Medication, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+medCols+` FROM medications WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meds []*Medication
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, err
		}
		meds = append(meds, m)
	}
	return meds, rows.Err()
}

func (r *repoPG) FindDuplicate(ctx context.Context, name, dosage, unit string) (*Medication, error) {
	return scanMedication(r.conn(ctx).QueryRow(ctx,
		`SELECT `+medCols+` FROM medications
		 WHERE lower(name) = lower($1) AND dosage = $2 AND unit = $3`,
		name, dosage, unit))
}

func (r *repoPG) Update(ctx context.Context, m *Medication) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE medications SET name=$2, description=$3, dosage=$4, unit=$5, instructions=$6,
			side_effects=$7, contraindications=$8, brand_name=$9, generic_name=$10,
			manufacturer=$11, updated_at=NOW()
		WHERE id = $1`,
		m.ID, m.Name, m.Description, m.Dosage, m.Unit, m.Instructions,
		m.SideEffects, m.Contraindications, m.BrandName, m.GenericName, m.Manufacturer)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM medications WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, f ListFilter, limit, skip int) ([]*Medication, int, error) {
	where := `WHERE TRUE`
	var args []interface{}

	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		where += fmt.Sprintf(` AND (name ILIKE $%d OR brand_name ILIKE $%d OR generic_name ILIKE $%d OR description ILIKE $%d)`, n, n, n, n)
	}
	if f.Unit != "" {
		args = append(args, f.Unit)
		where += fmt.Sprintf(` AND unit = $%d`, len(args))
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM medications `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, skip)
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+medCols+` FROM medications `+where+
			fmt.Sprintf(` ORDER BY name ASC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var meds []*Medication
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, 0, err
		}
		meds = append(meds, m)
	}
	return meds, total, rows.Err()
}

func (r *repoPG) SearchNames(ctx context.Context, prefix string, limit int) ([]string, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT DISTINCT name FROM medications WHERE name ILIKE $1 ORDER BY name ASC LIMIT $2`,
		prefix+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func (r *repoPG) InActiveUse(ctx context.Context, id uuid.UUID) (bool, error) {
	var inUse bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM treatments WHERE medication_id = $1 AND status = 'ACTIVE')`,
		id).Scan(&inUse)
	return inUse, err
}
