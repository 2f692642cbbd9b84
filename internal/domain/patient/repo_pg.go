package patient

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

const patientCols = `id, caregiver_id, name, email, phone, date_of_birth, gender,
	address, emergency_contact, medical_history, allergies,
	timezone, preferred_language, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.CaregiverID, &p.Name, &p.Email, &p.Phone, &p.DateOfBirth, &p.Gender,
		&p.Address, &p.EmergencyContact, &p.MedicalHistory, &p.Allergies,
		&p.Timezone, &p.PreferredLanguage, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("patient not found")
	}
	if p.MedicalHistory == nil {
		p.MedicalHistory = []string{}
	}
	if p.Allergies == nil {
		p.Allergies = []string{}
	}
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patients (id, caregiver_id, name, email, phone, date_of_birth, gender,
			address, emergency_contact, medical_history, allergies,
			timezone, preferred_language)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING created_at, updated_at`,
		p.ID, p.CaregiverID, p.Name, p.Email, p.Phone, p.DateOfBirth, p.Gender,
		p.Address, p.EmergencyContact, p.MedicalHistory, p.Allergies,
		p.Timezone, p.PreferredLanguage,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
}

func (r *repoPG) GetByEmail(ctx context.Context, email string) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE lower(email) = lower($1)`, email))
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patients SET name=$2, email=$3, phone=$4, date_of_birth=$5, gender=$6,
			address=$7, emergency_contact=$8, medical_history=$9, allergies=$10,
			timezone=$11, preferred_language=$12, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.Email, p.Phone, p.DateOfBirth, p.Gender,
		p.Address, p.EmergencyContact, p.MedicalHistory, p.Allergies,
		p.Timezone, p.PreferredLanguage)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	return err
}

func (r *repoPG) ListByCaregiver(ctx context.Context, caregiverID uuid.UUID, f ListFilter, limit, skip int) ([]*Patient, int, error) {
	where := `WHERE caregiver_id = $1`
	args := []interface{}{caregiverID}

	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		where += fmt.Sprintf(` AND (name ILIKE $%d OR email ILIKE $%d)`, len(args), len(args))
	}
	if f.Gender != "" {
		args = append(args, f.Gender)
		where += fmt.Sprintf(` AND gender = $%d`, len(args))
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patients `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, skip)
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientCols+` FROM patients `+where+
			fmt.Sprintf(` ORDER BY name ASC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var patients []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		patients = append(patients, p)
	}
	return patients, total, rows.Err()
}

func (r *repoPG) CaregiverOf(ctx context.Context, patientID uuid.UUID) (uuid.UUID, bool, error) {
	var caregiverID uuid.UUID
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT caregiver_id FROM patients WHERE id = $1`, patientID).Scan(&caregiverID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, err
	}
	return caregiverID, true, nil
}
