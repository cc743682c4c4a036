package records

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicbook/clinicbook/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const recordCols = `m.id, m.appointment_id, m.diagnosis, m.symptoms, m.treatment, m.prescription, m.notes,
	m.created_at, m.updated_at,
	pu.name, du.name, to_char(a.appointment_date, 'YYYY-MM-DD')`

const recordFrom = ` FROM medical_record m
	JOIN appointment a ON a.id = m.appointment_id
	JOIN users pu ON pu.id = a.patient_id
	JOIN doctor d ON d.id = a.doctor_id
	JOIN users du ON du.id = d.user_id`

func (r *repoPG) Create(ctx context.Context, rec *MedicalRecord) error {
	rec.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO medical_record (id, appointment_id, diagnosis, symptoms, treatment, prescription, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.AppointmentID, rec.Diagnosis, rec.Symptoms, rec.Treatment, rec.Prescription, rec.Notes,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error) {
	return scanRecord(r.conn(ctx).QueryRow(ctx, `SELECT `+recordCols+recordFrom+` WHERE m.id = $1`, id))
}

func (r *repoPG) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*MedicalRecord, error) {
	return scanRecord(r.conn(ctx).QueryRow(ctx, `SELECT `+recordCols+recordFrom+` WHERE m.appointment_id = $1`, appointmentID))
}

func (r *repoPG) Update(ctx context.Context, rec *MedicalRecord) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE medical_record
		SET diagnosis=$2, symptoms=$3, treatment=$4, prescription=$5, notes=$6, updated_at=now()
		WHERE id=$1`,
		rec.ID, rec.Diagnosis, rec.Symptoms, rec.Treatment, rec.Prescription, rec.Notes,
	)
	return err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error) {
	return r.list(ctx, ` WHERE a.patient_id = $1`, []any{patientID}, limit, offset)
}

func (r *repoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error) {
	return r.list(ctx, ` WHERE a.doctor_id = $1`, []any{doctorID}, limit, offset)
}

func (r *repoPG) ListAll(ctx context.Context, limit, offset int) ([]*MedicalRecord, int, error) {
	return r.list(ctx, ``, nil, limit, offset)
}

func (r *repoPG) list(ctx context.Context, where string, args []any, limit, offset int) ([]*MedicalRecord, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM medical_record m JOIN appointment a ON a.id = m.appointment_id` + where
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + recordCols + recordFrom + where +
		fmt.Sprintf(` ORDER BY m.created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*MedicalRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rec)
	}
	return out, total, rows.Err()
}

func scanRecord(row pgx.Row) (*MedicalRecord, error) {
	var rec MedicalRecord
	err := row.Scan(
		&rec.ID, &rec.AppointmentID, &rec.Diagnosis, &rec.Symptoms, &rec.Treatment, &rec.Prescription, &rec.Notes,
		&rec.CreatedAt, &rec.UpdatedAt,
		&rec.PatientName, &rec.DoctorName, &rec.AppointmentDate,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
