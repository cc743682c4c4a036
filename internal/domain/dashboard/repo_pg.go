package dashboard

import (
	"context"

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

func (r *repoPG) PatientCounts(ctx context.Context, patientID uuid.UUID) (int, int, error) {
	var total, completed int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'completed')
		FROM appointment
		WHERE patient_id = $1`, patientID).Scan(&total, &completed)
	return total, completed, err
}

func (r *repoPG) DoctorCounts(ctx context.Context, doctorID uuid.UUID) (int, int, error) {
	var pending, patients int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE status = 'pending'),
		       COUNT(DISTINCT patient_id)
		FROM appointment
		WHERE doctor_id = $1`, doctorID).Scan(&pending, &patients)
	return pending, patients, err
}

func (r *repoPG) AdminCounts(ctx context.Context, today string) (*AdminStats, error) {
	var s AdminStats
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT (SELECT COUNT(*) FROM users),
		       (SELECT COUNT(*) FROM doctor),
		       (SELECT COUNT(*) FROM users WHERE role = 'patient'),
		       (SELECT COUNT(*) FROM appointment),
		       (SELECT COUNT(*) FROM appointment WHERE appointment_date = $1::date)`,
		today).Scan(&s.TotalUsers, &s.TotalDoctors, &s.TotalPatients, &s.TotalAppointments, &s.TodayAppointments)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
