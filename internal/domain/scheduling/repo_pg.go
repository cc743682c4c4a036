package scheduling

import (
	"context"
	"errors"
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

const apptCols = `a.id, a.patient_id, a.doctor_id, pu.name, du.name, d.specialization,
	to_char(a.appointment_date, 'YYYY-MM-DD'), to_char(a.appointment_time, 'HH24:MI'),
	a.status, a.reason, a.notes, a.created_at, a.updated_at`

const apptFrom = ` FROM appointment a
	JOIN users pu ON pu.id = a.patient_id
	JOIN doctor d ON d.id = a.doctor_id
	JOIN users du ON du.id = d.user_id`

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointment (id, patient_id, doctor_id, appointment_date, appointment_time, status, reason, notes)
		VALUES ($1, $2, $3, $4::date, $5::time, $6, $7, $8)`,
		a.ID, a.PatientID, a.DoctorID, a.AppointmentDate, a.AppointmentTime, a.Status, a.Reason, a.Notes,
	)
	if isSlotConflict(err) {
		return ErrSlotTaken
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppointment(r.conn(ctx).QueryRow(ctx, `SELECT `+apptCols+apptFrom+` WHERE a.id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, a *Appointment) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointment
		SET appointment_date=$2::date, appointment_time=$3::time, status=$4, reason=$5, notes=$6, updated_at=now()
		WHERE id=$1`,
		a.ID, a.AppointmentDate, a.AppointmentTime, a.Status, a.Reason, a.Notes,
	)
	if isSlotConflict(err) {
		return ErrSlotTaken
	}
	return err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, f ListFilter, limit, offset int) ([]*Appointment, int, error) {
	where, args := applyFilter(` WHERE a.patient_id = $1`, []any{patientID}, f)
	return r.list(ctx, where, args, limit, offset)
}

func (r *repoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, f ListFilter, limit, offset int) ([]*Appointment, int, error) {
	where, args := applyFilter(` WHERE a.doctor_id = $1`, []any{doctorID}, f)
	return r.list(ctx, where, args, limit, offset)
}

func (r *repoPG) ListAll(ctx context.Context, f ListFilter, limit, offset int) ([]*Appointment, int, error) {
	where, args := applyFilter(``, nil, f)
	return r.list(ctx, where, args, limit, offset)
}

func applyFilter(where string, args []any, f ListFilter) (string, []any) {
	and := func() {
		if where == "" {
			where = ` WHERE`
		} else {
			where += ` AND`
		}
	}
	if f.Status != "" {
		and()
		args = append(args, f.Status)
		where += fmt.Sprintf(` a.status = $%d`, len(args))
	}
	if f.Date != "" {
		and()
		args = append(args, f.Date)
		where += fmt.Sprintf(` a.appointment_date = $%d::date`, len(args))
	}
	return where, args
}

func (r *repoPG) list(ctx context.Context, where string, args []any, limit, offset int) ([]*Appointment, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM appointment a` + where
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + apptCols + apptFrom + where +
		` ORDER BY a.appointment_date DESC, a.appointment_time DESC` +
		fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out, err := collectAppointments(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *repoPG) ListForDoctorDate(ctx context.Context, doctorID uuid.UUID, date string) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+apptFrom+`
		WHERE a.doctor_id = $1 AND a.appointment_date = $2::date
		ORDER BY a.appointment_time`, doctorID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppointments(rows)
}

func (r *repoPG) OccupiedTimes(ctx context.Context, doctorID uuid.UUID, date string) ([]string, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT to_char(appointment_time, 'HH24:MI') FROM appointment
		WHERE doctor_id = $1 AND appointment_date = $2::date AND status = ANY($3)
		ORDER BY appointment_time`, doctorID, date, activeStatuses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *repoPG) HasActiveAt(ctx context.Context, doctorID uuid.UUID, date, timeOfDay string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointment
			WHERE doctor_id = $1 AND appointment_date = $2::date AND appointment_time = $3::time
			AND status = ANY($4)
		)`, doctorID, date, timeOfDay, activeStatuses).Scan(&exists)
	return exists, err
}

func collectAppointments(rows pgx.Rows) ([]*Appointment, error) {
	var out []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(
		&a.ID, &a.PatientID, &a.DoctorID, &a.PatientName, &a.DoctorName, &a.Specialization,
		&a.AppointmentDate, &a.AppointmentTime,
		&a.Status, &a.Reason, &a.Notes, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// isSlotConflict matches the partial unique index over active appointments.
func isSlotConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
