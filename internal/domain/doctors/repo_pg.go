package doctors

import (
	"context"
	"encoding/json"
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

const docCols = `d.id, d.user_id, u.name, u.email, d.specialization, d.license_number,
	d.phone, d.bio, d.schedule, d.created_at, d.updated_at`

func (r *repoPG) Create(ctx context.Context, d *Doctor) error {
	d.ID = uuid.New()
	sched, err := json.Marshal(NormalizeSchedule(d.Schedule))
	if err != nil {
		return fmt.Errorf("doctor create: marshal schedule: %w", err)
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO doctor (id, user_id, specialization, license_number, phone, bio, schedule)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		d.ID, d.UserID, d.Specialization, d.LicenseNumber, d.Phone, d.Bio, sched,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return scanDoctor(r.conn(ctx).QueryRow(ctx, `
		SELECT `+docCols+` FROM doctor d JOIN users u ON u.id = d.user_id WHERE d.id = $1`, id))
}

func (r *repoPG) GetByUserID(ctx context.Context, userID uuid.UUID) (*Doctor, error) {
	return scanDoctor(r.conn(ctx).QueryRow(ctx, `
		SELECT `+docCols+` FROM doctor d JOIN users u ON u.id = d.user_id WHERE d.user_id = $1`, userID))
}

func (r *repoPG) Update(ctx context.Context, d *Doctor) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE doctor SET specialization=$2, license_number=$3, phone=$4, bio=$5, updated_at=now()
		WHERE id=$1`,
		d.ID, d.Specialization, d.LicenseNumber, d.Phone, d.Bio,
	)
	return err
}

func (r *repoPG) UpdateSchedule(ctx context.Context, id uuid.UUID, schedule WeeklySchedule) error {
	sched, err := json.Marshal(schedule)
	if err != nil {
		return fmt.Errorf("doctor update schedule: marshal: %w", err)
	}
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE doctor SET schedule=$2, updated_at=now() WHERE id=$1`, id, sched)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM doctor WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, specialization string, limit, offset int) ([]*Doctor, int, error) {
	where := ``
	args := []any{}
	if specialization != "" {
		where = ` WHERE d.specialization = $1`
		args = append(args, specialization)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM doctor d`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + docCols + ` FROM doctor d JOIN users u ON u.id = d.user_id` + where +
		fmt.Sprintf(` ORDER BY u.name LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	return out, total, rows.Err()
}

func (r *repoPG) Specializations(ctx context.Context) ([]string, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT DISTINCT specialization FROM doctor WHERE specialization <> '' ORDER BY specialization`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	var sched []byte
	err := row.Scan(
		&d.ID, &d.UserID, &d.Name, &d.Email, &d.Specialization, &d.LicenseNumber,
		&d.Phone, &d.Bio, &sched, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(sched) > 0 {
		if err := json.Unmarshal(sched, &d.Schedule); err != nil {
			return nil, fmt.Errorf("doctor scan: unmarshal schedule: %w", err)
		}
	}
	return &d, nil
}
