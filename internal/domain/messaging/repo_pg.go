package messaging

import (
	"context"
	"errors"

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

const msgCols = `id, sender_id, recipient_id, content, is_read, created_at`

func (r *repoPG) Create(ctx context.Context, m *Message) error {
	m.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO message (id, sender_id, recipient_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		m.ID, m.SenderID, m.RecipientID, m.Content,
	).Scan(&m.CreatedAt)
}

func (r *repoPG) ListBetween(ctx context.Context, userID, partnerID uuid.UUID) ([]*Message, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+msgCols+` FROM message
		WHERE (sender_id = $1 AND recipient_id = $2) OR (sender_id = $2 AND recipient_id = $1)
		ORDER BY created_at`, userID, partnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *repoPG) LastBetween(ctx context.Context, userID, partnerID uuid.UUID) (*Message, error) {
	m, err := scanMessage(r.conn(ctx).QueryRow(ctx, `
		SELECT `+msgCols+` FROM message
		WHERE (sender_id = $1 AND recipient_id = $2) OR (sender_id = $2 AND recipient_id = $1)
		ORDER BY created_at DESC LIMIT 1`, userID, partnerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

func (r *repoPG) MarkRead(ctx context.Context, senderID, recipientID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE message SET is_read = true
		WHERE sender_id = $1 AND recipient_id = $2 AND is_read = false`, senderID, recipientID)
	return err
}

func (r *repoPG) UnreadCount(ctx context.Context, recipientID uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM message WHERE recipient_id = $1 AND is_read = false`, recipientID).Scan(&n)
	return n, err
}

func (r *repoPG) UnreadCountFrom(ctx context.Context, senderID, recipientID uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM message
		WHERE sender_id = $1 AND recipient_id = $2 AND is_read = false`, senderID, recipientID).Scan(&n)
	return n, err
}

func (r *repoPG) PatientIDsForDoctor(ctx context.Context, doctorID uuid.UUID) ([]uuid.UUID, error) {
	return r.scanIDs(ctx, `SELECT DISTINCT patient_id FROM appointment WHERE doctor_id = $1`, doctorID)
}

func (r *repoPG) DoctorUserIDsForPatient(ctx context.Context, patientID uuid.UUID) ([]uuid.UUID, error) {
	return r.scanIDs(ctx, `
		SELECT DISTINCT d.user_id FROM appointment a
		JOIN doctor d ON d.id = a.doctor_id
		WHERE a.patient_id = $1`, patientID)
}

func (r *repoPG) scanIDs(ctx context.Context, query string, arg any) ([]uuid.UUID, error) {
	rows, err := r.conn(ctx).Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func scanMessage(row pgx.Row) (*Message, error) {
	var m Message
	err := row.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Content, &m.IsRead, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
