package messaging

import (
	"context"

	"github.com/google/uuid"
)

// Repository abstracts message persistence and the appointment-derived
// partner queries.
type Repository interface {
	Create(ctx context.Context, m *Message) error
	ListBetween(ctx context.Context, userID, partnerID uuid.UUID) ([]*Message, error)
	LastBetween(ctx context.Context, userID, partnerID uuid.UUID) (*Message, error)
	MarkRead(ctx context.Context, senderID, recipientID uuid.UUID) error
	UnreadCount(ctx context.Context, recipientID uuid.UUID) (int, error)
	UnreadCountFrom(ctx context.Context, senderID, recipientID uuid.UUID) (int, error)

	// Chat partners come from appointment history: a doctor may chat with
	// every patient who booked them, and vice versa.
	PatientIDsForDoctor(ctx context.Context, doctorID uuid.UUID) ([]uuid.UUID, error)
	DoctorUserIDsForPatient(ctx context.Context, patientID uuid.UUID) ([]uuid.UUID, error)
}
