package notifications

import (
	"time"

	"github.com/google/uuid"
)

// Notification maps to the notification table. AppointmentID links the
// notification to the appointment that caused it, when there is one.
type Notification struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	UserID        uuid.UUID  `db:"user_id" json:"user_id"`
	Title         string     `db:"title" json:"title"`
	Message       string     `db:"message" json:"message"`
	AppointmentID *uuid.UUID `db:"appointment_id" json:"appointment_id,omitempty"`
	IsRead        bool       `db:"is_read" json:"is_read"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}
