package messaging

import (
	"time"

	"github.com/google/uuid"
)

// Message maps to the message table. Direct user-to-user chat between a
// patient and a doctor they have an appointment history with.
type Message struct {
	ID          uuid.UUID `db:"id" json:"id"`
	SenderID    uuid.UUID `db:"sender_id" json:"sender_id"`
	RecipientID uuid.UUID `db:"recipient_id" json:"recipient_id"`
	Content     string    `db:"content" json:"content"`
	IsRead      bool      `db:"is_read" json:"is_read"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Conversation is one chat partner plus activity summary, derived from
// appointment history rather than from messages alone.
type Conversation struct {
	PartnerID       uuid.UUID  `json:"partner_id"`
	Name            string     `json:"name"`
	Role            string     `json:"role"`
	PhotoURL        *string    `json:"photo_url,omitempty"`
	UnreadCount     int        `json:"unread_count"`
	LastMessage     *string    `json:"last_message,omitempty"`
	LastMessageTime *time.Time `json:"last_message_time,omitempty"`
}
