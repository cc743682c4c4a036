package messaging

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/clinicbook/clinicbook/internal/domain/doctors"
	"github.com/clinicbook/clinicbook/internal/domain/identity"
)

// previewLen caps the notification preview of a new message.
const previewLen = 50

// UserDirectory resolves chat partner details.
type UserDirectory interface {
	Get(ctx context.Context, id uuid.UUID) (*identity.User, error)
}

// DoctorDirectory resolves the doctor profile behind a user account.
type DoctorDirectory interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*doctors.Doctor, error)
}

// Notifier is told about new messages so the recipient sees a notification.
type Notifier interface {
	MessageReceived(ctx context.Context, recipientID uuid.UUID, senderName, preview string)
}

type Service struct {
	repo     Repository
	users    UserDirectory
	doctors  DoctorDirectory
	notifier Notifier
}

// NewService wires the messaging service. notifier may be nil.
func NewService(repo Repository, users UserDirectory, dir DoctorDirectory, notifier Notifier) *Service {
	return &Service{repo: repo, users: users, doctors: dir, notifier: notifier}
}

// Conversations lists a user's chat partners. Doctors may chat with every
// patient who booked them, patients with every doctor they booked; admins
// have no conversations. Sorted by most recent message first.
func (s *Service) Conversations(ctx context.Context, role string, userID uuid.UUID) ([]Conversation, error) {
	var partnerIDs []uuid.UUID
	var err error

	switch role {
	case "doctor":
		doc, derr := s.doctors.GetByUserID(ctx, userID)
		if derr != nil {
			return []Conversation{}, nil
		}
		partnerIDs, err = s.repo.PatientIDsForDoctor(ctx, doc.ID)
	case "patient":
		partnerIDs, err = s.repo.DoctorUserIDsForPatient(ctx, userID)
	default:
		return []Conversation{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("chat partners: %w", err)
	}

	out := make([]Conversation, 0, len(partnerIDs))
	for _, pid := range partnerIDs {
		partner, err := s.users.Get(ctx, pid)
		if err != nil {
			continue
		}
		unread, err := s.repo.UnreadCountFrom(ctx, pid, userID)
		if err != nil {
			return nil, err
		}
		conv := Conversation{
			PartnerID:   partner.ID,
			Name:        partner.Name,
			Role:        partner.Role,
			PhotoURL:    partner.ProfilePicture,
			UnreadCount: unread,
		}
		if last, err := s.repo.LastBetween(ctx, userID, pid); err != nil {
			return nil, err
		} else if last != nil {
			conv.LastMessage = &last.Content
			t := last.CreatedAt
			conv.LastMessageTime = &t
		}
		out = append(out, conv)
	}

	sort.Slice(out, func(i, j int) bool {
		ti, tj := out[i].LastMessageTime, out[j].LastMessageTime
		switch {
		case ti == nil:
			return false
		case tj == nil:
			return true
		default:
			return ti.After(*tj)
		}
	})
	return out, nil
}

// Messages returns the full history with a partner, oldest first, and marks
// the partner's messages as read.
func (s *Service) Messages(ctx context.Context, userID, partnerID uuid.UUID) ([]*Message, error) {
	msgs, err := s.repo.ListBetween(ctx, userID, partnerID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.MarkRead(ctx, partnerID, userID); err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []*Message{}
	}
	return msgs, nil
}

// Send stores a message and notifies the recipient.
func (s *Service) Send(ctx context.Context, senderID, recipientID uuid.UUID, content string) (*Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("content is required")
	}
	if recipientID == uuid.Nil {
		return nil, fmt.Errorf("recipient_id is required")
	}
	if _, err := s.users.Get(ctx, recipientID); err != nil {
		return nil, fmt.Errorf("recipient not found")
	}

	m := &Message{SenderID: senderID, RecipientID: recipientID, Content: content}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		senderName := "User"
		if sender, err := s.users.Get(ctx, senderID); err == nil {
			senderName = sender.Name
		}
		s.notifier.MessageReceived(ctx, recipientID, senderName, preview(content))
	}
	return m, nil
}

// UnreadTotal counts all unread messages addressed to a user.
func (s *Service) UnreadTotal(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.UnreadCount(ctx, userID)
}

func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewLen {
		return content
	}
	return string(runes[:previewLen]) + "..."
}
