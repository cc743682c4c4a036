package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicbook/clinicbook/internal/domain/scheduling"
)

// Service stores and lists notifications, and receives the events the
// scheduling and messaging services emit. Event delivery is best effort:
// a failed insert is logged and never propagated back to the caller.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// List returns a page of a user's notifications together with the total
// and the user's unread count.
func (s *Service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, int, int, error) {
	list, total, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, 0, err
	}
	if list == nil {
		list = []*Notification{}
	}
	unread, err := s.repo.UnreadCount(ctx, userID)
	if err != nil {
		return nil, 0, 0, err
	}
	return list, total, unread, nil
}

func (s *Service) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	return s.repo.MarkRead(ctx, id, userID)
}

func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *Service) notify(ctx context.Context, n *Notification) {
	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error().Err(err).
			Str("user_id", n.UserID.String()).
			Str("title", n.Title).
			Msg("failed to store notification")
	}
}

// AppointmentBooked notifies the doctor about a new appointment request.
func (s *Service) AppointmentBooked(ctx context.Context, a *scheduling.Appointment, doctorUserID uuid.UUID) {
	id := a.ID
	s.notify(ctx, &Notification{
		UserID:        doctorUserID,
		Title:         "New Appointment Request",
		Message:       fmt.Sprintf("%s requested an appointment on %s at %s", a.PatientName, a.AppointmentDate, a.AppointmentTime),
		AppointmentID: &id,
	})
}

// AppointmentStatusChanged notifies the patient when a doctor or admin
// moves their appointment to a new status.
func (s *Service) AppointmentStatusChanged(ctx context.Context, a *scheduling.Appointment, oldStatus string) {
	id := a.ID
	s.notify(ctx, &Notification{
		UserID:        a.PatientID,
		Title:         "Appointment " + titleFor(a.Status),
		Message:       fmt.Sprintf("Your appointment with %s on %s at %s is now %s", a.DoctorName, a.AppointmentDate, a.AppointmentTime, a.Status),
		AppointmentID: &id,
	})
}

// AppointmentRescheduled notifies the doctor that a patient moved an
// appointment to a new slot.
func (s *Service) AppointmentRescheduled(ctx context.Context, a *scheduling.Appointment, doctorUserID uuid.UUID) {
	id := a.ID
	s.notify(ctx, &Notification{
		UserID:        doctorUserID,
		Title:         "Appointment Rescheduled",
		Message:       fmt.Sprintf("%s rescheduled their appointment to %s at %s", a.PatientName, a.AppointmentDate, a.AppointmentTime),
		AppointmentID: &id,
	})
}

// MessageReceived notifies a user about a new chat message.
func (s *Service) MessageReceived(ctx context.Context, recipientID uuid.UUID, senderName, preview string) {
	s.notify(ctx, &Notification{
		UserID:  recipientID,
		Title:   "New message from " + senderName,
		Message: preview,
	})
}

func titleFor(status string) string {
	switch status {
	case scheduling.StatusConfirmed:
		return "Confirmed"
	case scheduling.StatusCompleted:
		return "Completed"
	case scheduling.StatusCancelled:
		return "Cancelled"
	default:
		return "Updated"
	}
}
