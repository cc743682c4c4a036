package messaging

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinicbook/clinicbook/internal/domain/doctors"
	"github.com/clinicbook/clinicbook/internal/domain/identity"
)

// -- Mock Repository --

type mockRepo struct {
	messages         []*Message
	patientsByDoctor map[uuid.UUID][]uuid.UUID
	doctorsByPatient map[uuid.UUID][]uuid.UUID
	clock            time.Time
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		patientsByDoctor: make(map[uuid.UUID][]uuid.UUID),
		doctorsByPatient: make(map[uuid.UUID][]uuid.UUID),
		clock:            time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC),
	}
}

func (m *mockRepo) Create(_ context.Context, msg *Message) error {
	msg.ID = uuid.New()
	m.clock = m.clock.Add(time.Minute)
	msg.CreatedAt = m.clock
	m.messages = append(m.messages, msg)
	return nil
}

func (m *mockRepo) ListBetween(_ context.Context, userID, partnerID uuid.UUID) ([]*Message, error) {
	var out []*Message
	for _, msg := range m.messages {
		if (msg.SenderID == userID && msg.RecipientID == partnerID) ||
			(msg.SenderID == partnerID && msg.RecipientID == userID) {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *mockRepo) LastBetween(ctx context.Context, userID, partnerID uuid.UUID) (*Message, error) {
	msgs, _ := m.ListBetween(ctx, userID, partnerID)
	if len(msgs) == 0 {
		return nil, nil
	}
	return msgs[len(msgs)-1], nil
}

func (m *mockRepo) MarkRead(_ context.Context, senderID, recipientID uuid.UUID) error {
	for _, msg := range m.messages {
		if msg.SenderID == senderID && msg.RecipientID == recipientID {
			msg.IsRead = true
		}
	}
	return nil
}

func (m *mockRepo) UnreadCount(_ context.Context, recipientID uuid.UUID) (int, error) {
	n := 0
	for _, msg := range m.messages {
		if msg.RecipientID == recipientID && !msg.IsRead {
			n++
		}
	}
	return n, nil
}

func (m *mockRepo) UnreadCountFrom(_ context.Context, senderID, recipientID uuid.UUID) (int, error) {
	n := 0
	for _, msg := range m.messages {
		if msg.SenderID == senderID && msg.RecipientID == recipientID && !msg.IsRead {
			n++
		}
	}
	return n, nil
}

func (m *mockRepo) PatientIDsForDoctor(_ context.Context, doctorID uuid.UUID) ([]uuid.UUID, error) {
	return m.patientsByDoctor[doctorID], nil
}

func (m *mockRepo) DoctorUserIDsForPatient(_ context.Context, patientID uuid.UUID) ([]uuid.UUID, error) {
	return m.doctorsByPatient[patientID], nil
}

// -- Mock Directories --

type mockUsers struct {
	users map[uuid.UUID]*identity.User
}

func (m *mockUsers) Get(_ context.Context, id uuid.UUID) (*identity.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return u, nil
}

type mockDoctorDir struct {
	doctors map[uuid.UUID]*doctors.Doctor
}

func (m *mockDoctorDir) GetByUserID(_ context.Context, userID uuid.UUID) (*doctors.Doctor, error) {
	for _, d := range m.doctors {
		if d.UserID == userID {
			return d, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

type mockNotifier struct {
	received int
	preview  string
}

func (m *mockNotifier) MessageReceived(_ context.Context, _ uuid.UUID, _, preview string) {
	m.received++
	m.preview = preview
}

// -- Fixture --

type fixture struct {
	svc          *Service
	repo         *mockRepo
	notifier     *mockNotifier
	patient      *identity.User
	doctorUser   *identity.User
	doctorID     uuid.UUID
	otherPatient *identity.User
}

func newFixture() *fixture {
	repo := newMockRepo()
	notifier := &mockNotifier{}

	patient := &identity.User{ID: uuid.New(), Name: "Pat", Role: identity.RolePatient}
	otherPatient := &identity.User{ID: uuid.New(), Name: "Olga", Role: identity.RolePatient}
	doctorUser := &identity.User{ID: uuid.New(), Name: "Dr Smith", Role: identity.RoleDoctor}
	doc := &doctors.Doctor{ID: uuid.New(), UserID: doctorUser.ID, Specialization: "Cardiology"}

	users := &mockUsers{users: map[uuid.UUID]*identity.User{
		patient.ID:      patient,
		otherPatient.ID: otherPatient,
		doctorUser.ID:   doctorUser,
	}}
	dir := &mockDoctorDir{doctors: map[uuid.UUID]*doctors.Doctor{doc.ID: doc}}

	// both patients have appointment history with the doctor
	repo.patientsByDoctor[doc.ID] = []uuid.UUID{patient.ID, otherPatient.ID}
	repo.doctorsByPatient[patient.ID] = []uuid.UUID{doctorUser.ID}
	repo.doctorsByPatient[otherPatient.ID] = []uuid.UUID{doctorUser.ID}

	return &fixture{
		svc:          NewService(repo, users, dir, notifier),
		repo:         repo,
		notifier:     notifier,
		patient:      patient,
		doctorUser:   doctorUser,
		doctorID:     doc.ID,
		otherPatient: otherPatient,
	}
}

// -- Tests --

func TestService_Send(t *testing.T) {
	f := newFixture()

	m, err := f.svc.Send(context.Background(), f.patient.ID, f.doctorUser.ID, "hello doctor")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.ID == uuid.Nil {
		t.Error("expected message ID")
	}
	if m.IsRead {
		t.Error("new message should be unread")
	}
	if f.notifier.received != 1 {
		t.Errorf("expected recipient notification, got %d", f.notifier.received)
	}
}

func TestService_Send_Validation(t *testing.T) {
	f := newFixture()

	if _, err := f.svc.Send(context.Background(), f.patient.ID, f.doctorUser.ID, "   "); err == nil {
		t.Error("expected error for empty content")
	}
	if _, err := f.svc.Send(context.Background(), f.patient.ID, uuid.Nil, "hi"); err == nil {
		t.Error("expected error for missing recipient")
	}
	if _, err := f.svc.Send(context.Background(), f.patient.ID, uuid.New(), "hi"); err == nil {
		t.Error("expected error for unknown recipient")
	}
}

func TestService_Send_NotificationPreviewTruncated(t *testing.T) {
	f := newFixture()

	long := strings.Repeat("a", 80)
	if _, err := f.svc.Send(context.Background(), f.patient.ID, f.doctorUser.ID, long); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.notifier.preview != strings.Repeat("a", 50)+"..." {
		t.Errorf("unexpected preview %q", f.notifier.preview)
	}
}

func TestService_Messages_MarksIncomingRead(t *testing.T) {
	f := newFixture()

	if _, err := f.svc.Send(context.Background(), f.doctorUser.ID, f.patient.ID, "results are in"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	n, _ := f.svc.UnreadTotal(context.Background(), f.patient.ID)
	if n != 1 {
		t.Fatalf("expected 1 unread, got %d", n)
	}

	msgs, err := f.svc.Messages(context.Background(), f.patient.ID, f.doctorUser.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}

	n, _ = f.svc.UnreadTotal(context.Background(), f.patient.ID)
	if n != 0 {
		t.Errorf("reading the thread should clear unread, got %d", n)
	}
}

func TestService_Conversations_Doctor(t *testing.T) {
	f := newFixture()

	// newer activity with otherPatient
	if _, err := f.svc.Send(context.Background(), f.patient.ID, f.doctorUser.ID, "first"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.svc.Send(context.Background(), f.otherPatient.ID, f.doctorUser.ID, "second"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	convs, err := f.svc.Conversations(context.Background(), "doctor", f.doctorUser.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(convs) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(convs))
	}
	if convs[0].PartnerID != f.otherPatient.ID {
		t.Error("most recent conversation should come first")
	}
	if convs[0].UnreadCount != 1 {
		t.Errorf("expected 1 unread from otherPatient, got %d", convs[0].UnreadCount)
	}
	if convs[0].LastMessage == nil || *convs[0].LastMessage != "second" {
		t.Error("expected last message content")
	}
}

func TestService_Conversations_PatientSeesBookedDoctors(t *testing.T) {
	f := newFixture()

	convs, err := f.svc.Conversations(context.Background(), "patient", f.patient.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(convs) != 1 || convs[0].PartnerID != f.doctorUser.ID {
		t.Errorf("expected the booked doctor as partner, got %+v", convs)
	}
	if convs[0].LastMessage != nil {
		t.Error("no messages yet, last message should be nil")
	}
}

func TestService_Conversations_AdminEmpty(t *testing.T) {
	f := newFixture()

	convs, err := f.svc.Conversations(context.Background(), "admin", uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if convs == nil || len(convs) != 0 {
		t.Errorf("expected empty non-nil list, got %v", convs)
	}
}
