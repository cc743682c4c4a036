package records

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinicbook/clinicbook/internal/domain/doctors"
	"github.com/clinicbook/clinicbook/internal/domain/scheduling"
)

// -- Mock Repository --

type mockRepo struct {
	records map[uuid.UUID]*MedicalRecord
}

func newMockRepo() *mockRepo {
	return &mockRepo{records: make(map[uuid.UUID]*MedicalRecord)}
}

func (m *mockRepo) Create(_ context.Context, r *MedicalRecord) error {
	r.ID = uuid.New()
	r.CreatedAt = time.Now()
	r.UpdatedAt = time.Now()
	m.records[r.ID] = r
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*MedicalRecord, error) {
	r, ok := m.records[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return r, nil
}

func (m *mockRepo) GetByAppointment(_ context.Context, appointmentID uuid.UUID) (*MedicalRecord, error) {
	for _, r := range m.records {
		if r.AppointmentID == appointmentID {
			return r, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (m *mockRepo) Update(_ context.Context, r *MedicalRecord) error {
	m.records[r.ID] = r
	return nil
}

func (m *mockRepo) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error) {
	return m.ListAll(ctx, limit, offset)
}

func (m *mockRepo) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error) {
	return m.ListAll(ctx, limit, offset)
}

func (m *mockRepo) ListAll(_ context.Context, limit, offset int) ([]*MedicalRecord, int, error) {
	var out []*MedicalRecord
	for _, r := range m.records {
		out = append(out, r)
	}
	return out, len(out), nil
}

// -- Mock Appointment Source --

type mockAppts struct {
	appointments map[uuid.UUID]*scheduling.Appointment
}

func (m *mockAppts) Get(_ context.Context, id uuid.UUID) (*scheduling.Appointment, error) {
	a, ok := m.appointments[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return a, nil
}

func (m *mockAppts) UpdateStatus(_ context.Context, id uuid.UUID, status string) (*scheduling.Appointment, error) {
	a, ok := m.appointments[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	a.Status = status
	return a, nil
}

// -- Mock Doctor Directory --

type mockDirectory struct {
	doctors map[uuid.UUID]*doctors.Doctor
}

func (m *mockDirectory) GetByUserID(_ context.Context, userID uuid.UUID) (*doctors.Doctor, error) {
	for _, d := range m.doctors {
		if d.UserID == userID {
			return d, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

// -- Fixture --

type fixture struct {
	svc          *Service
	repo         *mockRepo
	appts        *mockAppts
	doctorUserID uuid.UUID
	patientID    uuid.UUID
	appt         *scheduling.Appointment
}

func newFixture(status string) *fixture {
	repo := newMockRepo()
	doc := &doctors.Doctor{ID: uuid.New(), UserID: uuid.New(), Specialization: "Cardiology"}
	dir := &mockDirectory{doctors: map[uuid.UUID]*doctors.Doctor{doc.ID: doc}}

	appt := &scheduling.Appointment{
		ID:              uuid.New(),
		PatientID:       uuid.New(),
		DoctorID:        doc.ID,
		AppointmentDate: "2026-03-04",
		AppointmentTime: "09:00",
		Status:          status,
	}
	appts := &mockAppts{appointments: map[uuid.UUID]*scheduling.Appointment{appt.ID: appt}}

	return &fixture{
		svc:          NewService(repo, appts, dir),
		repo:         repo,
		appts:        appts,
		doctorUserID: doc.UserID,
		patientID:    appt.PatientID,
		appt:         appt,
	}
}

// -- Tests --

func TestService_Create(t *testing.T) {
	f := newFixture(scheduling.StatusConfirmed)

	rec := &MedicalRecord{AppointmentID: f.appt.ID, Diagnosis: "Hypertension"}
	if err := f.svc.Create(context.Background(), f.doctorUserID, rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.repo.records) != 1 {
		t.Errorf("expected 1 stored record, got %d", len(f.repo.records))
	}
	if f.appt.Status != scheduling.StatusCompleted {
		t.Errorf("filing a record should complete the appointment, got %s", f.appt.Status)
	}
}

func TestService_Create_Validation(t *testing.T) {
	f := newFixture(scheduling.StatusConfirmed)

	if err := f.svc.Create(context.Background(), f.doctorUserID, &MedicalRecord{Diagnosis: "X"}); err == nil {
		t.Error("expected error for missing appointment_id")
	}
	if err := f.svc.Create(context.Background(), f.doctorUserID, &MedicalRecord{AppointmentID: f.appt.ID}); err == nil {
		t.Error("expected error for missing diagnosis")
	}
}

func TestService_Create_WrongDoctor(t *testing.T) {
	f := newFixture(scheduling.StatusConfirmed)

	rec := &MedicalRecord{AppointmentID: f.appt.ID, Diagnosis: "Hypertension"}
	if err := f.svc.Create(context.Background(), uuid.New(), rec); err != ErrNotTreatingDoctor {
		t.Errorf("expected ErrNotTreatingDoctor, got %v", err)
	}
}

func TestService_Create_PendingAppointmentRejected(t *testing.T) {
	f := newFixture(scheduling.StatusPending)

	rec := &MedicalRecord{AppointmentID: f.appt.ID, Diagnosis: "Hypertension"}
	if err := f.svc.Create(context.Background(), f.doctorUserID, rec); err != ErrAppointmentNotReady {
		t.Errorf("expected ErrAppointmentNotReady, got %v", err)
	}
}

func TestService_Create_Duplicate(t *testing.T) {
	f := newFixture(scheduling.StatusCompleted)

	first := &MedicalRecord{AppointmentID: f.appt.ID, Diagnosis: "Hypertension"}
	if err := f.svc.Create(context.Background(), f.doctorUserID, first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second := &MedicalRecord{AppointmentID: f.appt.ID, Diagnosis: "Migraine"}
	if err := f.svc.Create(context.Background(), f.doctorUserID, second); err != ErrRecordExists {
		t.Errorf("expected ErrRecordExists, got %v", err)
	}
}

func TestService_Get_Authorization(t *testing.T) {
	f := newFixture(scheduling.StatusCompleted)

	rec := &MedicalRecord{AppointmentID: f.appt.ID, Diagnosis: "Hypertension"}
	if err := f.svc.Create(context.Background(), f.doctorUserID, rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []struct {
		name    string
		role    string
		userID  uuid.UUID
		wantErr error
	}{
		{"patient own", "patient", f.patientID, nil},
		{"treating doctor", "doctor", f.doctorUserID, nil},
		{"admin", "admin", uuid.New(), nil},
		{"other patient", "patient", uuid.New(), ErrNotParticipant},
		{"other doctor", "doctor", uuid.New(), ErrNotParticipant},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Get(context.Background(), rec.ID, tc.role, tc.userID)
			if err != tc.wantErr {
				t.Errorf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestService_Update(t *testing.T) {
	f := newFixture(scheduling.StatusCompleted)

	rec := &MedicalRecord{AppointmentID: f.appt.ID, Diagnosis: "Hypertension"}
	if err := f.svc.Create(context.Background(), f.doctorUserID, rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	treatment := "Lifestyle changes"
	updated, err := f.svc.Update(context.Background(), f.doctorUserID, rec.ID, &MedicalRecord{
		Diagnosis: "Stage 1 hypertension",
		Treatment: &treatment,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Diagnosis != "Stage 1 hypertension" {
		t.Errorf("diagnosis not updated: %s", updated.Diagnosis)
	}
	if updated.Treatment == nil || *updated.Treatment != treatment {
		t.Error("treatment not updated")
	}

	if _, err := f.svc.Update(context.Background(), uuid.New(), rec.ID, &MedicalRecord{Diagnosis: "X"}); err != ErrNotTreatingDoctor {
		t.Errorf("expected ErrNotTreatingDoctor, got %v", err)
	}
}
