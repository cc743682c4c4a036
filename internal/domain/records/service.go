package records

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/clinicbook/clinicbook/internal/domain/doctors"
	"github.com/clinicbook/clinicbook/internal/domain/scheduling"
)

var (
	ErrNotTreatingDoctor   = errors.New("appointment belongs to another doctor")
	ErrNotParticipant      = errors.New("no access to this medical record")
	ErrRecordExists        = errors.New("appointment already has a medical record")
	ErrAppointmentNotReady = errors.New("medical records require a confirmed or completed appointment")
)

// AppointmentSource is the slice of the scheduling service this package
// needs: looking up an appointment and completing it once a record is filed.
type AppointmentSource interface {
	Get(ctx context.Context, id uuid.UUID) (*scheduling.Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*scheduling.Appointment, error)
}

// DoctorDirectory resolves the doctor profile behind a user account.
type DoctorDirectory interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*doctors.Doctor, error)
}

type Service struct {
	repo    Repository
	appts   AppointmentSource
	doctors DoctorDirectory
}

func NewService(repo Repository, appts AppointmentSource, dir DoctorDirectory) *Service {
	return &Service{repo: repo, appts: appts, doctors: dir}
}

// Create files a medical record for one of the doctor's confirmed or
// completed appointments, then marks the appointment completed.
func (s *Service) Create(ctx context.Context, doctorUserID uuid.UUID, rec *MedicalRecord) error {
	if rec.AppointmentID == uuid.Nil {
		return fmt.Errorf("appointment_id is required")
	}
	if rec.Diagnosis == "" {
		return fmt.Errorf("diagnosis is required")
	}

	appt, err := s.appts.Get(ctx, rec.AppointmentID)
	if err != nil {
		return fmt.Errorf("appointment not found")
	}
	doc, err := s.doctors.GetByUserID(ctx, doctorUserID)
	if err != nil || doc.ID != appt.DoctorID {
		return ErrNotTreatingDoctor
	}
	if appt.Status != scheduling.StatusConfirmed && appt.Status != scheduling.StatusCompleted {
		return ErrAppointmentNotReady
	}
	if _, err := s.repo.GetByAppointment(ctx, rec.AppointmentID); err == nil {
		return ErrRecordExists
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return err
	}
	if appt.Status != scheduling.StatusCompleted {
		if _, err := s.appts.UpdateStatus(ctx, appt.ID, scheduling.StatusCompleted); err != nil {
			return fmt.Errorf("complete appointment: %w", err)
		}
	}
	return nil
}

// Get fetches a record, admitting admins and the appointment's participants.
func (s *Service) Get(ctx context.Context, id uuid.UUID, role string, userID uuid.UUID) (*MedicalRecord, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, rec, role, userID); err != nil {
		return nil, err
	}
	return rec, nil
}

// ListFor scopes the record listing to the caller's role.
func (s *Service) ListFor(ctx context.Context, role string, userID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error) {
	switch role {
	case "admin":
		return s.repo.ListAll(ctx, limit, offset)
	case "doctor":
		doc, err := s.doctors.GetByUserID(ctx, userID)
		if err != nil {
			return []*MedicalRecord{}, 0, nil
		}
		return s.repo.ListByDoctor(ctx, doc.ID, limit, offset)
	default:
		return s.repo.ListByPatient(ctx, userID, limit, offset)
	}
}

// Update lets the treating doctor revise a record's clinical fields.
func (s *Service) Update(ctx context.Context, doctorUserID, id uuid.UUID, rec *MedicalRecord) (*MedicalRecord, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	appt, err := s.appts.Get(ctx, existing.AppointmentID)
	if err != nil {
		return nil, fmt.Errorf("appointment not found")
	}
	doc, err := s.doctors.GetByUserID(ctx, doctorUserID)
	if err != nil || doc.ID != appt.DoctorID {
		return nil, ErrNotTreatingDoctor
	}

	if rec.Diagnosis != "" {
		existing.Diagnosis = rec.Diagnosis
	}
	if rec.Symptoms != nil {
		existing.Symptoms = rec.Symptoms
	}
	if rec.Treatment != nil {
		existing.Treatment = rec.Treatment
	}
	if rec.Prescription != nil {
		existing.Prescription = rec.Prescription
	}
	if rec.Notes != nil {
		existing.Notes = rec.Notes
	}
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *Service) authorize(ctx context.Context, rec *MedicalRecord, role string, userID uuid.UUID) error {
	if role == "admin" {
		return nil
	}
	appt, err := s.appts.Get(ctx, rec.AppointmentID)
	if err != nil {
		return ErrNotParticipant
	}
	switch role {
	case "doctor":
		doc, err := s.doctors.GetByUserID(ctx, userID)
		if err != nil || doc.ID != appt.DoctorID {
			return ErrNotParticipant
		}
	default:
		if appt.PatientID != userID {
			return ErrNotParticipant
		}
	}
	return nil
}
