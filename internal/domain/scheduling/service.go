package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicbook/clinicbook/internal/domain/doctors"
)

// Booking failures are typed so handlers can render a precise message and
// status code. Schedule data defects never surface here; they degrade to
// empty slot lists instead.
var (
	ErrMissingFields  = errors.New("doctor_id, appointment_date and appointment_time are required")
	ErrDoctorNotFound = errors.New("doctor not found")
	ErrBadDate        = errors.New("invalid appointment date, expected YYYY-MM-DD")
	ErrBadTime        = errors.New("invalid appointment time, expected HH:MM")
	ErrPastDate       = errors.New("cannot book an appointment on a past date")
	ErrDayUnavailable = errors.New("doctor is not available on the selected day")
	ErrOutsideHours   = errors.New("time is outside the doctor's working hours")
	ErrDuringBreak    = errors.New("time falls within the doctor's break")
	ErrSlotTaken      = errors.New("slot is already booked, please pick another time")
	ErrNotModifiable  = errors.New("only pending or confirmed appointments can be changed")
)

// DoctorDirectory is the slice of the doctors service this package needs.
type DoctorDirectory interface {
	Get(ctx context.Context, id uuid.UUID) (*doctors.Doctor, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*doctors.Doctor, error)
}

// Notifier receives appointment lifecycle events. Implementations must not
// fail the triggering operation; delivery is best effort.
type Notifier interface {
	AppointmentBooked(ctx context.Context, a *Appointment, doctorUserID uuid.UUID)
	AppointmentStatusChanged(ctx context.Context, a *Appointment, oldStatus string)
	AppointmentRescheduled(ctx context.Context, a *Appointment, doctorUserID uuid.UUID)
}

type Service struct {
	repo     Repository
	doctors  DoctorDirectory
	notifier Notifier
	logger   zerolog.Logger
	now      func() time.Time
}

// NewService wires the appointment service. notifier may be nil.
func NewService(repo Repository, dir DoctorDirectory, notifier Notifier, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		doctors:  dir,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Slots returns the bookable slots for a doctor on a calendar date. Each slot
// is marked unavailable when an active appointment already holds it.
func (s *Service) Slots(ctx context.Context, doctorID uuid.UUID, dateStr string) ([]Slot, error) {
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, ErrBadDate
	}
	if dateStr < s.now().Format("2006-01-02") {
		return nil, ErrPastDate
	}
	doc, err := s.doctors.Get(ctx, doctorID)
	if err != nil {
		return nil, ErrDoctorNotFound
	}

	day := doctors.NormalizeSchedule(doc.Schedule)[doctors.DayName(date)]

	times, err := s.repo.OccupiedTimes(ctx, doctorID, dateStr)
	if err != nil {
		return nil, fmt.Errorf("occupied times: %w", err)
	}
	occupied := make(map[string]bool, len(times))
	for _, t := range times {
		occupied[t] = true
	}

	slots, genErr := GenerateSlots(day, occupied)
	if genErr != nil {
		s.logger.Warn().
			Str("doctor_id", doctorID.String()).
			Str("date", dateStr).
			Err(genErr).
			Msg("malformed schedule, returning no slots")
	}
	return slots, nil
}

// Create books a new appointment for a patient. The requested slot is
// validated against the doctor's schedule and existing active appointments;
// the database's partial unique index backstops concurrent bookings.
func (s *Service) Create(ctx context.Context, a *Appointment) error {
	if a.PatientID == uuid.Nil || a.DoctorID == uuid.Nil || a.AppointmentDate == "" || a.AppointmentTime == "" {
		return ErrMissingFields
	}
	if _, err := s.validateSlot(ctx, a.DoctorID, a.AppointmentDate, a.AppointmentTime); err != nil {
		return err
	}

	taken, err := s.repo.HasActiveAt(ctx, a.DoctorID, a.AppointmentDate, a.AppointmentTime)
	if err != nil {
		return fmt.Errorf("conflict check: %w", err)
	}
	if taken {
		return ErrSlotTaken
	}

	a.Status = StatusPending
	if err := s.repo.Create(ctx, a); err != nil {
		return err
	}

	if s.notifier != nil {
		if doc, err := s.doctors.Get(ctx, a.DoctorID); err == nil {
			s.notifier.AppointmentBooked(ctx, a, doc.UserID)
		}
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

// ListFor scopes the appointment listing to the caller: admins see
// everything, doctors their own schedule, patients their own bookings.
func (s *Service) ListFor(ctx context.Context, role string, userID uuid.UUID, f ListFilter, limit, offset int) ([]*Appointment, int, error) {
	switch role {
	case "admin":
		return s.repo.ListAll(ctx, f, limit, offset)
	case "doctor":
		doc, err := s.doctors.GetByUserID(ctx, userID)
		if err != nil {
			return []*Appointment{}, 0, nil
		}
		return s.repo.ListByDoctor(ctx, doc.ID, f, limit, offset)
	default:
		return s.repo.ListByPatient(ctx, userID, f, limit, offset)
	}
}

// MyAppointments splits a patient's appointments into upcoming and past.
// An appointment is upcoming while its date has not passed and it is still
// active; everything else is history.
func (s *Service) MyAppointments(ctx context.Context, patientID uuid.UUID) (upcoming, past []*Appointment, err error) {
	list, _, err := s.repo.ListByPatient(ctx, patientID, ListFilter{}, 1000, 0)
	if err != nil {
		return nil, nil, err
	}
	today := s.now().Format("2006-01-02")
	upcoming, past = []*Appointment{}, []*Appointment{}
	for _, a := range list {
		if a.AppointmentDate >= today && a.IsActive() {
			upcoming = append(upcoming, a)
		} else {
			past = append(past, a)
		}
	}
	return upcoming, past, nil
}

// TodayForDoctor lists a doctor's appointments for the current date, keyed by
// the doctor's user account.
func (s *Service) TodayForDoctor(ctx context.Context, doctorUserID uuid.UUID) ([]*Appointment, error) {
	doc, err := s.doctors.GetByUserID(ctx, doctorUserID)
	if err != nil {
		return nil, ErrDoctorNotFound
	}
	return s.repo.ListForDoctorDate(ctx, doc.ID, s.now().Format("2006-01-02"))
}

// UpdateStatus moves an appointment through its lifecycle. Completed and
// cancelled appointments are terminal.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Appointment, error) {
	if !validStatuses[status] {
		return nil, fmt.Errorf("invalid status %q", status)
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.IsActive() {
		return nil, ErrNotModifiable
	}
	old := a.Status
	a.Status = status
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	if s.notifier != nil && old != status {
		s.notifier.AppointmentStatusChanged(ctx, a, old)
	}
	return a, nil
}

// Reschedule moves an active appointment to a new slot, re-running the full
// booking validation against the new date and time.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, dateStr, timeStr string) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.IsActive() {
		return nil, ErrNotModifiable
	}
	if dateStr == "" || timeStr == "" {
		return nil, ErrMissingFields
	}

	doc, err := s.validateSlot(ctx, a.DoctorID, dateStr, timeStr)
	if err != nil {
		return nil, err
	}
	if dateStr != a.AppointmentDate || timeStr != a.AppointmentTime {
		taken, err := s.repo.HasActiveAt(ctx, a.DoctorID, dateStr, timeStr)
		if err != nil {
			return nil, fmt.Errorf("conflict check: %w", err)
		}
		if taken {
			return nil, ErrSlotTaken
		}
	}

	a.AppointmentDate = dateStr
	a.AppointmentTime = timeStr
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.AppointmentRescheduled(ctx, a, doc.UserID)
	}
	return a, nil
}

// Cancel marks an active appointment cancelled, freeing its slot.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.IsActive() {
		return nil, ErrNotModifiable
	}
	old := a.Status
	a.Status = StatusCancelled
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.AppointmentStatusChanged(ctx, a, old)
	}
	return a, nil
}

// validateSlot runs the schedule-side booking preconditions in order and
// returns the doctor on success.
func (s *Service) validateSlot(ctx context.Context, doctorID uuid.UUID, dateStr, timeStr string) (*doctors.Doctor, error) {
	doc, err := s.doctors.Get(ctx, doctorID)
	if err != nil {
		return nil, ErrDoctorNotFound
	}

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, ErrBadDate
	}
	reqMinutes, err := minutesOf(timeStr)
	if err != nil {
		return nil, ErrBadTime
	}

	today := s.now().Format("2006-01-02")
	if dateStr < today {
		return nil, ErrPastDate
	}

	day := doctors.NormalizeSchedule(doc.Schedule)[doctors.DayName(date)]
	if !day.Available {
		return nil, ErrDayUnavailable
	}

	// Malformed working hours are a data-quality problem, not the patient's;
	// skip hour checks rather than reject the booking.
	if day.StartTime != "" && day.EndTime != "" {
		start, errS := minutesOf(day.StartTime)
		end, errE := minutesOf(day.EndTime)
		if errS == nil && errE == nil {
			if reqMinutes < start || reqMinutes >= end {
				return nil, ErrOutsideHours
			}
			if day.BreakStart != "" && day.BreakEnd != "" {
				bs, errBS := minutesOf(day.BreakStart)
				be, errBE := minutesOf(day.BreakEnd)
				if errBS == nil && errBE == nil && reqMinutes >= bs && reqMinutes < be {
					return nil, ErrDuringBreak
				}
			}
		}
	}
	return doc, nil
}
