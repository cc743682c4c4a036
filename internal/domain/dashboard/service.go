package dashboard

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/clinicbook/clinicbook/internal/domain/doctors"
	"github.com/clinicbook/clinicbook/internal/domain/identity"
	"github.com/clinicbook/clinicbook/internal/domain/scheduling"
)

var (
	ErrNoDoctorProfile = errors.New("doctor profile not found")
	ErrUnknownRole     = errors.New("unknown role")
)

const upcomingPreviewSize = 5

// AppointmentSource provides the appointment lists the overview embeds.
type AppointmentSource interface {
	MyAppointments(ctx context.Context, patientID uuid.UUID) (upcoming, past []*scheduling.Appointment, err error)
	TodayForDoctor(ctx context.Context, doctorUserID uuid.UUID) ([]*scheduling.Appointment, error)
}

type DoctorDirectory interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*doctors.Doctor, error)
}

type UserDirectory interface {
	Get(ctx context.Context, id uuid.UUID) (*identity.User, error)
}

// Overview is the role-shaped dashboard payload. Stats holds one of
// PatientStats, DoctorStats or AdminStats depending on Role.
type Overview struct {
	Role                 string                    `json:"role"`
	User                 *identity.User            `json:"user"`
	Stats                any                       `json:"stats"`
	UpcomingAppointments []*scheduling.Appointment `json:"upcoming_appointments,omitempty"`
	Doctor               *doctors.Doctor           `json:"doctor,omitempty"`
	TodaySchedule        []*scheduling.Appointment `json:"today_schedule,omitempty"`
}

type Service struct {
	repo         Repository
	appointments AppointmentSource
	doctors      DoctorDirectory
	users        UserDirectory

	now func() time.Time
}

func NewService(repo Repository, appointments AppointmentSource, dir DoctorDirectory, users UserDirectory) *Service {
	return &Service{
		repo:         repo,
		appointments: appointments,
		doctors:      dir,
		users:        users,
		now:          time.Now,
	}
}

// Overview assembles the dashboard for the authenticated user.
func (s *Service) Overview(ctx context.Context, role string, userID uuid.UUID) (*Overview, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	switch role {
	case identity.RolePatient:
		return s.patientOverview(ctx, user)
	case identity.RoleDoctor:
		return s.doctorOverview(ctx, user)
	case identity.RoleAdmin:
		return s.adminOverview(ctx, user)
	}
	return nil, ErrUnknownRole
}

func (s *Service) patientOverview(ctx context.Context, user *identity.User) (*Overview, error) {
	total, completed, err := s.repo.PatientCounts(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	upcoming, _, err := s.appointments.MyAppointments(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	// soonest first for the preview
	sort.Slice(upcoming, func(i, j int) bool {
		if upcoming[i].AppointmentDate != upcoming[j].AppointmentDate {
			return upcoming[i].AppointmentDate < upcoming[j].AppointmentDate
		}
		return upcoming[i].AppointmentTime < upcoming[j].AppointmentTime
	})
	preview := upcoming
	if len(preview) > upcomingPreviewSize {
		preview = preview[:upcomingPreviewSize]
	}
	if preview == nil {
		preview = []*scheduling.Appointment{}
	}

	return &Overview{
		Role: identity.RolePatient,
		User: user,
		Stats: PatientStats{
			TotalAppointments:     total,
			CompletedAppointments: completed,
			UpcomingCount:         len(upcoming),
		},
		UpcomingAppointments: preview,
	}, nil
}

func (s *Service) doctorOverview(ctx context.Context, user *identity.User) (*Overview, error) {
	doc, err := s.doctors.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, ErrNoDoctorProfile
	}
	pending, patients, err := s.repo.DoctorCounts(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	today, err := s.appointments.TodayForDoctor(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if today == nil {
		today = []*scheduling.Appointment{}
	}

	return &Overview{
		Role:   identity.RoleDoctor,
		User:   user,
		Doctor: doc,
		Stats: DoctorStats{
			TodayAppointments:   len(today),
			PendingAppointments: pending,
			TotalPatients:       patients,
		},
		TodaySchedule: today,
	}, nil
}

func (s *Service) adminOverview(ctx context.Context, user *identity.User) (*Overview, error) {
	stats, err := s.repo.AdminCounts(ctx, s.now().Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	return &Overview{
		Role:  identity.RoleAdmin,
		User:  user,
		Stats: *stats,
	}, nil
}
