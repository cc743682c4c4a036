package scheduling

import (
	"context"

	"github.com/google/uuid"
)

// ListFilter narrows appointment listings. Empty fields match everything.
type ListFilter struct {
	Status string
	Date   string
}

// Repository abstracts appointment persistence. Create returns ErrSlotTaken
// when another active appointment already holds the same doctor/date/time.
type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, f ListFilter, limit, offset int) ([]*Appointment, int, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, f ListFilter, limit, offset int) ([]*Appointment, int, error)
	ListAll(ctx context.Context, f ListFilter, limit, offset int) ([]*Appointment, int, error)
	ListForDoctorDate(ctx context.Context, doctorID uuid.UUID, date string) ([]*Appointment, error)
	OccupiedTimes(ctx context.Context, doctorID uuid.UUID, date string) ([]string, error)
	HasActiveAt(ctx context.Context, doctorID uuid.UUID, date, timeOfDay string) (bool, error)
}
