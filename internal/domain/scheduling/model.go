package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses. Only pending and confirmed appointments occupy a
// slot; completed and cancelled ones free it.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

var validStatuses = map[string]bool{
	StatusPending:   true,
	StatusConfirmed: true,
	StatusCompleted: true,
	StatusCancelled: true,
}

// activeStatuses are the statuses that block a slot and may still be changed.
var activeStatuses = []string{StatusPending, StatusConfirmed}

// Appointment maps to the appointment table. Dates travel as "YYYY-MM-DD"
// and times as 24-hour "HH:MM" strings. PatientName, DoctorName and
// Specialization are joined in for display and are not writable.
type Appointment struct {
	ID              uuid.UUID `db:"id" json:"id"`
	PatientID       uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID        uuid.UUID `db:"doctor_id" json:"doctor_id"`
	PatientName     string    `db:"patient_name" json:"patient_name,omitempty"`
	DoctorName      string    `db:"doctor_name" json:"doctor_name,omitempty"`
	Specialization  string    `db:"specialization" json:"specialization,omitempty"`
	AppointmentDate string    `db:"appointment_date" json:"appointment_date"`
	AppointmentTime string    `db:"appointment_time" json:"appointment_time"`
	Status          string    `db:"status" json:"status"`
	Reason          *string   `db:"reason" json:"reason,omitempty"`
	Notes           *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// IsActive reports whether the appointment still occupies its slot.
func (a *Appointment) IsActive() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}

// Slot is one bookable 30-minute opening in a doctor's day.
type Slot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}
