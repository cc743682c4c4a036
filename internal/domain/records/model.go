package records

import (
	"time"

	"github.com/google/uuid"
)

// MedicalRecord maps to the medical_record table. Each appointment carries at
// most one record, written by the treating doctor.
type MedicalRecord struct {
	ID            uuid.UUID `db:"id" json:"id"`
	AppointmentID uuid.UUID `db:"appointment_id" json:"appointment_id"`
	Diagnosis     string    `db:"diagnosis" json:"diagnosis"`
	Symptoms      *string   `db:"symptoms" json:"symptoms,omitempty"`
	Treatment     *string   `db:"treatment" json:"treatment,omitempty"`
	Prescription  *string   `db:"prescription" json:"prescription,omitempty"`
	Notes         *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`

	// Joined from the appointment for display.
	PatientName     string `db:"patient_name" json:"patient_name,omitempty"`
	DoctorName      string `db:"doctor_name" json:"doctor_name,omitempty"`
	AppointmentDate string `db:"appointment_date" json:"appointment_date,omitempty"`
}
