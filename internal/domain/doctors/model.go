package doctors

import (
	"time"

	"github.com/google/uuid"
)

// DaySchedule describes a doctor's availability for one weekday. Times are
// 24-hour "HH:MM" strings; empty means unset. BreakStart/BreakEnd are either
// both set or both empty after normalization.
type DaySchedule struct {
	Available  bool   `json:"available"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
	BreakStart string `json:"breakStart"`
	BreakEnd   string `json:"breakEnd"`
}

// WeeklySchedule maps a lowercase day name ("sunday".."saturday") to that
// day's schedule. A normalized schedule always carries all seven keys.
type WeeklySchedule map[string]DaySchedule

// Doctor maps to the doctor table. Name and Email are joined in from the
// linked user row and are not writable through this package.
type Doctor struct {
	ID             uuid.UUID      `db:"id" json:"id"`
	UserID         uuid.UUID      `db:"user_id" json:"user_id"`
	Name           string         `db:"name" json:"name"`
	Email          string         `db:"email" json:"email"`
	Specialization string         `db:"specialization" json:"specialization"`
	LicenseNumber  *string        `db:"license_number" json:"license_number,omitempty"`
	Phone          *string        `db:"phone" json:"phone,omitempty"`
	Bio            *string        `db:"bio" json:"bio,omitempty"`
	Schedule       WeeklySchedule `db:"schedule" json:"schedule"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}
