package dashboard

import (
	"context"

	"github.com/google/uuid"
)

// Repository runs the aggregate count queries the overview needs. List
// data comes from the scheduling service, not from here.
type Repository interface {
	PatientCounts(ctx context.Context, patientID uuid.UUID) (total, completed int, err error)
	DoctorCounts(ctx context.Context, doctorID uuid.UUID) (pending, distinctPatients int, err error)
	AdminCounts(ctx context.Context, today string) (*AdminStats, error)
}
