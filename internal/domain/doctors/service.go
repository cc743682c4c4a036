package doctors

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, d *Doctor) error {
	if d.UserID == uuid.Nil {
		return fmt.Errorf("user_id is required")
	}
	if d.Specialization == "" {
		return fmt.Errorf("specialization is required")
	}
	if existing, err := s.repo.GetByUserID(ctx, d.UserID); err == nil && existing != nil {
		return fmt.Errorf("user already has a doctor profile")
	}
	d.Schedule = NormalizeSchedule(d.Schedule)
	return s.repo.Create(ctx, d)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d.Schedule = NormalizeSchedule(d.Schedule)
	return d, nil
}

func (s *Service) GetByUserID(ctx context.Context, userID uuid.UUID) (*Doctor, error) {
	d, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	d.Schedule = NormalizeSchedule(d.Schedule)
	return d, nil
}

func (s *Service) Update(ctx context.Context, d *Doctor) error {
	if d.Specialization == "" {
		return fmt.Errorf("specialization is required")
	}
	if _, err := s.repo.GetByID(ctx, d.ID); err != nil {
		return err
	}
	return s.repo.Update(ctx, d)
}

// UpdateSchedule normalizes and persists a doctor's weekly schedule. Malformed
// fragments are repaired rather than rejected, so staff edits always stick.
func (s *Service) UpdateSchedule(ctx context.Context, id uuid.UUID, schedule WeeklySchedule) (WeeklySchedule, error) {
	normalized := NormalizeSchedule(schedule)
	if err := s.repo.UpdateSchedule(ctx, id, normalized); err != nil {
		return nil, err
	}
	return normalized, nil
}

// Schedule returns the doctor's normalized weekly schedule.
func (s *Service) Schedule(ctx context.Context, id uuid.UUID) (WeeklySchedule, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return NormalizeSchedule(d.Schedule), nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, specialization string, limit, offset int) ([]*Doctor, int, error) {
	list, total, err := s.repo.List(ctx, specialization, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	for _, d := range list {
		d.Schedule = NormalizeSchedule(d.Schedule)
	}
	return list, total, nil
}

func (s *Service) Specializations(ctx context.Context) ([]string, error) {
	return s.repo.Specializations(ctx)
}
