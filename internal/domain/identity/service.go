package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/clinicbook/clinicbook/internal/domain/doctors"
	"github.com/clinicbook/clinicbook/internal/platform/auth"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// DoctorRegistrar creates the doctor profile that accompanies a doctor
// account. It is the slice of the doctors service registration needs.
type DoctorRegistrar interface {
	Create(ctx context.Context, d *doctors.Doctor) error
}

// TxRunner runs fn atomically. Registration uses it so the user row and the
// doctor profile land together or not at all.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

type Service struct {
	repo      Repository
	registrar DoctorRegistrar
	issuer    *auth.TokenIssuer
	runTx     TxRunner
}

// NewService wires the identity service. registrar and runTx may be nil; a
// nil runTx executes registration without a surrounding transaction.
func NewService(repo Repository, registrar DoctorRegistrar, issuer *auth.TokenIssuer, runTx TxRunner) *Service {
	if runTx == nil {
		runTx = func(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }
	}
	return &Service{repo: repo, registrar: registrar, issuer: issuer, runTx: runTx}
}

// RegisterInput carries a registration request. Specialization only applies
// when Role is doctor.
type RegisterInput struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Role           string `json:"role"`
	Specialization string `json:"specialization"`
}

// Register creates a user account, plus a doctor profile when the account's
// role is doctor.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if in.Email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, fmt.Errorf("invalid email address")
	}
	if in.Password == "" {
		return nil, fmt.Errorf("password is required")
	}
	if in.Role == "" {
		in.Role = RolePatient
	}
	if !validRoles[in.Role] {
		return nil, fmt.Errorf("invalid role %q", in.Role)
	}
	if _, err := s.repo.GetByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &User{Name: in.Name, Email: in.Email, PasswordHash: hash, Role: in.Role}

	err = s.runTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, u); err != nil {
			return err
		}
		if u.Role == RoleDoctor && s.registrar != nil {
			spec := in.Specialization
			if spec == "" {
				spec = "General Practice"
			}
			return s.registrar.Create(ctx, &doctors.Doctor{UserID: u.ID, Specialization: spec})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies credentials and issues a signed token.
func (s *Service) Login(ctx context.Context, email, password string) (*User, string, error) {
	if email == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, "", ErrInvalidCredentials
	}
	token, err := s.issuer.Issue(u.ID, u.Role, u.Name)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return u, token, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateProfile changes a user's display name and profile picture.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, name string, picture *string) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if name = strings.TrimSpace(name); name != "" {
		u.Name = name
	}
	if picture != nil {
		u.ProfilePicture = picture
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateUserInput carries an administrative user update. Nil fields are left
// unchanged.
type UpdateUserInput struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// UpdateUser changes a user's name, email, or password. Email changes are
// checked for uniqueness against other accounts.
func (s *Service) UpdateUser(ctx context.Context, id uuid.UUID, in UpdateUserInput) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		if name := strings.TrimSpace(*in.Name); name != "" {
			u.Name = name
		}
	}
	if in.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*in.Email))
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, fmt.Errorf("invalid email address")
		}
		if email != u.Email {
			if other, err := s.repo.GetByEmail(ctx, email); err == nil && other.ID != id {
				return nil, ErrEmailTaken
			}
			u.Email = email
		}
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	if in.Password != nil && *in.Password != "" {
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
			return nil, err
		}
	}
	return u, nil
}

// ChangePassword verifies the current password before setting a new one.
func (s *Service) ChangePassword(ctx context.Context, id uuid.UUID, current, next string) error {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(u.PasswordHash, current) {
		return ErrInvalidCredentials
	}
	hash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, id, hash)
}

func (s *Service) List(ctx context.Context, role string, limit, offset int) ([]*User, int, error) {
	return s.repo.List(ctx, role, limit, offset)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
