package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrBlocked            = errors.New("account is blocked")
	ErrCannotModifyAdmin  = errors.New("cannot modify an admin account")
	ErrNotVendor          = errors.New("user is not a vendor")
)

type Service interface {
	Register(ctx context.Context, u *User, password string) (*User, error)
	Authenticate(ctx context.Context, email, password string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name, email, phone string, password *string) (*User, error)
	ListActive(ctx context.Context) ([]User, error)
	ToggleBlock(ctx context.Context, id uuid.UUID) (*User, error)
	ApproveVendor(ctx context.Context, id uuid.UUID) (*User, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	ResetPassword(ctx context.Context, id uuid.UUID, password string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Register(ctx context.Context, u *User, password string) (*User, error) {
	if password == "" {
		return nil, errors.New("service: password cannot be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to hash password")
		return nil, fmt.Errorf("service: failed to hash password: %w", err)
	}
	u.PasswordHash = string(hash)

	// Vendors need admin approval before their products go live.
	u.IsApproved = !u.IsVendor
	u.IsAdmin = false

	if _, err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return nil, ErrEmailExists
		}
		log.Error().Err(err).Msg("service: failed to create user in repository")
		return nil, fmt.Errorf("service: failed to create user: %w", err)
	}

	log.Info().Stringer("user_id", u.ID).Str("email", u.Email).Msg("service: user registered")
	return u, nil
}

func (s *service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("service: failed to fetch user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if u.IsBlocked {
		return nil, ErrBlocked
	}

	return u, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch user by id: %w", err)
	}
	return u, nil
}

func (s *service) UpdateProfile(ctx context.Context, id uuid.UUID, name, email, phone string, password *string) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch user for profile update: %w", err)
	}

	if name != "" {
		u.Name = name
	}
	if email != "" {
		u.Email = email
	}
	if phone != "" {
		u.Phone = phone
	}
	if password != nil && *password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("service: failed to hash password: %w", err)
		}
		u.PasswordHash = string(hash)
	}

	if err := s.repo.Update(ctx, u); err != nil {
		if errors.Is(err, ErrEmailExists) || errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("service: failed to update user %s: %w", id, err)
	}

	return u, nil
}

func (s *service) ListActive(ctx context.Context) ([]User, error) {
	users, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list users: %w", err)
	}
	return users, nil
}

func (s *service) ToggleBlock(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch user for block toggle: %w", err)
	}

	if u.IsAdmin {
		return nil, ErrCannotModifyAdmin
	}

	u.IsBlocked = !u.IsBlocked
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("service: failed to toggle block for user %s: %w", id, err)
	}

	log.Info().Stringer("user_id", id).Bool("blocked", u.IsBlocked).Msg("service: user block toggled")
	return u, nil
}

func (s *service) ApproveVendor(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch user for vendor approval: %w", err)
	}

	if !u.IsVendor {
		return nil, ErrNotVendor
	}

	u.IsApproved = true
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("service: failed to approve vendor %s: %w", id, err)
	}

	log.Info().Stringer("user_id", id).Msg("service: vendor approved")
	return u, nil
}

func (s *service) SoftDelete(ctx context.Context, id uuid.UUID) error {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("service: failed to fetch user for delete: %w", err)
	}

	if u.IsAdmin {
		return ErrCannotModifyAdmin
	}

	u.IsDeleted = true
	if err := s.repo.Update(ctx, u); err != nil {
		return fmt.Errorf("service: failed to soft-delete user %s: %w", id, err)
	}

	log.Info().Stringer("user_id", id).Msg("service: user soft-deleted")
	return nil
}

func (s *service) ResetPassword(ctx context.Context, id uuid.UUID, password string) error {
	if password == "" {
		return errors.New("service: password cannot be empty")
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("service: failed to fetch user for password reset: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("service: failed to hash password: %w", err)
	}
	u.PasswordHash = string(hash)

	if err := s.repo.Update(ctx, u); err != nil {
		return fmt.Errorf("service: failed to reset password for user %s: %w", id, err)
	}

	return nil
}
