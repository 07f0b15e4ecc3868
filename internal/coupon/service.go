package coupon

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidOrExpired = errors.New("invalid or expired coupon")
	ErrInvalidDiscount  = errors.New("discount percentage must be between 1 and 100")
)

type Service interface {
	Create(ctx context.Context, code string, discountPercentage int, expiryDate time.Time) (*Coupon, error)
	List(ctx context.Context) ([]Coupon, error)
	ToggleActive(ctx context.Context, id uuid.UUID) (*Coupon, error)
	// Validate checks a code for use right now. Order creation reuses
	// this but swallows the failure; the validate endpoint surfaces it.
	Validate(ctx context.Context, code string) (*Coupon, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) Create(ctx context.Context, code string, discountPercentage int, expiryDate time.Time) (*Coupon, error) {
	if discountPercentage < 1 || discountPercentage > 100 {
		return nil, ErrInvalidDiscount
	}

	c := &Coupon{
		Code:               strings.ToUpper(strings.TrimSpace(code)),
		DiscountPercentage: discountPercentage,
		ExpiryDate:         expiryDate,
		IsActive:           true,
	}
	if c.Code == "" {
		return nil, errors.New("service: coupon code cannot be empty")
	}

	if _, err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, ErrCodeExists) {
			return nil, ErrCodeExists
		}
		return nil, fmt.Errorf("service: failed to create coupon: %w", err)
	}

	log.Info().Str("code", c.Code).Int("discount", c.DiscountPercentage).Msg("service: coupon created")
	return c, nil
}

func (s *service) List(ctx context.Context) ([]Coupon, error) {
	coupons, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list coupons: %w", err)
	}
	return coupons, nil
}

func (s *service) ToggleActive(ctx context.Context, id uuid.UUID) (*Coupon, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch coupon for toggle: %w", err)
	}

	c.IsActive = !c.IsActive
	if err := s.repo.SetActive(ctx, id, c.IsActive); err != nil {
		return nil, fmt.Errorf("service: failed to toggle coupon %s: %w", id, err)
	}
	return c, nil
}

func (s *service) Validate(ctx context.Context, code string) (*Coupon, error) {
	c, err := s.repo.GetActiveByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidOrExpired
		}
		return nil, fmt.Errorf("service: failed to look up coupon: %w", err)
	}

	if !c.Usable(s.now()) {
		return nil, ErrInvalidOrExpired
	}
	return c, nil
}
