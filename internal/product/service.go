package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrForbidden      = errors.New("not authorized to modify this product")
	ErrInvalidVariant = errors.New("invalid variant")
)

type Service interface {
	List(ctx context.Context, filter Filter) ([]Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	GetFeatured(ctx context.Context, limit int) ([]Product, error)
	Create(ctx context.Context, p *Product, actorID uuid.UUID, actorIsAdmin bool) (*Product, error)
	Update(ctx context.Context, p *Product, actorID uuid.UUID, actorIsAdmin bool) (*Product, error)
	SoftDelete(ctx context.Context, id uuid.UUID, actorID uuid.UUID, actorIsAdmin bool) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, filter Filter) ([]Product, error) {
	products, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list products: %w", err)
	}
	return products, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch product by id: %w", err)
	}
	return p, nil
}

func (s *service) GetFeatured(ctx context.Context, limit int) ([]Product, error) {
	products, err := s.repo.List(ctx, Filter{FeaturedOnly: true})
	if err != nil {
		return nil, fmt.Errorf("service: failed to list featured products: %w", err)
	}
	if limit > 0 && len(products) > limit {
		products = products[:limit]
	}
	return products, nil
}

func (s *service) Create(ctx context.Context, p *Product, actorID uuid.UUID, actorIsAdmin bool) (*Product, error) {
	if err := validateVariants(p.Variants); err != nil {
		return nil, err
	}

	p.UserID = actorID
	// Vendor products wait for admin approval, admin products go live directly.
	p.IsApproved = actorIsAdmin
	p.Rating = 0
	p.NumReviews = 0
	p.IsDeleted = false

	if _, err := s.repo.Create(ctx, p); err != nil {
		log.Error().Err(err).Msg("service: failed to create product in repository")
		return nil, fmt.Errorf("service: failed to create product: %w", err)
	}

	log.Info().Stringer("product_id", p.ID).Str("title", p.Title).Bool("approved", p.IsApproved).Msg("service: product created")
	return p, nil
}

func (s *service) Update(ctx context.Context, p *Product, actorID uuid.UUID, actorIsAdmin bool) (*Product, error) {
	existing, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch product for update: %w", err)
	}

	if existing.UserID != actorID && !actorIsAdmin {
		return nil, ErrForbidden
	}

	if p.Title != "" {
		existing.Title = p.Title
	}
	if p.Description != "" {
		existing.Description = p.Description
	}
	if p.Image != "" {
		existing.Image = p.Image
	}
	if p.Category != "" {
		existing.Category = p.Category
	}
	if p.Gender != "" {
		existing.Gender = p.Gender
	}
	if len(p.Variants) > 0 {
		if err := validateVariants(p.Variants); err != nil {
			return nil, err
		}
		existing.Variants = p.Variants
	}

	// Featured and approval flags are admin-controlled.
	if actorIsAdmin {
		existing.IsFeatured = p.IsFeatured
		existing.IsApproved = p.IsApproved
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("service: failed to update product %s: %w", p.ID, err)
	}
	return existing, nil
}

func (s *service) SoftDelete(ctx context.Context, id uuid.UUID, actorID uuid.UUID, actorIsAdmin bool) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("service: failed to fetch product for delete: %w", err)
	}

	if existing.UserID != actorID && !actorIsAdmin {
		return ErrForbidden
	}

	existing.IsDeleted = true
	if err := s.repo.Update(ctx, existing); err != nil {
		return fmt.Errorf("service: failed to soft-delete product %s: %w", id, err)
	}

	log.Info().Stringer("product_id", id).Msg("service: product soft-deleted")
	return nil
}

func validateVariants(variants []Variant) error {
	if len(variants) == 0 {
		return fmt.Errorf("%w: at least one variant is required", ErrInvalidVariant)
	}
	seen := make(map[Size]bool, len(variants))
	for _, v := range variants {
		if !v.Size.Valid() {
			return fmt.Errorf("%w: unknown size %q", ErrInvalidVariant, v.Size)
		}
		if seen[v.Size] {
			return fmt.Errorf("%w: duplicate size %s", ErrInvalidVariant, v.Size)
		}
		seen[v.Size] = true
		if v.Price < 0 {
			return fmt.Errorf("%w: price for size %s cannot be negative", ErrInvalidVariant, v.Size)
		}
		if v.Stock < 0 {
			return fmt.Errorf("%w: stock for size %s cannot be negative", ErrInvalidVariant, v.Size)
		}
	}
	return nil
}
