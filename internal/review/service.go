package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lara-shop/lara-api/internal/product"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrForbidden       = errors.New("not authorized to modify this review")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
)

// Catalog is the product slice the review flow needs: existence checks
// and rating writeback. product.Repository satisfies it.
type Catalog interface {
	GetByID(ctx context.Context, id uuid.UUID) (*product.Product, error)
	UpdateRating(ctx context.Context, productID uuid.UUID, rating float64, numReviews int) error
}

type Service interface {
	Create(ctx context.Context, productID, userID uuid.UUID, userName string, input CreateInput) (*Review, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]Review, error)
	Delete(ctx context.Context, reviewID uuid.UUID, actorID uuid.UUID, actorIsAdmin bool) error
}

type service struct {
	repo    Repository
	catalog Catalog
}

func NewService(repo Repository, catalog Catalog) Service {
	return &service{repo: repo, catalog: catalog}
}

// Create adds a review (one per user per product) and refreshes the
// product's denormalized rating and review count.
func (s *service) Create(ctx context.Context, productID, userID uuid.UUID, userName string, input CreateInput) (*Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, ErrInvalidRating
	}

	if _, err := s.catalog.GetByID(ctx, productID); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch product for review: %w", err)
	}

	rev := &Review{
		ProductID: productID,
		UserID:    userID,
		UserName:  userName,
		Rating:    input.Rating,
		Comment:   input.Comment,
	}
	if err := s.repo.Create(ctx, rev); err != nil {
		if errors.Is(err, ErrAlreadyReviewed) {
			return nil, ErrAlreadyReviewed
		}
		return nil, fmt.Errorf("service: failed to create review: %w", err)
	}

	s.recomputeRating(ctx, productID)
	return rev, nil
}

func (s *service) ListByProduct(ctx context.Context, productID uuid.UUID) ([]Review, error) {
	reviews, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch reviews: %w", err)
	}
	return reviews, nil
}

func (s *service) Delete(ctx context.Context, reviewID uuid.UUID, actorID uuid.UUID, actorIsAdmin bool) error {
	rev, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("service: failed to fetch review for delete: %w", err)
	}

	if rev.UserID != actorID && !actorIsAdmin {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, reviewID); err != nil {
		return fmt.Errorf("service: failed to delete review: %w", err)
	}

	s.recomputeRating(ctx, rev.ProductID)
	return nil
}

// recomputeRating pushes the current aggregate onto the product. A
// failure leaves the denormalized values stale until the next review
// mutation; it never fails the triggering operation.
func (s *service) recomputeRating(ctx context.Context, productID uuid.UUID) {
	rating, count, err := s.repo.Aggregate(ctx, productID)
	if err != nil {
		log.Error().Err(err).Stringer("product_id", productID).Msg("service: failed to aggregate reviews")
		return
	}
	if err := s.catalog.UpdateRating(ctx, productID, rating, count); err != nil {
		log.Error().Err(err).Stringer("product_id", productID).Msg("service: failed to update product rating")
	}
}
