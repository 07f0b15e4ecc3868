package wishlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"

	"github.com/lara-shop/lara-api/internal/product"
)

var ErrProductNotFound = errors.New("product not found")

type Catalog interface {
	GetByID(ctx context.Context, id uuid.UUID) (*product.Product, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]product.Product, error)
}

type Service interface {
	Add(ctx context.Context, userID, productID uuid.UUID) error
	Remove(ctx context.Context, userID, productID uuid.UUID) error
	// List returns the wished products in full, newest first. Entries
	// whose product has since been removed are skipped.
	List(ctx context.Context, userID uuid.UUID) ([]product.Product, error)
}

type service struct {
	repo    Repository
	catalog Catalog
}

func NewService(repo Repository, catalog Catalog) Service {
	return &service{repo: repo, catalog: catalog}
}

func (s *service) Add(ctx context.Context, userID, productID uuid.UUID) error {
	if _, err := s.catalog.GetByID(ctx, productID); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("service: failed to fetch product for wishlist: %w", err)
	}
	if err := s.repo.Add(ctx, userID, productID); err != nil {
		return fmt.Errorf("service: failed to add wishlist entry: %w", err)
	}
	return nil
}

func (s *service) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	if err := s.repo.Remove(ctx, userID, productID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("service: failed to remove wishlist entry: %w", err)
	}
	return nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]product.Product, error) {
	entries, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch wishlist: %w", err)
	}
	if len(entries) == 0 {
		return []product.Product{}, nil
	}

	ids := make([]uuid.UUID, 0, len(entries))
	for i := range entries {
		ids = append(ids, entries[i].ProductID)
	}
	products, err := s.catalog.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch wishlist products: %w", err)
	}

	// Preserve wishlist order, not the catalog's.
	byID := make(map[uuid.UUID]product.Product, len(products))
	for i := range products {
		byID[products[i].ID] = products[i]
	}
	ordered := make([]product.Product, 0, len(entries))
	for i := range entries {
		if p, ok := byID[entries[i].ProductID]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}
