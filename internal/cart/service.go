package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lara-shop/lara-api/internal/product"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrVariantNotFound   = errors.New("variant not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
)

// Catalog is the product lookup the cart needs. product.Repository
// satisfies it.
type Catalog interface {
	GetByID(ctx context.Context, id uuid.UUID) (*product.Product, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]product.Product, error)
}

type Service interface {
	Add(ctx context.Context, userID uuid.UUID, input AddInput) error
	Get(ctx context.Context, userID uuid.UUID) ([]Item, error)
	SetQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error
	Remove(ctx context.Context, userID, itemID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
	Sync(ctx context.Context, userID uuid.UUID, inputs []AddInput) ([]Item, error)
}

type service struct {
	repo    Repository
	catalog Catalog
}

func NewService(repo Repository, catalog Catalog) Service {
	return &service{repo: repo, catalog: catalog}
}

// Add validates the requested product/size against the catalog before
// touching the cart. Stock is checked for an early error but not
// reserved; the order flow re-checks at checkout.
func (s *service) Add(ctx context.Context, userID uuid.UUID, input AddInput) error {
	if input.Quantity <= 0 {
		return ErrInvalidQuantity
	}

	p, err := s.catalog.GetByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("service: failed to fetch product for cart: %w", err)
	}

	variant := p.VariantBySize(input.Size)
	if variant == nil {
		return fmt.Errorf("%w: %s for product %s", ErrVariantNotFound, input.Size, p.Title)
	}
	if variant.Stock < input.Quantity {
		return fmt.Errorf("%w: %s (%s)", ErrInsufficientStock, p.Title, variant.Size)
	}

	if err := s.repo.Upsert(ctx, userID, input.ProductID, input.Size, input.Quantity); err != nil {
		return fmt.Errorf("service: failed to add cart item: %w", err)
	}
	return nil
}

// Get returns the cart with title, image and current price attached
// from the catalog. Items whose product has since disappeared are
// silently dropped from the view.
func (s *service) Get(ctx context.Context, userID uuid.UUID) ([]Item, error) {
	items, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch cart: %w", err)
	}
	if len(items) == 0 {
		return []Item{}, nil
	}

	ids := make([]uuid.UUID, 0, len(items))
	for i := range items {
		ids = append(ids, items[i].ProductID)
	}
	products, err := s.catalog.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("service: failed to enrich cart items: %w", err)
	}
	byID := make(map[uuid.UUID]*product.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	enriched := make([]Item, 0, len(items))
	for i := range items {
		it := items[i]
		p, ok := byID[it.ProductID]
		if !ok {
			log.Warn().Stringer("product_id", it.ProductID).Msg("service: cart references missing product, dropping item")
			continue
		}
		variant := p.VariantBySize(it.Size)
		if variant == nil {
			continue
		}
		it.Title = p.Title
		it.Image = p.Image
		it.Price = variant.Price
		enriched = append(enriched, it)
	}
	return enriched, nil
}

func (s *service) SetQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if err := s.repo.SetQuantity(ctx, userID, itemID, quantity); err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return ErrItemNotFound
		}
		return fmt.Errorf("service: failed to update cart quantity: %w", err)
	}
	return nil
}

func (s *service) Remove(ctx context.Context, userID, itemID uuid.UUID) error {
	if err := s.repo.Delete(ctx, userID, itemID); err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return ErrItemNotFound
		}
		return fmt.Errorf("service: failed to remove cart item: %w", err)
	}
	return nil
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.Clear(ctx, userID); err != nil {
		return fmt.Errorf("service: failed to clear cart: %w", err)
	}
	return nil
}

// Sync replaces the server cart with the client's local cart, keeping
// only entries that still resolve to a real product variant.
func (s *service) Sync(ctx context.Context, userID uuid.UUID, inputs []AddInput) ([]Item, error) {
	valid := make([]Item, 0, len(inputs))
	if len(inputs) > 0 {
		ids := make([]uuid.UUID, 0, len(inputs))
		for i := range inputs {
			ids = append(ids, inputs[i].ProductID)
		}
		products, err := s.catalog.GetByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("service: failed to validate cart sync: %w", err)
		}
		byID := make(map[uuid.UUID]*product.Product, len(products))
		for i := range products {
			byID[products[i].ID] = &products[i]
		}

		for _, in := range inputs {
			if in.Quantity <= 0 {
				continue
			}
			p, ok := byID[in.ProductID]
			if !ok {
				continue
			}
			if p.VariantBySize(in.Size) == nil {
				continue
			}
			valid = append(valid, Item{ProductID: in.ProductID, Size: in.Size, Quantity: in.Quantity})
		}
	}

	if err := s.repo.Replace(ctx, userID, valid); err != nil {
		return nil, fmt.Errorf("service: failed to replace cart: %w", err)
	}
	return s.Get(ctx, userID)
}
