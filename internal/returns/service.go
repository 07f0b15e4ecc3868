package returns

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lara-shop/lara-api/internal/order"
)

var (
	ErrForbidden       = errors.New("not authorized for this return request")
	ErrAlreadyResolved = errors.New("return request already resolved")
)

// Orders resolves the order a return is filed against.
// order.Repository satisfies it.
type Orders interface {
	GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error)
}

type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*Request, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]Request, error)
	ListAll(ctx context.Context) ([]Request, error)
	// Resolve approves or rejects a pending request. Admin-only at the
	// transport layer; approval is a bookkeeping decision, actual money
	// movement happens outside this system.
	Resolve(ctx context.Context, requestID uuid.UUID, approve bool) (*Request, error)
}

type service struct {
	repo   Repository
	orders Orders
}

func NewService(repo Repository, orders Orders) Service {
	return &service{repo: repo, orders: orders}
}

// Create files a return for the caller's own order. The refund amount
// is pinned to the order total at filing time.
func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*Request, error) {
	o, err := s.orders.GetByID(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch order for return: %w", err)
	}
	if o.UserID != userID {
		return nil, ErrForbidden
	}

	req := &Request{
		OrderID:      input.OrderID,
		UserID:       userID,
		Reason:       input.Reason,
		Status:       StatusPending,
		RefundAmount: o.TotalPrice,
	}
	if err := s.repo.Create(ctx, req); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("service: failed to create return request: %w", err)
	}

	log.Info().Stringer("order_id", input.OrderID).Stringer("user_id", userID).Msg("service: return request filed")
	return req, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID) ([]Request, error) {
	requests, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch user return requests: %w", err)
	}
	return requests, nil
}

func (s *service) ListAll(ctx context.Context) ([]Request, error) {
	requests, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch return requests: %w", err)
	}
	return requests, nil
}

func (s *service) Resolve(ctx context.Context, requestID uuid.UUID, approve bool) (*Request, error) {
	req, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch return request: %w", err)
	}
	if req.Status != StatusPending {
		return nil, ErrAlreadyResolved
	}

	status := StatusRejected
	if approve {
		status = StatusApproved
	}
	now := time.Now().UTC()
	if err := s.repo.SetStatus(ctx, requestID, status, now); err != nil {
		return nil, fmt.Errorf("service: failed to resolve return request: %w", err)
	}
	req.Status = status
	req.ResolvedAt = &now

	log.Info().Stringer("request_id", requestID).Str("status", string(status)).Msg("service: return request resolved")
	return req, nil
}
