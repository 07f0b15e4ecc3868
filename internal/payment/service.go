package payment

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lara-shop/lara-api/internal/order"
)

var ErrForbidden = errors.New("not authorized for this order")

// Orders is the order-store slice payments operate on.
// order.Repository satisfies it.
type Orders interface {
	GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error)
	SetPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) error
}

type Service interface {
	CreateIntent(ctx context.Context, orderID uuid.UUID, actorID uuid.UUID) (*Intent, error)
	Verify(ctx context.Context, orderID uuid.UUID, actorID uuid.UUID, input VerifyInput) (*order.Order, error)
	ConfirmCOD(ctx context.Context, orderID uuid.UUID, actorID uuid.UUID) (*order.Order, error)
	// MarkPaid is the admin override used to settle cash-on-delivery
	// orders after the courier collects. Admin-only at the transport layer.
	MarkPaid(ctx context.Context, orderID uuid.UUID) (*order.Order, error)
}

type service struct {
	repo   Repository
	orders Orders
}

func NewService(repo Repository, orders Orders) Service {
	return &service{repo: repo, orders: orders}
}

// CreateIntent prepares a checkout session for the order. The secret
// is an opaque mock token; a real processor integration would mint it
// provider-side.
func (s *service) CreateIntent(ctx context.Context, orderID uuid.UUID, actorID uuid.UUID) (*Intent, error) {
	o, err := s.authorizedOrder(ctx, orderID, actorID)
	if err != nil {
		return nil, err
	}
	if o.IsPaid {
		return nil, order.ErrAlreadyPaid
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("service: failed to generate intent secret: %w", err)
	}

	return &Intent{
		OrderID:      o.ID,
		ClientSecret: fmt.Sprintf("pi_%s_secret_%s", o.ID, hex.EncodeToString(buf)),
		Amount:       o.TotalPrice,
		Currency:     "usd",
	}, nil
}

// Verify marks the order paid and records the settlement. Verifying an
// already-paid order is a no-op success: the order is returned
// unchanged and no duplicate payment row is written.
func (s *service) Verify(ctx context.Context, orderID uuid.UUID, actorID uuid.UUID, input VerifyInput) (*order.Order, error) {
	o, err := s.authorizedOrder(ctx, orderID, actorID)
	if err != nil {
		return nil, err
	}
	if o.IsPaid {
		return o, nil
	}

	now := time.Now().UTC()
	if err := s.orders.SetPaid(ctx, orderID, now); err != nil {
		if errors.Is(err, order.ErrAlreadyPaid) {
			// Lost a race with a concurrent verify; same outcome.
			return s.orders.GetByID(ctx, orderID)
		}
		return nil, fmt.Errorf("service: failed to mark order paid: %w", err)
	}
	o.IsPaid = true
	o.PaidAt = &now

	s.record(ctx, &Payment{
		OrderID:    orderID,
		UserID:     o.UserID,
		ProviderID: input.ProviderID,
		Method:     input.Method,
		Amount:     o.TotalPrice,
		Status:     StatusSucceeded,
	})

	log.Info().Stringer("order_id", orderID).Str("provider_id", input.ProviderID).Msg("service: payment verified")
	return o, nil
}

// ConfirmCOD registers a pending cash-on-delivery settlement. The
// order stays unpaid until an admin marks it paid after collection.
func (s *service) ConfirmCOD(ctx context.Context, orderID uuid.UUID, actorID uuid.UUID) (*order.Order, error) {
	o, err := s.authorizedOrder(ctx, orderID, actorID)
	if err != nil {
		return nil, err
	}
	if o.IsPaid {
		return nil, order.ErrAlreadyPaid
	}

	s.record(ctx, &Payment{
		OrderID:    orderID,
		UserID:     o.UserID,
		ProviderID: fmt.Sprintf("cod_%s", orderID),
		Method:     "COD",
		Amount:     o.TotalPrice,
		Status:     StatusPending,
	})

	log.Info().Stringer("order_id", orderID).Msg("service: cash on delivery confirmed")
	return o, nil
}

func (s *service) MarkPaid(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch order for mark-paid: %w", err)
	}
	if o.IsPaid {
		return o, nil
	}

	now := time.Now().UTC()
	if err := s.orders.SetPaid(ctx, orderID, now); err != nil {
		if errors.Is(err, order.ErrAlreadyPaid) {
			return s.orders.GetByID(ctx, orderID)
		}
		return nil, fmt.Errorf("service: failed to mark order paid: %w", err)
	}
	o.IsPaid = true
	o.PaidAt = &now

	s.record(ctx, &Payment{
		OrderID:    orderID,
		UserID:     o.UserID,
		ProviderID: fmt.Sprintf("manual_%s", orderID),
		Method:     "manual",
		Amount:     o.TotalPrice,
		Status:     StatusSucceeded,
	})

	log.Info().Stringer("order_id", orderID).Msg("service: order marked paid by admin")
	return o, nil
}

func (s *service) authorizedOrder(ctx context.Context, orderID, actorID uuid.UUID) (*order.Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch order for payment: %w", err)
	}
	if o.UserID != actorID {
		return nil, ErrForbidden
	}
	return o, nil
}

// record writes the payment row; failures are logged, not surfaced,
// since the order's paid flag is the source of truth.
func (s *service) record(ctx context.Context, p *Payment) {
	if err := s.repo.Create(ctx, p); err != nil {
		log.Error().Err(err).Stringer("order_id", p.OrderID).Msg("service: failed to record payment")
	}
}
