package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("payment not found")

type Repository interface {
	Create(ctx context.Context, p *Payment) error
	GetByOrder(ctx context.Context, orderID uuid.UUID) (*Payment, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Create(ctx context.Context, p *Payment) error {
	id, err := uuid.NewV4()
	if err != nil {
		return fmt.Errorf("repository: failed to generate payment ID: %w", err)
	}

	query := `
		INSERT INTO payments (id, order_id, user_id, provider_id, payment_method, amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	err = r.pool.QueryRow(ctx, query, id, p.OrderID, p.UserID, p.ProviderID, p.Method, p.Amount, string(p.Status)).
		Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("repository: failed to create payment: %w", err)
	}
	p.ID = id
	return nil
}

func (r *repository) GetByOrder(ctx context.Context, orderID uuid.UUID) (*Payment, error) {
	query := `
		SELECT id, order_id, user_id, provider_id, payment_method, amount, status, created_at
		FROM payments
		WHERE order_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	var p Payment
	err := r.pool.QueryRow(ctx, query, orderID).
		Scan(&p.ID, &p.OrderID, &p.UserID, &p.ProviderID, &p.Method, &p.Amount, &p.Status, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to get payment for order: %w", err)
	}
	return &p, nil
}
