package returns

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound      = errors.New("return request not found")
	ErrAlreadyExists = errors.New("return request already exists for this order")
)

type Repository interface {
	Create(ctx context.Context, req *Request) error
	GetByID(ctx context.Context, id uuid.UUID) (*Request, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Request, error)
	ListAll(ctx context.Context) ([]Request, error)
	SetStatus(ctx context.Context, id uuid.UUID, status Status, resolvedAt time.Time) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Create(ctx context.Context, req *Request) error {
	id, err := uuid.NewV4()
	if err != nil {
		return fmt.Errorf("repository: failed to generate return request ID: %w", err)
	}

	query := `
		INSERT INTO return_refunds (id, order_id, user_id, reason, status, refund_amount)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err = r.pool.QueryRow(ctx, query, id, req.OrderID, req.UserID, req.Reason, string(req.Status), req.RefundAmount).
		Scan(&req.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrAlreadyExists
		}
		return fmt.Errorf("repository: failed to create return request: %w", err)
	}
	req.ID = id
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Request, error) {
	query := `
		SELECT id, order_id, user_id, reason, status, refund_amount, created_at, resolved_at
		FROM return_refunds
		WHERE id = $1`

	var req Request
	err := r.pool.QueryRow(ctx, query, id).
		Scan(&req.ID, &req.OrderID, &req.UserID, &req.Reason, &req.Status, &req.RefundAmount, &req.CreatedAt, &req.ResolvedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to get return request: %w", err)
	}
	return &req, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Request, error) {
	query := `
		SELECT id, order_id, user_id, reason, status, refund_amount, created_at, resolved_at
		FROM return_refunds
		WHERE user_id = $1
		ORDER BY created_at DESC`

	return r.queryRequests(ctx, query, userID)
}

func (r *repository) ListAll(ctx context.Context) ([]Request, error) {
	query := `
		SELECT id, order_id, user_id, reason, status, refund_amount, created_at, resolved_at
		FROM return_refunds
		ORDER BY created_at DESC`

	return r.queryRequests(ctx, query)
}

func (r *repository) SetStatus(ctx context.Context, id uuid.UUID, status Status, resolvedAt time.Time) error {
	query := `UPDATE return_refunds SET status = $2, resolved_at = $3 WHERE id = $1`

	cmdTag, err := r.pool.Exec(ctx, query, id, status, resolvedAt)
	if err != nil {
		return fmt.Errorf("repository: failed to update return request status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) queryRequests(ctx context.Context, query string, args ...any) ([]Request, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query return requests: %w", err)
	}
	defer rows.Close()

	var requests []Request
	for rows.Next() {
		var req Request
		if err := rows.Scan(&req.ID, &req.OrderID, &req.UserID, &req.Reason, &req.Status, &req.RefundAmount, &req.CreatedAt, &req.ResolvedAt); err != nil {
			return nil, fmt.Errorf("repository: failed to scan return request: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: return request rows iteration error: %w", err)
	}
	return requests, nil
}
