package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound        = errors.New("review not found")
	ErrAlreadyReviewed = errors.New("product already reviewed by this user")
)

type Repository interface {
	Create(ctx context.Context, rev *Review) error
	GetByID(ctx context.Context, id uuid.UUID) (*Review, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]Review, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// Aggregate returns the mean rating and review count for a product.
	// Zero values when the product has no reviews.
	Aggregate(ctx context.Context, productID uuid.UUID) (float64, int, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Create(ctx context.Context, rev *Review) error {
	id, err := uuid.NewV4()
	if err != nil {
		return fmt.Errorf("repository: failed to generate review ID: %w", err)
	}

	query := `
		INSERT INTO reviews (id, product_id, user_id, name, rating, comment)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err = r.pool.QueryRow(ctx, query, id, rev.ProductID, rev.UserID, rev.UserName, rev.Rating, rev.Comment).
		Scan(&rev.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrAlreadyReviewed
		}
		return fmt.Errorf("repository: failed to create review: %w", err)
	}
	rev.ID = id
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Review, error) {
	query := `
		SELECT id, product_id, user_id, name, rating, comment, created_at
		FROM reviews
		WHERE id = $1`

	var rev Review
	err := r.pool.QueryRow(ctx, query, id).
		Scan(&rev.ID, &rev.ProductID, &rev.UserID, &rev.UserName, &rev.Rating, &rev.Comment, &rev.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to get review by id: %w", err)
	}
	return &rev, nil
}

func (r *repository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]Review, error) {
	query := `
		SELECT id, product_id, user_id, name, rating, comment, created_at
		FROM reviews
		WHERE product_id = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query reviews: %w", err)
	}
	defer rows.Close()

	var reviews []Review
	for rows.Next() {
		var rev Review
		if err := rows.Scan(&rev.ID, &rev.ProductID, &rev.UserID, &rev.UserName, &rev.Rating, &rev.Comment, &rev.CreatedAt); err != nil {
			return nil, fmt.Errorf("repository: failed to scan review: %w", err)
		}
		reviews = append(reviews, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: review rows iteration error: %w", err)
	}
	return reviews, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete review: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Aggregate(ctx context.Context, productID uuid.UUID) (float64, int, error) {
	query := `SELECT COALESCE(AVG(rating), 0), COUNT(*) FROM reviews WHERE product_id = $1`

	var rating float64
	var count int
	if err := r.pool.QueryRow(ctx, query, productID).Scan(&rating, &count); err != nil {
		return 0, 0, fmt.Errorf("repository: failed to aggregate reviews: %w", err)
	}
	return rating, count, nil
}
