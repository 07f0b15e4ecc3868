package coupon

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
	ErrNotFound   = errors.New("coupon not found")
	ErrCodeExists = errors.New("coupon code already exists")
)

type Repository interface {
	Create(ctx context.Context, c *Coupon) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Coupon, error)
	GetActiveByCode(ctx context.Context, code string) (*Coupon, error)
	List(ctx context.Context) ([]Coupon, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const couponColumns = `id, code, discount_percentage, expiry_date, is_active, created_at`

func scanCoupon(row pgx.Row) (*Coupon, error) {
	var c Coupon
	err := row.Scan(&c.ID, &c.Code, &c.DiscountPercentage, &c.ExpiryDate, &c.IsActive, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *postgresRepository) Create(ctx context.Context, c *Coupon) (uuid.UUID, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return uuid.Nil, fmt.Errorf("repository: failed to generate coupon ID: %w", err)
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO coupons (` + couponColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = r.db.Exec(ctx, query, id, c.Code, c.DiscountPercentage, c.ExpiryDate, c.IsActive, now)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return uuid.Nil, ErrCodeExists
		}
		return uuid.Nil, fmt.Errorf("repository: failed to insert coupon: %w", err)
	}

	c.ID = id
	c.CreatedAt = now
	return id, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE id = $1`
	c, err := scanCoupon(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select coupon by id %s: %w", id, err)
	}
	return c, nil
}

func (r *postgresRepository) GetActiveByCode(ctx context.Context, code string) (*Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE code = $1 AND is_active = TRUE`
	c, err := scanCoupon(r.db.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select coupon by code: %w", err)
	}
	return c, nil
}

func (r *postgresRepository) List(ctx context.Context) ([]Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query coupons: %w", err)
	}
	defer rows.Close()

	coupons := make([]Coupon, 0)
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan coupon: %w", err)
		}
		coupons = append(coupons, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating coupons: %w", err)
	}
	return coupons, nil
}

func (r *postgresRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE coupons SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("repository: failed to update coupon %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
