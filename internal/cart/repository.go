package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lara-shop/lara-api/internal/product"
)

var ErrItemNotFound = errors.New("cart item not found")

type Repository interface {
	Upsert(ctx context.Context, userID, productID uuid.UUID, size product.Size, quantity int) error
	List(ctx context.Context, userID uuid.UUID) ([]Item, error)
	SetQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error
	Delete(ctx context.Context, userID, itemID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
	Replace(ctx context.Context, userID uuid.UUID, items []Item) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// Upsert inserts a cart row or, when the same product/size is already
// in the cart, adds to its quantity.
func (r *repository) Upsert(ctx context.Context, userID, productID uuid.UUID, size product.Size, quantity int) error {
	id, err := uuid.NewV4()
	if err != nil {
		return fmt.Errorf("repository: failed to generate cart item ID: %w", err)
	}

	query := `
		INSERT INTO cart_items (id, user_id, product_id, size, quantity)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, product_id, size)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = now()`

	if _, err := r.pool.Exec(ctx, query, id, userID, productID, size, quantity); err != nil {
		return fmt.Errorf("repository: failed to upsert cart item: %w", err)
	}
	return nil
}

func (r *repository) List(ctx context.Context, userID uuid.UUID) ([]Item, error) {
	query := `
		SELECT id, user_id, product_id, size, quantity, created_at
		FROM cart_items
		WHERE user_id = $1
		ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query cart items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.UserID, &it.ProductID, &it.Size, &it.Quantity, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("repository: failed to scan cart item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: cart rows iteration error: %w", err)
	}
	return items, nil
}

func (r *repository) SetQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error {
	query := `UPDATE cart_items SET quantity = $3 WHERE id = $2 AND user_id = $1`

	cmdTag, err := r.pool.Exec(ctx, query, userID, itemID, quantity)
	if err != nil {
		return fmt.Errorf("repository: failed to update cart item quantity: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, userID, itemID uuid.UUID) error {
	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE id = $2 AND user_id = $1`, userID, itemID)
	if err != nil {
		return fmt.Errorf("repository: failed to delete cart item: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *repository) Clear(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("repository: failed to clear cart: %w", err)
	}
	return nil
}

// Replace swaps the user's entire cart for the given set in one
// transaction. Used by the client-side cart sync after login.
func (r *repository) Replace(ctx context.Context, userID uuid.UUID, items []Item) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("repository: failed to begin cart replace tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("repository: failed to clear cart in replace: %w", err)
	}
	for i := range items {
		it := &items[i]
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate cart item ID: %w", err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO cart_items (id, user_id, product_id, size, quantity)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (user_id, product_id, size)
			DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`,
			id, userID, it.ProductID, it.Size, it.Quantity)
		if err != nil {
			return fmt.Errorf("repository: failed to insert cart item in replace: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repository: failed to commit cart replace tx: %w", err)
	}
	return nil
}
