package product

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

var ErrNotFound = errors.New("product not found")

type Repository interface {
	Create(ctx context.Context, p *Product) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)
	Update(ctx context.Context, p *Product) error
	List(ctx context.Context, filter Filter) ([]Product, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Product, error)
	UpdateRating(ctx context.Context, id uuid.UUID, rating float64, numReviews int) error
	// DecrementStockIfAvailable applies an atomic guarded decrement on the
	// variant's stock. It reports false when the guard (stock >= qty) did
	// not hold at write time, without any partial effect.
	DecrementStockIfAvailable(ctx context.Context, productID uuid.UUID, size Size, qty int) (bool, error)
	// RestoreStock is the unconditional inverse of the decrement.
	RestoreStock(ctx context.Context, productID uuid.UUID, size Size, qty int) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const productColumns = `id, user_id, title, description, image, category, gender, rating, num_reviews, is_featured, is_approved, is_deleted, created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(
		&p.ID, &p.UserID, &p.Title, &p.Description, &p.Image,
		&p.Category, &p.Gender, &p.Rating, &p.NumReviews,
		&p.IsFeatured, &p.IsApproved, &p.IsDeleted,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepository) Create(ctx context.Context, p *Product) (id uuid.UUID, err error) {
	id, err = uuid.NewV4()
	if err != nil {
		return uuid.Nil, fmt.Errorf("repository: failed to generate product ID: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("product_id", id).Msg("repository: failed to rollback product insert")
			}
			return
		}
		if commitErr := tx.Commit(ctx); commitErr != nil {
			err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
		}
	}()

	now := time.Now().UTC()
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = tx.Exec(ctx, query,
		id, p.UserID, p.Title, p.Description, p.Image,
		p.Category, p.Gender, p.Rating, p.NumReviews,
		p.IsFeatured, p.IsApproved, p.IsDeleted, now, now,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("repository: failed to insert product: %w", err)
	}

	if err = insertVariants(ctx, tx, id, p.Variants); err != nil {
		return uuid.Nil, err
	}

	p.ID = id
	p.CreatedAt = now
	p.UpdatedAt = now
	return id, nil
}

func insertVariants(ctx context.Context, tx pgx.Tx, productID uuid.UUID, variants []Variant) error {
	query := `
		INSERT INTO product_variants (id, product_id, size, price, stock, position)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for i := range variants {
		v := &variants[i]
		variantID, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate variant ID: %w", err)
		}
		v.ID = variantID

		if _, err := tx.Exec(ctx, query, v.ID, productID, v.Size, v.Price, v.Stock, i); err != nil {
			return fmt.Errorf("repository: failed to insert variant %s for product %s: %w", v.Size, productID, err)
		}
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND is_deleted = FALSE`
	p, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select product by id %s: %w", id, err)
	}

	if err := r.attachVariants(ctx, map[uuid.UUID]*Product{p.ID: p}); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *postgresRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error) {
	if len(ids) == 0 {
		return []Product{}, nil
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1) AND is_deleted = FALSE`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query products by ids: %w", err)
	}
	defer rows.Close()

	products, byID, err := collectProducts(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachVariants(ctx, byID); err != nil {
		return nil, err
	}
	return flatten(products, byID), nil
}

func (r *postgresRepository) List(ctx context.Context, filter Filter) ([]Product, error) {
	conditions := []string{"is_deleted = FALSE"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Keyword != "" {
		p := arg("%" + filter.Keyword + "%")
		conditions = append(conditions, fmt.Sprintf("(title ILIKE %s OR description ILIKE %s OR category ILIKE %s)", p, p, p))
	}
	if filter.Category != "" {
		conditions = append(conditions, "category = "+arg(string(filter.Category)))
	}
	if filter.Gender != "" {
		conditions = append(conditions, "gender = "+arg(string(filter.Gender)))
	}
	if filter.MinRating != nil {
		conditions = append(conditions, "rating >= "+arg(*filter.MinRating))
	}
	if filter.FeaturedOnly {
		conditions = append(conditions, "is_featured = TRUE", "is_approved = TRUE")
	}
	if filter.MinPrice != nil || filter.MaxPrice != nil {
		sub := []string{"pv.product_id = products.id"}
		if filter.MinPrice != nil {
			sub = append(sub, "pv.price >= "+arg(*filter.MinPrice))
		}
		if filter.MaxPrice != nil {
			sub = append(sub, "pv.price <= "+arg(*filter.MaxPrice))
		}
		conditions = append(conditions,
			"EXISTS (SELECT 1 FROM product_variants pv WHERE "+strings.Join(sub, " AND ")+")")
	}

	orderBy := "created_at DESC"
	switch filter.Sort {
	case SortPriceAsc:
		orderBy = "(SELECT MIN(pv.price) FROM product_variants pv WHERE pv.product_id = products.id) ASC"
	case SortPriceDesc:
		orderBy = "(SELECT MIN(pv.price) FROM product_variants pv WHERE pv.product_id = products.id) DESC"
	case SortRating:
		orderBy = "rating DESC"
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE ` +
		strings.Join(conditions, " AND ") + " ORDER BY " + orderBy

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query products: %w", err)
	}
	defer rows.Close()

	products, byID, err := collectProducts(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachVariants(ctx, byID); err != nil {
		return nil, err
	}
	return flatten(products, byID), nil
}

func (r *postgresRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE user_id = $1 AND is_deleted = FALSE ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query products by owner %s: %w", ownerID, err)
	}
	defer rows.Close()

	products, byID, err := collectProducts(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachVariants(ctx, byID); err != nil {
		return nil, err
	}
	return flatten(products, byID), nil
}

func (r *postgresRepository) Update(ctx context.Context, p *Product) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("product_id", p.ID).Msg("repository: failed to rollback product update")
			}
			return
		}
		if commitErr := tx.Commit(ctx); commitErr != nil {
			err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
		}
	}()

	query := `
		UPDATE products
		SET title = $1, description = $2, image = $3, category = $4, gender = $5,
		    is_featured = $6, is_approved = $7, is_deleted = $8, updated_at = $9
		WHERE id = $10
	`
	cmdTag, err := tx.Exec(ctx, query,
		p.Title, p.Description, p.Image, p.Category, p.Gender,
		p.IsFeatured, p.IsApproved, p.IsDeleted, time.Now().UTC(), p.ID,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update product %s: %w", p.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	// Variants are replaced wholesale; their identity is (product, size).
	if _, err = tx.Exec(ctx, `DELETE FROM product_variants WHERE product_id = $1`, p.ID); err != nil {
		return fmt.Errorf("repository: failed to clear variants for product %s: %w", p.ID, err)
	}
	if err = insertVariants(ctx, tx, p.ID, p.Variants); err != nil {
		return err
	}
	return nil
}

func (r *postgresRepository) UpdateRating(ctx context.Context, id uuid.UUID, rating float64, numReviews int) error {
	query := `UPDATE products SET rating = $1, num_reviews = $2, updated_at = $3 WHERE id = $4`
	cmdTag, err := r.db.Exec(ctx, query, rating, numReviews, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("repository: failed to update rating for product %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresRepository) DecrementStockIfAvailable(ctx context.Context, productID uuid.UUID, size Size, qty int) (bool, error) {
	// Guard and write collapsed into one statement: the decrement applies
	// only if stock still covers the quantity at write time.
	query := `
		UPDATE product_variants
		SET stock = stock - $3
		WHERE product_id = $1 AND size = $2 AND stock >= $3
	`
	cmdTag, err := r.db.Exec(ctx, query, productID, size, qty)
	if err != nil {
		return false, fmt.Errorf("repository: failed to decrement stock for product %s (%s): %w", productID, size, err)
	}
	return cmdTag.RowsAffected() == 1, nil
}

func (r *postgresRepository) RestoreStock(ctx context.Context, productID uuid.UUID, size Size, qty int) error {
	query := `
		UPDATE product_variants
		SET stock = stock + $3
		WHERE product_id = $1 AND size = $2
	`
	cmdTag, err := r.db.Exec(ctx, query, productID, size, qty)
	if err != nil {
		return fmt.Errorf("repository: failed to restore stock for product %s (%s): %w", productID, size, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func collectProducts(rows pgx.Rows) ([]uuid.UUID, map[uuid.UUID]*Product, error) {
	order := make([]uuid.UUID, 0)
	byID := make(map[uuid.UUID]*Product)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("repository: failed to scan product: %w", err)
		}
		p.Variants = make([]Variant, 0)
		order = append(order, p.ID)
		byID[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("repository: error iterating products: %w", err)
	}
	return order, byID, nil
}

func (r *postgresRepository) attachVariants(ctx context.Context, byID map[uuid.UUID]*Product) error {
	if len(byID) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}

	query := `
		SELECT id, product_id, size, price, stock
		FROM product_variants
		WHERE product_id = ANY($1)
		ORDER BY position
	`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("repository: failed to query variants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var v Variant
		var productID uuid.UUID
		if err := rows.Scan(&v.ID, &productID, &v.Size, &v.Price, &v.Stock); err != nil {
			return fmt.Errorf("repository: failed to scan variant: %w", err)
		}
		if p, ok := byID[productID]; ok {
			p.Variants = append(p.Variants, v)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("repository: error iterating variants: %w", err)
	}
	return nil
}

func flatten(order []uuid.UUID, byID map[uuid.UUID]*Product) []Product {
	result := make([]Product, 0, len(order))
	for _, id := range order {
		if p, ok := byID[id]; ok {
			result = append(result, *p)
		}
	}
	return result
}
