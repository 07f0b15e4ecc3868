package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrLineNotFound  = errors.New("order item not found")
	ErrAlreadyPaid   = errors.New("order is already paid")
)

type Repository interface {
	Create(ctx context.Context, o *Order) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	// UpdateStatuses persists the aggregate status, delivery flags and
	// every line status of the given order. Line membership is immutable
	// after creation; only statuses change.
	UpdateStatuses(ctx context.Context, o *Order) error
	SetPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, o *Order) (orderID uuid.UUID, err error) {
	orderID, err = uuid.NewV4()
	if err != nil {
		return uuid.Nil, fmt.Errorf("repository: failed to generate order ID: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("order_id", orderID).Msg("repository: failed to rollback after panic")
			}
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("order_id", orderID).Msg("repository: failed to rollback order insert")
			}
			return
		}
		if commitErr := tx.Commit(ctx); commitErr != nil {
			err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
		}
	}()

	now := time.Now().UTC()
	queryOrder := `
		INSERT INTO orders (id, user_id, status, payment_method,
			items_price, discount_price, shipping_price, tax_price, total_price,
			coupon_code, ship_address, ship_city, ship_postal, ship_country,
			is_paid, is_delivered, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	_, err = tx.Exec(ctx, queryOrder,
		orderID, o.UserID, string(o.Status), o.PaymentMethod,
		o.ItemsPrice, o.DiscountPrice, o.ShippingPrice, o.TaxPrice, o.TotalPrice,
		nullable(o.CouponCode),
		o.ShippingAddress.Address, o.ShippingAddress.City,
		o.ShippingAddress.PostalCode, o.ShippingAddress.Country,
		o.IsPaid, o.IsDelivered, now, now,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("repository: failed to insert order: %w", err)
	}
	o.ID = orderID
	o.CreatedAt = now
	o.UpdatedAt = now

	queryLine := `
		INSERT INTO order_items (id, order_id, product_id, vendor_id, title, image, size, price, quantity, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	for i := range o.Lines {
		line := &o.Lines[i]
		lineID, genErr := uuid.NewV4()
		if genErr != nil {
			err = fmt.Errorf("repository: failed to generate order item ID: %w", genErr)
			return uuid.Nil, err
		}
		line.ID = lineID
		line.OrderID = orderID

		_, err = tx.Exec(ctx, queryLine,
			line.ID, orderID, line.ProductID, line.VendorID,
			line.Title, line.Image, string(line.Size), line.Price, line.Quantity, string(line.Status),
		)
		if err != nil {
			return uuid.Nil, fmt.Errorf("repository: failed to insert order item for order %s: %w", orderID, err)
		}
	}

	return orderID, nil
}

const orderColumns = `id, user_id, status, payment_method,
	items_price, discount_price, shipping_price, tax_price, total_price,
	coupon_code, ship_address, ship_city, ship_postal, ship_country,
	is_paid, paid_at, is_delivered, delivered_at, created_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var couponCode *string
	err := row.Scan(
		&o.ID, &o.UserID, &o.Status, &o.PaymentMethod,
		&o.ItemsPrice, &o.DiscountPrice, &o.ShippingPrice, &o.TaxPrice, &o.TotalPrice,
		&couponCode,
		&o.ShippingAddress.Address, &o.ShippingAddress.City,
		&o.ShippingAddress.PostalCode, &o.ShippingAddress.Country,
		&o.IsPaid, &o.PaidAt, &o.IsDelivered, &o.DeliveredAt,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if couponCode != nil {
		o.CouponCode = *couponCode
	}
	return &o, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	o, err := scanOrder(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order by id %s: %w", id, err)
	}

	if err := r.attachLines(ctx, map[uuid.UUID]*Order{o.ID: o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`
	return r.listOrders(ctx, query, userID)
}

func (r *postgresRepository) ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]Order, error) {
	query := `
		SELECT ` + orderColumns + ` FROM orders
		WHERE id IN (SELECT DISTINCT order_id FROM order_items WHERE vendor_id = $1)
		ORDER BY created_at DESC
	`
	return r.listOrders(ctx, query, vendorID)
}

func (r *postgresRepository) ListAll(ctx context.Context) ([]Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`
	return r.listOrders(ctx, query)
}

func (r *postgresRepository) listOrders(ctx context.Context, query string, args ...any) ([]Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders: %w", err)
	}
	defer rows.Close()

	orderIDs := make([]uuid.UUID, 0)
	byID := make(map[uuid.UUID]*Order)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order: %w", err)
		}
		o.Lines = make([]Line, 0)
		orderIDs = append(orderIDs, o.ID)
		byID[o.ID] = o
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating orders: %w", err)
	}
	if len(orderIDs) == 0 {
		return []Order{}, nil
	}

	if err := r.attachLines(ctx, byID); err != nil {
		return nil, err
	}

	result := make([]Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		if o, ok := byID[id]; ok {
			result = append(result, *o)
		}
	}
	return result, nil
}

func (r *postgresRepository) attachLines(ctx context.Context, byID map[uuid.UUID]*Order) error {
	ids := make([]uuid.UUID, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}

	query := `
		SELECT id, order_id, product_id, vendor_id, title, image, size, price, quantity, status
		FROM order_items
		WHERE order_id = ANY($1)
	`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("repository: failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line Line
		err := rows.Scan(
			&line.ID, &line.OrderID, &line.ProductID, &line.VendorID,
			&line.Title, &line.Image, &line.Size, &line.Price, &line.Quantity, &line.Status,
		)
		if err != nil {
			return fmt.Errorf("repository: failed to scan order item: %w", err)
		}
		if o, ok := byID[line.OrderID]; ok {
			o.Lines = append(o.Lines, line)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("repository: error iterating order items: %w", err)
	}
	return nil
}

func (r *postgresRepository) UpdateStatuses(ctx context.Context, o *Order) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("order_id", o.ID).Msg("repository: failed to rollback status update")
			}
			return
		}
		if commitErr := tx.Commit(ctx); commitErr != nil {
			err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
		}
	}()

	query := `
		UPDATE orders
		SET status = $1, is_delivered = $2, delivered_at = $3, updated_at = $4
		WHERE id = $5
	`
	cmdTag, err := tx.Exec(ctx, query,
		string(o.Status), o.IsDelivered, o.DeliveredAt, time.Now().UTC(), o.ID,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update order status %s: %w", o.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		err = ErrOrderNotFound
		return err
	}

	lineQuery := `UPDATE order_items SET status = $1 WHERE id = $2 AND order_id = $3`
	for i := range o.Lines {
		line := &o.Lines[i]
		if _, err = tx.Exec(ctx, lineQuery, string(line.Status), line.ID, o.ID); err != nil {
			return fmt.Errorf("repository: failed to update order item %s: %w", line.ID, err)
		}
	}
	return nil
}

func (r *postgresRepository) SetPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) error {
	query := `
		UPDATE orders
		SET is_paid = TRUE, paid_at = $1, updated_at = $2
		WHERE id = $3 AND is_paid = FALSE
	`
	cmdTag, err := r.db.Exec(ctx, query, paidAt, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("repository: failed to mark order %s paid: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		// Either missing or already paid; callers check existence first.
		return ErrAlreadyPaid
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
