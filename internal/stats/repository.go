package stats

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const lowStockThreshold = 5

// Repository is a read-only view stitched across the other domains'
// tables. It never writes.
type Repository interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
	VendorStats(ctx context.Context, vendorID uuid.UUID) (*VendorStats, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Dashboard(ctx context.Context) (*Dashboard, error) {
	var d Dashboard

	countsQuery := `
		SELECT
			(SELECT COUNT(*) FROM users WHERE NOT is_deleted),
			(SELECT COUNT(*) FROM products WHERE NOT is_deleted),
			(SELECT COUNT(*) FROM orders),
			(SELECT COALESCE(SUM(total_price), 0) FROM orders WHERE is_paid),
			(SELECT COUNT(*) FROM users WHERE is_vendor AND NOT is_approved AND NOT is_deleted)`

	err := r.pool.QueryRow(ctx, countsQuery).
		Scan(&d.TotalUsers, &d.TotalProducts, &d.TotalOrders, &d.TotalRevenue, &d.PendingVendors)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query dashboard counts: %w", err)
	}

	methodRows, err := r.pool.Query(ctx, `
		SELECT payment_method, COUNT(*)
		FROM orders
		GROUP BY payment_method
		ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query payment method breakdown: %w", err)
	}
	defer methodRows.Close()
	for methodRows.Next() {
		var mc MethodCount
		if err := methodRows.Scan(&mc.Method, &mc.Count); err != nil {
			return nil, fmt.Errorf("repository: failed to scan payment method row: %w", err)
		}
		d.PaymentMethods = append(d.PaymentMethods, mc)
	}
	if err := methodRows.Err(); err != nil {
		return nil, fmt.Errorf("repository: payment method rows iteration error: %w", err)
	}

	topRows, err := r.pool.Query(ctx, `
		SELECT oi.product_id, oi.title, SUM(oi.quantity) AS units
		FROM order_items oi
		WHERE oi.status <> 'Cancelled'
		GROUP BY oi.product_id, oi.title
		ORDER BY units DESC
		LIMIT 5`)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query top products: %w", err)
	}
	defer topRows.Close()
	for topRows.Next() {
		var pv ProductVolume
		if err := topRows.Scan(&pv.ProductID, &pv.Title, &pv.UnitsSold); err != nil {
			return nil, fmt.Errorf("repository: failed to scan top product row: %w", err)
		}
		d.TopProducts = append(d.TopProducts, pv)
	}
	if err := topRows.Err(); err != nil {
		return nil, fmt.Errorf("repository: top product rows iteration error: %w", err)
	}

	return &d, nil
}

func (r *repository) VendorStats(ctx context.Context, vendorID uuid.UUID) (*VendorStats, error) {
	var vs VendorStats

	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM products WHERE user_id = $1 AND NOT is_deleted`, vendorID).
		Scan(&vs.ProductCount)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to count vendor products: %w", err)
	}

	lowRows, err := r.pool.Query(ctx, `
		SELECT p.id, p.title, v.size, v.stock
		FROM product_variants v
		JOIN products p ON p.id = v.product_id
		WHERE p.user_id = $1 AND NOT p.is_deleted AND v.stock < $2
		ORDER BY v.stock, p.title`, vendorID, lowStockThreshold)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query low stock variants: %w", err)
	}
	defer lowRows.Close()
	for lowRows.Next() {
		var item LowStockItem
		if err := lowRows.Scan(&item.ProductID, &item.Title, &item.Size, &item.Stock); err != nil {
			return nil, fmt.Errorf("repository: failed to scan low stock row: %w", err)
		}
		vs.LowStock = append(vs.LowStock, item)
	}
	if err := lowRows.Err(); err != nil {
		return nil, fmt.Errorf("repository: low stock rows iteration error: %w", err)
	}

	// Sales count the vendor's own lines in paid orders; other vendors'
	// lines in the same order do not leak in.
	err = r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(oi.quantity), 0), COALESCE(SUM(oi.price * oi.quantity), 0)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE oi.vendor_id = $1 AND o.is_paid AND oi.status <> 'Cancelled'`, vendorID).
		Scan(&vs.UnitsSold, &vs.Revenue)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query vendor sales: %w", err)
	}

	return &vs, nil
}
