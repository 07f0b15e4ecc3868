package stats

import "github.com/gofrs/uuid"

// Dashboard is the admin overview. Revenue figures only count paid
// orders; cancelled lines are excluded from the top-seller ranking.
type Dashboard struct {
	TotalUsers     int             `json:"total_users"`
	TotalProducts  int             `json:"total_products"`
	TotalOrders    int             `json:"total_orders"`
	TotalRevenue   float64         `json:"total_revenue"`
	PendingVendors int             `json:"pending_vendors"`
	PaymentMethods []MethodCount   `json:"payment_methods"`
	TopProducts    []ProductVolume `json:"top_products"`
}

type MethodCount struct {
	Method string `json:"method"`
	Count  int    `json:"count"`
}

type ProductVolume struct {
	ProductID uuid.UUID `json:"product_id"`
	Title     string    `json:"title"`
	UnitsSold int       `json:"units_sold"`
}

// VendorStats is the per-vendor view: own catalog size, variants
// running low, and sales attributed to the vendor's lines in paid
// orders.
type VendorStats struct {
	ProductCount int            `json:"product_count"`
	LowStock     []LowStockItem `json:"low_stock"`
	UnitsSold    int            `json:"units_sold"`
	Revenue      float64        `json:"revenue"`
}

type LowStockItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Title     string    `json:"title"`
	Size      string    `json:"size"`
	Stock     int       `json:"stock"`
}
