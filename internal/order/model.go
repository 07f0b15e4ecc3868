package order

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/lara-shop/lara-api/internal/product"
)

// Status is used both per line and for the derived whole-order aggregate.
type Status string

const (
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) Valid() bool {
	switch s {
	case StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Line is one product+size+quantity entry within an order. Title, image
// and price are snapshots taken from the catalog at creation time; the
// vendor reference is copied from the product owner, not joined live.
type Line struct {
	ID        uuid.UUID    `json:"id"`
	OrderID   uuid.UUID    `json:"order_id"`
	ProductID uuid.UUID    `json:"product_id"`
	VendorID  uuid.UUID    `json:"vendor_id"`
	Title     string       `json:"title"`
	Image     string       `json:"image"`
	Size      product.Size `json:"size"`
	Price     float64      `json:"price"`
	Quantity  int          `json:"quantity"`
	Status    Status       `json:"status"`
}

type ShippingAddress struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type Order struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	Status          Status          `json:"status"`
	Lines           []Line          `json:"order_items"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	PaymentMethod   string          `json:"payment_method"`
	ItemsPrice      float64         `json:"items_price"`
	DiscountPrice   float64         `json:"discount_price"`
	ShippingPrice   float64         `json:"shipping_price"`
	TaxPrice        float64         `json:"tax_price"`
	TotalPrice      float64         `json:"total_price"`
	CouponCode      string          `json:"coupon_code,omitempty"`
	IsPaid          bool            `json:"is_paid"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	IsDelivered     bool            `json:"is_delivered"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// LineInput is a requested line as submitted by the client. Only the
// identifying fields are trusted; price, title and vendor come from the
// catalog.
type LineInput struct {
	ProductID uuid.UUID    `json:"product_id"`
	Size      product.Size `json:"size"`
	Quantity  int          `json:"quantity"`
}

// CreateInput carries everything the client submits for order creation.
type CreateInput struct {
	Lines           []LineInput
	ShippingAddress ShippingAddress
	PaymentMethod   string
	CouponCode      string
}
