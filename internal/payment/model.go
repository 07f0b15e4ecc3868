package payment

import (
	"time"

	"github.com/gofrs/uuid"
)

type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusPending   Status = "pending"
)

// Payment is the record of a settlement attempt against an order.
// ProviderID is the external processor's reference (or a COD marker).
type Payment struct {
	ID         uuid.UUID `json:"id"`
	OrderID    uuid.UUID `json:"order_id"`
	UserID     uuid.UUID `json:"user_id"`
	ProviderID string    `json:"provider_id"`
	Method     string    `json:"method"`
	Amount     float64   `json:"amount"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// Intent is what the client needs to drive the processor's checkout
// flow. The secret is opaque to the server beyond echoing it back.
type Intent struct {
	OrderID      uuid.UUID `json:"order_id"`
	ClientSecret string    `json:"client_secret"`
	Amount       float64   `json:"amount"`
	Currency     string    `json:"currency"`
}

type VerifyInput struct {
	ProviderID string `json:"payment_id" validate:"required"`
	Method     string `json:"method" validate:"required"`
}
