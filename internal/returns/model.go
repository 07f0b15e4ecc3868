package returns

import (
	"time"

	"github.com/gofrs/uuid"
)

type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

// Request is a return/refund request against a whole order. At most
// one exists per order; the refund amount is fixed to the order total
// at submission time.
type Request struct {
	ID           uuid.UUID  `json:"id"`
	OrderID      uuid.UUID  `json:"order_id"`
	UserID       uuid.UUID  `json:"user_id"`
	Reason       string     `json:"reason"`
	Status       Status     `json:"status"`
	RefundAmount float64    `json:"refund_amount"`
	CreatedAt    time.Time  `json:"created_at"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
}

type CreateInput struct {
	OrderID uuid.UUID `json:"order_id" validate:"required"`
	Reason  string    `json:"reason" validate:"required"`
}
