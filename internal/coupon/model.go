package coupon

import (
	"time"

	"github.com/gofrs/uuid"
)

// Coupon grants a percentage discount. Codes are stored upper-cased and
// are usable only while active and before expiry.
type Coupon struct {
	ID                 uuid.UUID `json:"id"`
	Code               string    `json:"code"`
	DiscountPercentage int       `json:"discount_percentage"`
	ExpiryDate         time.Time `json:"expiry_date"`
	IsActive           bool      `json:"is_active"`
	CreatedAt          time.Time `json:"created_at"`
}

// Usable reports whether the coupon can be applied at the given moment.
func (c *Coupon) Usable(now time.Time) bool {
	return c.IsActive && now.Before(c.ExpiryDate)
}
