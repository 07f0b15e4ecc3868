package cart

import (
	"time"

	"github.com/gofrs/uuid"

	"github.com/lara-shop/lara-api/internal/product"
)

// Item is one row of a user's cart. Title, image and price are
// snapshots refreshed from the catalog on every read so the client
// always sees current prices; they are never used for checkout math.
type Item struct {
	ID        uuid.UUID    `json:"id"`
	UserID    uuid.UUID    `json:"-"`
	ProductID uuid.UUID    `json:"product_id"`
	Title     string       `json:"title"`
	Image     string       `json:"image"`
	Size      product.Size `json:"size"`
	Price     float64      `json:"price"`
	Quantity  int          `json:"quantity"`
	CreatedAt time.Time    `json:"created_at"`
}

type AddInput struct {
	ProductID uuid.UUID    `json:"product_id" validate:"required"`
	Size      product.Size `json:"size" validate:"required"`
	Quantity  int          `json:"quantity" validate:"required,gt=0"`
}
