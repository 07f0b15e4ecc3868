package product

import (
	"time"

	"github.com/gofrs/uuid"
)

type Category string

const (
	CategoryFloral   Category = "Floral"
	CategoryWoody    Category = "Woody"
	CategoryCitrus   Category = "Citrus"
	CategoryLuxury   Category = "Luxury"
	CategoryOriental Category = "Oriental"
)

type Gender string

const (
	GenderMen    Gender = "Men"
	GenderWomen  Gender = "Women"
	GenderUnisex Gender = "Unisex"
)

type Size string

const (
	Size50ml  Size = "50ml"
	Size100ml Size = "100ml"
	Size200ml Size = "200ml"
)

func (s Size) Valid() bool {
	switch s {
	case Size50ml, Size100ml, Size200ml:
		return true
	}
	return false
}

// Variant is a purchasable size/price/stock combination of a product.
// Price and stock are always read from here for monetary operations,
// never trusted from client input.
type Variant struct {
	ID    uuid.UUID `json:"id"`
	Size  Size      `json:"size"`
	Price float64   `json:"price"`
	Stock int       `json:"stock"`
}

type Product struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"` // owning vendor or admin
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Category    Category  `json:"category"`
	Gender      Gender    `json:"gender"`
	Variants    []Variant `json:"variants"`
	Rating      float64   `json:"rating"`
	NumReviews  int       `json:"num_reviews"`
	IsFeatured  bool      `json:"is_featured"`
	IsApproved  bool      `json:"is_approved"`
	IsDeleted   bool      `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// VariantBySize returns the variant matching the requested size, or nil.
func (p *Product) VariantBySize(size Size) *Variant {
	for i := range p.Variants {
		if p.Variants[i].Size == size {
			return &p.Variants[i]
		}
	}
	return nil
}

// Filter narrows catalog listings. Zero values mean "no constraint".
type Filter struct {
	Keyword      string
	Category     Category
	Gender       Gender
	MinPrice     *float64
	MaxPrice     *float64
	MinRating    *float64
	FeaturedOnly bool
	Sort         Sort
}

type Sort string

const (
	SortNewest    Sort = ""
	SortPriceAsc  Sort = "price_asc"
	SortPriceDesc Sort = "price_desc"
	SortRating    Sort = "rating"
)
