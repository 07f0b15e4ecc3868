package user

import (
	"time"

	"github.com/gofrs/uuid"
)

// User is an account: customer, vendor, or administrator.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Phone        string    `json:"phone,omitempty"`
	IsAdmin      bool      `json:"is_admin"`
	IsVendor     bool      `json:"is_vendor"`
	IsApproved   bool      `json:"is_approved"`
	IsBlocked    bool      `json:"is_blocked"`
	IsDeleted    bool      `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
