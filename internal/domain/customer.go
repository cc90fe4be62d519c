package domain

import (
	"time"

	"github.com/google/uuid"
)

// Customer represents a CRM customer. Email is unique across all customers.
type Customer struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NewCustomerInput is one customer to create, alone or as a bulk row
type NewCustomerInput struct {
	Name  string  `json:"name" validate:"required"`
	Email string  `json:"email" validate:"required"`
	Phone *string `json:"phone,omitempty"`
}
