package products

import "time"

// Product is a catalog entry referenced by order and sale line items.
type Product struct {
	ID              int64     `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	Characteristics *string   `json:"characteristics,omitempty" db:"characteristics"`
	Unit            *string   `json:"unit,omitempty" db:"unit"`
	CreatedBy       int64     `json:"created_by" db:"created_by"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

type CreateProductRequest struct {
	Name            string  `json:"name" validate:"required,max=200"`
	Characteristics *string `json:"characteristics,omitempty"`
	Unit            *string `json:"unit,omitempty" validate:"omitempty,max=50"`
}

type UpdateProductRequest struct {
	Name            *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Characteristics *string `json:"characteristics,omitempty"`
	Unit            *string `json:"unit,omitempty" validate:"omitempty,max=50"`
}
