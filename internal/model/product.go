package model

import "time"

// Product represents an item in the catalogue. Price is held in minor currency units.
type Product struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Price     int64     `json:"price" db:"price"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewProduct carries the validated, user-supplied fields of a product to be created.
type NewProduct struct {
	Name  string
	Price int64
}
