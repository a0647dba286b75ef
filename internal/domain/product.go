package domain

import "time"

// Product is a catalog item a code can resolve to.
type Product struct {
	ID         string    `json:"id"`
	StoreID    string    `json:"-"`
	Code       string    `json:"code"`
	SKU        string    `json:"sku,omitempty"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"priceCents"`
	Stock      int       `json:"stock"`
	CreatedAt  time.Time `json:"createdAt"`
}
