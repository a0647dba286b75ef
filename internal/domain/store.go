package domain

import "time"

// Store is a tenant: it owns a catalog, POS sessions, sales and debtors.
type Store struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Name      string    `json:"name"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"createdAt"`
}
