// Package session stores open POS sessions between requests.
package session

import (
	"context"
	"time"

	"duka-pos/internal/cart"
	"duka-pos/internal/checkout"
)

// Session is one till: a cart and its checkout, owned by a store.
type Session struct {
	ID        string           `json:"id"`
	StoreID   string           `json:"storeId"`
	Cart      cart.Cart        `json:"cart"`
	Checkout  checkout.Machine `json:"checkout"`
	OpenedAt  time.Time        `json:"openedAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// Clone returns a copy that shares no line slice with s.
func (s Session) Clone() Session {
	out := s
	out.Cart.Lines = append([]cart.Line{}, s.Cart.Lines...)
	return out
}

type Repository interface {
	Get(ctx context.Context, storeID, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, storeID, id string) error
}

func key(storeID, id string) string {
	return keyPrefix + storeID + ":" + id
}

const keyPrefix = "pos:session:"
