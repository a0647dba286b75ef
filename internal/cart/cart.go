// Package cart holds the in-memory cart of an open POS session.
//
// Every operation is a pure function of its inputs: it returns a new Cart with
// freshly recomputed totals and never mutates the receiver's line slice, so a
// caller that abandons a result (failed network call, cancelled request) keeps
// the cart it had.
package cart

import (
	"errors"
	"fmt"

	"duka-pos/internal/domain"
)

// ErrQuantityBelowOne is returned when a quantity under 1 is requested.
// Callers that want a line gone use Remove.
var ErrQuantityBelowOne = fmt.Errorf("quantity must be at least 1: %w", domain.ErrValidationRejected)

// ErrNoStock is returned when an item without sellable stock is added.
var ErrNoStock = fmt.Errorf("item has no stock: %w", domain.ErrOutOfStock)

// Item is a resolved catalog snapshot, valid for the add that follows it.
type Item struct {
	ID             string `json:"id"`
	Code           string `json:"code"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	AvailableStock int    `json:"availableStock"`
}

// Line is one distinct product in the cart.
type Line struct {
	ID             string `json:"id"`
	Code           string `json:"code"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	Quantity       int    `json:"quantity"`
	LineTotalCents int64  `json:"lineTotalCents"`
	AvailableStock int    `json:"availableStock"`
}

// Cart is the not-yet-finalised sale.
type Cart struct {
	Lines      []Line `json:"lines"`
	TotalCents int64  `json:"totalCents"`
	ItemCount  int    `json:"itemCount"`
}

// Clamp reports how a requested quantity change was bounded by stock. Both
// fields are deltas on the line quantity: Requested is the change the caller
// asked for, Applied is the change that landed.
type Clamp struct {
	Requested int `json:"requested"`
	Applied   int `json:"applied"`
}

// Clamped reports whether stock cut the request short.
func (c Clamp) Clamped() bool {
	return c.Applied != c.Requested
}

// Dropped is how many units of the request were not applied.
func (c Clamp) Dropped() int {
	if d := c.Requested - c.Applied; d > 0 {
		return d
	}
	return 0
}

// New returns an empty cart.
func New() Cart {
	return Cart{Lines: []Line{}}
}

// Clear discards every line. It is New under the name the POS flow uses.
func Clear() Cart {
	return New()
}

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Line returns the line with the given id.
func (c Cart) Line(id string) (Line, bool) {
	if i := c.index(id); i >= 0 {
		return c.Lines[i], true
	}
	return Line{}, false
}

// Add merges item into the cart, or appends it as a new line, never letting
// the line quantity exceed item.AvailableStock.
//
// Merging refreshes the line's stock ceiling from item but keeps the name and
// unit price copied when the line was first added.
func (c Cart) Add(item Item, qty int) (Cart, Clamp, error) {
	if qty < 1 {
		return c, Clamp{}, ErrQuantityBelowOne
	}
	if item.ID == "" {
		return c, Clamp{}, fmt.Errorf("item id required: %w", domain.ErrValidationRejected)
	}
	if item.AvailableStock < 1 {
		return c, Clamp{}, ErrNoStock
	}

	lines := c.copyLines()
	clamp := Clamp{Requested: qty}

	if i := c.index(item.ID); i >= 0 {
		line := lines[i]
		newQty := item.AvailableStock
		if room := item.AvailableStock - line.Quantity; qty < room {
			newQty = line.Quantity + qty
		}
		clamp.Applied = newQty - line.Quantity
		line.Quantity = newQty
		line.AvailableStock = item.AvailableStock
		lines[i] = line.withTotal()
	} else {
		newQty := min(qty, item.AvailableStock)
		clamp.Applied = newQty
		lines = append(lines, Line{
			ID:             item.ID,
			Code:           item.Code,
			Name:           item.Name,
			UnitPriceCents: item.UnitPriceCents,
			Quantity:       newQty,
			AvailableStock: item.AvailableStock,
		}.withTotal())
	}

	return build(lines), clamp, nil
}

// SetQuantity sets a line's quantity, clamped into [1, line.AvailableStock].
// An unknown lineID leaves the cart unchanged.
func (c Cart) SetQuantity(lineID string, qty int) (Cart, Clamp, error) {
	if qty < 1 {
		return c, Clamp{}, ErrQuantityBelowOne
	}
	i := c.index(lineID)
	if i < 0 {
		return c, Clamp{}, nil
	}

	lines := c.copyLines()
	line := lines[i]
	newQty := max(1, min(qty, line.AvailableStock))
	clamp := Clamp{Requested: qty - line.Quantity, Applied: newQty - line.Quantity}
	line.Quantity = newQty
	lines[i] = line.withTotal()

	return build(lines), clamp, nil
}

// Remove deletes the line with the given id. An unknown id is a no-op.
func (c Cart) Remove(lineID string) Cart {
	i := c.index(lineID)
	if i < 0 {
		return c
	}
	lines := make([]Line, 0, len(c.Lines)-1)
	lines = append(lines, c.Lines[:i]...)
	lines = append(lines, c.Lines[i+1:]...)
	return build(lines)
}

// Validate checks the derived fields and the per-line invariants. Carts built
// through this package always pass; it exists for carts decoded from storage.
func (c Cart) Validate() error {
	var (
		total int64
		count int
		seen  = make(map[string]struct{}, len(c.Lines))
	)
	for _, l := range c.Lines {
		if _, dup := seen[l.ID]; dup {
			return fmt.Errorf("cart: duplicate line %s", l.ID)
		}
		seen[l.ID] = struct{}{}
		if l.Quantity < 1 || l.Quantity > l.AvailableStock {
			return fmt.Errorf("cart: line %s quantity %d outside [1,%d]", l.ID, l.Quantity, l.AvailableStock)
		}
		if l.LineTotalCents != l.UnitPriceCents*int64(l.Quantity) {
			return fmt.Errorf("cart: line %s total is stale", l.ID)
		}
		total += l.LineTotalCents
		count += l.Quantity
	}
	if total != c.TotalCents || count != c.ItemCount {
		return errors.New("cart: aggregate totals are stale")
	}
	return nil
}

func (c Cart) index(id string) int {
	for i := range c.Lines {
		if c.Lines[i].ID == id {
			return i
		}
	}
	return -1
}

func (c Cart) copyLines() []Line {
	lines := make([]Line, len(c.Lines), len(c.Lines)+1)
	copy(lines, c.Lines)
	return lines
}

func (l Line) withTotal() Line {
	l.LineTotalCents = l.UnitPriceCents * int64(l.Quantity)
	return l
}

func build(lines []Line) Cart {
	out := Cart{Lines: lines}
	for _, l := range lines {
		out.TotalCents += l.LineTotalCents
		out.ItemCount += l.Quantity
	}
	return out
}
