package domain

import "time"

// SaleLine is one product row of a recorded sale.
type SaleLine struct {
	ProductID      string `json:"productId"`
	Code           string `json:"code"`
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	TotalCents     int64  `json:"totalCents"`
}

// SaleInput is what checkout hands to the sales recorder.
type SaleInput struct {
	StoreID       string
	SessionID     string
	Lines         []SaleLine
	TotalCents    int64
	ItemCount     int
	Method        PaymentMethod
	TenderedCents int64
	ChangeCents   int64
	Phone         string
	CustomerName  string
}

// Sale is a recorded sale.
type Sale struct {
	ID            string        `json:"id"`
	StoreID       string        `json:"-"`
	SessionID     string        `json:"sessionId"`
	Lines         []SaleLine    `json:"lines"`
	TotalCents    int64         `json:"totalCents"`
	ItemCount     int           `json:"itemCount"`
	Method        PaymentMethod `json:"method"`
	TenderedCents int64         `json:"tenderedCents,omitempty"`
	ChangeCents   int64         `json:"changeCents,omitempty"`
	Phone         string        `json:"phone,omitempty"`
	CustomerName  string        `json:"customerName,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
}
