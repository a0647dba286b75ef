package domain

import "time"

// Debtor records a credit sale the customer still owes.
type Debtor struct {
	ID           string    `json:"id"`
	StoreID      string    `json:"-"`
	SaleID       string    `json:"saleId"`
	CustomerName string    `json:"customerName"`
	Phone        string    `json:"phone"`
	AmountCents  int64     `json:"amountCents"`
	PaidCents    int64     `json:"paidCents"`
	CreatedAt    time.Time `json:"createdAt"`
}

// OutstandingCents is what is still owed.
func (d Debtor) OutstandingCents() int64 {
	return d.AmountCents - d.PaidCents
}
