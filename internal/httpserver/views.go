package httpserver

import (
	"time"

	"duka-pos/internal/cart"
	"duka-pos/internal/checkout"
	"duka-pos/internal/domain"
	"duka-pos/internal/money"
	"duka-pos/internal/repository/session"
)

type lineView struct {
	ID             string `json:"id"`
	Code           string `json:"code"`
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	UnitPrice      string `json:"unitPrice"`
	LineTotalCents int64  `json:"lineTotalCents"`
	LineTotal      string `json:"lineTotal"`
	AvailableStock int    `json:"availableStock"`
}

type cartView struct {
	Lines      []lineView `json:"lines"`
	TotalCents int64      `json:"totalCents"`
	Total      string     `json:"total"`
	ItemCount  int        `json:"itemCount"`
}

type checkoutView struct {
	State          checkout.State       `json:"state"`
	Method         domain.PaymentMethod `json:"method,omitempty"`
	TenderedCents  int64                `json:"tenderedCents,omitempty"`
	Phone          string               `json:"phone,omitempty"`
	CustomerName   string               `json:"customerName,omitempty"`
	Ready          bool                 `json:"ready"`
	NotReadyReason string               `json:"notReadyReason,omitempty"`
	ChangeDueCents int64                `json:"changeDueCents"`
	ChangeDue      string               `json:"changeDue"`
	Failure        string               `json:"failure,omitempty"`
	LastSaleID     string               `json:"lastSaleId,omitempty"`
}

type clampView struct {
	Requested int `json:"requested"`
	Applied   int `json:"applied"`
	Dropped   int `json:"dropped"`
}

type sessionView struct {
	ID        string       `json:"id"`
	Cart      cartView     `json:"cart"`
	Checkout  checkoutView `json:"checkout"`
	Clamp     *clampView   `json:"clamp,omitempty"`
	OpenedAt  time.Time    `json:"openedAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

type receiptView struct {
	SaleID        string               `json:"saleId"`
	Method        domain.PaymentMethod `json:"method"`
	Lines         []lineView           `json:"lines"`
	TotalCents    int64                `json:"totalCents"`
	Total         string               `json:"total"`
	ItemCount     int                  `json:"itemCount"`
	TenderedCents int64                `json:"tenderedCents,omitempty"`
	ChangeCents   int64                `json:"changeCents"`
	Change        string               `json:"change"`
	Phone         string               `json:"phone,omitempty"`
	CustomerName  string               `json:"customerName,omitempty"`
}

type debtorView struct {
	domain.Debtor
	OutstandingCents int64  `json:"outstandingCents"`
	Outstanding      string `json:"outstanding"`
}

func toLineViews(lines []cart.Line) []lineView {
	out := make([]lineView, 0, len(lines))
	for _, l := range lines {
		out = append(out, lineView{
			ID:             l.ID,
			Code:           l.Code,
			Name:           l.Name,
			Quantity:       l.Quantity,
			UnitPriceCents: l.UnitPriceCents,
			UnitPrice:      money.Format(l.UnitPriceCents),
			LineTotalCents: l.LineTotalCents,
			LineTotal:      money.Format(l.LineTotalCents),
			AvailableStock: l.AvailableStock,
		})
	}
	return out
}

func toSessionView(s *session.Session, rules checkout.Rules) sessionView {
	m := s.Checkout
	total := s.Cart.TotalCents
	cv := checkoutView{
		State:         m.Current(),
		Method:        m.Draft.Method,
		TenderedCents: m.Draft.TenderedCents,
		Phone:         m.Draft.Phone,
		CustomerName:  m.Draft.CustomerName,
		Failure:       m.Failure,
		LastSaleID:    m.LastSaleID,
	}
	cv.ChangeDueCents = m.ChangeDue(total)
	cv.ChangeDue = money.Format(cv.ChangeDueCents)
	if m.Current() == checkout.StateAwaitingPayment {
		switch _, err := m.Ready(rules, total); {
		case s.Cart.IsEmpty():
			cv.NotReadyReason = checkout.ErrEmptyCart.Error()
		case err != nil:
			cv.NotReadyReason = err.Error()
		default:
			cv.Ready = true
		}
	}

	return sessionView{
		ID: s.ID,
		Cart: cartView{
			Lines:      toLineViews(s.Cart.Lines),
			TotalCents: total,
			Total:      money.Format(total),
			ItemCount:  s.Cart.ItemCount,
		},
		Checkout:  cv,
		OpenedAt:  s.OpenedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func withClamp(v sessionView, c cart.Clamp) sessionView {
	if c.Clamped() {
		v.Clamp = &clampView{Requested: c.Requested, Applied: c.Applied, Dropped: c.Dropped()}
	}
	return v
}

func toReceiptView(r checkout.Receipt) receiptView {
	return receiptView{
		SaleID:        r.SaleID,
		Method:        r.Method,
		Lines:         toLineViews(r.Lines),
		TotalCents:    r.TotalCents,
		Total:         money.Format(r.TotalCents),
		ItemCount:     r.ItemCount,
		TenderedCents: r.TenderedCents,
		ChangeCents:   r.ChangeCents,
		Change:        money.Format(r.ChangeCents),
		Phone:         r.Phone,
		CustomerName:  r.CustomerName,
	}
}
