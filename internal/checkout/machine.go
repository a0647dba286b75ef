// Package checkout gates a cart's checkout on the chosen payment method and
// hands the sale to the recorder exactly once.
package checkout

import (
	"context"
	"fmt"

	"duka-pos/internal/cart"
	"duka-pos/internal/domain"
)

// State is where a checkout stands.
type State string

const (
	StateIdle            State = "idle"
	StateAwaitingPayment State = "awaiting_payment"
	StateSubmitting      State = "submitting"
	StateCompleted       State = "completed"
)

var (
	// ErrEmptyCart is returned when checkout is requested on a cart with no lines.
	ErrEmptyCart = fmt.Errorf("cart is empty: %w", domain.ErrValidationRejected)
	// ErrWrongState is returned when an operation does not apply to the current state.
	ErrWrongState = fmt.Errorf("checkout state does not allow this: %w", domain.ErrValidationRejected)
)

// Recorder durably records a sale and returns its id.
type Recorder interface {
	RecordSale(ctx context.Context, in domain.SaleInput) (string, error)
}

// SaleMeta identifies where a sale was rung up.
type SaleMeta struct {
	StoreID   string
	SessionID string
}

// Receipt summarises a completed checkout.
type Receipt struct {
	SaleID        string               `json:"saleId"`
	Method        domain.PaymentMethod `json:"method"`
	Lines         []cart.Line          `json:"lines"`
	TotalCents    int64                `json:"totalCents"`
	ItemCount     int                  `json:"itemCount"`
	TenderedCents int64                `json:"tenderedCents,omitempty"`
	ChangeCents   int64                `json:"changeCents,omitempty"`
	Phone         string               `json:"phone,omitempty"`
	CustomerName  string               `json:"customerName,omitempty"`
}

// Machine is the checkout state of one POS session. The zero value is Idle.
// A failed submission leaves the machine in AwaitingPayment with Failure set.
type Machine struct {
	State      State  `json:"state"`
	Draft      Draft  `json:"draft"`
	Failure    string `json:"failure,omitempty"`
	LastSaleID string `json:"lastSaleId,omitempty"`
}

// Current returns the state, treating the zero value as Idle.
func (m *Machine) Current() State {
	if m.State == "" {
		return StateIdle
	}
	return m.State
}

// Begin moves an idle (or just completed) checkout to AwaitingPayment.
// Calling it again while already awaiting payment keeps the current draft.
func (m *Machine) Begin(c cart.Cart) error {
	switch m.Current() {
	case StateIdle, StateCompleted:
	case StateAwaitingPayment:
		if c.IsEmpty() {
			return ErrEmptyCart
		}
		return nil
	default:
		return m.wrongState("begin")
	}
	if c.IsEmpty() {
		return ErrEmptyCart
	}
	m.State = StateAwaitingPayment
	m.Draft = Draft{}
	m.Failure = ""
	return nil
}

// Select replaces the payment draft.
func (m *Machine) Select(d Draft) error {
	if m.Current() != StateAwaitingPayment {
		return m.wrongState("select payment")
	}
	switch d.Method {
	case domain.PaymentCash, domain.PaymentCard, domain.PaymentMobileMoney, domain.PaymentCredit:
	default:
		return fmt.Errorf("payment method %q: %w", d.Method, domain.ErrValidationRejected)
	}
	if d.TenderedCents < 0 {
		return fmt.Errorf("tendered amount is negative: %w", domain.ErrValidationRejected)
	}
	m.Draft = d
	m.Failure = ""
	return nil
}

// Ready returns the tender the current draft would submit, or why it cannot.
func (m *Machine) Ready(rules Rules, totalCents int64) (Tender, error) {
	if m.Current() != StateAwaitingPayment {
		return nil, m.wrongState("submit")
	}
	return rules.Tender(m.Draft, totalCents)
}

// ChangeDue is tendered minus total for a cash draft; negative is the
// shortfall. Other methods have no change.
func (m *Machine) ChangeDue(totalCents int64) int64 {
	if m.Draft.Method != domain.PaymentCash {
		return 0
	}
	return m.Draft.TenderedCents - totalCents
}

// Cancel returns to Idle and drops the payment draft. The cart is not touched.
func (m *Machine) Cancel() error {
	if m.Current() == StateSubmitting {
		return m.wrongState("cancel")
	}
	m.State = StateIdle
	m.Draft = Draft{}
	m.Failure = ""
	return nil
}

// Submit hands the cart and tender to rec exactly once. On success the
// machine is Completed and the caller is expected to replace its cart with
// cart.Clear(). On failure the machine is back in AwaitingPayment, Failure
// holds the reason and the returned error wraps domain.ErrSubmissionFailed.
func (m *Machine) Submit(ctx context.Context, c cart.Cart, rules Rules, rec Recorder, meta SaleMeta) (Receipt, error) {
	if m.Current() != StateAwaitingPayment {
		return Receipt{}, m.wrongState("submit")
	}
	if c.IsEmpty() {
		return Receipt{}, ErrEmptyCart
	}
	tender, err := rules.Tender(m.Draft, c.TotalCents)
	if err != nil {
		return Receipt{}, err
	}

	in := saleInput(c, tender, meta)
	m.State = StateSubmitting
	saleID, err := rec.RecordSale(ctx, in)
	if err != nil {
		m.State = StateAwaitingPayment
		m.Failure = err.Error()
		return Receipt{}, fmt.Errorf("%w: %w", domain.ErrSubmissionFailed, err)
	}

	m.State = StateCompleted
	m.Draft = Draft{}
	m.Failure = ""
	m.LastSaleID = saleID

	return Receipt{
		SaleID:        saleID,
		Method:        in.Method,
		Lines:         c.Lines,
		TotalCents:    in.TotalCents,
		ItemCount:     in.ItemCount,
		TenderedCents: in.TenderedCents,
		ChangeCents:   in.ChangeCents,
		Phone:         in.Phone,
		CustomerName:  in.CustomerName,
	}, nil
}

func (m *Machine) wrongState(op string) error {
	return fmt.Errorf("%s while %s: %w", op, m.Current(), ErrWrongState)
}

func saleInput(c cart.Cart, t Tender, meta SaleMeta) domain.SaleInput {
	lines := make([]domain.SaleLine, 0, len(c.Lines))
	for _, l := range c.Lines {
		lines = append(lines, domain.SaleLine{
			ProductID:      l.ID,
			Code:           l.Code,
			Name:           l.Name,
			Quantity:       l.Quantity,
			UnitPriceCents: l.UnitPriceCents,
			TotalCents:     l.LineTotalCents,
		})
	}
	in := domain.SaleInput{
		StoreID:    meta.StoreID,
		SessionID:  meta.SessionID,
		Lines:      lines,
		TotalCents: c.TotalCents,
		ItemCount:  c.ItemCount,
		Method:     t.Method(),
	}
	t.apply(&in)
	return in
}
