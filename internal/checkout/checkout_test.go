package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"duka-pos/internal/cart"
	"duka-pos/internal/domain"
)

type recorderStub struct {
	calls int
	last  domain.SaleInput
	id    string
	err   error
}

func (r *recorderStub) RecordSale(_ context.Context, in domain.SaleInput) (string, error) {
	r.calls++
	r.last = in
	if r.err != nil {
		return "", r.err
	}
	return r.id, nil
}

func cartOf(t *testing.T, price int64, qty int) cart.Cart {
	t.Helper()
	c, _, err := cart.New().Add(cart.Item{ID: "p1", Code: "6001", Name: "Sugar 1kg", UnitPriceCents: price, AvailableStock: 10}, qty)
	require.NoError(t, err)
	return c
}

func TestCashReadiness(t *testing.T) {
	rules := DefaultRules()

	_, err := rules.Tender(Draft{Method: domain.PaymentCash, TenderedCents: 300}, 500)
	assert.ErrorIs(t, err, ErrInsufficientTender)
	assert.ErrorIs(t, err, domain.ErrValidationRejected)

	tender, err := rules.Tender(Draft{Method: domain.PaymentCash, TenderedCents: 500}, 500)
	require.NoError(t, err)
	assert.Equal(t, Cash{TenderedCents: 500, ChangeCents: 0}, tender)

	tender, err = rules.Tender(Draft{Method: domain.PaymentCash, TenderedCents: 700}, 500)
	require.NoError(t, err)
	assert.Equal(t, Cash{TenderedCents: 700, ChangeCents: 200}, tender)
}

func TestCardAlwaysReady(t *testing.T) {
	tender, err := DefaultRules().Tender(Draft{Method: domain.PaymentCard}, 12345)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentCard, tender.Method())
}

func TestMobileMoneyNeedsPhone(t *testing.T) {
	rules := DefaultRules()

	_, err := rules.Tender(Draft{Method: domain.PaymentMobileMoney, Phone: "0712"}, 100)
	assert.ErrorIs(t, err, ErrPhoneRequired)

	tender, err := rules.Tender(Draft{Method: domain.PaymentMobileMoney, Phone: " 0712 345 678 "}, 100)
	require.NoError(t, err)
	assert.Equal(t, MobileMoney{Phone: "0712 345 678"}, tender)
}

func TestCreditNeedsNameAndPhone(t *testing.T) {
	rules := DefaultRules()

	_, err := rules.Tender(Draft{Method: domain.PaymentCredit, CustomerName: "  ", Phone: "0712345678"}, 100)
	assert.ErrorIs(t, err, ErrCustomerRequired)

	_, err = rules.Tender(Draft{Method: domain.PaymentCredit, CustomerName: "Wanjiku", Phone: "07"}, 100)
	assert.ErrorIs(t, err, ErrPhoneRequired)

	tender, err := rules.Tender(Draft{Method: domain.PaymentCredit, CustomerName: "Wanjiku", Phone: "+254712345678"}, 100)
	require.NoError(t, err)
	assert.Equal(t, Credit{CustomerName: "Wanjiku", Phone: "+254712345678"}, tender)
}

func TestConfiguredPhoneDigits(t *testing.T) {
	rules := Rules{MinPhoneDigits: 4}
	_, err := rules.Tender(Draft{Method: domain.PaymentMobileMoney, Phone: "1234"}, 100)
	assert.NoError(t, err)
}

func TestNoMethodNotReady(t *testing.T) {
	_, err := DefaultRules().Tender(Draft{}, 100)
	assert.ErrorIs(t, err, ErrNoMethod)
}

func TestDigitCount(t *testing.T) {
	assert.Equal(t, 12, DigitCount("+254 712-345-678"))
	assert.Equal(t, 0, DigitCount(""))
}

func TestBeginRequiresNonEmptyCart(t *testing.T) {
	var m Machine
	err := m.Begin(cart.New())
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, StateIdle, m.Current())

	require.NoError(t, m.Begin(cartOf(t, 100, 1)))
	assert.Equal(t, StateAwaitingPayment, m.Current())
}

func TestSelectOutsideCheckoutRejected(t *testing.T) {
	var m Machine
	err := m.Select(Draft{Method: domain.PaymentCash})
	assert.ErrorIs(t, err, ErrWrongState)
}

func TestSelectRejectsUnknownMethod(t *testing.T) {
	var m Machine
	require.NoError(t, m.Begin(cartOf(t, 100, 1)))
	err := m.Select(Draft{Method: "barter"})
	assert.ErrorIs(t, err, domain.ErrValidationRejected)
}

func TestReadyAndChangeDue(t *testing.T) {
	var m Machine
	c := cartOf(t, 250, 2)
	require.NoError(t, m.Begin(c))

	require.NoError(t, m.Select(Draft{Method: domain.PaymentCash, TenderedCents: 300}))
	_, err := m.Ready(DefaultRules(), c.TotalCents)
	assert.ErrorIs(t, err, ErrInsufficientTender)
	assert.Equal(t, int64(-200), m.ChangeDue(c.TotalCents))

	require.NoError(t, m.Select(Draft{Method: domain.PaymentCash, TenderedCents: 700}))
	_, err = m.Ready(DefaultRules(), c.TotalCents)
	assert.NoError(t, err)
	assert.Equal(t, int64(200), m.ChangeDue(c.TotalCents))

	require.NoError(t, m.Select(Draft{Method: domain.PaymentCard}))
	assert.Zero(t, m.ChangeDue(c.TotalCents))
}

func TestSubmitCashSuccess(t *testing.T) {
	var m Machine
	c := cartOf(t, 250, 2)
	require.NoError(t, m.Begin(c))
	require.NoError(t, m.Select(Draft{Method: domain.PaymentCash, TenderedCents: 1000}))

	rec := &recorderStub{id: "sale-1"}
	receipt, err := m.Submit(context.Background(), c, DefaultRules(), rec, SaleMeta{StoreID: "s1", SessionID: "sess"})
	require.NoError(t, err)

	assert.Equal(t, 1, rec.calls)
	assert.Equal(t, "s1", rec.last.StoreID)
	assert.Equal(t, "sess", rec.last.SessionID)
	assert.Equal(t, int64(500), rec.last.TotalCents)
	assert.Equal(t, int64(500), rec.last.ChangeCents)
	require.Len(t, rec.last.Lines, 1)
	assert.Equal(t, domain.SaleLine{ProductID: "p1", Code: "6001", Name: "Sugar 1kg", Quantity: 2, UnitPriceCents: 250, TotalCents: 500}, rec.last.Lines[0])

	assert.Equal(t, "sale-1", receipt.SaleID)
	assert.Equal(t, int64(1000), receipt.TenderedCents)
	assert.Equal(t, StateCompleted, m.Current())
	assert.Equal(t, Draft{}, m.Draft)
	assert.Equal(t, "sale-1", m.LastSaleID)
}

func TestSubmitNotReadyDoesNotCallRecorder(t *testing.T) {
	var m Machine
	c := cartOf(t, 100, 1)
	require.NoError(t, m.Begin(c))
	require.NoError(t, m.Select(Draft{Method: domain.PaymentCredit, Phone: "0712345678"}))

	rec := &recorderStub{id: "x"}
	_, err := m.Submit(context.Background(), c, DefaultRules(), rec, SaleMeta{})
	assert.ErrorIs(t, err, ErrCustomerRequired)
	assert.Zero(t, rec.calls)
	assert.Equal(t, StateAwaitingPayment, m.Current())
}

func TestSubmitFailureKeepsCheckoutOpen(t *testing.T) {
	var m Machine
	c := cartOf(t, 100, 3)
	require.NoError(t, m.Begin(c))
	draft := Draft{Method: domain.PaymentMobileMoney, Phone: "0712345678"}
	require.NoError(t, m.Select(draft))

	rec := &recorderStub{err: errors.New("connection reset")}
	_, err := m.Submit(context.Background(), c, DefaultRules(), rec, SaleMeta{})
	assert.ErrorIs(t, err, domain.ErrSubmissionFailed)
	assert.Equal(t, 1, rec.calls)
	assert.Equal(t, StateAwaitingPayment, m.Current())
	assert.Equal(t, "connection reset", m.Failure)
	assert.Equal(t, draft, m.Draft)
	assert.Equal(t, 3, c.ItemCount)

	rec.err = nil
	rec.id = "sale-2"
	receipt, err := m.Submit(context.Background(), c, DefaultRules(), rec, SaleMeta{})
	require.NoError(t, err)
	assert.Equal(t, "sale-2", receipt.SaleID)
	assert.Empty(t, m.Failure)
	assert.Equal(t, 2, rec.calls)
}

func TestSubmitEmptyCartRejected(t *testing.T) {
	var m Machine
	require.NoError(t, m.Begin(cartOf(t, 100, 1)))
	require.NoError(t, m.Select(Draft{Method: domain.PaymentCard}))

	rec := &recorderStub{id: "x"}
	_, err := m.Submit(context.Background(), cart.New(), DefaultRules(), rec, SaleMeta{})
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Zero(t, rec.calls)
}

func TestCancelReturnsToIdle(t *testing.T) {
	var m Machine
	c := cartOf(t, 100, 1)
	require.NoError(t, m.Begin(c))
	require.NoError(t, m.Select(Draft{Method: domain.PaymentCard}))

	require.NoError(t, m.Cancel())
	assert.Equal(t, StateIdle, m.Current())
	assert.Equal(t, Draft{}, m.Draft)

	_, err := m.Submit(context.Background(), c, DefaultRules(), &recorderStub{}, SaleMeta{})
	assert.ErrorIs(t, err, ErrWrongState)
}

func TestBeginAfterCompleted(t *testing.T) {
	var m Machine
	c := cartOf(t, 100, 1)
	require.NoError(t, m.Begin(c))
	require.NoError(t, m.Select(Draft{Method: domain.PaymentCard}))
	_, err := m.Submit(context.Background(), c, DefaultRules(), &recorderStub{id: "s"}, SaleMeta{})
	require.NoError(t, err)

	require.NoError(t, m.Begin(cartOf(t, 50, 1)))
	assert.Equal(t, StateAwaitingPayment, m.Current())
}
