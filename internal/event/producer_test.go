package event

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"duka-pos/internal/domain"
)

type writerStub struct {
	msgs []kafka.Message
	err  error
}

func (w *writerStub) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *writerStub) Close() error { return nil }

func sampleInput() domain.SaleInput {
	return domain.SaleInput{
		StoreID:    "store-1",
		SessionID:  "sess-1",
		Method:     domain.PaymentCredit,
		TotalCents: 1250,
		ItemCount:  2,
		Lines: []domain.SaleLine{
			{ProductID: "p1", Code: "6001", Name: "Sugar 1kg", Quantity: 2, UnitPriceCents: 625, TotalCents: 1250},
		},
		CustomerName: "Wanjiku",
		Phone:        "0712345678",
	}
}

func TestPublishSale(t *testing.T) {
	w := &writerStub{}
	now := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	p := &Producer{writer: w, topic: "pos.sale.recorded", logger: zap.NewNop(), now: func() time.Time { return now }}

	require.NoError(t, p.PublishSale(context.Background(), "sale-9", sampleInput()))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "pos.sale.recorded", msg.Topic)
	assert.Equal(t, "store-1", string(msg.Key))

	var ev Event
	require.NoError(t, json.Unmarshal(msg.Value, &ev))
	assert.Equal(t, TypeSaleRecorded, ev.EventType)
	assert.Equal(t, "sale-9", ev.AggregateID)
	assert.True(t, now.Equal(ev.Timestamp))

	var payload SaleRecorded
	require.NoError(t, json.Unmarshal(ev.Data, &payload))
	assert.Equal(t, "12.50", payload.Total)
	assert.Equal(t, domain.PaymentCredit, payload.Method)
	assert.Equal(t, "Wanjiku", payload.CustomerName)
	require.Len(t, payload.Lines, 1)
}

type recorderStub struct {
	id  string
	err error
}

func (r recorderStub) RecordSale(context.Context, domain.SaleInput) (string, error) {
	return r.id, r.err
}

type publisherStub struct {
	calls int
	err   error
}

func (p *publisherStub) PublishSale(context.Context, string, domain.SaleInput) error {
	p.calls++
	return p.err
}

func TestWithSaleEventsPublishesAfterCommit(t *testing.T) {
	pub := &publisherStub{}
	rec := WithSaleEvents(recorderStub{id: "sale-1"}, pub, nil, nil)

	id, err := rec.RecordSale(context.Background(), sampleInput())
	require.NoError(t, err)
	assert.Equal(t, "sale-1", id)
	assert.Equal(t, 1, pub.calls)
}

func TestWithSaleEventsPublishFailureKeepsSale(t *testing.T) {
	pub := &publisherStub{err: errors.New("broker down")}
	rec := WithSaleEvents(recorderStub{id: "sale-1"}, pub, nil, nil)

	id, err := rec.RecordSale(context.Background(), sampleInput())
	require.NoError(t, err)
	assert.Equal(t, "sale-1", id)
}

func TestWithSaleEventsSkipsFailedSale(t *testing.T) {
	pub := &publisherStub{}
	rec := WithSaleEvents(recorderStub{err: domain.ErrInsufficientStock}, pub, nil, nil)

	_, err := rec.RecordSale(context.Background(), sampleInput())
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Zero(t, pub.calls)
}
