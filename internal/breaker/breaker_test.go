package breaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"duka-pos/internal/domain"
	"duka-pos/internal/metrics"
)

type lookupStub struct {
	calls int
	prod  *domain.Product
	err   error
}

func (s *lookupStub) LookupByCode(context.Context, string, string) (*domain.Product, error) {
	s.calls++
	return s.prod, s.err
}

type recorderStub struct {
	calls int
	err   error
}

func (s *recorderStub) RecordSale(context.Context, domain.SaleInput) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return "sale-1", nil
}

func testConfig(name string) Config {
	return Config{Name: name, MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute, FailureRatio: 0.5, MinRequests: 3}
}

func TestLookupTripsOnFailures(t *testing.T) {
	stub := &lookupStub{err: errors.New("connection refused")}
	l := WrapLookup(stub, testConfig("catalog-trip"), nil, metrics.New())

	for i := 0; i < 3; i++ {
		_, err := l.LookupByCode(context.Background(), "s", "c")
		require.Error(t, err)
	}

	_, err := l.LookupByCode(context.Background(), "s", "c")
	assert.ErrorIs(t, err, ErrOpen)
	assert.Equal(t, 3, stub.calls)
}

func TestLookupNotFoundDoesNotTrip(t *testing.T) {
	stub := &lookupStub{err: domain.ErrNotFound}
	l := WrapLookup(stub, testConfig("catalog-miss"), nil, nil)

	for i := 0; i < 10; i++ {
		_, err := l.LookupByCode(context.Background(), "s", "c")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	}
	assert.Equal(t, 10, stub.calls)
}

func TestLookupPassesResult(t *testing.T) {
	stub := &lookupStub{prod: &domain.Product{ID: "p1", Stock: 3}}
	l := WrapLookup(stub, testConfig("catalog-ok"), nil, nil)

	p, err := l.LookupByCode(context.Background(), "s", "c")
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
}

func TestRecorderStockShortfallDoesNotTrip(t *testing.T) {
	stub := &recorderStub{err: domain.ErrInsufficientStock}
	r := WrapRecorder(stub, testConfig("sales-stock"), nil, nil)

	for i := 0; i < 6; i++ {
		_, err := r.RecordSale(context.Background(), domain.SaleInput{})
		assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	}
	assert.Equal(t, 6, stub.calls)
}

func TestRecorderTripsOnFailures(t *testing.T) {
	stub := &recorderStub{err: errors.New("timeout")}
	r := WrapRecorder(stub, testConfig("sales-trip"), nil, nil)

	for i := 0; i < 3; i++ {
		_, _ = r.RecordSale(context.Background(), domain.SaleInput{})
	}
	_, err := r.RecordSale(context.Background(), domain.SaleInput{})
	assert.ErrorIs(t, err, ErrOpen)
	assert.Equal(t, 3, stub.calls)
}
