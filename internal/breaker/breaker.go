// Package breaker puts circuit breakers in front of the catalog lookup and the
// sales recorder so a struggling database fails fast instead of piling up
// operator requests.
package breaker

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"duka-pos/internal/domain"
	"duka-pos/internal/logging"
	"duka-pos/internal/metrics"
)

// ErrOpen is returned while a breaker rejects calls.
var ErrOpen = gobreaker.ErrOpenState

// Config holds the breaker tuning.
type Config struct {
	Name string
	// MaxRequests is how many trial requests pass while half-open.
	MaxRequests uint32
	// Interval clears the closed-state counts; 0 never clears them.
	Interval time.Duration
	// Timeout is how long the breaker stays open before probing.
	Timeout      time.Duration
	FailureRatio float64
	MinRequests  uint32
}

// Default returns the settings used by cmd/api.
func Default(name string) Config {
	return Config{
		Name:         name,
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      15 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  5,
	}
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func newBreaker[T any](cfg Config, logger *zap.Logger, m *metrics.Metrics, ok func(error) bool) *gobreaker.CircuitBreaker[T] {
	logger = logging.OrNop(logger)
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			m.SetBreakerState(name, stateValue(to))
		},
		IsSuccessful: ok,
	}
	m.SetBreakerState(cfg.Name, 0)
	return gobreaker.NewCircuitBreaker[T](settings)
}

// Lookup is the catalog query guarded by the breaker.
type Lookup interface {
	LookupByCode(ctx context.Context, storeID, code string) (*domain.Product, error)
}

type lookup struct {
	next Lookup
	cb   *gobreaker.CircuitBreaker[*domain.Product]
}

// WrapLookup guards next. A miss is a normal answer and never trips it.
func WrapLookup(next Lookup, cfg Config, logger *zap.Logger, m *metrics.Metrics) Lookup {
	ok := func(err error) bool {
		return err == nil || errors.Is(err, domain.ErrNotFound)
	}
	return &lookup{next: next, cb: newBreaker[*domain.Product](cfg, logger, m, ok)}
}

func (l *lookup) LookupByCode(ctx context.Context, storeID, code string) (*domain.Product, error) {
	return l.cb.Execute(func() (*domain.Product, error) {
		return l.next.LookupByCode(ctx, storeID, code)
	})
}

// Recorder is the sales recorder guarded by the breaker.
type Recorder interface {
	RecordSale(ctx context.Context, in domain.SaleInput) (string, error)
}

type recorder struct {
	next Recorder
	cb   *gobreaker.CircuitBreaker[string]
}

// WrapRecorder guards next. Business rejections such as a stock shortfall
// do not count as failures.
func WrapRecorder(next Recorder, cfg Config, logger *zap.Logger, m *metrics.Metrics) Recorder {
	ok := func(err error) bool {
		return err == nil ||
			errors.Is(err, domain.ErrInsufficientStock) ||
			errors.Is(err, domain.ErrValidationRejected)
	}
	return &recorder{next: next, cb: newBreaker[string](cfg, logger, m, ok)}
}

func (r *recorder) RecordSale(ctx context.Context, in domain.SaleInput) (string, error) {
	return r.cb.Execute(func() (string, error) {
		return r.next.RecordSale(ctx, in)
	})
}
