package product

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"duka-pos/internal/cart"
	"duka-pos/internal/domain"
	"duka-pos/internal/logging"
)

// DefaultLookupTimeout bounds a single code resolution.
const DefaultLookupTimeout = 5 * time.Second

type Service struct {
	repo    catalogRepo
	lookup  codeLookup
	timeout time.Duration
	logger  *zap.Logger
}

type catalogRepo interface {
	ListByStore(ctx context.Context, storeID string) ([]domain.Product, error)
	GetByID(ctx context.Context, storeID, id string) (*domain.Product, error)
}

type codeLookup interface {
	LookupByCode(ctx context.Context, storeID, code string) (*domain.Product, error)
}

// New builds the catalog service. lookup is usually repo behind a circuit
// breaker; a zero timeout means DefaultLookupTimeout.
func New(repo catalogRepo, lookup codeLookup, timeout time.Duration, logger *zap.Logger) *Service {
	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}
	return &Service{repo: repo, lookup: lookup, timeout: timeout, logger: logging.OrNop(logger)}
}

func (s *Service) List(ctx context.Context, storeID string) ([]domain.Product, error) {
	return s.repo.ListByStore(ctx, storeID)
}

func (s *Service) Get(ctx context.Context, storeID, id string) (*domain.Product, error) {
	return s.repo.GetByID(ctx, storeID, id)
}

// Resolve turns a scanned code into a fresh catalog snapshot. It never
// retries and never caches: every scan asks the catalog again.
func (s *Service) Resolve(ctx context.Context, storeID, code string) (cart.Item, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return cart.Item{}, fmt.Errorf("code is empty: %w", domain.ErrValidationRejected)
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	p, err := s.lookup.LookupByCode(lookupCtx, storeID, code)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return cart.Item{}, fmt.Errorf("code %s: %w", code, domain.ErrNotFound)
	case err != nil:
		s.logger.Warn("catalog lookup failed", zap.String("store_id", storeID), zap.String("code", code), zap.Error(err))
		return cart.Item{}, fmt.Errorf("code %s: %w: %w", code, domain.ErrLookupFailed, err)
	case p == nil:
		return cart.Item{}, fmt.Errorf("code %s: %w", code, domain.ErrNotFound)
	case p.Stock <= 0:
		return cart.Item{}, fmt.Errorf("%s: %w", p.Name, domain.ErrOutOfStock)
	}

	return cart.Item{
		ID:             p.ID,
		Code:           p.Code,
		Name:           p.Name,
		UnitPriceCents: p.PriceCents,
		AvailableStock: p.Stock,
	}, nil
}
