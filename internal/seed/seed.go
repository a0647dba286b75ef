// Package seed loads a demo store for manual testing.
package seed

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"duka-pos/internal/domain"
	"duka-pos/internal/logging"
)

type storeWriter interface {
	Upsert(ctx context.Context, store domain.Store) (*domain.Store, error)
}

type productWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

const DemoStoreKey = "demo"

type productSeed struct {
	Code       string
	SKU        string
	Name       string
	PriceCents int64
	Stock      int
}

var demoProducts = []productSeed{
	{Code: "6001", SKU: "SUG-1KG", Name: "Sugar 1kg", PriceCents: 16500, Stock: 40},
	{Code: "6002", SKU: "MLK-500", Name: "Milk 500ml", PriceCents: 6000, Stock: 24},
	{Code: "6003", SKU: "BRD-400", Name: "Bread 400g", PriceCents: 6500, Stock: 15},
	{Code: "6004", SKU: "SOAP-BAR", Name: "Bar soap", PriceCents: 12000, Stock: 10},
	{Code: "6005", SKU: "MAIZE-2KG", Name: "Maize flour 2kg", PriceCents: 19500, Stock: 30},
	{Code: "6009", SKU: "SALT-500", Name: "Salt 500g", PriceCents: 4000, Stock: 0},
}

// Apply upserts the demo store and its catalog. Running it again resets the
// demo stock levels.
func Apply(ctx context.Context, stores storeWriter, products productWriter, logger *zap.Logger) (*domain.Store, error) {
	logger = logging.OrNop(logger)

	store, err := stores.Upsert(ctx, domain.Store{Key: DemoStoreKey, Name: "Demo Duka", Currency: "KES"})
	if err != nil {
		return nil, fmt.Errorf("ensure store: %w", err)
	}

	for _, p := range demoProducts {
		_, err := products.Upsert(ctx, domain.Product{
			StoreID:    store.ID,
			Code:       p.Code,
			SKU:        p.SKU,
			Name:       p.Name,
			PriceCents: p.PriceCents,
			Stock:      p.Stock,
		})
		if err != nil {
			return nil, fmt.Errorf("upsert product %s: %w", p.Code, err)
		}
	}

	logger.Info("seed applied", zap.String("store_key", store.Key), zap.String("store_id", store.ID), zap.Int("products", len(demoProducts)))
	return store, nil
}
