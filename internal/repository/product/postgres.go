package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"duka-pos/internal/domain"
	"duka-pos/internal/logging"
)

const selectColumns = `id::text, store_id::text, code, COALESCE(sku, ''), name, price_cents, stock, created_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrNop(logger)}
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.StoreID, &p.Code, &p.SKU, &p.Name, &p.PriceCents, &p.Stock, &p.CreatedAt)
	return p, err
}

func (r *postgresRepo) ListByStore(ctx context.Context, storeID string) ([]domain.Product, error) {
	q := `SELECT ` + selectColumns + `
FROM products
WHERE store_id = $1
ORDER BY name, code
`
	rows, err := r.pool.Query(ctx, q, storeID)
	if err != nil {
		r.logger.Error("product repo: list", zap.String("store_id", storeID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	result := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("product repo: list rows", zap.String("store_id", storeID), zap.Error(err))
		return nil, err
	}
	r.logger.Debug("product repo: list", zap.String("store_id", storeID), zap.Int("count", len(result)))
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, storeID, id string) (*domain.Product, error) {
	q := `SELECT ` + selectColumns + `
FROM products
WHERE store_id = $1 AND id::text = $2
`
	p, err := scanProduct(r.pool.QueryRow(ctx, q, storeID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("product repo: get not found", zap.String("store_id", storeID), zap.String("id", id))
			return nil, domain.ErrNotFound
		}
		r.logger.Error("product repo: get", zap.String("store_id", storeID), zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return &p, nil
}

// LookupByCode matches a scanned code exactly against the store's catalog.
func (r *postgresRepo) LookupByCode(ctx context.Context, storeID, code string) (*domain.Product, error) {
	q := `SELECT ` + selectColumns + `
FROM products
WHERE store_id = $1 AND code = $2
`
	p, err := scanProduct(r.pool.QueryRow(ctx, q, storeID, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("product repo: lookup not found", zap.String("store_id", storeID), zap.String("code", code))
			return nil, domain.ErrNotFound
		}
		r.logger.Error("product repo: lookup", zap.String("store_id", storeID), zap.String("code", code), zap.Error(err))
		return nil, err
	}
	r.logger.Debug("product repo: lookup",
		zap.String("store_id", storeID),
		zap.String("code", code),
		zap.String("id", p.ID),
		zap.Int("stock", p.Stock),
	)
	return &p, nil
}

// Upsert inserts or updates by (store_id, code). Stock is overwritten.
func (r *postgresRepo) Upsert(ctx context.Context, product domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (id, store_id, code, sku, name, price_cents, stock)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, NULLIF($4, ''), $5, $6, $7)
ON CONFLICT (store_id, code) DO UPDATE SET
    sku = EXCLUDED.sku,
    name = EXCLUDED.name,
    price_cents = EXCLUDED.price_cents,
    stock = EXCLUDED.stock,
    updated_at = now()
RETURNING id::text, created_at
`
	res := product
	err := r.pool.QueryRow(ctx, q,
		product.ID,
		product.StoreID,
		product.Code,
		product.SKU,
		product.Name,
		product.PriceCents,
		product.Stock,
	).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		r.logger.Error("product repo: upsert", zap.String("store_id", product.StoreID), zap.String("code", product.Code), zap.Error(err))
		return nil, err
	}
	if product.ID != "" && res.ID != product.ID {
		return nil, fmt.Errorf("product repo: id mismatch for code=%s store_id=%s existing_id=%s import_id=%s", product.Code, product.StoreID, res.ID, product.ID)
	}
	r.logger.Debug("product repo: upserted", zap.String("store_id", res.StoreID), zap.String("code", res.Code), zap.String("id", res.ID))
	return &res, nil
}
