package store

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"duka-pos/internal/domain"
	"duka-pos/internal/logging"
)

const defaultCurrency = "KES"

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrNop(logger)}
}

func (r *postgresRepo) GetByKey(ctx context.Context, key string) (*domain.Store, error) {
	const q = `
SELECT id::text, key, name, currency, created_at
FROM stores
WHERE key = $1
`
	var s domain.Store
	err := r.pool.QueryRow(ctx, q, key).Scan(&s.ID, &s.Key, &s.Name, &s.Currency, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("store repo: get", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	return &s, nil
}

// Upsert creates the store or renames an existing one with the same key.
func (r *postgresRepo) Upsert(ctx context.Context, store domain.Store) (*domain.Store, error) {
	const q = `
INSERT INTO stores (key, name, currency)
VALUES ($1, $2, $3)
ON CONFLICT (key) DO UPDATE SET name = EXCLUDED.name, currency = EXCLUDED.currency
RETURNING id::text, created_at
`
	out := store
	if strings.TrimSpace(out.Name) == "" {
		out.Name = out.Key
	}
	if out.Currency == "" {
		out.Currency = defaultCurrency
	}
	err := r.pool.QueryRow(ctx, q, out.Key, out.Name, out.Currency).Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		r.logger.Error("store repo: upsert", zap.String("key", store.Key), zap.Error(err))
		return nil, err
	}
	r.logger.Debug("store repo: upserted", zap.String("key", out.Key), zap.String("id", out.ID))
	return &out, nil
}
