package store

import (
	"context"

	"duka-pos/internal/domain"
)

type Repository interface {
	GetByKey(ctx context.Context, key string) (*domain.Store, error)
	Upsert(ctx context.Context, store domain.Store) (*domain.Store, error)
}
