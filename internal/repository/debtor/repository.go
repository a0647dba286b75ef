package debtor

import (
	"context"

	"duka-pos/internal/domain"
)

type Repository interface {
	ListOutstanding(ctx context.Context, storeID string) ([]domain.Debtor, error)
}
