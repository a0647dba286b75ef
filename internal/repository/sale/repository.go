package sale

import (
	"context"

	"duka-pos/internal/domain"
)

type Repository interface {
	// RecordSale commits the sale, its lines, the stock decrement and, for
	// credit sales, the debtor entry in one transaction.
	RecordSale(ctx context.Context, in domain.SaleInput) (string, error)
}
