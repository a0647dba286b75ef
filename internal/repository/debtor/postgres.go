package debtor

import (
	"context"

	"go.uber.org/zap"

	"duka-pos/internal/db"
	"duka-pos/internal/domain"
	"duka-pos/internal/logging"
)

type postgresRepo struct {
	pool   db.DBTX
	logger *zap.Logger
}

func NewPostgres(pool db.DBTX, logger *zap.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrNop(logger)}
}

// ListOutstanding returns credit sales not yet fully paid, newest first.
func (r *postgresRepo) ListOutstanding(ctx context.Context, storeID string) ([]domain.Debtor, error) {
	const q = `
SELECT id::text, store_id::text, sale_id::text, customer_name, phone, amount_cents, paid_cents, created_at
FROM debtors
WHERE store_id = $1 AND paid_cents < amount_cents
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q, storeID)
	if err != nil {
		r.logger.Error("debtor repo: list", zap.String("store_id", storeID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	result := []domain.Debtor{}
	for rows.Next() {
		var d domain.Debtor
		if err := rows.Scan(&d.ID, &d.StoreID, &d.SaleID, &d.CustomerName, &d.Phone, &d.AmountCents, &d.PaidCents, &d.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("debtor repo: list rows", zap.String("store_id", storeID), zap.Error(err))
		return nil, err
	}
	r.logger.Debug("debtor repo: list", zap.String("store_id", storeID), zap.Int("count", len(result)))
	return result, nil
}
