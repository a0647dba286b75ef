package sale

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"duka-pos/internal/db"
	"duka-pos/internal/domain"
	"duka-pos/internal/logging"
)

type postgresRepo struct {
	pool   db.DBTX
	logger *zap.Logger
	newID  func() string
}

func NewPostgres(pool db.DBTX, logger *zap.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrNop(logger), newID: uuid.NewString}
}

func (r *postgresRepo) RecordSale(ctx context.Context, in domain.SaleInput) (string, error) {
	if len(in.Lines) == 0 {
		return "", fmt.Errorf("sale has no lines: %w", domain.ErrValidationRejected)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	const decrement = `
UPDATE products
SET stock = stock - $1, updated_at = now()
WHERE store_id = $2 AND id = $3 AND stock >= $1
`
	for _, l := range in.Lines {
		tag, err := tx.Exec(ctx, decrement, l.Quantity, in.StoreID, l.ProductID)
		if err != nil {
			return "", fmt.Errorf("decrement stock code=%s: %w", l.Code, err)
		}
		if tag.RowsAffected() == 0 {
			r.logger.Info("sale repo: stock shortfall",
				zap.String("store_id", in.StoreID),
				zap.String("code", l.Code),
				zap.Int("quantity", l.Quantity),
			)
			return "", fmt.Errorf("code %s: %w", l.Code, domain.ErrInsufficientStock)
		}
	}

	saleID := r.newID()
	const insertSale = `
INSERT INTO sales (id, store_id, session_id, method, total_cents, item_count, tendered_cents, change_cents, phone, customer_name)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), NULLIF($10, ''))
`
	_, err = tx.Exec(ctx, insertSale,
		saleID,
		in.StoreID,
		in.SessionID,
		string(in.Method),
		in.TotalCents,
		in.ItemCount,
		in.TenderedCents,
		in.ChangeCents,
		in.Phone,
		in.CustomerName,
	)
	if err != nil {
		return "", fmt.Errorf("insert sale: %w", err)
	}

	const insertLine = `
INSERT INTO sale_lines (sale_id, position, product_id, code, name, quantity, unit_price_cents, total_cents)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`
	for i, l := range in.Lines {
		_, err := tx.Exec(ctx, insertLine, saleID, i+1, l.ProductID, l.Code, l.Name, l.Quantity, l.UnitPriceCents, l.TotalCents)
		if err != nil {
			return "", fmt.Errorf("insert sale line %d: %w", i+1, err)
		}
	}

	if in.Method == domain.PaymentCredit {
		const insertDebtor = `
INSERT INTO debtors (id, store_id, sale_id, customer_name, phone, amount_cents)
VALUES ($1, $2, $3, $4, $5, $6)
`
		_, err := tx.Exec(ctx, insertDebtor, r.newID(), in.StoreID, saleID, in.CustomerName, in.Phone, in.TotalCents)
		if err != nil {
			return "", fmt.Errorf("insert debtor: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit sale: %w", err)
	}

	r.logger.Info("sale repo: recorded",
		zap.String("store_id", in.StoreID),
		zap.String("session_id", in.SessionID),
		zap.String("sale_id", saleID),
		zap.String("method", string(in.Method)),
		zap.Int64("total_cents", in.TotalCents),
		zap.Int("lines", len(in.Lines)),
	)
	return saleID, nil
}
