package product

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"duka-pos/internal/domain"
	"duka-pos/internal/migrate"
)

func TestPostgres_ListGetAndLookup(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool, nil); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)
	storeID := insertStore(ctx, t, pool)

	var pid string
	err := pool.QueryRow(ctx, `
		INSERT INTO products (store_id, code, sku, name, price_cents, stock)
		VALUES ($1, '6001', 'SKU1', 'Sugar 1kg', 100, 5)
		RETURNING id::text
	`, storeID).Scan(&pid)
	if err != nil {
		t.Fatalf("insert product: %v", err)
	}

	repo := NewPostgres(pool, nil)

	list, err := repo.ListByStore(ctx, storeID)
	if err != nil {
		t.Fatalf("ListByStore: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 product, got %d", len(list))
	}

	got, err := repo.GetByID(ctx, storeID, pid)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ID != pid || got.StoreID != storeID {
		t.Fatalf("unexpected product %+v", got)
	}

	byCode, err := repo.LookupByCode(ctx, storeID, "6001")
	if err != nil {
		t.Fatalf("LookupByCode: %v", err)
	}
	if byCode.ID != pid || byCode.Stock != 5 || byCode.PriceCents != 100 {
		t.Fatalf("unexpected product %+v", byCode)
	}

	if _, err := repo.LookupByCode(ctx, storeID, "0000"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPostgres_Upsert(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool, nil); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)
	storeID := insertStore(ctx, t, pool)

	repo := NewPostgres(pool, nil)

	p, err := repo.Upsert(ctx, domain.Product{
		StoreID:    storeID,
		Code:       "6001",
		SKU:        "SKU1",
		Name:       "Sugar 1kg",
		PriceCents: 100,
		Stock:      5,
	})
	if err != nil {
		t.Fatalf("Upsert insert: %v", err)
	}
	if p.ID == "" {
		t.Fatalf("expected ID set")
	}

	updated, err := repo.Upsert(ctx, domain.Product{
		StoreID:    storeID,
		Code:       "6001",
		SKU:        "SKU-NEW",
		Name:       "Sugar 1kg",
		PriceCents: 120,
		Stock:      9,
	})
	if err != nil {
		t.Fatalf("Upsert update: %v", err)
	}
	if updated.ID != p.ID {
		t.Fatalf("expected same ID after update")
	}
	if updated.SKU != "SKU-NEW" || updated.PriceCents != 120 || updated.Stock != 9 {
		t.Fatalf("unexpected updated product %+v", updated)
	}
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

func insertStore(ctx context.Context, t *testing.T, pool *pgxpool.Pool) string {
	t.Helper()
	var id string
	err := pool.QueryRow(ctx, `INSERT INTO stores (key, name) VALUES (gen_random_uuid()::text, 'Duka') RETURNING id::text`).Scan(&id)
	if err != nil {
		t.Fatalf("insert store: %v", err)
	}
	return id
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE debtors, sale_lines, sales, products, stores RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
