package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"duka-pos/internal/domain"
)

type stubProductRepo struct {
	items []domain.Product
	err   error
}

func (s *stubProductRepo) Upsert(_ context.Context, p domain.Product) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.items = append(s.items, p)
	return &p, nil
}

func TestCSVImporter_Run(t *testing.T) {
	csvData := `id,code,sku,name,price,stock
00000000-0000-0000-0000-000000000001,6001,SUG-1,Sugar 1kg,"1,250.00",12
,6002,,Milk 500ml,60.5,0

,6003,BRD,Bread,55,3,`

	repo := &stubProductRepo{}
	imp := NewCSVImporter(strings.NewReader(csvData), repo, "store-1", nil)

	count, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 products imported, got %d", count)
	}
	if len(repo.items) != 3 {
		t.Fatalf("expected 3 products saved, got %d", len(repo.items))
	}

	first := repo.items[0]
	if first.Code != "6001" || first.SKU != "SUG-1" || first.PriceCents != 125000 || first.Stock != 12 || first.StoreID != "store-1" {
		t.Fatalf("unexpected product data: %+v", first)
	}
	if first.ID != "00000000-0000-0000-0000-000000000001" {
		t.Fatalf("expected id to be preserved, got %s", first.ID)
	}
	if repo.items[1].PriceCents != 6050 || repo.items[1].Stock != 0 || repo.items[1].ID != "" {
		t.Fatalf("unexpected second product: %+v", repo.items[1])
	}
	if repo.items[2].Code != "6003" {
		t.Fatalf("expected blank line skipped, got %+v", repo.items[2])
	}
}

func TestCSVImporter_MissingColumn(t *testing.T) {
	imp := NewCSVImporter(strings.NewReader("code,name,price\n6001,Sugar,1.00\n"), &stubProductRepo{}, "s", nil)
	if _, err := imp.Run(context.Background()); err == nil || !strings.Contains(err.Error(), `"stock"`) {
		t.Fatalf("expected missing stock column error, got %v", err)
	}
}

func TestCSVImporter_BadRows(t *testing.T) {
	cases := map[string]string{
		"negative stock": "code,name,price,stock\n6001,Sugar,1.00,-1\n",
		"fraction stock": "code,name,price,stock\n6001,Sugar,1.00,1.5\n",
		"bad price":      "code,name,price,stock\n6001,Sugar,abc,1\n",
		"sub-cent price": "code,name,price,stock\n6001,Sugar,1.001,1\n",
		"missing name":   "code,name,price,stock\n6001,,1.00,1\n",
		"short id":       "id,code,name,price,stock\n123,6001,Sugar,1.00,1\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			repo := &stubProductRepo{}
			count, err := NewCSVImporter(strings.NewReader(data), repo, "s", nil).Run(context.Background())
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), "row 2") {
				t.Fatalf("expected row number in error, got %v", err)
			}
			if count != 0 || len(repo.items) != 0 {
				t.Fatalf("expected nothing imported, got %d", count)
			}
		})
	}
}

func TestCSVImporter_StopsAtFirstFailure(t *testing.T) {
	data := "code,name,price,stock\n6001,Sugar,1.00,1\n6002,Milk,oops,1\n6003,Bread,0.55,1\n"
	repo := &stubProductRepo{}
	count, err := NewCSVImporter(strings.NewReader(data), repo, "s", nil).Run(context.Background())
	if !errors.Is(err, domain.ErrValidationRejected) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if count != 1 || len(repo.items) != 1 {
		t.Fatalf("expected one product before the bad row, got %d", count)
	}
}

func TestCSVImporter_RepoError(t *testing.T) {
	repo := &stubProductRepo{err: errors.New("db down")}
	_, err := NewCSVImporter(strings.NewReader("code,name,price,stock\n6001,Sugar,1.00,1\n"), repo, "s", nil).Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "db down") {
		t.Fatalf("expected repo error, got %v", err)
	}
}
