// Package importer loads a store's inventory from a CSV file.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"duka-pos/internal/domain"
	"duka-pos/internal/logging"
	"duka-pos/internal/money"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// CSVImporter reads inventory rows (code,sku,name,price,stock) and upserts
// them by code. An optional id column pins a product's id on first insert.
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
	storeID     string
	logger      *zap.Logger
}

func NewCSVImporter(r io.Reader, repo ProductWriter, storeID string, logger *zap.Logger) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{
		reader:      csvr,
		productRepo: repo,
		storeID:     storeID,
		logger:      logging.OrNop(logger),
	}
}

type csvRow struct {
	Line  int
	ID    string
	Code  string
	SKU   string
	Name  string
	Cents int64
	Stock int
}

// Run parses every row and upserts it. It stops at the first bad row; rows
// before it stay imported.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, col := range []string{"code", "name", "price", "stock"} {
		if _, ok := index[col]; !ok {
			return 0, fmt.Errorf("missing column %q", col)
		}
	}

	var imported int
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		line, _ := i.reader.FieldPos(0)

		row, err := parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("row %d: %w", line, err)
		}
		if row == nil {
			continue
		}
		row.Line = line

		if err := i.save(ctx, row); err != nil {
			return imported, err
		}
		imported++
	}

	i.logger.Info("inventory imported", zap.String("store_id", i.storeID), zap.Int("products", imported))
	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) error {
	if row.Name == "" {
		return fmt.Errorf("row %d: name required for code %q", row.Line, row.Code)
	}
	if row.ID != "" && len(row.ID) != 36 {
		return fmt.Errorf("row %d: invalid id for code %q: %s", row.Line, row.Code, row.ID)
	}

	p := domain.Product{
		ID:         row.ID,
		StoreID:    i.storeID,
		Code:       row.Code,
		SKU:        row.SKU,
		Name:       row.Name,
		PriceCents: row.Cents,
		Stock:      row.Stock,
	}

	if _, err := i.productRepo.Upsert(ctx, p); err != nil {
		return fmt.Errorf("upsert product %q: %w", row.Code, err)
	}
	i.logger.Debug("inventory row", zap.Int("line", row.Line), zap.String("code", row.Code), zap.Int("stock", row.Stock))
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

// parseRow returns nil for a blank row.
func parseRow(record []string, index map[string]int) (*csvRow, error) {
	code := pick(record, index, "code")
	if code == "" {
		return nil, nil
	}

	cents, err := money.Parse(pick(record, index, "price"))
	if err != nil {
		return nil, fmt.Errorf("price for code %q: %w", code, err)
	}
	stock, err := strconv.Atoi(pick(record, index, "stock"))
	if err != nil || stock < 0 {
		return nil, fmt.Errorf("stock for code %q must be a whole number >= 0: %w", code, domain.ErrValidationRejected)
	}

	return &csvRow{
		ID:    pick(record, index, "id"),
		Code:  code,
		SKU:   pick(record, index, "sku"),
		Name:  pick(record, index, "name"),
		Cents: cents,
		Stock: stock,
	}, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
