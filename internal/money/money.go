// Package money converts between integer cents and the decimal strings used
// at the edges (CSV files, receipts, log lines).
package money

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"duka-pos/internal/domain"
)

var maxCents = decimal.NewFromInt(math.MaxInt64)

// Format renders cents as a fixed two-place decimal, e.g. 1250 -> "12.50".
func Format(cents int64) string {
	return decimal.NewFromInt(cents).Shift(-2).StringFixed(2)
}

// Parse reads a decimal amount such as "12.5" or "1,250.00" into cents.
// Sub-cent precision and negative amounts are rejected.
func Parse(s string) (int64, error) {
	raw := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if raw == "" {
		return 0, fmt.Errorf("amount is empty: %w", domain.ErrValidationRejected)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("amount %q: %w", s, domain.ErrValidationRejected)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("amount %q is negative: %w", s, domain.ErrValidationRejected)
	}
	cents := d.Shift(2)
	if !cents.IsInteger() {
		return 0, fmt.Errorf("amount %q has more than two decimal places: %w", s, domain.ErrValidationRejected)
	}
	if cents.GreaterThan(maxCents) {
		return 0, fmt.Errorf("amount %q is too large: %w", s, domain.ErrValidationRejected)
	}
	return cents.IntPart(), nil
}
