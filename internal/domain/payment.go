package domain

import (
	"fmt"
	"strings"
)

// PaymentMethod is the closed set of ways a sale can be settled.
type PaymentMethod string

const (
	PaymentCash        PaymentMethod = "cash"
	PaymentCard        PaymentMethod = "card"
	PaymentMobileMoney PaymentMethod = "mobile_money"
	PaymentCredit      PaymentMethod = "credit"
)

// ParsePaymentMethod accepts the canonical names plus a few spellings cashiers use.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cash":
		return PaymentCash, nil
	case "card":
		return PaymentCard, nil
	case "mobile_money", "mobile-money", "mobilemoney", "mpesa", "m-pesa":
		return PaymentMobileMoney, nil
	case "credit", "madeni":
		return PaymentCredit, nil
	default:
		return "", fmt.Errorf("payment method %q: %w", s, ErrValidationRejected)
	}
}
