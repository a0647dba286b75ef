package checkout

import (
	"fmt"
	"strings"

	"duka-pos/internal/domain"
)

var (
	// ErrNoMethod is returned when readiness is asked before a method was chosen.
	ErrNoMethod = fmt.Errorf("payment method not selected: %w", domain.ErrValidationRejected)
	// ErrInsufficientTender is returned when cash tendered is below the total.
	ErrInsufficientTender = fmt.Errorf("tendered amount is below total: %w", domain.ErrValidationRejected)
	// ErrPhoneRequired is returned when a phone number is too short to be traceable.
	ErrPhoneRequired = fmt.Errorf("phone number required: %w", domain.ErrValidationRejected)
	// ErrCustomerRequired is returned when a credit sale has no customer name.
	ErrCustomerRequired = fmt.Errorf("customer name required: %w", domain.ErrValidationRejected)
)

// DefaultMinPhoneDigits fits local mobile numbers such as 0712345678.
const DefaultMinPhoneDigits = 10

// Draft is the payment input as the operator has typed it so far.
type Draft struct {
	Method        domain.PaymentMethod `json:"method,omitempty"`
	TenderedCents int64                `json:"tenderedCents,omitempty"`
	Phone         string               `json:"phone,omitempty"`
	CustomerName  string               `json:"customerName,omitempty"`
}

// Tender is a payment that passed its readiness predicate. The variants are
// Cash, Card, MobileMoney and Credit; only Rules.Tender builds them.
type Tender interface {
	Method() domain.PaymentMethod
	apply(in *domain.SaleInput)
}

// Cash is a settled cash payment.
type Cash struct {
	TenderedCents int64
	ChangeCents   int64
}

// Card is delegated to the card terminal at submit time.
type Card struct{}

// MobileMoney carries the payer's phone number.
type MobileMoney struct {
	Phone string
}

// Credit is a sale on account; the debtor must be traceable.
type Credit struct {
	CustomerName string
	Phone        string
}

// Method reports the payment method a tender settles with.
func (Cash) Method() domain.PaymentMethod        { return domain.PaymentCash }
func (Card) Method() domain.PaymentMethod        { return domain.PaymentCard }
func (MobileMoney) Method() domain.PaymentMethod { return domain.PaymentMobileMoney }
func (Credit) Method() domain.PaymentMethod      { return domain.PaymentCredit }

func (t Cash) apply(in *domain.SaleInput) {
	in.TenderedCents = t.TenderedCents
	in.ChangeCents = t.ChangeCents
}

func (Card) apply(*domain.SaleInput) {}

func (t MobileMoney) apply(in *domain.SaleInput) {
	in.Phone = t.Phone
}

func (t Credit) apply(in *domain.SaleInput) {
	in.CustomerName = t.CustomerName
	in.Phone = t.Phone
}

// Rules holds the tunable parts of the readiness predicates.
type Rules struct {
	MinPhoneDigits int
}

// DefaultRules returns the rules used when nothing is configured.
func DefaultRules() Rules {
	return Rules{MinPhoneDigits: DefaultMinPhoneDigits}
}

// Tender turns a draft into a Tender if the method's readiness predicate holds
// against totalCents.
func (r Rules) Tender(d Draft, totalCents int64) (Tender, error) {
	switch d.Method {
	case domain.PaymentCash:
		if d.TenderedCents < totalCents {
			return nil, fmt.Errorf("short by %d cents: %w", totalCents-d.TenderedCents, ErrInsufficientTender)
		}
		return Cash{TenderedCents: d.TenderedCents, ChangeCents: d.TenderedCents - totalCents}, nil
	case domain.PaymentCard:
		return Card{}, nil
	case domain.PaymentMobileMoney:
		phone, err := r.phone(d.Phone)
		if err != nil {
			return nil, err
		}
		return MobileMoney{Phone: phone}, nil
	case domain.PaymentCredit:
		name := strings.TrimSpace(d.CustomerName)
		if name == "" {
			return nil, ErrCustomerRequired
		}
		phone, err := r.phone(d.Phone)
		if err != nil {
			return nil, err
		}
		return Credit{CustomerName: name, Phone: phone}, nil
	case "":
		return nil, ErrNoMethod
	default:
		return nil, fmt.Errorf("payment method %q: %w", d.Method, domain.ErrValidationRejected)
	}
}

func (r Rules) phone(raw string) (string, error) {
	want := r.MinPhoneDigits
	if want <= 0 {
		want = DefaultMinPhoneDigits
	}
	phone := strings.TrimSpace(raw)
	if DigitCount(phone) < want {
		return "", fmt.Errorf("need at least %d digits: %w", want, ErrPhoneRequired)
	}
	return phone, nil
}

// DigitCount counts the decimal digits in s, ignoring separators and a leading +.
func DigitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
