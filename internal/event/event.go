// Package event publishes sale events to Kafka once a sale has committed.
package event

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"duka-pos/internal/domain"
	"duka-pos/internal/money"
)

const (
	TypeSaleRecorded = "sale.recorded"
	source           = "duka-pos"
)

// Event is the envelope every message carries.
type Event struct {
	EventID     string          `json:"event_id"`
	EventType   string          `json:"event_type"`
	AggregateID string          `json:"aggregate_id"`
	Version     int             `json:"version"`
	Timestamp   time.Time       `json:"timestamp"`
	Source      string          `json:"source"`
	Data        json.RawMessage `json:"data"`
}

// SaleRecorded is the payload of a sale.recorded event.
type SaleRecorded struct {
	SaleID       string               `json:"sale_id"`
	StoreID      string               `json:"store_id"`
	SessionID    string               `json:"session_id"`
	Method       domain.PaymentMethod `json:"method"`
	TotalCents   int64                `json:"total_cents"`
	Total        string               `json:"total"`
	ItemCount    int                  `json:"item_count"`
	CustomerName string               `json:"customer_name,omitempty"`
	Lines        []domain.SaleLine    `json:"lines"`
}

// NewSaleRecorded builds the envelope for a committed sale.
func NewSaleRecorded(saleID string, in domain.SaleInput, now time.Time) (Event, error) {
	data, err := json.Marshal(SaleRecorded{
		SaleID:       saleID,
		StoreID:      in.StoreID,
		SessionID:    in.SessionID,
		Method:       in.Method,
		TotalCents:   in.TotalCents,
		Total:        money.Format(in.TotalCents),
		ItemCount:    in.ItemCount,
		CustomerName: in.CustomerName,
		Lines:        in.Lines,
	})
	if err != nil {
		return Event{}, err
	}
	return Event{
		EventID:     uuid.NewString(),
		EventType:   TypeSaleRecorded,
		AggregateID: saleID,
		Version:     1,
		Timestamp:   now.UTC(),
		Source:      source,
		Data:        data,
	}, nil
}
