package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"duka-pos/internal/domain"
	"duka-pos/internal/logging"
	"duka-pos/internal/metrics"
)

const publishTimeout = 5 * time.Second

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer writes events to a single topic.
type Producer struct {
	writer messageWriter
	topic  string
	logger *zap.Logger
	now    func() time.Time
}

func NewProducer(brokers []string, topic string, logger *zap.Logger) *Producer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireAll,
	}
	return &Producer{writer: w, topic: topic, logger: logging.OrNop(logger), now: time.Now}
}

// PublishSale emits sale.recorded keyed by store so a store's sales stay ordered.
func (p *Producer) PublishSale(ctx context.Context, saleID string, in domain.SaleInput) error {
	ev, err := NewSaleRecorded(saleID, in, p.now())
	if err != nil {
		return fmt.Errorf("build event: %w", err)
	}
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(in.StoreID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(ev.EventType)},
			{Key: "source", Value: []byte(ev.Source)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish event to %s: %w", p.topic, err)
	}
	p.logger.Debug("event published",
		zap.String("topic", p.topic),
		zap.String("event_type", ev.EventType),
		zap.String("sale_id", saleID),
	)
	return nil
}

// Close flushes pending messages.
func (p *Producer) Close() error {
	return p.writer.Close()
}

// SalePublisher is what the recorder decorator needs from a producer.
type SalePublisher interface {
	PublishSale(ctx context.Context, saleID string, in domain.SaleInput) error
}

// Recorder records a sale durably.
type Recorder interface {
	RecordSale(ctx context.Context, in domain.SaleInput) (string, error)
}

type publishingRecorder struct {
	next    Recorder
	pub     SalePublisher
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// WithSaleEvents publishes sale.recorded after next commits. A failed publish
// is logged and counted; the sale itself stands.
func WithSaleEvents(next Recorder, pub SalePublisher, logger *zap.Logger, m *metrics.Metrics) Recorder {
	return &publishingRecorder{next: next, pub: pub, logger: logging.OrNop(logger), metrics: m}
}

func (r *publishingRecorder) RecordSale(ctx context.Context, in domain.SaleInput) (string, error) {
	saleID, err := r.next.RecordSale(ctx, in)
	if err != nil {
		return "", err
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := r.pub.PublishSale(pubCtx, saleID, in); err != nil {
		r.metrics.ObserveEvent("failed")
		r.logger.Error("sale event not published", zap.String("sale_id", saleID), zap.Error(err))
		return saleID, nil
	}
	r.metrics.ObserveEvent("published")
	return saleID, nil
}
