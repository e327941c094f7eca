// Package publisher fans appended grants out to Kafka for downstream consumers.
package publisher

import (
	"context"
	"encoding/json"
	"log/slog"

	"proofwall/internal/ledger/metrics"
	"proofwall/internal/ledger/models"
	"proofwall/internal/platform/kafka/producer"
	"proofwall/pkg/platform/circuit"
)

//go:generate mockgen -source=publisher.go -destination=mocks/mocks.go -package=mocks Producer

// Producer is the subset of producer.Producer used for fan-out.
type Producer interface {
	ProduceAsync(msg *producer.Message, onDone func(error)) error
}

// EventGrantAppended is the event_type header on every published grant.
const EventGrantAppended = "access_grant.appended"

// KafkaPublisher publishes grants asynchronously. Delivery is best effort: failures
// are logged and counted, and after repeated failures the breaker opens and grants
// are skipped until a probe succeeds.
type KafkaPublisher struct {
	producer Producer
	topic    string
	breaker  *circuit.Breaker
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*KafkaPublisher)

func WithBreaker(b *circuit.Breaker) Option {
	return func(p *KafkaPublisher) {
		if b != nil {
			p.breaker = b
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *KafkaPublisher) {
		p.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *KafkaPublisher) {
		p.metrics = m
	}
}

func NewKafka(producer Producer, topic string, opts ...Option) *KafkaPublisher {
	p := &KafkaPublisher{
		producer: producer,
		topic:    topic,
		breaker:  circuit.New("ledger-publisher"),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish queues grant for delivery keyed by content id, so a consumer sees one
// content's grants in ledger order.
func (p *KafkaPublisher) Publish(ctx context.Context, grant models.Grant) {
	if !p.breaker.Allow() {
		p.metrics.IncPublished("skipped")
		return
	}

	value, err := json.Marshal(grant)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to encode grant for publishing", "grant_id", grant.ID.String(), "error", err)
		p.metrics.IncPublished("failed")
		return
	}

	msg := &producer.Message{
		Topic: p.topic,
		Key:   []byte(grant.ContentID.String()),
		Value: value,
		Headers: map[string]string{
			"event_type": EventGrantAppended,
			"grant_id":   grant.ID.String(),
		},
	}
	if err := p.producer.ProduceAsync(msg, p.onDelivered(grant)); err != nil {
		p.onDelivered(grant)(err)
	}
}

func (p *KafkaPublisher) onDelivered(grant models.Grant) func(error) {
	return func(err error) {
		if err == nil {
			p.metrics.IncPublished("ok")
			if p.breaker.RecordSuccess().Closed {
				p.metrics.SetBreakerOpen(false)
				p.logger.Info("grant publisher recovered", "breaker", p.breaker.Name())
			}
			return
		}

		p.metrics.IncPublished("failed")
		p.logger.Warn("grant publish failed",
			"grant_id", grant.ID.String(),
			"content_id", grant.ContentID.String(),
			"error", err,
		)
		if p.breaker.RecordFailure().Opened {
			p.metrics.SetBreakerOpen(true)
			p.logger.Error("grant publisher circuit opened", "breaker", p.breaker.Name())
		}
	}
}
