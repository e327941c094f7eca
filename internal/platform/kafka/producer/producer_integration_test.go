//go:build integration

package producer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"proofwall/internal/platform/config"
	"proofwall/internal/platform/kafka/producer"
	"proofwall/pkg/testutil/containers"
)

type ProducerIntegrationSuite struct {
	suite.Suite
	kafka    *containers.KafkaContainer
	producer *producer.Producer
}

func TestProducerIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(ProducerIntegrationSuite))
}

func (s *ProducerIntegrationSuite) SetupSuite() {
	s.kafka = containers.GetManager().GetKafka(s.T())

	prod, err := producer.New(config.KafkaConfig{Brokers: s.kafka.Brokers, Acks: "all"}, nil)
	s.Require().NoError(err)
	s.Require().NotNil(prod)
	s.producer = prod
}

func (s *ProducerIntegrationSuite) TearDownSuite() {
	if s.producer != nil {
		_ = s.producer.Close(5 * time.Second)
	}
}

func (s *ProducerIntegrationSuite) consume(ctx context.Context, group, topic, key string) *kgo.Record {
	consumer, err := s.kafka.NewConsumer(ctx, group, topic)
	s.Require().NoError(err)
	defer consumer.Close()

	return s.kafka.WaitForMessage(ctx, consumer, 10*time.Second, func(r *kgo.Record) bool {
		return string(r.Key) == key
	})
}

// Produce only returns once the broker has acknowledged the record.
func (s *ProducerIntegrationSuite) TestProduceDeliversMessage() {
	ctx := context.Background()
	topic := "test-produce-sync"
	s.Require().NoError(s.kafka.CreateTopic(ctx, topic, 1, 1))

	err := s.producer.Produce(ctx, &producer.Message{
		Topic:   topic,
		Key:     []byte("content-1"),
		Value:   []byte(`{"tier":"public"}`),
		Headers: map[string]string{"event_type": "access_grant.appended"},
	})
	s.Require().NoError(err)

	record := s.consume(ctx, "test-sync-group", topic, "content-1")
	s.Require().NotNil(record, "message should be consumable")
	s.JSONEq(`{"tier":"public"}`, string(record.Value))
	s.Require().Len(record.Headers, 1)
	s.Equal("event_type", record.Headers[0].Key)
	s.Equal("access_grant.appended", string(record.Headers[0].Value))
}

func (s *ProducerIntegrationSuite) TestProduceAsyncReportsDelivery() {
	ctx := context.Background()
	topic := "test-produce-async"

	done := make(chan error, 1)
	err := s.producer.ProduceAsync(&producer.Message{
		Topic: topic,
		Key:   []byte("content-2"),
		Value: []byte("v"),
	}, func(err error) { done <- err })
	s.Require().NoError(err)

	select {
	case err := <-done:
		s.NoError(err)
	case <-time.After(15 * time.Second):
		s.Fail("delivery callback was not invoked")
	}

	s.NotNil(s.consume(ctx, "test-async-group", topic, "content-2"))
}

func (s *ProducerIntegrationSuite) TestHealth() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.NoError(s.producer.Health(ctx))
}

func (s *ProducerIntegrationSuite) TestClosedProducerRejectsMessages() {
	prod, err := producer.New(config.KafkaConfig{Brokers: s.kafka.Brokers}, nil)
	s.Require().NoError(err)
	s.Require().NoError(prod.Close(time.Second))

	err = prod.Produce(context.Background(), &producer.Message{Topic: "test-closed", Value: []byte("v")})
	s.ErrorIs(err, producer.ErrClosed)
	s.ErrorIs(prod.ProduceAsync(&producer.Message{Topic: "test-closed"}, nil), producer.ErrClosed)
	s.NoError(prod.Close(time.Second), "closing twice is a no-op")
}
