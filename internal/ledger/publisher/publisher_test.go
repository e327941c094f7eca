package publisher_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"proofwall/internal/ledger/models"
	"proofwall/internal/ledger/publisher"
	"proofwall/internal/ledger/publisher/mocks"
	"proofwall/internal/platform/kafka/producer"
	"proofwall/pkg/domain"
	"proofwall/pkg/platform/circuit"
)

func newGrant(t *testing.T) models.Grant {
	t.Helper()
	g, err := models.NewGrant(models.GrantParams{ContentID: domain.NewContentID(), Payer: "0xPayer", Tier: "journalist", Price: "$1.00"}, time.Now())
	require.NoError(t, err)
	return *g
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublishMessageShape(t *testing.T) {
	ctrl := gomock.NewController(t)
	prod := mocks.NewMockProducer(ctrl)
	grant := newGrant(t)

	prod.EXPECT().ProduceAsync(gomock.Any(), gomock.Any()).DoAndReturn(func(msg *producer.Message, onDone func(error)) error {
		assert.Equal(t, "grants", msg.Topic)
		assert.Equal(t, grant.ContentID.String(), string(msg.Key))
		assert.Equal(t, publisher.EventGrantAppended, msg.Headers["event_type"])
		assert.Equal(t, grant.ID.String(), msg.Headers["grant_id"])

		var decoded models.Grant
		require.NoError(t, json.Unmarshal(msg.Value, &decoded))
		assert.Equal(t, grant.ID, decoded.ID)
		assert.Equal(t, "$1.00", decoded.Price)
		onDone(nil)
		return nil
	})

	publisher.NewKafka(prod, "grants", publisher.WithLogger(quietLogger())).Publish(context.Background(), grant)
}

func TestBreakerSkipsAfterRepeatedFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	prod := mocks.NewMockProducer(ctrl)
	now := time.Unix(0, 0)
	breaker := circuit.New("test",
		circuit.WithFailureThreshold(2),
		circuit.WithCooldown(time.Minute),
		circuit.WithClock(func() time.Time { return now }),
	)
	p := publisher.NewKafka(prod, "grants", publisher.WithBreaker(breaker), publisher.WithLogger(quietLogger()))

	prod.EXPECT().ProduceAsync(gomock.Any(), gomock.Any()).DoAndReturn(func(_ *producer.Message, onDone func(error)) error {
		onDone(errors.New("broker down"))
		return nil
	}).Times(2)

	p.Publish(context.Background(), newGrant(t))
	p.Publish(context.Background(), newGrant(t))
	require.True(t, breaker.IsOpen())

	// open breaker: producer is not called
	p.Publish(context.Background(), newGrant(t))

	// after cooldown a probe goes through and closes the breaker
	now = now.Add(2 * time.Minute)
	prod.EXPECT().ProduceAsync(gomock.Any(), gomock.Any()).DoAndReturn(func(_ *producer.Message, onDone func(error)) error {
		onDone(nil)
		return nil
	})
	p.Publish(context.Background(), newGrant(t))
	assert.False(t, breaker.IsOpen())
}

func TestClosedProducerCountsAsFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	prod := mocks.NewMockProducer(ctrl)
	breaker := circuit.New("test", circuit.WithFailureThreshold(1))
	p := publisher.NewKafka(prod, "grants", publisher.WithBreaker(breaker), publisher.WithLogger(quietLogger()))

	prod.EXPECT().ProduceAsync(gomock.Any(), gomock.Any()).Return(producer.ErrClosed)

	p.Publish(context.Background(), newGrant(t))

	assert.True(t, breaker.IsOpen())
}
