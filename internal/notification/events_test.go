package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"remind-candles/internal/notification/domain"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func newTestBus(t *testing.T) *PubSubBus {
	t.Helper()
	srv := pstest.NewServer()
	t.Cleanup(func() { _ = srv.Close() })

	conn, err := grpc.NewClient(srv.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)

	client, err := pubsub.NewClient(context.Background(), "test-project", option.WithGRPCConn(conn))
	require.NoError(t, err)

	bus := NewPubSubBusWithClient(client, "birthday-events", zap.NewNop())
	t.Cleanup(func() { _ = bus.Close() })
	return bus
}

func TestInlinePublisher(t *testing.T) {
	var got []domain.BirthdayEvent
	pub := NewInlinePublisher(func(ctx context.Context, e domain.BirthdayEvent) error {
		got = append(got, e)
		if e.Kind == domain.EventWish {
			return errors.New("wish failed")
		}
		return nil
	})

	require.NoError(t, pub.Publish(context.Background(), domain.BirthdayEvent{Kind: domain.EventReminder}))
	assert.Error(t, pub.Publish(context.Background(), domain.BirthdayEvent{Kind: domain.EventWish}))
	assert.Len(t, got, 2)
}

func TestPubSubBusRoundTrip(t *testing.T) {
	bus := newTestBus(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Creating the subscription first also creates the topic
	_, err := bus.ensureSubscription(ctx)
	require.NoError(t, err)

	age := 30
	sent := domain.BirthdayEvent{
		Kind:       domain.EventReminder,
		UserID:     "u1",
		BirthdayID: "b1",
		Name:       "Ann",
		DaysUntil:  1,
		Age:        &age,
		Date:       "2025-03-15",
	}
	require.NoError(t, bus.Publish(ctx, sent))

	received := make(chan domain.BirthdayEvent, 1)
	recvCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() {
		done <- bus.Receive(recvCtx, func(ctx context.Context, e domain.BirthdayEvent) error {
			select {
			case received <- e:
			default:
			}
			return nil
		})
	}()

	select {
	case got := <-received:
		assert.Equal(t, sent.BirthdayID, got.BirthdayID)
		assert.Equal(t, domain.EventReminder, got.Kind)
		require.NotNil(t, got.Age)
		assert.Equal(t, 30, *got.Age)
	case <-ctx.Done():
		t.Fatal("event not received")
	}

	stop()
	assert.NoError(t, <-done)
}

func TestSubscriptionDeadLetters(t *testing.T) {
	bus := newTestBus(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sub, err := bus.ensureSubscription(ctx)
	require.NoError(t, err)

	cfg, err := sub.Config(ctx)
	require.NoError(t, err)
	require.NotNil(t, cfg.DeadLetterPolicy)
	assert.Equal(t, maxDeliveryAttempts, cfg.DeadLetterPolicy.MaxDeliveryAttempts)
	assert.Equal(t, "projects/test-project/topics/birthday-events-dead", cfg.DeadLetterPolicy.DeadLetterTopic)

	exists, err := bus.client.Topic("birthday-events-dead").Exists(ctx)
	require.NoError(t, err)
	assert.True(t, exists)

	// A second call reuses what exists
	_, err = bus.ensureSubscription(ctx)
	require.NoError(t, err)
}
