package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"remind-candles/internal/notification/domain"

	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// EventHandler acts on one due birthday
type EventHandler func(ctx context.Context, event domain.BirthdayEvent) error

// EventPublisher hands due birthdays to whoever delivers them
type EventPublisher interface {
	Publish(ctx context.Context, event domain.BirthdayEvent) error
}

type inlinePublisher struct {
	handle EventHandler
}

// NewInlinePublisher handles events synchronously in the calling goroutine
func NewInlinePublisher(handle EventHandler) EventPublisher {
	return &inlinePublisher{handle: handle}
}

func (p *inlinePublisher) Publish(ctx context.Context, event domain.BirthdayEvent) error {
	return p.handle(ctx, event)
}

// PubSubBus fans birthday events out through a Pub/Sub topic so any replica can deliver them
type PubSubBus struct {
	client    *pubsub.Client
	topic     *pubsub.Topic
	topicName string
	subName   string
	deadName  string
	log       *zap.Logger
}

// maxDeliveryAttempts bounds redelivery before an event moves to the dead-letter topic
const maxDeliveryAttempts = 5

// NewPubSubBus connects to Pub/Sub. The subscription is named "{topic}-sub" and
// dead-letters to "{topic}-dead".
func NewPubSubBus(ctx context.Context, projectID, topicName, credentialsFile string, log *zap.Logger) (*PubSubBus, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}
	return NewPubSubBusWithClient(client, topicName, log), nil
}

// NewPubSubBusWithClient wraps an existing client
func NewPubSubBusWithClient(client *pubsub.Client, topicName string, log *zap.Logger) *PubSubBus {
	return &PubSubBus{
		client:    client,
		topic:     client.Topic(topicName),
		topicName: topicName,
		subName:   topicName + "-sub", // Convention: topic-sub
		deadName:  topicName + "-dead",
		log:       log.Named("pubsub"),
	}
}

func (b *PubSubBus) Publish(ctx context.Context, event domain.BirthdayEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	result := b.topic.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"kind":    string(event.Kind),
			"user_id": event.UserID,
		},
	})
	id, err := result.Get(ctx)
	if err != nil {
		return fmt.Errorf("publish %s event: %w", event.Kind, err)
	}
	b.log.Debug("event published", zap.String("message_id", id), zap.String("kind", string(event.Kind)))
	return nil
}

// ensureSubscription creates the topic and subscription when they are missing
func (b *PubSubBus) ensureSubscription(ctx context.Context) (*pubsub.Subscription, error) {
	sub := b.client.Subscription(b.subName)
	exists, err := sub.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("check subscription: %w", err)
	}
	if exists {
		return sub, nil
	}

	if _, err := b.ensureTopic(ctx, b.topicName); err != nil {
		return nil, err
	}

	dead, err := b.ensureTopic(ctx, b.deadName)
	if err != nil {
		return nil, err
	}

	sub, err = b.client.CreateSubscription(ctx, b.subName, pubsub.SubscriptionConfig{
		Topic:       b.topic,
		AckDeadline: 60 * time.Second,
		RetryPolicy: &pubsub.RetryPolicy{
			MinimumBackoff: 30 * time.Second,
			MaximumBackoff: 10 * time.Minute,
		},
		DeadLetterPolicy: &pubsub.DeadLetterPolicy{
			DeadLetterTopic:     dead.String(),
			MaxDeliveryAttempts: maxDeliveryAttempts,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create subscription: %w", err)
	}
	b.log.Info("created subscription", zap.String("subscription", b.subName))
	return sub, nil
}

func (b *PubSubBus) ensureTopic(ctx context.Context, name string) (*pubsub.Topic, error) {
	topic := b.client.Topic(name)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("check topic %s: %w", name, err)
	}
	if exists {
		return topic, nil
	}
	if _, err := b.client.CreateTopic(ctx, name); err != nil {
		return nil, fmt.Errorf("create topic %s: %w", name, err)
	}
	b.log.Info("created topic", zap.String("topic", name))
	return topic, nil
}

// Receive delivers events to handle until ctx is done. Failed events are
// nacked for redelivery until they are dead-lettered; malformed ones are dropped.
func (b *PubSubBus) Receive(ctx context.Context, handle EventHandler) error {
	sub, err := b.ensureSubscription(ctx)
	if err != nil {
		return err
	}

	b.log.Info("listening for birthday events", zap.String("subscription", b.subName))
	return sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		var event domain.BirthdayEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			b.log.Warn("dropping malformed event", zap.String("message_id", msg.ID), zap.Error(err))
			msg.Ack()
			return
		}

		if err := handle(ctx, event); err != nil {
			b.log.Warn("event handling failed",
				zap.String("kind", string(event.Kind)),
				zap.String("birthday_id", event.BirthdayID),
				zap.Error(err))
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

func (b *PubSubBus) Close() error {
	b.topic.Stop()
	return b.client.Close()
}
