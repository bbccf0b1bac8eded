package service

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/linkpro/linkpro/internal/app/model"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// ClickSubscriber consumes click events from JetStream and wakes the
// owner's refresh scheduler, so an open dashboard reflects a visit without
// waiting for the next polling tick.
type ClickSubscriber struct {
	js       nats.JetStreamContext
	hub      *RefreshHub
	logger   *zap.Logger
	stopChan chan struct{}
}

func NewClickSubscriber(js nats.JetStreamContext, hub *RefreshHub, logger *zap.Logger) *ClickSubscriber {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClickSubscriber{
		js:       js,
		hub:      hub,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start ensures the stream and durable consumer exist and begins consuming.
func (c *ClickSubscriber) Start() error {
	if _, err := c.js.StreamInfo(model.ClickStreamName); err != nil {
		_, err = c.js.AddStream(&nats.StreamConfig{
			Name:     model.ClickStreamName,
			Subjects: []string{model.ClickStreamSubject},
			MaxBytes: model.ClickStreamMaxBytes,
		})
		if err != nil {
			return fmt.Errorf("failed to create stream: %w", err)
		}
	}

	if _, err := c.js.ConsumerInfo(model.ClickStreamName, model.ClickConsumerName); err != nil {
		_, err = c.js.AddConsumer(model.ClickStreamName, &nats.ConsumerConfig{
			Durable:   model.ClickConsumerName,
			AckPolicy: nats.AckExplicitPolicy,
		})
		if err != nil {
			return fmt.Errorf("failed to create consumer: %w", err)
		}
	}

	sub, err := c.js.PullSubscribe(model.ClickStreamSubject, model.ClickConsumerName)
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	go c.consume(sub)
	return nil
}

// Stop terminates the consume loop after the current fetch returns.
func (c *ClickSubscriber) Stop() {
	close(c.stopChan)
}

func (c *ClickSubscriber) consume(sub *nats.Subscription) {
	for {
		select {
		case <-c.stopChan:
			_ = sub.Unsubscribe()
			return
		default:
		}

		msgs, err := sub.Fetch(10, nats.MaxWait(5*time.Second))
		if err != nil && err != nats.ErrTimeout {
			c.logger.Error("failed to fetch messages", zap.Error(err))
			continue
		}

		for _, msg := range msgs {
			var event model.ClickEvent
			if err := json.Unmarshal(msg.Data, &event); err != nil {
				c.logger.Error("failed to unmarshal click event", zap.Error(err))
				msg.Nak()
				continue
			}

			c.hub.Wake(event.OwnerID)

			c.logger.Debug("click event consumed",
				zap.String("id", event.ID),
				zap.String("link_id", event.LinkID),
				zap.String("owner_id", event.OwnerID),
				zap.Time("timestamp", event.Timestamp),
			)

			msg.Ack()
		}
	}
}
