package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/linklite/linklite/internal/app/model"
	"github.com/linklite/linklite/internal/app/repository"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// ClickConsumer pulls click events from NATS JetStream and applies the atomic
// click increment to the links table.
type ClickConsumer struct {
	js     nats.JetStreamContext
	logger *zap.Logger
	repo   repository.LinkRepository
}

// NewClickConsumer creates a new click event consumer.
func NewClickConsumer(js nats.JetStreamContext, logger *zap.Logger, repo repository.LinkRepository) *ClickConsumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClickConsumer{js: js, logger: logger, repo: repo}
}

// Start ensures the stream and durable consumer exist, then begins consuming.
func (c *ClickConsumer) Start() error {
	_, err := c.js.StreamInfo(model.ClickStreamName)
	if err != nil {
		_, err = c.js.AddStream(&nats.StreamConfig{
			Name:     model.ClickStreamName,
			Subjects: []string{model.ClickStreamSubject},
			MaxBytes: model.ClickStreamMaxBytes,
		})
		if err != nil {
			return fmt.Errorf("failed to create stream: %w", err)
		}
	}

	_, err = c.js.ConsumerInfo(model.ClickStreamName, model.ClickConsumerName)
	if err != nil {
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

func (c *ClickConsumer) consume(sub *nats.Subscription) {
	ctx := context.Background()
	for {
		msgs, err := sub.Fetch(10, nats.MaxWait(5*time.Second))
		if err != nil && err != nats.ErrTimeout {
			c.logger.Error("failed to fetch click events", zap.Error(err))
			continue
		}

		for _, msg := range msgs {
			var event model.ClickEvent
			if err := json.Unmarshal(msg.Data, &event); err != nil {
				c.logger.Error("failed to unmarshal click event", zap.Error(err))
				msg.Nak()
				continue
			}

			if err := c.repo.IncrementClicks(ctx, event.Code, event.ClickedAt); err != nil {
				// The link may have been hard-deleted between redirect and
				// consumption; the event is stale, drop it.
				if errors.Is(err, repository.ErrLinkNotFound) {
					c.logger.Debug("dropping click for missing link",
						zap.String("code", event.Code))
					msg.Ack()
					continue
				}
				c.logger.Error("failed to apply click increment",
					zap.String("id", event.ID),
					zap.String("code", event.Code),
					zap.Error(err))
				msg.Nak()
				continue
			}

			c.logger.Debug("click applied",
				zap.String("id", event.ID),
				zap.String("code", event.Code),
				zap.String("ip", event.IP),
				zap.Time("clicked_at", event.ClickedAt),
			)

			msg.Ack()
		}
	}
}
