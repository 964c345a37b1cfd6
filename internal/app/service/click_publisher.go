package service

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/linklite/linklite/internal/app/model"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// ClickPublisher records clicks by publishing events to NATS JetStream. The
// click consumer folds them into the links table.
type ClickPublisher struct {
	js     nats.JetStreamContext
	logger *zap.Logger
}

// NewClickPublisher creates a JetStream-backed ClickRecorder.
func NewClickPublisher(js nats.JetStreamContext, logger *zap.Logger) *ClickPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClickPublisher{js: js, logger: logger}
}

// Record publishes a click event off the request path. Publish failures are
// logged and swallowed so a redirect never fails because of accounting.
func (p *ClickPublisher) Record(code, ip, userAgent string) {
	event := model.ClickEvent{
		ID:        uuid.NewString(),
		Code:      code,
		IP:        ip,
		UserAgent: userAgent,
		ClickedAt: time.Now().UTC(),
	}

	go func() {
		data, err := json.Marshal(event)
		if err != nil {
			p.logger.Error("failed to marshal click event",
				zap.String("code", code), zap.Error(err))
			return
		}
		if _, err := p.js.Publish(model.ClickStreamSubject, data); err != nil {
			p.logger.Error("failed to publish click event",
				zap.String("code", code), zap.Error(err))
		}
	}()
}
