package model

import "time"

// ClickEvent is the message published for every successful redirect. The
// consumer folds it into the link's click counter; nothing else is persisted.
type ClickEvent struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	ClickedAt time.Time `json:"clicked_at"`
}

const (
	ClickStreamName     = "CLICKS"
	ClickStreamSubject  = "clicks.events"
	ClickConsumerName   = "click-counter"
	ClickStreamMaxBytes = 1024 * 1024 * 100 // 100MB
)
