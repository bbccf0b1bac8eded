package model

import "time"

// ClickLog is one append-only visit record. LinkID is not validated on append:
// a log whose link was deleted later simply fails to resolve a display title.
type ClickLog struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	LinkID    string    `json:"link_id" gorm:"index;size:36;not null"`
	Timestamp time.Time `json:"timestamp" gorm:"index;not null"`
	UserAgent string    `json:"user_agent,omitempty" gorm:"size:255"`
	Referrer  string    `json:"referrer,omitempty" gorm:"size:255"`
}

// ClickEvent is the wire form published to NATS after a visit has been
// committed. It is a fan-out notification, not the source of truth; the
// counter increment and log append always happen in the same DB transaction.
type ClickEvent struct {
	ID        string    `json:"id"`
	LinkID    string    `json:"link_id"`
	OwnerID   string    `json:"owner_id"`
	Platform  string    `json:"platform"`
	UserAgent string    `json:"user_agent,omitempty"`
	Referrer  string    `json:"referrer,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	ClickStreamName     = "CLICKS"
	ClickStreamSubject  = "clicks.events"
	ClickConsumerName   = "click-refresher"
	ClickStreamMaxBytes = 1024 * 1024 * 100 // 100MB
)
