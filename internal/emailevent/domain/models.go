package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// EventType classifies inbound webhook events.
type EventType string

const (
	EventDelivered EventType = "delivered"
	EventOpened    EventType = "opened"
	EventBounced   EventType = "bounced"
	EventReplied   EventType = "replied"
)

func (t EventType) IsValid() bool {
	switch t {
	case EventDelivered, EventOpened, EventBounced, EventReplied:
		return true
	}
	return false
}

// Intent is what a reply appears to say, detected from its text.
type Intent string

const (
	IntentPaymentConfirmation Intent = "payment_confirmation"
	IntentAccepted            Intent = "accepted"
	IntentRejected            Intent = "rejected"
	IntentQuestion            Intent = "question"
	IntentUnknown             Intent = "unknown"
)

// EmailEvent is one stored inbound event, linked back to the document the
// originating send belonged to when the message could be matched.
type EmailEvent struct {
	ID                snowflake.ID      `gorm:"primaryKey"`
	DocumentID        *snowflake.ID     `gorm:"index"`
	SendRecordID      *snowflake.ID     `gorm:"index"`
	EventType         EventType         `gorm:"type:text;not null;index"`
	ProviderMessageID string            `gorm:"type:text;not null;default:'';index"`
	FromAddress       string            `gorm:"type:text;not null;default:''"`
	Subject           string            `gorm:"type:text;not null;default:''"`
	Snippet           string            `gorm:"type:text;not null;default:''"`
	Intent            Intent            `gorm:"type:text;not null;default:'unknown'"`
	AppliedStatus     string            `gorm:"type:text;not null;default:''"`
	Dismissed         bool              `gorm:"not null;default:false;index"`
	Raw               datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt         time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (EmailEvent) TableName() string { return "email_events" }

func ParseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil {
		return 0, ErrInvalidID
	}
	return id, nil
}

var (
	ErrInvalidID        = errors.New("invalid_event_id")
	ErrNotFound         = errors.New("event_not_found")
	ErrBadSignature     = errors.New("invalid_webhook_signature")
	ErrMalformedPayload = errors.New("malformed_webhook_payload")
)
