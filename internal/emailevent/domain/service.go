package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// WebhookResult summarizes how one inbound event was handled.
type WebhookResult struct {
	Ignored        bool      `json:"ignored"`
	EventType      EventType `json:"event_type,omitempty"`
	MatchedSend    string    `json:"matched_send,omitempty"`
	DetectedIntent Intent    `json:"detected_intent,omitempty"`
	AppliedStatus  string    `json:"applied_status,omitempty"`
}

type Service interface {
	// HandleWebhook verifies and ingests one raw provider webhook.
	// Unknown event types are acknowledged without processing.
	HandleWebhook(ctx context.Context, body []byte, signature string) (WebhookResult, error)

	// List returns stored events, newest first. When unreadOnly is set
	// only undismissed reply events are returned.
	List(ctx context.Context, unreadOnly bool, limit int) ([]EmailEvent, error)

	UnreadCount(ctx context.Context) (int64, error)
	Dismiss(ctx context.Context, id snowflake.ID) error
	DismissAll(ctx context.Context) error
}
