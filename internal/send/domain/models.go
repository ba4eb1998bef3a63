package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// DeliveryStatus tracks what we know about an outbound email.
type DeliveryStatus string

const (
	DeliverySent      DeliveryStatus = "sent"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryOpened    DeliveryStatus = "opened"
	DeliveryBounced   DeliveryStatus = "bounced"
)

// SendRecord is one outbound email for a document. ProviderMessageID is
// the key inbound reply events are matched back on.
type SendRecord struct {
	ID                snowflake.ID   `gorm:"primaryKey"`
	DocumentID        snowflake.ID   `gorm:"not null;index"`
	Recipient         string         `gorm:"type:text;not null"`
	Subject           string         `gorm:"type:text;not null"`
	Provider          string         `gorm:"type:text;not null"`
	ProviderMessageID string         `gorm:"type:text;not null;default:'';index"`
	Status            DeliveryStatus `gorm:"type:text;not null"`
	Reminder          bool           `gorm:"not null;default:false"`
	SentAt            time.Time      `gorm:"not null"`
	CreatedAt         time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (SendRecord) TableName() string { return "send_records" }

// Message is a fully assembled outbound email.
type Message struct {
	FromName  string
	FromAddr  string
	To        string
	ReplyTo   string
	Subject   string
	HTML      string
	PDFURL    string
	PDFName   string
}

// Result is what a provider reports back for an accepted message.
type Result struct {
	MessageID string
}

// Provider delivers assembled messages. Implementations: the Resend API
// client and a no-op manual provider for installs without email.
type Provider interface {
	Send(ctx context.Context, msg Message) (Result, error)
}

// SendRequest controls one SendDocument call. Zero values fall back to
// the customer's address and the configured subject/body templates.
type SendRequest struct {
	DocumentID snowflake.ID
	Recipient  string
	Subject    string
	Body       string
	Reminder   bool
}

type Service interface {
	// SendDocument emails the document's PDF and moves a concept
	// document to sent. Reminder sends never change status.
	SendDocument(ctx context.Context, req SendRequest) (*SendRecord, error)

	// MarkSent moves a concept document to sent without emailing it.
	MarkSent(ctx context.Context, documentID snowflake.ID) error

	ForDocument(ctx context.Context, documentID snowflake.ID) ([]SendRecord, error)
}

var (
	ErrNoRecipient      = errors.New("missing_recipient")
	ErrProviderRejected = errors.New("email_provider_rejected")
	ErrProviderDisabled = errors.New("email_provider_disabled")
	ErrSendLimitReached = errors.New("send_limit_reached")
)
