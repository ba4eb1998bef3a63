package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Type distinguishes invoices from quotes.
type Type string

const (
	TypeInvoice Type = "invoice"
	TypeQuote   Type = "quote"
)

func (t Type) IsValid() bool {
	return t == TypeInvoice || t == TypeQuote
}

// Status is the lifecycle state of a document. The valid domain depends on
// the document type; see CanTransition.
type Status string

const (
	StatusConcept  Status = "concept"
	StatusSent     Status = "sent"
	StatusPaid     Status = "paid"
	StatusOverdue  Status = "overdue"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// LineItem is one billable row on a document.
type LineItem struct {
	Description   string          `json:"description"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	BtwPercentage decimal.Decimal `json:"btw_percentage"`
}

// Document is an invoice or quote record.
type Document struct {
	ID              snowflake.ID                   `gorm:"primaryKey"`
	DocumentType    Type                           `gorm:"type:text;not null;index"`
	DocumentNumber  string                         `gorm:"type:text;not null;uniqueIndex"`
	Status          Status                         `gorm:"type:text;not null;index"`
	Date            time.Time                      `gorm:"type:date;not null"`
	DueDate         time.Time                      `gorm:"type:date;not null"`
	CustomerID      *snowflake.ID                  `gorm:"index"`
	CustomerName    string                         `gorm:"type:text;not null;default:''"`
	TemplateID      *snowflake.ID                  `gorm:"index"`
	LineItems       datatypes.JSONSlice[LineItem]  `gorm:"type:jsonb;not null"`
	Subtotal        decimal.Decimal                `gorm:"type:decimal(12,2);not null"`
	BtwAmount       decimal.Decimal                `gorm:"type:decimal(12,2);not null"`
	TotalAmount     decimal.Decimal                `gorm:"type:decimal(12,2);not null"`
	Notes           string                         `gorm:"type:text;not null;default:''"`
	SentAt          *time.Time                     `gorm:""`
	LastSentEmail   string                         `gorm:"type:text;not null;default:''"`
	PdfURL          *string                        `gorm:"type:text"`
	StoragePath     *string                        `gorm:"type:text"`
	RecurringRuleID *snowflake.ID                  `gorm:"index"`
	CreatedAt       time.Time                      `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time                      `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Document) TableName() string { return "documents" }

// ParseID parses a document identifier from its string form.
func ParseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil {
		return 0, ErrInvalidID
	}
	return id, nil
}

var (
	ErrInvalidID         = errors.New("invalid_document_id")
	ErrNotFound          = errors.New("document_not_found")
	ErrInvalidType       = errors.New("invalid_document_type")
	ErrInvalidStatus     = errors.New("invalid_document_status")
	ErrInvalidTransition = errors.New("invalid_status_transition")
	ErrNoLineItems       = errors.New("missing_line_items")
	ErrNoPDF             = errors.New("document_has_no_pdf")
)
