package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"

	"github.com/RonanBeelen/InvoiceStudio/pkg/db/pagination"
)

// CreateRequest describes a new document.
type CreateRequest struct {
	DocumentType Type
	CustomerID   *snowflake.ID
	TemplateID   *snowflake.ID
	LineItems    []LineItem
	Date         *time.Time
	DueDate      *time.Time
	Notes        string
	GeneratePDF  bool
}

// UpdateRequest patches mutable document fields. Status changes go through
// Transition, never through Update.
type UpdateRequest struct {
	ID    snowflake.ID
	Notes *string
}

// ListRequest filters the document list.
type ListRequest struct {
	pagination.Pagination
	DocumentType Type
	Status       Status
	CustomerID   snowflake.ID
}

// ListResponse wraps a page of documents.
type ListResponse struct {
	pagination.PageInfo
	Documents []Document `json:"documents"`
}

// Actor identifies who requested an operation, for the activity log.
type Actor struct {
	Type string
	ID   string
}

var SystemActor = Actor{Type: "system"}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Document, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Document, error)
	Update(ctx context.Context, req UpdateRequest) (*Document, error)
	Delete(ctx context.Context, id snowflake.ID) error

	// Transition validates and applies a lifecycle move, setting sent_at
	// on first entry into sent and appending exactly one activity entry
	// with action status_changed.
	Transition(ctx context.Context, id snowflake.ID, newStatus Status, actor Actor) (*Document, error)

	// TransitionAs behaves like Transition but records the given activity
	// action instead of status_changed. Used by the send and email-event
	// flows (sent, marked_sent, payment_confirmed).
	TransitionAs(ctx context.Context, id snowflake.ID, newStatus Status, actor Actor, action string) (*Document, error)

	// SetPDF stores the rendered artifact location for a document.
	SetPDF(ctx context.Context, id snowflake.ID, pdfURL, storagePath string) error

	// RecordSend stores the delivery bookkeeping after a successful email.
	RecordSend(ctx context.Context, id snowflake.ID, recipient string, sentAt time.Time) error

	// CloneForRule copies a source document into a fresh concept document
	// carrying the rule back-reference. Used by the automation trigger.
	CloneForRule(ctx context.Context, sourceID, ruleID snowflake.ID) (*Document, error)
}
