package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	activitydomain "github.com/RonanBeelen/InvoiceStudio/internal/activity/domain"
	"github.com/RonanBeelen/InvoiceStudio/internal/clock"
	documentdomain "github.com/RonanBeelen/InvoiceStudio/internal/document/domain"
	"github.com/RonanBeelen/InvoiceStudio/internal/events"
)

type recordingActivity struct {
	records []activitydomain.Record
}

func (r *recordingActivity) Log(ctx context.Context, record activitydomain.Record) {
	r.records = append(r.records, record)
}

func (r *recordingActivity) LogTx(ctx context.Context, tx *gorm.DB, record activitydomain.Record) error {
	r.records = append(r.records, record)
	return nil
}

func (r *recordingActivity) ForDocument(ctx context.Context, filter activitydomain.ListFilter) ([]activitydomain.Entry, error) {
	return nil, nil
}

func (r *recordingActivity) Feed(ctx context.Context, limit int) ([]activitydomain.Entry, error) {
	return nil, nil
}

func setupDocumentTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id INTEGER PRIMARY KEY,
			document_type TEXT NOT NULL,
			document_number TEXT NOT NULL UNIQUE,
			status TEXT NOT NULL,
			date DATE NOT NULL,
			due_date DATE NOT NULL,
			customer_id BIGINT,
			customer_name TEXT NOT NULL DEFAULT '',
			template_id BIGINT,
			line_items TEXT NOT NULL,
			subtotal DECIMAL(12,2) NOT NULL,
			btw_amount DECIMAL(12,2) NOT NULL,
			total_amount DECIMAL(12,2) NOT NULL,
			notes TEXT NOT NULL DEFAULT '',
			sent_at DATETIME,
			last_sent_email TEXT NOT NULL DEFAULT '',
			pdf_url TEXT,
			storage_path TEXT,
			recurring_rule_id BIGINT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS app_events (
			id INTEGER PRIMARY KEY,
			event_type TEXT NOT NULL,
			payload TEXT NOT NULL DEFAULT '{}',
			dedupe_key TEXT UNIQUE,
			published BOOLEAN NOT NULL DEFAULT FALSE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create table: %v", err)
		}
	}
	return db
}

func newDocumentTestService(t *testing.T, db *gorm.DB, now time.Time, activity *recordingActivity) *Service {
	t.Helper()
	node, err := snowflake.NewNode(2)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return &Service{
		db:          db,
		log:         zap.NewNop(),
		genID:       node,
		clock:       clock.Fixed{Instant: now},
		activitySvc: activity,
		outbox:      events.NewOutbox(db, node),
	}
}

func insertDocument(t *testing.T, db *gorm.DB, doc *documentdomain.Document) {
	t.Helper()
	if doc.LineItems == nil {
		doc.LineItems = datatypes.JSONSlice[documentdomain.LineItem]{
			{Description: "Werkzaamheden", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(100), BtwPercentage: decimal.NewFromInt(21)},
		}
	}
	if doc.Date.IsZero() {
		doc.Date = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	if doc.DueDate.IsZero() {
		doc.DueDate = doc.Date.AddDate(0, 0, 30)
	}
	if err := db.Create(doc).Error; err != nil {
		t.Fatalf("insert document: %v", err)
	}
}

func TestTransitionConceptToSentSetsSentAt(t *testing.T) {
	db := setupDocumentTestDB(t)
	now := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
	activity := &recordingActivity{}
	svc := newDocumentTestService(t, db, now, activity)

	doc := &documentdomain.Document{
		ID:             svc.genID.Generate(),
		DocumentType:   documentdomain.TypeInvoice,
		DocumentNumber: "F-2024-1",
		Status:         documentdomain.StatusConcept,
	}
	insertDocument(t, db, doc)

	updated, err := svc.Transition(context.Background(), doc.ID, documentdomain.StatusSent, documentdomain.Actor{Type: "user"})
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if updated.Status != documentdomain.StatusSent {
		t.Fatalf("expected sent, got %s", updated.Status)
	}
	if updated.SentAt == nil || !updated.SentAt.Equal(now) {
		t.Fatalf("expected sent_at %v, got %v", now, updated.SentAt)
	}

	if len(activity.records) != 1 {
		t.Fatalf("expected exactly one activity entry, got %d", len(activity.records))
	}
	record := activity.records[0]
	if record.Action != activitydomain.ActionStatusChanged {
		t.Fatalf("expected status_changed, got %s", record.Action)
	}
	if record.Detail["from"] != "concept" || record.Detail["to"] != "sent" {
		t.Fatalf("unexpected detail: %+v", record.Detail)
	}
}

func TestTransitionSentAtSetOnce(t *testing.T) {
	db := setupDocumentTestDB(t)
	first := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
	activity := &recordingActivity{}
	svc := newDocumentTestService(t, db, first, activity)

	doc := &documentdomain.Document{
		ID:             svc.genID.Generate(),
		DocumentType:   documentdomain.TypeInvoice,
		DocumentNumber: "F-2024-2",
		Status:         documentdomain.StatusConcept,
	}
	insertDocument(t, db, doc)

	if _, err := svc.Transition(context.Background(), doc.ID, documentdomain.StatusSent, documentdomain.SystemActor); err != nil {
		t.Fatalf("to sent: %v", err)
	}

	svc.clock = clock.Fixed{Instant: first.AddDate(0, 0, 20)}
	if _, err := svc.Transition(context.Background(), doc.ID, documentdomain.StatusOverdue, documentdomain.SystemActor); err != nil {
		t.Fatalf("to overdue: %v", err)
	}

	var stored documentdomain.Document
	if err := db.Where("id = ?", doc.ID).First(&stored).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.SentAt == nil || !stored.SentAt.Equal(first) {
		t.Fatalf("sent_at must keep its first value, got %v", stored.SentAt)
	}
}

func TestTransitionRejectsInvalidMoves(t *testing.T) {
	db := setupDocumentTestDB(t)
	now := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
	activity := &recordingActivity{}
	svc := newDocumentTestService(t, db, now, activity)

	paid := &documentdomain.Document{
		ID:             svc.genID.Generate(),
		DocumentType:   documentdomain.TypeInvoice,
		DocumentNumber: "F-2024-3",
		Status:         documentdomain.StatusPaid,
	}
	insertDocument(t, db, paid)

	if _, err := svc.Transition(context.Background(), paid.ID, documentdomain.StatusSent, documentdomain.SystemActor); !errors.Is(err, documentdomain.ErrInvalidTransition) {
		t.Fatalf("paid -> sent: expected ErrInvalidTransition, got %v", err)
	}

	quote := &documentdomain.Document{
		ID:             svc.genID.Generate(),
		DocumentType:   documentdomain.TypeQuote,
		DocumentNumber: "O-2024-1",
		Status:         documentdomain.StatusSent,
	}
	insertDocument(t, db, quote)

	if _, err := svc.Transition(context.Background(), quote.ID, documentdomain.StatusPaid, documentdomain.SystemActor); !errors.Is(err, documentdomain.ErrInvalidStatus) {
		t.Fatalf("quote -> paid: expected ErrInvalidStatus, got %v", err)
	}

	if len(activity.records) != 0 {
		t.Fatalf("rejected transitions must not log activity, got %d entries", len(activity.records))
	}
}

func TestTransitionQuoteAccepted(t *testing.T) {
	db := setupDocumentTestDB(t)
	now := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
	activity := &recordingActivity{}
	svc := newDocumentTestService(t, db, now, activity)

	quote := &documentdomain.Document{
		ID:             svc.genID.Generate(),
		DocumentType:   documentdomain.TypeQuote,
		DocumentNumber: "O-2024-2",
		Status:         documentdomain.StatusSent,
	}
	insertDocument(t, db, quote)

	updated, err := svc.TransitionAs(context.Background(), quote.ID, documentdomain.StatusAccepted, documentdomain.Actor{Type: "email", ID: "klant@example.com"}, "email_replied")
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if updated.Status != documentdomain.StatusAccepted {
		t.Fatalf("expected accepted, got %s", updated.Status)
	}
	if len(activity.records) != 1 || activity.records[0].Action != activitydomain.Action("email_replied") {
		t.Fatalf("expected one email_replied entry, got %+v", activity.records)
	}
}

func TestTransitionNotFound(t *testing.T) {
	db := setupDocumentTestDB(t)
	svc := newDocumentTestService(t, db, time.Now().UTC(), &recordingActivity{})

	if _, err := svc.Transition(context.Background(), 424242, documentdomain.StatusSent, documentdomain.SystemActor); !errors.Is(err, documentdomain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
