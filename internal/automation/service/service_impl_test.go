package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	activitydomain "github.com/RonanBeelen/InvoiceStudio/internal/activity/domain"
	automationdomain "github.com/RonanBeelen/InvoiceStudio/internal/automation/domain"
	"github.com/RonanBeelen/InvoiceStudio/internal/clock"
	documentdomain "github.com/RonanBeelen/InvoiceStudio/internal/document/domain"
	"github.com/RonanBeelen/InvoiceStudio/internal/events"
	senddomain "github.com/RonanBeelen/InvoiceStudio/internal/send/domain"
)

type stubDocuments struct {
	documentdomain.Service

	cloned   []snowflake.ID
	cloneErr error
	node     *snowflake.Node
}

func (s *stubDocuments) GetByID(ctx context.Context, id snowflake.ID) (*documentdomain.Document, error) {
	return &documentdomain.Document{ID: id}, nil
}

func (s *stubDocuments) CloneForRule(ctx context.Context, sourceID, ruleID snowflake.ID) (*documentdomain.Document, error) {
	if s.cloneErr != nil {
		return nil, s.cloneErr
	}
	doc := &documentdomain.Document{
		ID:              s.node.Generate(),
		DocumentType:    documentdomain.TypeInvoice,
		DocumentNumber:  "F-2024-99",
		Status:          documentdomain.StatusConcept,
		RecurringRuleID: &ruleID,
	}
	s.cloned = append(s.cloned, doc.ID)
	return doc, nil
}

type stubSender struct {
	senddomain.Service

	sent    []snowflake.ID
	sendErr error
}

func (s *stubSender) SendDocument(ctx context.Context, req senddomain.SendRequest) (*senddomain.SendRecord, error) {
	if s.sendErr != nil {
		return nil, s.sendErr
	}
	s.sent = append(s.sent, req.DocumentID)
	return &senddomain.SendRecord{DocumentID: req.DocumentID}, nil
}

type noopActivity struct{}

func (noopActivity) Log(ctx context.Context, record activitydomain.Record) {}
func (noopActivity) LogTx(ctx context.Context, tx *gorm.DB, record activitydomain.Record) error {
	return nil
}
func (noopActivity) ForDocument(ctx context.Context, filter activitydomain.ListFilter) ([]activitydomain.Entry, error) {
	return nil, nil
}
func (noopActivity) Feed(ctx context.Context, limit int) ([]activitydomain.Entry, error) {
	return nil, nil
}

func setupAutomationTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	statements := []string{
		`CREATE TABLE IF NOT EXISTS automation_rules (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			source_document_id BIGINT NOT NULL,
			frequency TEXT NOT NULL,
			day_of_month INTEGER NOT NULL DEFAULT 1,
			interval_days INTEGER NOT NULL DEFAULT 0,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			auto_send BOOLEAN NOT NULL DEFAULT FALSE,
			end_date DATE,
			max_occurrences INTEGER,
			occurrences_count INTEGER NOT NULL DEFAULT 0,
			next_run_at DATETIME,
			last_run_at DATETIME,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS automation_runs (
			id INTEGER PRIMARY KEY,
			rule_id BIGINT NOT NULL,
			scheduled_at DATETIME NOT NULL,
			status TEXT NOT NULL,
			started_at DATETIME,
			completed_at DATETIME,
			created_document_id BIGINT,
			error_message TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (rule_id, scheduled_at)
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

func newTestService(t *testing.T, db *gorm.DB, now time.Time, docs *stubDocuments, sender *stubSender) *Service {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	if docs.node == nil {
		docs.node = node
	}
	return &Service{
		db:          db,
		log:         zap.NewNop(),
		genID:       node,
		clock:       clock.Fixed{Instant: now},
		documentSvc: docs,
		sendSvc:     sender,
		activitySvc: noopActivity{},
		outbox:      events.NewOutbox(db, node),
	}
}

func insertRule(t *testing.T, db *gorm.DB, rule *automationdomain.Rule) {
	t.Helper()
	if err := db.Create(rule).Error; err != nil {
		t.Fatalf("insert rule: %v", err)
	}
}

func TestTriggerAdvancesSchedule(t *testing.T) {
	db := setupAutomationTestDB(t)
	now := time.Date(2024, time.January, 2, 9, 0, 0, 0, time.UTC)
	docs := &stubDocuments{}
	svc := newTestService(t, db, now, docs, &stubSender{})

	due := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	rule := &automationdomain.Rule{
		ID:               svc.genID.Generate(),
		Name:             "Monthly hosting",
		SourceDocumentID: 12345,
		Frequency:        automationdomain.FrequencyMonthly,
		DayOfMonth:       1,
		IsActive:         true,
		NextRunAt:        &due,
	}
	insertRule(t, db, rule)

	run, err := svc.Trigger(context.Background(), rule.ID)
	if err != nil {
		t.Fatalf("trigger: %v", err)
	}
	if run.Status != automationdomain.RunStatusCompleted {
		t.Fatalf("expected completed run, got %s", run.Status)
	}
	if run.CreatedDocumentID == nil {
		t.Fatal("expected run to reference the created document")
	}
	if len(docs.cloned) != 1 {
		t.Fatalf("expected one clone, got %d", len(docs.cloned))
	}

	var stored automationdomain.Rule
	if err := db.Where("id = ?", rule.ID).First(&stored).Error; err != nil {
		t.Fatalf("reload rule: %v", err)
	}
	if stored.OccurrencesCount != 1 {
		t.Fatalf("expected occurrences_count 1, got %d", stored.OccurrencesCount)
	}
	if stored.NextRunAt == nil || !stored.NextRunAt.Equal(time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected next run 2024-02-01, got %v", stored.NextRunAt)
	}
	if stored.LastRunAt == nil {
		t.Fatal("expected last_run_at to be set")
	}
	if !stored.IsActive {
		t.Fatal("rule without end conditions must stay active")
	}
}

func TestTriggerSkipsClaimedSlot(t *testing.T) {
	db := setupAutomationTestDB(t)
	now := time.Date(2024, time.January, 2, 9, 0, 0, 0, time.UTC)
	docs := &stubDocuments{}
	svc := newTestService(t, db, now, docs, &stubSender{})

	due := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	rule := &automationdomain.Rule{
		ID:               svc.genID.Generate(),
		Name:             "Monthly hosting",
		SourceDocumentID: 12345,
		Frequency:        automationdomain.FrequencyMonthly,
		DayOfMonth:       1,
		IsActive:         true,
		NextRunAt:        &due,
	}
	insertRule(t, db, rule)

	claimed := automationdomain.Run{
		ID:          svc.genID.Generate(),
		RuleID:      rule.ID,
		ScheduledAt: due,
		Status:      automationdomain.RunStatusCompleted,
	}
	if err := db.Create(&claimed).Error; err != nil {
		t.Fatalf("insert claimed run: %v", err)
	}

	run, err := svc.Trigger(context.Background(), rule.ID)
	if err != nil {
		t.Fatalf("trigger: %v", err)
	}
	if run.Status != automationdomain.RunStatusSkipped {
		t.Fatalf("expected skipped run, got %s", run.Status)
	}
	if len(docs.cloned) != 0 {
		t.Fatalf("skipped trigger must not create documents, cloned %d", len(docs.cloned))
	}

	var count int64
	if err := db.Model(&automationdomain.Run{}).Where("rule_id = ?", rule.ID).Count(&count).Error; err != nil {
		t.Fatalf("count runs: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single persisted run for the slot, got %d", count)
	}
}

func TestTriggerDocumentFailureKeepsSchedule(t *testing.T) {
	db := setupAutomationTestDB(t)
	now := time.Date(2024, time.January, 2, 9, 0, 0, 0, time.UTC)
	docs := &stubDocuments{cloneErr: errors.New("render unavailable")}
	svc := newTestService(t, db, now, docs, &stubSender{})

	due := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	rule := &automationdomain.Rule{
		ID:               svc.genID.Generate(),
		Name:             "Monthly hosting",
		SourceDocumentID: 12345,
		Frequency:        automationdomain.FrequencyMonthly,
		DayOfMonth:       1,
		IsActive:         true,
		NextRunAt:        &due,
	}
	insertRule(t, db, rule)

	run, err := svc.Trigger(context.Background(), rule.ID)
	if err == nil {
		t.Fatal("expected trigger to surface document creation failure")
	}
	if run == nil || run.Status != automationdomain.RunStatusFailed {
		t.Fatalf("expected failed run, got %+v", run)
	}
	if run.ErrorMessage == "" {
		t.Fatal("expected error message on failed run")
	}

	if run.CreatedDocumentID != nil {
		t.Fatal("failed run must not reference a created document")
	}

	var stored automationdomain.Rule
	if err := db.Where("id = ?", rule.ID).First(&stored).Error; err != nil {
		t.Fatalf("reload rule: %v", err)
	}
	if stored.NextRunAt == nil || !stored.NextRunAt.Equal(due) {
		t.Fatalf("failed run must not advance next_run_at, got %v", stored.NextRunAt)
	}
	if stored.OccurrencesCount != 0 {
		t.Fatalf("failed run must not count an occurrence, got %d", stored.OccurrencesCount)
	}
}

func TestTriggerRetriesSlotAfterFailure(t *testing.T) {
	db := setupAutomationTestDB(t)
	now := time.Date(2024, time.January, 2, 9, 0, 0, 0, time.UTC)
	docs := &stubDocuments{cloneErr: errors.New("render unavailable")}
	svc := newTestService(t, db, now, docs, &stubSender{})

	due := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	rule := &automationdomain.Rule{
		ID:               svc.genID.Generate(),
		Name:             "Monthly hosting",
		SourceDocumentID: 12345,
		Frequency:        automationdomain.FrequencyMonthly,
		DayOfMonth:       1,
		IsActive:         true,
		NextRunAt:        &due,
	}
	insertRule(t, db, rule)

	if _, err := svc.Trigger(context.Background(), rule.ID); err == nil {
		t.Fatal("expected first trigger to fail")
	}

	// A failed run releases the slot: the retry retakes it instead of
	// reporting skipped.
	docs.cloneErr = nil
	run, err := svc.Trigger(context.Background(), rule.ID)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if run.Status != automationdomain.RunStatusCompleted {
		t.Fatalf("expected retry to complete, got %s", run.Status)
	}
	if run.CreatedDocumentID == nil {
		t.Fatal("expected retry to reference the created document")
	}
	if len(docs.cloned) != 1 {
		t.Fatalf("expected exactly one clone across both attempts, got %d", len(docs.cloned))
	}

	var runs []automationdomain.Run
	if err := db.Where("rule_id = ?", rule.ID).Find(&runs).Error; err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != automationdomain.RunStatusCompleted {
		t.Fatalf("expected a single completed run for the slot, got %+v", runs)
	}
	if runs[0].ErrorMessage != "" {
		t.Fatalf("retaken run must clear the failure note, got %q", runs[0].ErrorMessage)
	}

	var stored automationdomain.Rule
	if err := db.Where("id = ?", rule.ID).First(&stored).Error; err != nil {
		t.Fatalf("reload rule: %v", err)
	}
	if stored.NextRunAt == nil || !stored.NextRunAt.Equal(time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected retry to advance next run to 2024-02-01, got %v", stored.NextRunAt)
	}
	if stored.OccurrencesCount != 1 {
		t.Fatalf("expected one counted occurrence, got %d", stored.OccurrencesCount)
	}
}

func TestTriggerAutoSendFailureStillCompletes(t *testing.T) {
	db := setupAutomationTestDB(t)
	now := time.Date(2024, time.January, 2, 9, 0, 0, 0, time.UTC)
	docs := &stubDocuments{}
	sender := &stubSender{sendErr: errors.New("smtp down")}
	svc := newTestService(t, db, now, docs, sender)

	due := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	rule := &automationdomain.Rule{
		ID:               svc.genID.Generate(),
		Name:             "Monthly hosting",
		SourceDocumentID: 12345,
		Frequency:        automationdomain.FrequencyMonthly,
		DayOfMonth:       1,
		IsActive:         true,
		AutoSend:         true,
		NextRunAt:        &due,
	}
	insertRule(t, db, rule)

	run, err := svc.Trigger(context.Background(), rule.ID)
	if err != nil {
		t.Fatalf("trigger: %v", err)
	}
	if run.Status != automationdomain.RunStatusCompleted {
		t.Fatalf("expected completed run despite send failure, got %s", run.Status)
	}
	if !strings.HasPrefix(run.ErrorMessage, "auto_send_failed:") {
		t.Fatalf("expected auto_send_failed note, got %q", run.ErrorMessage)
	}
}

func TestTriggerDeactivatesAtMaxOccurrences(t *testing.T) {
	db := setupAutomationTestDB(t)
	now := time.Date(2024, time.January, 2, 9, 0, 0, 0, time.UTC)
	docs := &stubDocuments{}
	svc := newTestService(t, db, now, docs, &stubSender{})

	due := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	one := 1
	rule := &automationdomain.Rule{
		ID:               svc.genID.Generate(),
		Name:             "One-off",
		SourceDocumentID: 12345,
		Frequency:        automationdomain.FrequencyMonthly,
		DayOfMonth:       1,
		IsActive:         true,
		MaxOccurrences:   &one,
		NextRunAt:        &due,
	}
	insertRule(t, db, rule)

	if _, err := svc.Trigger(context.Background(), rule.ID); err != nil {
		t.Fatalf("trigger: %v", err)
	}

	var stored automationdomain.Rule
	if err := db.Where("id = ?", rule.ID).First(&stored).Error; err != nil {
		t.Fatalf("reload rule: %v", err)
	}
	if stored.IsActive {
		t.Fatal("rule at max occurrences must deactivate")
	}
	if !automationdomain.HasExpired(stored, now) {
		t.Fatal("stored rule should report as expired")
	}
}

func TestListDueFilters(t *testing.T) {
	db := setupAutomationTestDB(t)
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	svc := newTestService(t, db, now, &stubDocuments{}, &stubSender{})

	past := now.AddDate(0, 0, -1)
	future := now.AddDate(0, 0, 1)
	three := 3

	dueRule := &automationdomain.Rule{
		ID: svc.genID.Generate(), Name: "due", SourceDocumentID: 1,
		Frequency: automationdomain.FrequencyMonthly, DayOfMonth: 1,
		IsActive: true, NextRunAt: &past,
	}
	pausedRule := &automationdomain.Rule{
		ID: svc.genID.Generate(), Name: "paused", SourceDocumentID: 1,
		Frequency: automationdomain.FrequencyMonthly, DayOfMonth: 1,
		IsActive: false, NextRunAt: &past,
	}
	futureRule := &automationdomain.Rule{
		ID: svc.genID.Generate(), Name: "future", SourceDocumentID: 1,
		Frequency: automationdomain.FrequencyMonthly, DayOfMonth: 1,
		IsActive: true, NextRunAt: &future,
	}
	exhaustedRule := &automationdomain.Rule{
		ID: svc.genID.Generate(), Name: "exhausted", SourceDocumentID: 1,
		Frequency: automationdomain.FrequencyMonthly, DayOfMonth: 1,
		IsActive: true, NextRunAt: &past,
		MaxOccurrences: &three, OccurrencesCount: 3,
	}
	for _, rule := range []*automationdomain.Rule{dueRule, pausedRule, futureRule, exhaustedRule} {
		insertRule(t, db, rule)
	}

	due, err := svc.ListDue(context.Background(), now, 10)
	if err != nil {
		t.Fatalf("list due: %v", err)
	}
	if len(due) != 1 || due[0].ID != dueRule.ID {
		t.Fatalf("expected only the due rule, got %d rules", len(due))
	}
}
