package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	activitydomain "github.com/RonanBeelen/InvoiceStudio/internal/activity/domain"
	automationdomain "github.com/RonanBeelen/InvoiceStudio/internal/automation/domain"
	"github.com/RonanBeelen/InvoiceStudio/internal/clock"
	documentdomain "github.com/RonanBeelen/InvoiceStudio/internal/document/domain"
	"github.com/RonanBeelen/InvoiceStudio/internal/events"
	senddomain "github.com/RonanBeelen/InvoiceStudio/internal/send/domain"
)

const defaultRunHistory = 50

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	DocumentSvc documentdomain.Service
	SendSvc     senddomain.Service
	ActivitySvc activitydomain.Service
	Outbox      *events.Outbox
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	documentSvc documentdomain.Service
	sendSvc     senddomain.Service
	activitySvc activitydomain.Service
	outbox      *events.Outbox
}

func NewService(p Params) automationdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("automation.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		documentSvc: p.DocumentSvc,
		sendSvc:     p.SendSvc,
		activitySvc: p.ActivitySvc,
		outbox:      p.Outbox,
	}
}

func (s *Service) Create(ctx context.Context, req automationdomain.CreateRequest) (*automationdomain.Rule, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, automationdomain.ErrInvalidName
	}
	if req.SourceDocumentID == 0 {
		return nil, automationdomain.ErrMissingSource
	}
	if _, err := s.documentSvc.GetByID(ctx, req.SourceDocumentID); err != nil {
		if errors.Is(err, documentdomain.ErrNotFound) {
			return nil, automationdomain.ErrMissingSource
		}
		return nil, err
	}

	now := s.clock.Now()
	rule := automationdomain.Rule{
		ID:               s.genID.Generate(),
		Name:             name,
		SourceDocumentID: req.SourceDocumentID,
		Frequency:        req.Frequency,
		DayOfMonth:       req.DayOfMonth,
		IntervalDays:     req.IntervalDays,
		IsActive:         true,
		AutoSend:         req.AutoSend,
		EndDate:          req.EndDate,
		MaxOccurrences:   req.MaxOccurrences,
	}
	if rule.Frequency != automationdomain.FrequencyMonthly && rule.DayOfMonth == 0 {
		rule.DayOfMonth = 1
	}
	if err := automationdomain.ValidateSchedule(rule); err != nil {
		return nil, err
	}

	if req.StartDate != nil {
		start := *req.StartDate
		rule.NextRunAt = &start
	} else {
		next, err := automationdomain.NextRun(rule, now)
		if err != nil {
			return nil, err
		}
		rule.NextRunAt = &next
	}

	if err := s.db.WithContext(ctx).Create(&rule).Error; err != nil {
		return nil, err
	}

	s.activitySvc.Log(ctx, activitydomain.Record{
		EntityType: activitydomain.EntityAutomation,
		EntityID:   &rule.ID,
		Action:     activitydomain.ActionCreated,
		Detail: map[string]any{
			"rule_name": rule.Name,
			"frequency": string(rule.Frequency),
		},
	})
	return &rule, nil
}

func (s *Service) List(ctx context.Context) ([]automationdomain.Rule, error) {
	var rules []automationdomain.Rule
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&rules).Error
	return rules, err
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*automationdomain.Rule, error) {
	return s.load(ctx, s.db, id)
}

func (s *Service) Update(ctx context.Context, req automationdomain.UpdateRequest) (*automationdomain.Rule, error) {
	rule, err := s.load(ctx, s.db, req.ID)
	if err != nil {
		return nil, err
	}

	scheduleChanged := false
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, automationdomain.ErrInvalidName
		}
		rule.Name = name
	}
	if req.Frequency != nil && *req.Frequency != rule.Frequency {
		rule.Frequency = *req.Frequency
		scheduleChanged = true
	}
	if req.DayOfMonth != nil && *req.DayOfMonth != rule.DayOfMonth {
		rule.DayOfMonth = *req.DayOfMonth
		scheduleChanged = true
	}
	if req.IntervalDays != nil && *req.IntervalDays != rule.IntervalDays {
		rule.IntervalDays = *req.IntervalDays
		scheduleChanged = true
	}
	if req.AutoSend != nil {
		rule.AutoSend = *req.AutoSend
	}
	if req.EndDate != nil {
		rule.EndDate = req.EndDate
	}
	if req.MaxOccurrences != nil {
		rule.MaxOccurrences = req.MaxOccurrences
	}

	if err := automationdomain.ValidateSchedule(*rule); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if scheduleChanged {
		next, err := automationdomain.NextRun(*rule, now)
		if err != nil {
			return nil, err
		}
		rule.NextRunAt = &next
	}
	rule.UpdatedAt = now

	if err := s.db.WithContext(ctx).Save(rule).Error; err != nil {
		return nil, err
	}
	return rule, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	rule, err := s.load(ctx, s.db, id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.WithContext(ctx).Where("rule_id = ?", id).Delete(&automationdomain.Run{}).Error; err != nil {
			return err
		}
		if err := tx.WithContext(ctx).Where("id = ?", id).Delete(&automationdomain.Rule{}).Error; err != nil {
			return err
		}
		return s.activitySvc.LogTx(ctx, tx, activitydomain.Record{
			EntityType: activitydomain.EntityAutomation,
			EntityID:   &rule.ID,
			Action:     activitydomain.ActionDeleted,
			Detail:     map[string]any{"rule_name": rule.Name},
		})
	})
}

func (s *Service) Pause(ctx context.Context, id snowflake.ID) (*automationdomain.Rule, error) {
	return s.setActive(ctx, id, false)
}

func (s *Service) Resume(ctx context.Context, id snowflake.ID) (*automationdomain.Rule, error) {
	return s.setActive(ctx, id, true)
}

func (s *Service) setActive(ctx context.Context, id snowflake.ID, active bool) (*automationdomain.Rule, error) {
	rule, err := s.load(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	fields := map[string]any{
		"is_active":  active,
		"updated_at": now,
	}
	if active {
		// Resuming recomputes the schedule from now. Slots missed while
		// paused do not fire as a backlog.
		next, err := automationdomain.NextRun(*rule, now)
		if err != nil {
			return nil, err
		}
		fields["next_run_at"] = next
		rule.NextRunAt = &next
	}

	if err := s.db.WithContext(ctx).
		Model(&automationdomain.Rule{}).
		Where("id = ?", id).
		Updates(fields).Error; err != nil {
		return nil, err
	}
	rule.IsActive = active
	rule.UpdatedAt = now
	return rule, nil
}

func (s *Service) ListDue(ctx context.Context, now time.Time, limit int) ([]automationdomain.Rule, error) {
	if limit <= 0 {
		limit = defaultRunHistory
	}
	var rules []automationdomain.Rule
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("next_run_at IS NOT NULL AND next_run_at <= ?", now).
		Where("end_date IS NULL OR next_run_at <= end_date").
		Where("max_occurrences IS NULL OR occurrences_count < max_occurrences").
		Order("next_run_at ASC").
		Limit(limit).
		Find(&rules).Error
	return rules, err
}

func (s *Service) Trigger(ctx context.Context, id snowflake.ID) (*automationdomain.Run, error) {
	rule, err := s.load(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if err := automationdomain.ValidateSchedule(*rule); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	slot := now.Truncate(time.Minute)
	if rule.NextRunAt != nil && !rule.NextRunAt.After(now) {
		slot = *rule.NextRunAt
	}

	// Inserting the run row claims the slot. The unique (rule_id,
	// scheduled_at) index makes the second concurrent trigger a no-op,
	// which surfaces as a skipped run.
	run := automationdomain.Run{
		ID:          s.genID.Generate(),
		RuleID:      rule.ID,
		ScheduledAt: slot,
		Status:      automationdomain.RunStatusPending,
	}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "rule_id"}, {Name: "scheduled_at"}},
			DoNothing: true,
		}).
		Create(&run)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		// A failed run releases its claim on the slot: retake the row
		// so the slot can retry. Running and completed rows keep the
		// lease. The conditional update lets exactly one concurrent
		// trigger win the retake.
		retake := s.db.WithContext(ctx).
			Model(&automationdomain.Run{}).
			Where("rule_id = ? AND scheduled_at = ? AND status = ?",
				rule.ID, slot, automationdomain.RunStatusFailed).
			Updates(map[string]any{
				"status":        automationdomain.RunStatusPending,
				"started_at":    nil,
				"completed_at":  nil,
				"error_message": "",
			})
		if retake.Error != nil {
			return nil, retake.Error
		}
		if retake.RowsAffected == 0 {
			s.log.Info("trigger slot already claimed",
				zap.String("rule_id", rule.ID.String()),
				zap.Time("scheduled_at", slot),
			)
			return &automationdomain.Run{
				RuleID:      rule.ID,
				ScheduledAt: slot,
				Status:      automationdomain.RunStatusSkipped,
			}, nil
		}
		var retried automationdomain.Run
		if err := s.db.WithContext(ctx).
			Where("rule_id = ? AND scheduled_at = ?", rule.ID, slot).
			First(&retried).Error; err != nil {
			return nil, err
		}
		run = retried
	}

	startedAt := now
	if err := s.db.WithContext(ctx).
		Model(&automationdomain.Run{}).
		Where("id = ? AND status = ?", run.ID, automationdomain.RunStatusPending).
		Updates(map[string]any{"status": automationdomain.RunStatusRunning, "started_at": startedAt}).Error; err != nil {
		return nil, err
	}
	run.Status = automationdomain.RunStatusRunning
	run.StartedAt = &startedAt

	doc, err := s.documentSvc.CloneForRule(ctx, rule.SourceDocumentID, rule.ID)
	if err != nil {
		// next_run_at stays put so the same slot retries on the next
		// attempt.
		s.finishRun(ctx, &run, automationdomain.RunStatusFailed, err.Error())
		return &run, fmt.Errorf("document_creation_failed: %w", err)
	}

	sendNote := ""
	if rule.AutoSend {
		if _, sendErr := s.sendSvc.SendDocument(ctx, senddomain.SendRequest{DocumentID: doc.ID}); sendErr != nil {
			sendNote = "auto_send_failed: " + sendErr.Error()
			s.log.Warn("auto send failed",
				zap.String("rule_id", rule.ID.String()),
				zap.String("document_id", doc.ID.String()),
				zap.Error(sendErr),
			)
		}
	}

	anchor := now
	if rule.NextRunAt != nil {
		anchor = *rule.NextRunAt
	}
	next, err := automationdomain.NextRun(*rule, anchor)
	if err != nil {
		// created_document_id stays empty on failed runs; keep the
		// reference in the message for operators.
		s.finishRun(ctx, &run, automationdomain.RunStatusFailed,
			fmt.Sprintf("schedule_advance_failed: %v (created document %s)", err, doc.ID))
		return &run, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		advanced := *rule
		advanced.OccurrencesCount++
		ruleFields := map[string]any{
			"next_run_at":       next,
			"last_run_at":       now,
			"occurrences_count": advanced.OccurrencesCount,
			"updated_at":        now,
		}
		if automationdomain.HasExpired(advanced, next) {
			ruleFields["is_active"] = false
		}
		if err := tx.WithContext(ctx).
			Model(&automationdomain.Rule{}).
			Where("id = ?", rule.ID).
			Updates(ruleFields).Error; err != nil {
			return err
		}

		completedAt := s.clock.Now()
		if err := tx.WithContext(ctx).
			Model(&automationdomain.Run{}).
			Where("id = ? AND status = ?", run.ID, automationdomain.RunStatusRunning).
			Updates(map[string]any{
				"status":              automationdomain.RunStatusCompleted,
				"completed_at":        completedAt,
				"created_document_id": doc.ID,
				"error_message":       sendNote,
			}).Error; err != nil {
			return err
		}
		run.Status = automationdomain.RunStatusCompleted
		run.CompletedAt = &completedAt
		run.CreatedDocumentID = &doc.ID
		run.ErrorMessage = sendNote
		return nil
	})
	if err != nil {
		return &run, err
	}

	s.activitySvc.Log(ctx, activitydomain.Record{
		DocumentID: &doc.ID,
		EntityType: activitydomain.EntityAutomation,
		EntityID:   &rule.ID,
		Action:     activitydomain.ActionAutomationRan,
		Detail: map[string]any{
			"rule_name":       rule.Name,
			"run_id":          run.ID.String(),
			"document_number": doc.DocumentNumber,
		},
	})

	if err := s.outbox.Publish(ctx, events.Event{
		Type: events.EventAutomationRan,
		Payload: events.AutomationPayload{
			RuleID:            rule.ID.String(),
			RunID:             run.ID.String(),
			CreatedDocumentID: doc.ID.String(),
		}.ToMap(),
		DedupeKey: "automation_ran:" + run.ID.String(),
	}); err != nil {
		s.log.Warn("failed to publish automation event", zap.Error(err))
	}

	return &run, nil
}

func (s *Service) Runs(ctx context.Context, ruleID snowflake.ID, limit int) ([]automationdomain.Run, error) {
	if limit <= 0 {
		limit = defaultRunHistory
	}
	var runs []automationdomain.Run
	err := s.db.WithContext(ctx).
		Where("rule_id = ?", ruleID).
		Order("scheduled_at DESC").
		Limit(limit).
		Find(&runs).Error
	return runs, err
}

// finishRun finalizes a run that did not complete. Failed runs never carry
// created_document_id; the claim retake in Trigger relies on that.
func (s *Service) finishRun(ctx context.Context, run *automationdomain.Run, status automationdomain.RunStatus, message string) {
	completedAt := s.clock.Now()
	fields := map[string]any{
		"status":        status,
		"completed_at":  completedAt,
		"error_message": message,
	}
	if err := s.db.WithContext(ctx).
		Model(&automationdomain.Run{}).
		Where("id = ? AND status = ?", run.ID, automationdomain.RunStatusRunning).
		Updates(fields).Error; err != nil {
		s.log.Warn("failed to finalize run",
			zap.String("run_id", run.ID.String()),
			zap.Error(err),
		)
		return
	}
	run.Status = status
	run.CompletedAt = &completedAt
	run.CreatedDocumentID = nil
	run.ErrorMessage = message
}

func (s *Service) load(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*automationdomain.Rule, error) {
	var rule automationdomain.Rule
	err := tx.WithContext(ctx).Where("id = ?", id).First(&rule).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, automationdomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rule, nil
}
