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
	"gorm.io/datatypes"
	"gorm.io/gorm"

	activitydomain "github.com/RonanBeelen/InvoiceStudio/internal/activity/domain"
	"github.com/RonanBeelen/InvoiceStudio/internal/clock"
	customerdomain "github.com/RonanBeelen/InvoiceStudio/internal/customer/domain"
	documentdomain "github.com/RonanBeelen/InvoiceStudio/internal/document/domain"
	"github.com/RonanBeelen/InvoiceStudio/internal/events"
	"github.com/RonanBeelen/InvoiceStudio/internal/render"
	settingsdomain "github.com/RonanBeelen/InvoiceStudio/internal/settings/domain"
	templatedomain "github.com/RonanBeelen/InvoiceStudio/internal/template/domain"
	"github.com/RonanBeelen/InvoiceStudio/pkg/db/pagination"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	SettingsSvc settingsdomain.Service
	CustomerSvc customerdomain.Service
	TemplateSvc templatedomain.Service
	ActivitySvc activitydomain.Service
	Renderer    render.Generator
	Outbox      *events.Outbox
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	settingsSvc settingsdomain.Service
	customerSvc customerdomain.Service
	templateSvc templatedomain.Service
	activitySvc activitydomain.Service
	renderer    render.Generator
	outbox      *events.Outbox
}

func NewService(p Params) documentdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("document.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		settingsSvc: p.SettingsSvc,
		customerSvc: p.CustomerSvc,
		templateSvc: p.TemplateSvc,
		activitySvc: p.ActivitySvc,
		renderer:    p.Renderer,
		outbox:      p.Outbox,
	}
}

func (s *Service) Create(ctx context.Context, req documentdomain.CreateRequest) (*documentdomain.Document, error) {
	if !req.DocumentType.IsValid() {
		return nil, documentdomain.ErrInvalidType
	}
	if len(req.LineItems) == 0 {
		return nil, documentdomain.ErrNoLineItems
	}

	settings, err := s.settingsSvc.Get(ctx)
	if err != nil {
		return nil, err
	}

	var customer *customerdomain.Customer
	if req.CustomerID != nil {
		customer, err = s.customerSvc.GetByID(ctx, *req.CustomerID)
		if err != nil {
			return nil, err
		}
	}

	now := s.clock.Now()
	date := now
	if req.Date != nil {
		date = *req.Date
	}
	dueDate := date.AddDate(0, 0, settings.DefaultPaymentTermsDays)
	if req.DueDate != nil {
		dueDate = *req.DueDate
	}

	totals := documentdomain.CalculateTotals(req.LineItems)

	doc := documentdomain.Document{
		ID:           s.genID.Generate(),
		DocumentType: req.DocumentType,
		Status:       documentdomain.StatusConcept,
		Date:         date,
		DueDate:      dueDate,
		CustomerID:   req.CustomerID,
		TemplateID:   req.TemplateID,
		LineItems:    datatypes.NewJSONSlice(req.LineItems),
		Subtotal:     totals.Subtotal,
		BtwAmount:    totals.BtwAmount,
		TotalAmount:  totals.Total,
		Notes:        strings.TrimSpace(req.Notes),
	}
	if customer != nil {
		doc.CustomerName = customer.Name
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.settingsSvc.NextDocumentNumber(ctx, tx, string(req.DocumentType))
		if err != nil {
			return err
		}
		doc.DocumentNumber = number

		if err := tx.WithContext(ctx).Create(&doc).Error; err != nil {
			return err
		}

		if err := s.activitySvc.LogTx(ctx, tx, activitydomain.Record{
			DocumentID: &doc.ID,
			EntityType: activitydomain.EntityDocument,
			EntityID:   &doc.ID,
			Action:     activitydomain.ActionCreated,
			Detail: map[string]any{
				"document_number": doc.DocumentNumber,
				"document_type":   string(doc.DocumentType),
			},
		}); err != nil {
			return err
		}

		return s.outbox.PublishTx(ctx, tx, events.Event{
			Type: events.EventDocumentCreated,
			Payload: events.DocumentPayload{
				DocumentID:     doc.ID.String(),
				DocumentType:   string(doc.DocumentType),
				DocumentNumber: doc.DocumentNumber,
			}.ToMap(),
		})
	})
	if err != nil {
		return nil, err
	}

	if req.GeneratePDF {
		// Rendering is best-effort: the document record is already
		// committed and the PDF can be regenerated later.
		if err := s.renderPDF(ctx, &doc, customer, settings); err != nil {
			s.log.Warn("pdf generation failed",
				zap.String("document_id", doc.ID.String()),
				zap.Error(err),
			)
		}
	}

	return &doc, nil
}

func (s *Service) List(ctx context.Context, req documentdomain.ListRequest) (documentdomain.ListResponse, error) {
	query := s.db.WithContext(ctx).Model(&documentdomain.Document{})
	if req.DocumentType != "" {
		query = query.Where("document_type = ?", req.DocumentType)
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.CustomerID != 0 {
		query = query.Where("customer_id = ?", req.CustomerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return documentdomain.ListResponse{}, err
	}

	limit := req.Limit()
	offset := req.Offset()

	var documents []documentdomain.Document
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&documents).Error
	if err != nil {
		return documentdomain.ListResponse{}, err
	}

	return documentdomain.ListResponse{
		PageInfo: pagination.PageInfo{
			NextPageToken: pagination.NextToken(offset, limit, total),
			TotalCount:    total,
		},
		Documents: documents,
	}, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*documentdomain.Document, error) {
	return s.load(ctx, s.db, id)
}

func (s *Service) Update(ctx context.Context, req documentdomain.UpdateRequest) (*documentdomain.Document, error) {
	doc, err := s.load(ctx, s.db, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Notes != nil {
		doc.Notes = strings.TrimSpace(*req.Notes)
	}
	doc.UpdatedAt = s.clock.Now()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.WithContext(ctx).Save(doc).Error; err != nil {
			return err
		}
		return s.activitySvc.LogTx(ctx, tx, activitydomain.Record{
			DocumentID: &doc.ID,
			EntityType: activitydomain.EntityDocument,
			EntityID:   &doc.ID,
			Action:     activitydomain.ActionUpdated,
			Detail:     map[string]any{"document_number": doc.DocumentNumber},
		})
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	doc, err := s.load(ctx, s.db, id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.WithContext(ctx).Where("id = ?", id).Delete(&documentdomain.Document{}).Error; err != nil {
			return err
		}
		if err := s.activitySvc.LogTx(ctx, tx, activitydomain.Record{
			EntityType: activitydomain.EntityDocument,
			EntityID:   &doc.ID,
			Action:     activitydomain.ActionDeleted,
			Detail:     map[string]any{"document_number": doc.DocumentNumber},
		}); err != nil {
			return err
		}
		return s.outbox.PublishTx(ctx, tx, events.Event{
			Type: events.EventDocumentDeleted,
			Payload: events.DocumentPayload{
				DocumentID:     doc.ID.String(),
				DocumentType:   string(doc.DocumentType),
				DocumentNumber: doc.DocumentNumber,
			}.ToMap(),
		})
	})
}

func (s *Service) Transition(ctx context.Context, id snowflake.ID, newStatus documentdomain.Status, actor documentdomain.Actor) (*documentdomain.Document, error) {
	return s.transition(ctx, id, newStatus, actor, activitydomain.ActionStatusChanged)
}

func (s *Service) TransitionAs(ctx context.Context, id snowflake.ID, newStatus documentdomain.Status, actor documentdomain.Actor, action string) (*documentdomain.Document, error) {
	if action == "" {
		action = string(activitydomain.ActionStatusChanged)
	}
	return s.transition(ctx, id, newStatus, actor, activitydomain.Action(action))
}

func (s *Service) transition(ctx context.Context, id snowflake.ID, newStatus documentdomain.Status, actor documentdomain.Actor, action activitydomain.Action) (*documentdomain.Document, error) {
	var updated *documentdomain.Document

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doc, err := s.load(ctx, tx, id)
		if err != nil {
			return err
		}

		if err := documentdomain.ValidateTransition(doc.DocumentType, doc.Status, newStatus); err != nil {
			return err
		}

		now := s.clock.Now()
		fields := map[string]any{
			"status":     newStatus,
			"updated_at": now,
		}
		if newStatus == documentdomain.StatusSent && doc.SentAt == nil {
			fields["sent_at"] = now
		}

		// Conditional update guards against a concurrent transition
		// between load and write.
		result := tx.WithContext(ctx).
			Model(&documentdomain.Document{}).
			Where("id = ? AND status = ?", id, doc.Status).
			Updates(fields)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return documentdomain.ErrInvalidTransition
		}

		if err := s.activitySvc.LogTx(ctx, tx, activitydomain.Record{
			DocumentID: &doc.ID,
			EntityType: activitydomain.EntityDocument,
			EntityID:   &doc.ID,
			Action:     action,
			Detail: map[string]any{
				"from":       string(doc.Status),
				"to":         string(newStatus),
				"actor_type": actor.Type,
				"actor_id":   actor.ID,
			},
		}); err != nil {
			return err
		}

		eventType := events.EventStatusChanged
		if newStatus == documentdomain.StatusPaid {
			eventType = events.EventPaymentConfirmed
		}
		if err := s.outbox.PublishTx(ctx, tx, events.Event{
			Type: eventType,
			Payload: events.DocumentPayload{
				DocumentID:     doc.ID.String(),
				DocumentType:   string(doc.DocumentType),
				DocumentNumber: doc.DocumentNumber,
				Status:         string(newStatus),
			}.ToMap(),
		}); err != nil {
			return err
		}

		doc.Status = newStatus
		if sentAt, ok := fields["sent_at"].(time.Time); ok {
			doc.SentAt = &sentAt
		}
		doc.UpdatedAt = now
		updated = doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) CloneForRule(ctx context.Context, sourceID, ruleID snowflake.ID) (*documentdomain.Document, error) {
	source, err := s.load(ctx, s.db, sourceID)
	if err != nil {
		return nil, err
	}

	settings, err := s.settingsSvc.Get(ctx)
	if err != nil {
		return nil, err
	}

	var customer *customerdomain.Customer
	if source.CustomerID != nil {
		customer, err = s.customerSvc.GetByID(ctx, *source.CustomerID)
		if err != nil && !errors.Is(err, customerdomain.ErrNotFound) {
			return nil, err
		}
	}

	now := s.clock.Now()
	clone := documentdomain.Document{
		ID:              s.genID.Generate(),
		DocumentType:    source.DocumentType,
		Status:          documentdomain.StatusConcept,
		Date:            now,
		DueDate:         now.AddDate(0, 0, settings.DefaultPaymentTermsDays),
		CustomerID:      source.CustomerID,
		CustomerName:    source.CustomerName,
		TemplateID:      source.TemplateID,
		LineItems:       source.LineItems,
		Subtotal:        source.Subtotal,
		BtwAmount:       source.BtwAmount,
		TotalAmount:     source.TotalAmount,
		Notes:           source.Notes,
		RecurringRuleID: &ruleID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.settingsSvc.NextDocumentNumber(ctx, tx, string(source.DocumentType))
		if err != nil {
			return err
		}
		clone.DocumentNumber = number

		if err := tx.WithContext(ctx).Create(&clone).Error; err != nil {
			return err
		}

		return s.activitySvc.LogTx(ctx, tx, activitydomain.Record{
			DocumentID: &clone.ID,
			EntityType: activitydomain.EntityDocument,
			EntityID:   &clone.ID,
			Action:     activitydomain.ActionCreated,
			Detail: map[string]any{
				"document_number":   clone.DocumentNumber,
				"recurring_rule_id": ruleID.String(),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	// The clone is valid without a PDF; rendering failures surface on the
	// automation run instead of failing the clone.
	if err := s.renderPDF(ctx, &clone, customer, settings); err != nil {
		s.log.Warn("pdf generation failed for recurring clone",
			zap.String("document_id", clone.ID.String()),
			zap.Error(err),
		)
	}

	return &clone, nil
}

func (s *Service) SetPDF(ctx context.Context, id snowflake.ID, pdfURL, storagePath string) error {
	return s.db.WithContext(ctx).
		Model(&documentdomain.Document{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"pdf_url":      pdfURL,
			"storage_path": storagePath,
			"updated_at":   s.clock.Now(),
		}).Error
}

func (s *Service) RecordSend(ctx context.Context, id snowflake.ID, recipient string, sentAt time.Time) error {
	return s.db.WithContext(ctx).
		Model(&documentdomain.Document{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"last_sent_email": recipient,
			"updated_at":      sentAt,
		}).Error
}

func (s *Service) load(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*documentdomain.Document, error) {
	var doc documentdomain.Document
	err := tx.WithContext(ctx).Where("id = ?", id).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, documentdomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *Service) renderPDF(ctx context.Context, doc *documentdomain.Document, customer *customerdomain.Customer, settings settingsdomain.CompanySettings) error {
	if doc.TemplateID == nil {
		return nil
	}
	tmpl, err := s.templateSvc.GetByID(ctx, *doc.TemplateID)
	if err != nil {
		return err
	}

	filename := fmt.Sprintf("%s_%s", doc.DocumentType, doc.DocumentNumber)
	result, err := s.renderer.Generate(ctx, buildRenderRequest(*doc, customer, settings, tmpl.TemplateJSON, filename))
	if err != nil {
		return err
	}

	if err := s.SetPDF(ctx, doc.ID, result.PdfURL, result.StoragePath); err != nil {
		return err
	}
	doc.PdfURL = &result.PdfURL
	doc.StoragePath = &result.StoragePath

	if err := s.templateSvc.RecordUsage(ctx, tmpl.ID, filename+".pdf", result.SizeBytes); err != nil {
		s.log.Warn("failed to record template usage", zap.Error(err))
	}
	return nil
}

func buildRenderRequest(doc documentdomain.Document, customer *customerdomain.Customer, settings settingsdomain.CompanySettings, templateJSON map[string]any, filename string) render.Request {
	items := make([]render.LineItemView, 0, len(doc.LineItems))
	for _, item := range doc.LineItems {
		items = append(items, render.LineItemView{
			Description:   item.Description,
			Quantity:      item.Quantity.String(),
			UnitPrice:     render.FormatCurrency(item.UnitPrice.StringFixed(2)),
			BtwPercentage: item.BtwPercentage.String(),
			LineTotal:     render.FormatCurrency(item.Quantity.Mul(item.UnitPrice).StringFixed(2)),
		})
	}

	req := render.Request{
		TemplateJSON: templateJSON,
		Settings:     settings,
		Document: render.DocumentView{
			Type:      string(doc.DocumentType),
			Number:    doc.DocumentNumber,
			Date:      doc.Date.Format("02-01-2006"),
			DueDate:   doc.DueDate.Format("02-01-2006"),
			LineItems: items,
			Subtotal:  render.FormatCurrency(doc.Subtotal.StringFixed(2)),
			BtwAmount: render.FormatCurrency(doc.BtwAmount.StringFixed(2)),
			Total:     render.FormatCurrency(doc.TotalAmount.StringFixed(2)),
		},
		Filename: filename,
	}
	if customer != nil {
		req.Customer = &render.CustomerView{
			Name:       customer.Name,
			Address:    customer.Address,
			PostalCode: customer.PostalCode,
			City:       customer.City,
			Email:      customer.Email,
		}
	}
	return req
}
