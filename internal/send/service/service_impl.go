package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	activitydomain "github.com/RonanBeelen/InvoiceStudio/internal/activity/domain"
	"github.com/RonanBeelen/InvoiceStudio/internal/clock"
	"github.com/RonanBeelen/InvoiceStudio/internal/config"
	customerdomain "github.com/RonanBeelen/InvoiceStudio/internal/customer/domain"
	documentdomain "github.com/RonanBeelen/InvoiceStudio/internal/document/domain"
	"github.com/RonanBeelen/InvoiceStudio/internal/events"
	senddomain "github.com/RonanBeelen/InvoiceStudio/internal/send/domain"
	settingsdomain "github.com/RonanBeelen/InvoiceStudio/internal/settings/domain"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Config      config.Config
	Provider    senddomain.Provider
	DocumentSvc documentdomain.Service
	CustomerSvc customerdomain.Service
	SettingsSvc settingsdomain.Service
	ActivitySvc activitydomain.Service
	Outbox      *events.Outbox
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	cfg         config.Config
	provider    senddomain.Provider
	documentSvc documentdomain.Service
	customerSvc customerdomain.Service
	settingsSvc settingsdomain.Service
	activitySvc activitydomain.Service
	outbox      *events.Outbox
}

func NewService(p Params) senddomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("send.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		cfg:         p.Config,
		provider:    p.Provider,
		documentSvc: p.DocumentSvc,
		customerSvc: p.CustomerSvc,
		settingsSvc: p.SettingsSvc,
		activitySvc: p.ActivitySvc,
		outbox:      p.Outbox,
	}
}

func (s *Service) SendDocument(ctx context.Context, req senddomain.SendRequest) (*senddomain.SendRecord, error) {
	doc, err := s.documentSvc.GetByID(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}
	if doc.PdfURL == nil || *doc.PdfURL == "" {
		return nil, documentdomain.ErrNoPDF
	}

	settings, err := s.settingsSvc.Get(ctx)
	if err != nil {
		return nil, err
	}

	customerName := doc.CustomerName
	recipient := strings.TrimSpace(req.Recipient)
	if recipient == "" && doc.CustomerID != nil {
		customer, err := s.customerSvc.GetByID(ctx, *doc.CustomerID)
		if err != nil {
			return nil, err
		}
		recipient = strings.TrimSpace(customer.Email)
		customerName = customer.Name
	}
	if recipient == "" {
		return nil, senddomain.ErrNoRecipient
	}

	if err := s.checkSendLimit(ctx); err != nil {
		return nil, err
	}

	subject := req.Subject
	body := req.Body
	if subject == "" || body == "" {
		tmplSubject, tmplBody := emailTemplates(doc, settings)
		if subject == "" {
			subject = tmplSubject
		}
		if body == "" {
			body = tmplBody
		}
	}
	subject = expandPlaceholders(subject, doc, settings, customerName)
	body = expandPlaceholders(body, doc, settings, customerName)

	fromName := settings.EmailFromName
	if fromName == "" {
		fromName = s.cfg.EmailFromName
	}
	fromAddr := settings.EmailFromAddress
	if fromAddr == "" {
		fromAddr = s.cfg.EmailFromAddr
	}
	replyTo := settings.EmailReplyTo
	if replyTo == "" {
		replyTo = s.cfg.EmailReplyTo
	}

	result, err := s.provider.Send(ctx, senddomain.Message{
		FromName: fromName,
		FromAddr: fromAddr,
		To:       recipient,
		ReplyTo:  replyTo,
		Subject:  subject,
		HTML:     bodyHTML(body),
		PDFURL:   *doc.PdfURL,
		PDFName:  attachmentName(doc),
	})
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	record := senddomain.SendRecord{
		ID:                s.genID.Generate(),
		DocumentID:        doc.ID,
		Recipient:         recipient,
		Subject:           subject,
		Provider:          providerName(result),
		ProviderMessageID: result.MessageID,
		Status:            senddomain.DeliverySent,
		Reminder:          req.Reminder,
		SentAt:            now,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}

	if err := s.documentSvc.RecordSend(ctx, doc.ID, recipient, now); err != nil {
		s.log.Warn("failed to record send on document",
			zap.String("document_id", doc.ID.String()),
			zap.Error(err),
		)
	}

	action := activitydomain.ActionSent
	if req.Reminder {
		action = activitydomain.ActionReminderSent
	}

	if !req.Reminder && doc.Status == documentdomain.StatusConcept {
		if _, err := s.documentSvc.TransitionAs(ctx, doc.ID, documentdomain.StatusSent, documentdomain.SystemActor, string(action)); err != nil {
			s.log.Warn("failed to mark document sent",
				zap.String("document_id", doc.ID.String()),
				zap.Error(err),
			)
		}
	} else {
		s.activitySvc.Log(ctx, activitydomain.Record{
			DocumentID: &doc.ID,
			EntityType: activitydomain.EntityDocument,
			EntityID:   &doc.ID,
			Action:     action,
			Detail:     map[string]any{"recipient": recipient},
		})
	}

	if err := s.outbox.Publish(ctx, events.Event{
		Type: events.EventDocumentSent,
		Payload: events.DocumentPayload{
			DocumentID:     doc.ID.String(),
			DocumentType:   string(doc.DocumentType),
			DocumentNumber: doc.DocumentNumber,
		}.ToMap(),
		DedupeKey: "document_sent:" + record.ID.String(),
	}); err != nil {
		s.log.Warn("failed to publish send event", zap.Error(err))
	}

	return &record, nil
}

func (s *Service) MarkSent(ctx context.Context, documentID snowflake.ID) error {
	_, err := s.documentSvc.TransitionAs(ctx, documentID, documentdomain.StatusSent,
		documentdomain.Actor{Type: "user"}, string(activitydomain.ActionMarkedSent))
	return err
}

func (s *Service) ForDocument(ctx context.Context, documentID snowflake.ID) ([]senddomain.SendRecord, error) {
	var records []senddomain.SendRecord
	err := s.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("sent_at DESC").
		Find(&records).Error
	return records, err
}

// checkSendLimit enforces the hourly outbound cap.
func (s *Service) checkSendLimit(ctx context.Context) error {
	if s.cfg.EmailSendLimit <= 0 {
		return nil
	}
	since := s.clock.Now().Add(-time.Hour)
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&senddomain.SendRecord{}).
		Where("sent_at > ?", since).
		Count(&count).Error; err != nil {
		return err
	}
	if count >= int64(s.cfg.EmailSendLimit) {
		return senddomain.ErrSendLimitReached
	}
	return nil
}

func providerName(result senddomain.Result) string {
	if result.MessageID == "" {
		return "manual"
	}
	return "resend"
}
