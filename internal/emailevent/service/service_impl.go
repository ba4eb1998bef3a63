package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	activitydomain "github.com/RonanBeelen/InvoiceStudio/internal/activity/domain"
	"github.com/RonanBeelen/InvoiceStudio/internal/clock"
	"github.com/RonanBeelen/InvoiceStudio/internal/config"
	documentdomain "github.com/RonanBeelen/InvoiceStudio/internal/document/domain"
	eventdomain "github.com/RonanBeelen/InvoiceStudio/internal/emailevent/domain"
	senddomain "github.com/RonanBeelen/InvoiceStudio/internal/send/domain"
)

const (
	snippetLimit     = 500
	defaultListLimit = 100
)

// Provider event names mapped to internal event types.
var providerEventTypes = map[string]eventdomain.EventType{
	"email.delivered":        eventdomain.EventDelivered,
	"email.delivery_delayed": eventdomain.EventDelivered,
	"email.opened":           eventdomain.EventOpened,
	"email.bounced":          eventdomain.EventBounced,
	"email.complained":       eventdomain.EventBounced,
}

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Config      config.Config
	DocumentSvc documentdomain.Service
	ActivitySvc activitydomain.Service
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	cfg         config.Config
	documentSvc documentdomain.Service
	activitySvc activitydomain.Service
}

func NewService(p Params) eventdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("emailevent.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		cfg:         p.Config,
		documentSvc: p.DocumentSvc,
		activitySvc: p.ActivitySvc,
	}
}

type webhookPayload struct {
	Type string          `json:"type"`
	Data webhookData     `json:"data"`
	Raw  json.RawMessage `json:"-"`
}

type webhookData struct {
	EmailID   string            `json:"email_id"`
	MessageID string            `json:"message_id"`
	InReplyTo string            `json:"in_reply_to"`
	From      json.RawMessage   `json:"from"`
	Subject   string            `json:"subject"`
	Text      string            `json:"text"`
	Body      string            `json:"body"`
	Headers   map[string]string `json:"headers"`
	Bounce    struct {
		Description string `json:"description"`
	} `json:"bounce"`
}

func (s *Service) HandleWebhook(ctx context.Context, body []byte, signature string) (eventdomain.WebhookResult, error) {
	if err := s.verifySignature(body, signature); err != nil {
		return eventdomain.WebhookResult{}, err
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return eventdomain.WebhookResult{}, eventdomain.ErrMalformedPayload
	}

	isReply := payload.Type == "email.received" || payload.Type == "inbound"
	eventType := eventdomain.EventReplied
	if !isReply {
		mapped, ok := providerEventTypes[payload.Type]
		if !ok {
			s.log.Info("ignoring unknown webhook event", zap.String("type", payload.Type))
			return eventdomain.WebhookResult{Ignored: true}, nil
		}
		eventType = mapped
	}

	record, err := s.matchSendRecord(ctx, payload.Data)
	if err != nil {
		return eventdomain.WebhookResult{}, err
	}

	bodyText := payload.Data.Text
	if bodyText == "" {
		bodyText = payload.Data.Body
	}
	snippet := truncateSnippet(bodyText)

	intent := eventdomain.IntentUnknown
	if isReply && bodyText != "" {
		intent = eventdomain.DetectIntent(payload.Data.Subject, bodyText)
	}

	event := eventdomain.EmailEvent{
		ID:                s.genID.Generate(),
		EventType:         eventType,
		ProviderMessageID: firstNonEmpty(payload.Data.EmailID, payload.Data.MessageID),
		FromAddress:       fromAddress(payload.Data.From),
		Subject:           payload.Data.Subject,
		Snippet:           snippet,
		Intent:            intent,
		Raw:               rawMap(body),
	}
	if record != nil {
		event.SendRecordID = &record.ID
		event.DocumentID = &record.DocumentID
	}

	result := eventdomain.WebhookResult{
		EventType:      eventType,
		DetectedIntent: intent,
	}
	if record != nil {
		result.MatchedSend = record.ID.String()
		s.trackDelivery(ctx, record, eventType, payload.Data.Bounce.Description)
	}

	if record != nil && isReply {
		result.AppliedStatus = s.applyIntent(ctx, &event, record.DocumentID, intent)
	} else if record != nil {
		s.activitySvc.Log(ctx, activitydomain.Record{
			DocumentID: event.DocumentID,
			EntityType: activitydomain.EntityDocument,
			EntityID:   event.DocumentID,
			Action:     activityAction(eventType),
			Detail:     map[string]any{"event_type": string(eventType)},
		})
	}

	if err := s.db.WithContext(ctx).Create(&event).Error; err != nil {
		return eventdomain.WebhookResult{}, err
	}
	return result, nil
}

// truncateSnippet caps the stored reply excerpt, trimming back to a rune
// boundary so multibyte text is never split mid-sequence.
func truncateSnippet(text string) string {
	if len(text) <= snippetLimit {
		return text
	}
	cut := snippetLimit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

// verifySignature checks the hex HMAC-SHA256 of the raw body. An empty
// configured secret disables verification (dev mode).
func (s *Service) verifySignature(body []byte, signature string) error {
	if s.cfg.WebhookSecret == "" {
		return nil
	}
	if signature == "" {
		return eventdomain.ErrBadSignature
	}
	mac := hmac.New(sha256.New, []byte(s.cfg.WebhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return eventdomain.ErrBadSignature
	}
	return nil
}

// matchSendRecord resolves the originating send via provider message id,
// the in-reply-to header, or any id in the references chain.
func (s *Service) matchSendRecord(ctx context.Context, data webhookData) (*senddomain.SendRecord, error) {
	candidates := make([]string, 0, 4)
	for _, id := range []string{data.EmailID, data.MessageID, data.InReplyTo} {
		if id != "" {
			candidates = append(candidates, id)
		}
	}
	if refs := data.Headers["references"]; refs != "" {
		for _, ref := range strings.Fields(refs) {
			candidates = append(candidates, strings.Trim(ref, "<>"))
		}
	}

	for _, id := range candidates {
		var record senddomain.SendRecord
		err := s.db.WithContext(ctx).
			Where("provider_message_id = ?", id).
			First(&record).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return &record, nil
	}
	return nil, nil
}

func (s *Service) trackDelivery(ctx context.Context, record *senddomain.SendRecord, eventType eventdomain.EventType, bounceReason string) {
	var fields map[string]any
	switch eventType {
	case eventdomain.EventDelivered:
		fields = map[string]any{"status": senddomain.DeliveryDelivered}
	case eventdomain.EventOpened:
		fields = map[string]any{"status": senddomain.DeliveryOpened}
	case eventdomain.EventBounced:
		fields = map[string]any{"status": senddomain.DeliveryBounced}
		s.log.Warn("email bounced",
			zap.String("send_record_id", record.ID.String()),
			zap.String("reason", bounceReason),
		)
	default:
		return
	}

	if err := s.db.WithContext(ctx).
		Model(&senddomain.SendRecord{}).
		Where("id = ?", record.ID).
		Updates(fields).Error; err != nil {
		s.log.Warn("failed to update delivery status", zap.Error(err))
	}
}

// applyIntent drives the document status from a detected reply intent.
// Transitions the state machine rejects are recorded but not applied.
func (s *Service) applyIntent(ctx context.Context, event *eventdomain.EmailEvent, documentID snowflake.ID, intent eventdomain.Intent) string {
	detail := map[string]any{
		"from":    event.FromAddress,
		"intent":  string(intent),
		"subject": event.Subject,
	}

	newStatus, ok := eventdomain.StatusForIntent(intent)
	if !ok {
		s.activitySvc.Log(ctx, activitydomain.Record{
			DocumentID: &documentID,
			EntityType: activitydomain.EntityDocument,
			EntityID:   &documentID,
			Action:     activitydomain.ActionEmailReplied,
			Detail:     detail,
		})
		return ""
	}

	action := activitydomain.ActionEmailReplied
	if intent == eventdomain.IntentPaymentConfirmation {
		action = activitydomain.ActionPaymentConfirmed
	}

	actor := documentdomain.Actor{Type: "email", ID: event.FromAddress}
	if _, err := s.documentSvc.TransitionAs(ctx, documentID, newStatus, actor, string(action)); err != nil {
		s.log.Warn("intent-driven transition rejected",
			zap.String("document_id", documentID.String()),
			zap.String("intent", string(intent)),
			zap.Error(err),
		)
		detail["rejected_status"] = string(newStatus)
		s.activitySvc.Log(ctx, activitydomain.Record{
			DocumentID: &documentID,
			EntityType: activitydomain.EntityDocument,
			EntityID:   &documentID,
			Action:     activitydomain.ActionEmailReplied,
			Detail:     detail,
		})
		return ""
	}

	event.AppliedStatus = string(newStatus)
	return string(newStatus)
}

func (s *Service) List(ctx context.Context, unreadOnly bool, limit int) ([]eventdomain.EmailEvent, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	query := s.db.WithContext(ctx).Model(&eventdomain.EmailEvent{})
	if unreadOnly {
		query = query.Where("dismissed = ? AND event_type = ?", false, eventdomain.EventReplied)
	}
	var events []eventdomain.EmailEvent
	err := query.Order("created_at DESC").Limit(limit).Find(&events).Error
	return events, err
}

func (s *Service) UnreadCount(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&eventdomain.EmailEvent{}).
		Where("dismissed = ? AND event_type = ?", false, eventdomain.EventReplied).
		Count(&count).Error
	return count, err
}

func (s *Service) Dismiss(ctx context.Context, id snowflake.ID) error {
	result := s.db.WithContext(ctx).
		Model(&eventdomain.EmailEvent{}).
		Where("id = ?", id).
		Update("dismissed", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return eventdomain.ErrNotFound
	}
	return nil
}

func (s *Service) DismissAll(ctx context.Context) error {
	return s.db.WithContext(ctx).
		Model(&eventdomain.EmailEvent{}).
		Where("dismissed = ?", false).
		Update("dismissed", true).Error
}

func activityAction(eventType eventdomain.EventType) activitydomain.Action {
	switch eventType {
	case eventdomain.EventOpened:
		return activitydomain.ActionOpened
	case eventdomain.EventBounced:
		return activitydomain.ActionBounced
	default:
		return activitydomain.ActionDelivered
	}
}

func fromAddress(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString
	}
	var asObject struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(raw, &asObject); err == nil {
		return asObject.Email
	}
	var asList []string
	if err := json.Unmarshal(raw, &asList); err == nil && len(asList) > 0 {
		return asList[0]
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func rawMap(body []byte) map[string]any {
	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil
	}
	return decoded
}
