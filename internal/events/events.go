package events

// Document event types stored in the outbox for downstream consumers
// (notifications, dashboards).
const (
	EventDocumentCreated  = "document_created"
	EventDocumentSent     = "document_sent"
	EventDocumentDeleted  = "document_deleted"
	EventStatusChanged    = "status_changed"
	EventPaymentConfirmed = "payment_confirmed"
	EventAutomationRan    = "automation_ran"
)

// DocumentPayload captures the minimal data needed to process a document event.
type DocumentPayload struct {
	DocumentID     string `json:"document_id"`
	DocumentType   string `json:"document_type"`
	DocumentNumber string `json:"document_number"`
	Status         string `json:"status,omitempty"`
}

// ToMap converts a payload into an outbox-friendly map.
func (p DocumentPayload) ToMap() map[string]any {
	payload := map[string]any{
		"document_id":     p.DocumentID,
		"document_type":   p.DocumentType,
		"document_number": p.DocumentNumber,
	}
	if p.Status != "" {
		payload["status"] = p.Status
	}
	return payload
}

// AutomationPayload captures the minimal data for automation run events.
type AutomationPayload struct {
	RuleID            string `json:"rule_id"`
	RunID             string `json:"run_id"`
	CreatedDocumentID string `json:"created_document_id,omitempty"`
}

// ToMap converts a payload into an outbox-friendly map.
func (p AutomationPayload) ToMap() map[string]any {
	payload := map[string]any{
		"rule_id": p.RuleID,
		"run_id":  p.RunID,
	}
	if p.CreatedDocumentID != "" {
		payload["created_document_id"] = p.CreatedDocumentID
	}
	return payload
}
