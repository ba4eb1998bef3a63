package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	activitydomain "github.com/RonanBeelen/InvoiceStudio/internal/activity/domain"
	documentdomain "github.com/RonanBeelen/InvoiceStudio/internal/document/domain"
	senddomain "github.com/RonanBeelen/InvoiceStudio/internal/send/domain"
	"github.com/RonanBeelen/InvoiceStudio/pkg/db/pagination"
)

type lineItemRequest struct {
	Description   string          `json:"description"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	BtwPercentage decimal.Decimal `json:"btw_percentage"`
}

type createDocumentRequest struct {
	DocumentType string            `json:"document_type"`
	CustomerID   string            `json:"customer_id"`
	TemplateID   string            `json:"template_id"`
	Date         string            `json:"date"`
	DueDate      string            `json:"due_date"`
	LineItems    []lineItemRequest `json:"line_items"`
	Notes        string            `json:"notes"`
	GeneratePDF  bool              `json:"generate_pdf"`
}

func (s *Server) CreateDocument(c *gin.Context) {
	var req createDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	customerID, err := parseOptionalID(req.CustomerID)
	if err != nil {
		AbortWithError(c, newValidationError("customer_id", "invalid_customer_id", "invalid customer_id"))
		return
	}
	templateID, err := parseOptionalID(req.TemplateID)
	if err != nil {
		AbortWithError(c, newValidationError("template_id", "invalid_template_id", "invalid template_id"))
		return
	}
	date, err := parseOptionalDate(req.Date)
	if err != nil {
		AbortWithError(c, newValidationError("date", "invalid_date", "invalid date"))
		return
	}
	dueDate, err := parseOptionalDate(req.DueDate)
	if err != nil {
		AbortWithError(c, newValidationError("due_date", "invalid_due_date", "invalid due_date"))
		return
	}

	items := make([]documentdomain.LineItem, 0, len(req.LineItems))
	for _, item := range req.LineItems {
		items = append(items, documentdomain.LineItem{
			Description:   strings.TrimSpace(item.Description),
			Quantity:      item.Quantity,
			UnitPrice:     item.UnitPrice,
			BtwPercentage: item.BtwPercentage,
		})
	}

	resp, err := s.documentSvc.Create(c.Request.Context(), documentdomain.CreateRequest{
		DocumentType: documentdomain.Type(req.DocumentType),
		CustomerID:   customerID,
		TemplateID:   templateID,
		LineItems:    items,
		Date:         date,
		DueDate:      dueDate,
		Notes:        req.Notes,
		GeneratePDF:  req.GeneratePDF,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListDocuments(c *gin.Context) {
	var query struct {
		pagination.Pagination
		DocumentType string `form:"document_type"`
		Status       string `form:"status"`
		CustomerID   string `form:"customer_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req := documentdomain.ListRequest{
		Pagination:   query.Pagination,
		DocumentType: documentdomain.Type(query.DocumentType),
		Status:       documentdomain.Status(query.Status),
	}
	if query.CustomerID != "" {
		customerID, err := parseOptionalID(query.CustomerID)
		if err != nil {
			AbortWithError(c, newValidationError("customer_id", "invalid_customer_id", "invalid customer_id"))
			return
		}
		req.CustomerID = *customerID
	}

	resp, err := s.documentSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetDocument(c *gin.Context) {
	id, err := documentdomain.ParseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.documentSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateDocument(c *gin.Context) {
	id, err := documentdomain.ParseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req struct {
		Notes *string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.documentSvc.Update(c.Request.Context(), documentdomain.UpdateRequest{
		ID:    id,
		Notes: req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteDocument(c *gin.Context) {
	id, err := documentdomain.ParseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.documentSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) TransitionDocument(c *gin.Context) {
	id, err := documentdomain.ParseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.documentSvc.Transition(c.Request.Context(), id,
		documentdomain.Status(req.Status), documentdomain.Actor{Type: "user"})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SendDocument(c *gin.Context) {
	s.sendDocument(c, false)
}

func (s *Server) SendReminder(c *gin.Context) {
	s.sendDocument(c, true)
}

func (s *Server) sendDocument(c *gin.Context, reminder bool) {
	id, err := documentdomain.ParseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req struct {
		Recipient string `json:"recipient"`
		Subject   string `json:"subject"`
		Body      string `json:"body"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.sendSvc.SendDocument(c.Request.Context(), senddomain.SendRequest{
		DocumentID: id,
		Recipient:  strings.TrimSpace(req.Recipient),
		Subject:    strings.TrimSpace(req.Subject),
		Body:       req.Body,
		Reminder:   reminder,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) MarkDocumentSent(c *gin.Context) {
	id, err := documentdomain.ParseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.sendSvc.MarkSent(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"marked_sent": true}})
}

func (s *Server) ListDocumentActivity(c *gin.Context) {
	id, err := documentdomain.ParseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	entries, err := s.activitySvc.ForDocument(c.Request.Context(), activitydomain.ListFilter{
		DocumentID: id,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entries})
}

func (s *Server) ListDocumentSends(c *gin.Context) {
	id, err := documentdomain.ParseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	records, err := s.sendSvc.ForDocument(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": records})
}
