package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	automationdomain "github.com/RonanBeelen/InvoiceStudio/internal/automation/domain"
	documentdomain "github.com/RonanBeelen/InvoiceStudio/internal/document/domain"
)

type createAutomationRuleRequest struct {
	Name             string `json:"name"`
	SourceDocumentID string `json:"source_document_id"`
	Frequency        string `json:"frequency"`
	DayOfMonth       int    `json:"day_of_month"`
	IntervalDays     int    `json:"interval_days"`
	AutoSend         bool   `json:"auto_send"`
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date"`
	MaxOccurrences   *int   `json:"max_occurrences"`
}

func (s *Server) CreateAutomationRule(c *gin.Context) {
	var req createAutomationRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	sourceID, err := documentdomain.ParseID(req.SourceDocumentID)
	if err != nil {
		AbortWithError(c, newValidationError("source_document_id", "invalid_source_document_id", "invalid source_document_id"))
		return
	}
	startDate, err := parseOptionalDate(req.StartDate)
	if err != nil {
		AbortWithError(c, newValidationError("start_date", "invalid_start_date", "invalid start_date"))
		return
	}
	endDate, err := parseOptionalDate(req.EndDate)
	if err != nil {
		AbortWithError(c, newValidationError("end_date", "invalid_end_date", "invalid end_date"))
		return
	}

	resp, err := s.automationSvc.Create(c.Request.Context(), automationdomain.CreateRequest{
		Name:             req.Name,
		SourceDocumentID: sourceID,
		Frequency:        automationdomain.Frequency(req.Frequency),
		DayOfMonth:       req.DayOfMonth,
		IntervalDays:     req.IntervalDays,
		AutoSend:         req.AutoSend,
		StartDate:        startDate,
		EndDate:          endDate,
		MaxOccurrences:   req.MaxOccurrences,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListAutomationRules(c *gin.Context) {
	rules, err := s.automationSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rules})
}

func (s *Server) GetAutomationRule(c *gin.Context) {
	id, err := automationdomain.ParseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	rule, err := s.automationSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rule})
}

func (s *Server) UpdateAutomationRule(c *gin.Context) {
	id, err := automationdomain.ParseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req struct {
		Name           *string `json:"name"`
		Frequency      *string `json:"frequency"`
		DayOfMonth     *int    `json:"day_of_month"`
		IntervalDays   *int    `json:"interval_days"`
		AutoSend       *bool   `json:"auto_send"`
		EndDate        string  `json:"end_date"`
		MaxOccurrences *int    `json:"max_occurrences"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	update := automationdomain.UpdateRequest{
		ID:             id,
		Name:           req.Name,
		DayOfMonth:     req.DayOfMonth,
		IntervalDays:   req.IntervalDays,
		AutoSend:       req.AutoSend,
		MaxOccurrences: req.MaxOccurrences,
	}
	if req.Frequency != nil {
		frequency := automationdomain.Frequency(*req.Frequency)
		update.Frequency = &frequency
	}
	if req.EndDate != "" {
		endDate, err := parseOptionalDate(req.EndDate)
		if err != nil {
			AbortWithError(c, newValidationError("end_date", "invalid_end_date", "invalid end_date"))
			return
		}
		update.EndDate = endDate
	}

	rule, err := s.automationSvc.Update(c.Request.Context(), update)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rule})
}

func (s *Server) DeleteAutomationRule(c *gin.Context) {
	id, err := automationdomain.ParseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.automationSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) PauseAutomationRule(c *gin.Context) {
	id, err := automationdomain.ParseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	rule, err := s.automationSvc.Pause(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rule})
}

func (s *Server) ResumeAutomationRule(c *gin.Context) {
	id, err := automationdomain.ParseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	rule, err := s.automationSvc.Resume(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rule})
}

func (s *Server) TriggerAutomationRule(c *gin.Context) {
	id, err := automationdomain.ParseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	run, err := s.automationSvc.Trigger(c.Request.Context(), id)
	if err != nil {
		// The run carries the failure detail when one was recorded.
		if run != nil {
			c.JSON(http.StatusBadGateway, gin.H{"data": run, "error": gin.H{
				"code":    "trigger_failed",
				"message": run.ErrorMessage,
			}})
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": run})
}

func (s *Server) ListAutomationRuns(c *gin.Context) {
	id, err := automationdomain.ParseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))

	runs, err := s.automationSvc.Runs(c.Request.Context(), id, limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": runs})
}
