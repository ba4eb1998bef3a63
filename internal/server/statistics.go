package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	documentdomain "github.com/RonanBeelen/InvoiceStudio/internal/document/domain"
)

type templateUsageStat struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	UsageCount int64  `json:"usage_count"`
}

type dashboardStatistics struct {
	TotalInvoices     int64                     `json:"total_invoices"`
	TotalQuotes       int64                     `json:"total_quotes"`
	TotalCustomers    int64                     `json:"total_customers"`
	TotalTemplates    int64                     `json:"total_templates"`
	TotalGenerations  int64                     `json:"total_generations"`
	RevenueThisMonth  decimal.Decimal           `json:"revenue_this_month"`
	OutstandingAmount decimal.Decimal           `json:"outstanding_amount"`
	RecentDocuments   []documentdomain.Document `json:"recent_documents"`
	MostUsedTemplates []templateUsageStat       `json:"most_used_templates"`
}

func (s *Server) GetStatistics(c *gin.Context) {
	ctx := c.Request.Context()
	stats := dashboardStatistics{
		RevenueThisMonth:  decimal.Zero,
		OutstandingAmount: decimal.Zero,
		RecentDocuments:   []documentdomain.Document{},
		MostUsedTemplates: []templateUsageStat{},
	}

	counts := []struct {
		query string
		dest  *int64
	}{
		{`SELECT COUNT(1) FROM documents WHERE document_type = 'invoice'`, &stats.TotalInvoices},
		{`SELECT COUNT(1) FROM documents WHERE document_type = 'quote'`, &stats.TotalQuotes},
		{`SELECT COUNT(1) FROM customers`, &stats.TotalCustomers},
		{`SELECT COUNT(1) FROM templates`, &stats.TotalTemplates},
		{`SELECT COUNT(1) FROM usage_logs`, &stats.TotalGenerations},
	}
	for _, count := range counts {
		if err := s.db.WithContext(ctx).Raw(count.query).Scan(count.dest).Error; err != nil {
			AbortWithError(c, err)
			return
		}
	}

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var revenue decimal.NullDecimal
	if err := s.db.WithContext(ctx).Raw(
		`SELECT SUM(total_amount)
		 FROM documents
		 WHERE document_type = 'invoice' AND status = 'paid' AND date >= ?`,
		monthStart,
	).Scan(&revenue).Error; err != nil {
		AbortWithError(c, err)
		return
	}
	if revenue.Valid {
		stats.RevenueThisMonth = revenue.Decimal
	}

	var outstanding decimal.NullDecimal
	if err := s.db.WithContext(ctx).Raw(
		`SELECT SUM(total_amount)
		 FROM documents
		 WHERE document_type = 'invoice' AND status IN ('sent', 'overdue')`,
	).Scan(&outstanding).Error; err != nil {
		AbortWithError(c, err)
		return
	}
	if outstanding.Valid {
		stats.OutstandingAmount = outstanding.Decimal
	}

	if err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(5).
		Find(&stats.RecentDocuments).Error; err != nil {
		AbortWithError(c, err)
		return
	}

	var usage []struct {
		TemplateID string `gorm:"column:template_id"`
		Name       string `gorm:"column:name"`
		UsageCount int64  `gorm:"column:usage_count"`
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT u.template_id, t.name, COUNT(1) AS usage_count
		 FROM usage_logs u
		 JOIN templates t ON t.id = u.template_id
		 GROUP BY u.template_id, t.name
		 ORDER BY usage_count DESC
		 LIMIT 5`,
	).Scan(&usage).Error; err != nil {
		AbortWithError(c, err)
		return
	}
	for _, row := range usage {
		stats.MostUsedTemplates = append(stats.MostUsedTemplates, templateUsageStat{
			ID:         row.TemplateID,
			Name:       row.Name,
			UsageCount: row.UsageCount,
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": stats})
}
