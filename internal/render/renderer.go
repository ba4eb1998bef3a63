package render

import (
	"context"
	"errors"

	settingsdomain "github.com/RonanBeelen/InvoiceStudio/internal/settings/domain"
)

// Request carries everything needed to render one document PDF.
type Request struct {
	TemplateJSON map[string]any
	Settings     settingsdomain.CompanySettings
	Customer     *CustomerView
	Document     DocumentView
	Filename     string
}

// CustomerView is the slice of customer data the PDF layer needs.
type CustomerView struct {
	Name       string
	Address    string
	PostalCode string
	City       string
	Email      string
}

// DocumentView is the flattened document data fed into the template.
type DocumentView struct {
	Type           string
	Number         string
	Date           string
	DueDate        string
	LineItems      []LineItemView
	Subtotal       string
	BtwAmount      string
	Total          string
}

type LineItemView struct {
	Description   string
	Quantity      string
	UnitPrice     string
	BtwPercentage string
	LineTotal     string
}

// Result identifies a stored, rendered PDF.
type Result struct {
	PdfURL      string
	StoragePath string
	SizeBytes   int64
}

// Generator renders document PDFs via the external PDF layout service.
type Generator interface {
	Generate(ctx context.Context, req Request) (Result, error)
}

var (
	ErrServiceUnavailable = errors.New("pdf_service_unavailable")
	ErrRenderFailed       = errors.New("pdf_render_failed")
)
