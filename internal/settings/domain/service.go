package domain

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// UpdateRequest carries the writable settings fields. Nil pointers leave
// the stored value untouched.
type UpdateRequest struct {
	CompanyName *string `json:"company_name"`
	Address     *string `json:"address"`
	PostalCode  *string `json:"postal_code"`
	City        *string `json:"city"`
	Country     *string `json:"country"`
	KvkNumber   *string `json:"kvk_number"`
	BtwNumber   *string `json:"btw_number"`
	IBAN        *string `json:"iban"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
	LogoBase64  *string `json:"logo_base64"`

	BrandColorPrimary   *string `json:"brand_color_primary"`
	BrandColorSecondary *string `json:"brand_color_secondary"`

	DefaultPaymentTermsDays *int    `json:"default_payment_terms_days"`
	DefaultBtwPercentage    *string `json:"default_btw_percentage"`

	InvoiceNumberFormat *string `json:"invoice_number_format"`
	InvoiceNumberPrefix *string `json:"invoice_number_prefix"`
	InvoiceNumberNext   *int    `json:"invoice_number_next"`
	QuoteNumberFormat   *string `json:"quote_number_format"`
	QuoteNumberPrefix   *string `json:"quote_number_prefix"`
	QuoteNumberNext     *int    `json:"quote_number_next"`

	FooterText *string `json:"footer_text"`

	EmailFromName       *string `json:"email_from_name"`
	EmailFromAddress    *string `json:"email_from_address"`
	EmailReplyTo        *string `json:"email_reply_to"`
	EmailInvoiceSubject *string `json:"email_invoice_subject"`
	EmailInvoiceBody    *string `json:"email_invoice_body"`
	EmailQuoteSubject   *string `json:"email_quote_subject"`
	EmailQuoteBody      *string `json:"email_quote_body"`
}

type Service interface {
	// Get returns the stored settings, or Defaults() when none exist yet.
	Get(ctx context.Context) (CompanySettings, error)

	// Update upserts settings and invalidates any cached copy.
	Update(ctx context.Context, req UpdateRequest) (CompanySettings, error)

	// NextDocumentNumber atomically claims the next sequence number for
	// the given kind ("invoice" or "quote") and returns it formatted.
	NextDocumentNumber(ctx context.Context, tx *gorm.DB, kind string) (string, error)
}

var (
	ErrInvalidKind       = errors.New("invalid_document_kind")
	ErrInvalidPercentage = errors.New("invalid_btw_percentage")
)
