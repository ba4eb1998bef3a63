package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// CompanySettings holds company identity, branding, numbering, and email
// template preferences. One row per installation.
type CompanySettings struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	CompanyName string      `gorm:"type:text;not null;default:''"`
	Address    string       `gorm:"type:text;not null;default:''"`
	PostalCode string       `gorm:"type:text;not null;default:''"`
	City       string       `gorm:"type:text;not null;default:''"`
	Country    string       `gorm:"type:text;not null;default:'Nederland'"`
	KvkNumber  string       `gorm:"type:text;not null;default:''"`
	BtwNumber  string       `gorm:"type:text;not null;default:''"`
	IBAN       string       `gorm:"type:text;not null;default:''"`
	Phone      string       `gorm:"type:text;not null;default:''"`
	Email      string       `gorm:"type:text;not null;default:''"`
	LogoBase64 *string      `gorm:"type:text"`

	BrandColorPrimary   string `gorm:"type:text;not null;default:'#000000'"`
	BrandColorSecondary string `gorm:"type:text;not null;default:'#008F7A'"`

	DefaultPaymentTermsDays int             `gorm:"not null;default:30"`
	DefaultBtwPercentage    decimal.Decimal `gorm:"type:decimal(5,2);not null;default:21"`

	InvoiceNumberFormat string `gorm:"type:text;not null;default:'F-{YEAR}-{SEQ}'"`
	InvoiceNumberPrefix string `gorm:"type:text;not null;default:'F'"`
	InvoiceNumberNext   int    `gorm:"not null;default:1"`
	QuoteNumberFormat   string `gorm:"type:text;not null;default:'O-{YEAR}-{SEQ}'"`
	QuoteNumberPrefix   string `gorm:"type:text;not null;default:'O'"`
	QuoteNumberNext     int    `gorm:"not null;default:1"`

	FooterText             string         `gorm:"type:text;not null;default:''"`
	AdditionalBankAccounts datatypes.JSON `gorm:"type:jsonb"`

	EmailFromName       string `gorm:"type:text;not null;default:''"`
	EmailFromAddress    string `gorm:"type:text;not null;default:''"`
	EmailReplyTo        string `gorm:"type:text;not null;default:''"`
	EmailInvoiceSubject string `gorm:"type:text;not null;default:'Invoice {NUMBER} from {COMPANY}'"`
	EmailInvoiceBody    string `gorm:"type:text;not null;default:''"`
	EmailQuoteSubject   string `gorm:"type:text;not null;default:'Quote {NUMBER} from {COMPANY}'"`
	EmailQuoteBody      string `gorm:"type:text;not null;default:''"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (CompanySettings) TableName() string { return "company_settings" }

// Defaults returns the settings used before any row has been saved.
func Defaults() CompanySettings {
	return CompanySettings{
		Country:                 "Nederland",
		BrandColorPrimary:       "#000000",
		BrandColorSecondary:     "#008F7A",
		DefaultPaymentTermsDays: 30,
		DefaultBtwPercentage:    decimal.NewFromInt(21),
		InvoiceNumberFormat:     "F-{YEAR}-{SEQ}",
		InvoiceNumberPrefix:     "F",
		InvoiceNumberNext:       1,
		QuoteNumberFormat:       "O-{YEAR}-{SEQ}",
		QuoteNumberPrefix:       "O",
		QuoteNumberNext:         1,
		EmailInvoiceSubject:     "Invoice {NUMBER} from {COMPANY}",
		EmailInvoiceBody:        "Dear {CUSTOMER},\n\nPlease find attached invoice {NUMBER} for the amount of {TOTAL}.\n\nPayment is due by {DUE_DATE}.\n\nKind regards,\n{COMPANY}",
		EmailQuoteSubject:       "Quote {NUMBER} from {COMPANY}",
		EmailQuoteBody:          "Dear {CUSTOMER},\n\nPlease find attached our quote {NUMBER} for the amount of {TOTAL}.\n\nThis quote is valid for 30 days.\n\nKind regards,\n{COMPANY}",
	}
}
