package service

import (
	"fmt"
	"html"
	"strings"

	documentdomain "github.com/RonanBeelen/InvoiceStudio/internal/document/domain"
	"github.com/RonanBeelen/InvoiceStudio/internal/render"
	settingsdomain "github.com/RonanBeelen/InvoiceStudio/internal/settings/domain"
)

// expandPlaceholders fills the template placeholders supported in the
// configurable subject and body texts.
func expandPlaceholders(text string, doc *documentdomain.Document, settings settingsdomain.CompanySettings, customerName string) string {
	replacer := strings.NewReplacer(
		"{NUMBER}", doc.DocumentNumber,
		"{COMPANY}", settings.CompanyName,
		"{CUSTOMER}", customerName,
		"{TOTAL}", "€ "+render.FormatCurrency(doc.TotalAmount.StringFixed(2)),
		"{DUE_DATE}", doc.DueDate.Format("02-01-2006"),
	)
	return replacer.Replace(text)
}

func emailTemplates(doc *documentdomain.Document, settings settingsdomain.CompanySettings) (subject, body string) {
	if doc.DocumentType == documentdomain.TypeQuote {
		return settings.EmailQuoteSubject, settings.EmailQuoteBody
	}
	return settings.EmailInvoiceSubject, settings.EmailInvoiceBody
}

// bodyHTML converts the plain-text body into the minimal HTML the email
// providers expect.
func bodyHTML(body string) string {
	escaped := html.EscapeString(body)
	return "<p>" + strings.ReplaceAll(escaped, "\n", "<br>") + "</p>"
}

func attachmentName(doc *documentdomain.Document) string {
	return fmt.Sprintf("%s_%s.pdf", doc.DocumentType, strings.ReplaceAll(doc.DocumentNumber, "/", "-"))
}
