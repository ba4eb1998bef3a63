package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	documentdomain "github.com/RonanBeelen/InvoiceStudio/internal/document/domain"
	settingsdomain "github.com/RonanBeelen/InvoiceStudio/internal/settings/domain"
)

func TestExpandPlaceholders(t *testing.T) {
	doc := &documentdomain.Document{
		DocumentNumber: "F-2024-12",
		TotalAmount:    decimal.RequireFromString("1250.50"),
		DueDate:        time.Date(2024, time.April, 15, 0, 0, 0, 0, time.UTC),
	}
	settings := settingsdomain.CompanySettings{CompanyName: "Beelen Media"}

	got := expandPlaceholders(
		"Factuur {NUMBER} van {COMPANY} voor {CUSTOMER}: {TOTAL}, te betalen voor {DUE_DATE}",
		doc, settings, "Jansen BV",
	)
	want := "Factuur F-2024-12 van Beelen Media voor Jansen BV: € 1.250,50, te betalen voor 15-04-2024"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestExpandPlaceholdersWithoutTokens(t *testing.T) {
	doc := &documentdomain.Document{DocumentNumber: "F-1"}
	got := expandPlaceholders("Geen placeholders hier", doc, settingsdomain.CompanySettings{}, "")
	if got != "Geen placeholders hier" {
		t.Fatalf("text without tokens must pass through, got %q", got)
	}
}

func TestEmailTemplatesPerType(t *testing.T) {
	settings := settingsdomain.CompanySettings{
		EmailInvoiceSubject: "inv-subj",
		EmailInvoiceBody:    "inv-body",
		EmailQuoteSubject:   "quo-subj",
		EmailQuoteBody:      "quo-body",
	}

	subject, body := emailTemplates(&documentdomain.Document{DocumentType: documentdomain.TypeInvoice}, settings)
	if subject != "inv-subj" || body != "inv-body" {
		t.Fatalf("invoice templates: got %q / %q", subject, body)
	}

	subject, body = emailTemplates(&documentdomain.Document{DocumentType: documentdomain.TypeQuote}, settings)
	if subject != "quo-subj" || body != "quo-body" {
		t.Fatalf("quote templates: got %q / %q", subject, body)
	}
}

func TestBodyHTMLEscapesAndBreaks(t *testing.T) {
	got := bodyHTML("regel 1\nregel <2>")
	want := "<p>regel 1<br>regel &lt;2&gt;</p>"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestAttachmentName(t *testing.T) {
	doc := &documentdomain.Document{
		DocumentType:   documentdomain.TypeInvoice,
		DocumentNumber: "F/2024/3",
	}
	if got := attachmentName(doc); got != "invoice_F-2024-3.pdf" {
		t.Fatalf("expected invoice_F-2024-3.pdf, got %q", got)
	}
}
