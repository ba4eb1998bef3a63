package domain

import (
	"regexp"
	"strings"

	documentdomain "github.com/RonanBeelen/InvoiceStudio/internal/document/domain"
)

// Reply keyword patterns, Dutch and English. First match wins, checked in
// payment, accept, reject, question order.
var (
	paymentPatterns = compileAll(
		`\bbetaald\b`, `\bovergemaakt\b`, `\boverschreven\b`,
		`\bbetaling\s+gedaan\b`, `\bbetaling\s+voldaan\b`,
		`\bpaid\b`, `\bpayment\s+made\b`, `\btransferred\b`,
		`\bpayment\s+sent\b`, `\bpayment\s+completed\b`,
	)
	acceptPatterns = compileAll(
		`\bakkoord\b`, `\bgoedgekeurd\b`, `\bgoedkeuring\b`,
		`\bgeaccepteerd\b`, `\bga\s+akkoord\b`, `\bgroen\s+licht\b`,
		`\bapproved\b`, `\baccepted\b`, `\bagree\b`, `\bgo\s+ahead\b`,
		`\blooks\s+good\b`, `\bconfirm\b`,
	)
	rejectPatterns = compileAll(
		`\bafwijzen\b`, `\bafgewezen\b`, `\bgeweigerd\b`,
		`\bniet\s+akkoord\b`, `\bannuleren\b`,
		`\brejected?\b`, `\bdeclined?\b`, `\brefused?\b`,
		`\bcancel\b`, `\bnot\s+accepted\b`,
	)
	questionPatterns = compileAll(
		`\?`,
		`\bvraag\b`, `\bvragen\b`, `\bkunnen\s+we\b`,
		`\bquestion\b`, `\bcould\s+you\b`, `\bcan\s+you\b`,
		`\bclarif`, `\buitleg\b`,
	)
)

func compileAll(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile(p)
	}
	return compiled
}

// DetectIntent classifies a reply from its subject and body text.
func DetectIntent(subject, body string) Intent {
	if subject == "" && body == "" {
		return IntentUnknown
	}
	text := strings.ToLower(subject + " " + body)

	if matchAny(paymentPatterns, text) {
		return IntentPaymentConfirmation
	}
	if matchAny(acceptPatterns, text) {
		return IntentAccepted
	}
	if matchAny(rejectPatterns, text) {
		return IntentRejected
	}
	if matchAny(questionPatterns, text) {
		return IntentQuestion
	}
	return IntentUnknown
}

func matchAny(patterns []*regexp.Regexp, text string) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// StatusForIntent maps a detected intent to the document status it should
// drive, or false when the intent carries no status change.
func StatusForIntent(intent Intent) (documentdomain.Status, bool) {
	switch intent {
	case IntentPaymentConfirmation:
		return documentdomain.StatusPaid, true
	case IntentAccepted:
		return documentdomain.StatusAccepted, true
	case IntentRejected:
		return documentdomain.StatusRejected, true
	}
	return "", false
}
