package domain

import (
	"testing"

	documentdomain "github.com/RonanBeelen/InvoiceStudio/internal/document/domain"
)

func TestDetectIntentDutch(t *testing.T) {
	cases := []struct {
		subject, body string
		want          Intent
	}{
		{"Re: Factuur F-2024-1", "De factuur is betaald.", IntentPaymentConfirmation},
		{"Re: Factuur", "Bedrag is zojuist overgemaakt", IntentPaymentConfirmation},
		{"Re: Offerte O-2024-3", "Wij gaan akkoord met de offerte", IntentAccepted},
		{"Re: Offerte", "Goedgekeurd, graag starten", IntentAccepted},
		{"Re: Offerte", "Helaas afgewezen", IntentRejected},
		{"Re: Offerte", "Wij gaan niet akkoord", IntentRejected},
		{"Re: Factuur", "Ik heb een vraag over regel 2", IntentQuestion},
		{"Re: Factuur", "Bedankt voor de snelle levering", IntentUnknown},
	}

	for _, tc := range cases {
		if got := DetectIntent(tc.subject, tc.body); got != tc.want {
			t.Fatalf("%q / %q: expected %s, got %s", tc.subject, tc.body, tc.want, got)
		}
	}
}

func TestDetectIntentEnglish(t *testing.T) {
	cases := []struct {
		subject, body string
		want          Intent
	}{
		{"Re: Invoice", "Payment completed this morning", IntentPaymentConfirmation},
		{"Re: Invoice", "The amount has been transferred", IntentPaymentConfirmation},
		{"Re: Quote", "Looks good, go ahead", IntentAccepted},
		{"Re: Quote", "We accepted your proposal", IntentAccepted},
		{"Re: Quote", "Unfortunately we declined", IntentRejected},
		{"Re: Quote", "Could you clarify line 3?", IntentQuestion},
		{"", "", IntentUnknown},
	}

	for _, tc := range cases {
		if got := DetectIntent(tc.subject, tc.body); got != tc.want {
			t.Fatalf("%q / %q: expected %s, got %s", tc.subject, tc.body, tc.want, got)
		}
	}
}

func TestDetectIntentPaymentWinsOverQuestion(t *testing.T) {
	// Order matters: a reply that confirms payment and asks a question is a
	// payment confirmation.
	got := DetectIntent("Re: Invoice", "Paid! Could you send a receipt?")
	if got != IntentPaymentConfirmation {
		t.Fatalf("expected payment_confirmation, got %s", got)
	}
}

func TestStatusForIntent(t *testing.T) {
	if status, ok := StatusForIntent(IntentPaymentConfirmation); !ok || status != documentdomain.StatusPaid {
		t.Fatalf("payment_confirmation: expected paid, got %s (%v)", status, ok)
	}
	if status, ok := StatusForIntent(IntentAccepted); !ok || status != documentdomain.StatusAccepted {
		t.Fatalf("accepted: expected accepted, got %s (%v)", status, ok)
	}
	if status, ok := StatusForIntent(IntentRejected); !ok || status != documentdomain.StatusRejected {
		t.Fatalf("rejected: expected rejected, got %s (%v)", status, ok)
	}
	if _, ok := StatusForIntent(IntentQuestion); ok {
		t.Fatal("question must not drive a status change")
	}
	if _, ok := StatusForIntent(IntentUnknown); ok {
		t.Fatal("unknown must not drive a status change")
	}
}
