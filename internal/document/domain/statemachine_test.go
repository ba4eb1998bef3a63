package domain

import (
	"errors"
	"testing"
)

func TestInvoiceTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		want     error
	}{
		{StatusConcept, StatusSent, nil},
		{StatusSent, StatusPaid, nil},
		{StatusSent, StatusOverdue, nil},
		{StatusOverdue, StatusPaid, nil},
		{StatusConcept, StatusPaid, ErrInvalidTransition},
		{StatusPaid, StatusSent, ErrInvalidTransition},
		{StatusPaid, StatusOverdue, ErrInvalidTransition},
		{StatusSent, StatusConcept, ErrInvalidTransition},
	}

	for _, tc := range cases {
		got := ValidateTransition(TypeInvoice, tc.from, tc.to)
		if !errors.Is(got, tc.want) && got != tc.want {
			t.Fatalf("invoice %s -> %s: expected %v, got %v", tc.from, tc.to, tc.want, got)
		}
	}
}

func TestQuoteTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		want     error
	}{
		{StatusConcept, StatusSent, nil},
		{StatusSent, StatusAccepted, nil},
		{StatusSent, StatusRejected, nil},
		{StatusAccepted, StatusRejected, ErrInvalidTransition},
		{StatusRejected, StatusSent, ErrInvalidTransition},
		{StatusConcept, StatusAccepted, ErrInvalidTransition},
	}

	for _, tc := range cases {
		got := ValidateTransition(TypeQuote, tc.from, tc.to)
		if got != tc.want {
			t.Fatalf("quote %s -> %s: expected %v, got %v", tc.from, tc.to, tc.want, got)
		}
	}
}

func TestQuoteNeverReachesInvoiceStatuses(t *testing.T) {
	for _, from := range StatusDomain(TypeQuote) {
		if err := ValidateTransition(TypeQuote, from, StatusPaid); !errors.Is(err, ErrInvalidStatus) {
			t.Fatalf("quote %s -> paid: expected ErrInvalidStatus, got %v", from, err)
		}
		if err := ValidateTransition(TypeQuote, from, StatusOverdue); !errors.Is(err, ErrInvalidStatus) {
			t.Fatalf("quote %s -> overdue: expected ErrInvalidStatus, got %v", from, err)
		}
	}
}

func TestInvoiceRejectsQuoteStatuses(t *testing.T) {
	if err := ValidateTransition(TypeInvoice, StatusSent, StatusAccepted); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("invoice sent -> accepted: expected ErrInvalidStatus, got %v", err)
	}
}

func TestInDomain(t *testing.T) {
	if !InDomain(TypeInvoice, StatusOverdue) {
		t.Fatal("overdue belongs to the invoice domain")
	}
	if InDomain(TypeInvoice, StatusAccepted) {
		t.Fatal("accepted does not belong to the invoice domain")
	}
	if !InDomain(TypeQuote, StatusRejected) {
		t.Fatal("rejected belongs to the quote domain")
	}
	if InDomain(TypeQuote, StatusPaid) {
		t.Fatal("paid does not belong to the quote domain")
	}
}
