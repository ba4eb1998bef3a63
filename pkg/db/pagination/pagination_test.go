package pagination

import (
	"testing"
)

func TestLimitDefaults(t *testing.T) {
	if got := (Pagination{}).Limit(); got != defaultPageSize {
		t.Fatalf("expected default %d, got %d", defaultPageSize, got)
	}
	if got := (Pagination{PageSize: -5}).Limit(); got != defaultPageSize {
		t.Fatalf("negative size: expected default %d, got %d", defaultPageSize, got)
	}
	if got := (Pagination{PageSize: 25}).Limit(); got != 25 {
		t.Fatalf("expected 25, got %d", got)
	}
	if got := (Pagination{PageSize: 10000}).Limit(); got != maxPageSize {
		t.Fatalf("expected cap %d, got %d", maxPageSize, got)
	}
}

func TestOffsetRoundTrip(t *testing.T) {
	token := NextToken(0, 50, 120)
	if token == "" {
		t.Fatal("expected a token when more rows remain")
	}

	p := Pagination{PageToken: token}
	if got := p.Offset(); got != 50 {
		t.Fatalf("expected offset 50, got %d", got)
	}
}

func TestOffsetInvalidTokens(t *testing.T) {
	for _, token := range []string{"", "  ", "!!!", "bm90LWEtbnVtYmVy"} {
		p := Pagination{PageToken: token}
		if got := p.Offset(); got != 0 {
			t.Fatalf("token %q: expected 0, got %d", token, got)
		}
	}
}

func TestNextTokenExhausted(t *testing.T) {
	if token := NextToken(100, 50, 120); token != "" {
		t.Fatalf("expected empty token at final page, got %q", token)
	}
	if token := NextToken(0, 50, 50); token != "" {
		t.Fatalf("expected empty token when page covers total, got %q", token)
	}
}
