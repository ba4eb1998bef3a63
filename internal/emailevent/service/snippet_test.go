package service

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateSnippetShortTextUntouched(t *testing.T) {
	if got := truncateSnippet("korte reactie"); got != "korte reactie" {
		t.Fatalf("short text must pass through, got %q", got)
	}
}

func TestTruncateSnippetCapsLength(t *testing.T) {
	long := strings.Repeat("a", snippetLimit+100)
	got := truncateSnippet(long)
	if len(got) != snippetLimit {
		t.Fatalf("expected %d bytes, got %d", snippetLimit, len(got))
	}
}

func TestTruncateSnippetKeepsRuneBoundary(t *testing.T) {
	// Place a multibyte rune across the byte limit; the cut must back up
	// to the previous boundary instead of splitting it.
	long := strings.Repeat("a", snippetLimit-1) + "é" + strings.Repeat("b", 50)
	got := truncateSnippet(long)

	if !utf8.ValidString(got) {
		t.Fatalf("truncated snippet is not valid UTF-8: %q", got[len(got)-4:])
	}
	if len(got) != snippetLimit-1 {
		t.Fatalf("expected cut before the split rune at %d bytes, got %d", snippetLimit-1, len(got))
	}

	mixed := strings.Repeat("ë", snippetLimit)
	got = truncateSnippet(mixed)
	if !utf8.ValidString(got) {
		t.Fatal("truncated multibyte text is not valid UTF-8")
	}
	if len(got) > snippetLimit {
		t.Fatalf("expected at most %d bytes, got %d", snippetLimit, len(got))
	}
}
