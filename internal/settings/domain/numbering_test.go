package domain

import (
	"testing"
	"time"
)

func TestFormatDocumentNumber(t *testing.T) {
	now := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		format string
		seq    int
		want   string
	}{
		{"F-{YEAR}-{SEQ}", 7, "F-2024-7"},
		{"F-{YEAR}-{SEQ:4}", 7, "F-2024-0007"},
		{"{SEQ:3}", 123, "123"},
		{"{SEQ:2}", 123, "123"},
		{"INV{SEQ}", 42, "INV42"},
		{"{YEAR}{YEAR}", 1, "20242024"},
	}

	for _, tc := range cases {
		if got := FormatDocumentNumber(tc.format, tc.seq, now); got != tc.want {
			t.Fatalf("%q seq=%d: expected %q, got %q", tc.format, tc.seq, tc.want, got)
		}
	}
}
