package render

import "testing"

func TestFormatCurrency(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"0", "0,00"},
		{"5", "5,00"},
		{"5.5", "5,50"},
		{"1250.50", "1.250,50"},
		{"1000000", "1.000.000,00"},
		{"-85.25", "-85,25"},
		{"999.999", "999,99"},
	}

	for _, tc := range cases {
		if got := FormatCurrency(tc.in); got != tc.want {
			t.Fatalf("%q: expected %q, got %q", tc.in, tc.want, got)
		}
	}
}
