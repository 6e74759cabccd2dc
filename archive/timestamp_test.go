package archive

import (
	"fmt"
	"testing"
)

func TestFormatTimestamp_Valid(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"20230101120000", "2023-01-01 12:00:00 UTC"},
		{"20231231235959", "2023-12-31 23:59:59 UTC"},
		{"20230615093000", "2023-06-15 09:30:00 UTC"},
		{"20230101", "2023-01-01 00:00:00 UTC"}, // date-only, right-padded
		{"20230615", "2023-06-15 00:00:00 UTC"},
	}
	for _, tt := range tests {
		if got := FormatTimestamp(tt.in); got != tt.want {
			t.Errorf("FormatTimestamp(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatTimestamp_EchoesUnparseable(t *testing.T) {
	// Right-padding short inputs produces zero month/day fields, which do
	// not parse; the input comes back verbatim instead of an error.
	echoed := []string{
		"2023",             // pads to month 00
		"2",                // pads to 20000000000000
		"99999999999999",   // month 99
		"not-a-timestamp",  // non-numeric
		"",                 // empty
		"202301011200001234", // longer than 14 digits, trailing garbage in prefix ok
	}
	for _, in := range echoed {
		got := FormatTimestamp(in)
		if in == "202301011200001234" {
			// 14-digit prefix is valid; formatting applies.
			if got != "2023-01-01 12:00:00 UTC" {
				t.Errorf("FormatTimestamp(%q) = %q, want formatted prefix", in, got)
			}
			continue
		}
		if got != in {
			t.Errorf("FormatTimestamp(%q) = %q, want input echoed", in, got)
		}
	}
}

func TestFormatTimestamp_NeverPanics(t *testing.T) {
	// Property: any 1-14 digit numeric string returns either a formatted
	// time or the original input, and never panics.
	for l := 1; l <= 14; l++ {
		in := ""
		for i := 0; i < l; i++ {
			in += fmt.Sprintf("%d", (i+1)%10)
		}
		got := FormatTimestamp(in)
		if got == "" {
			t.Errorf("FormatTimestamp(%q) returned empty", in)
		}
	}
}
