package archive

import (
	"strings"
	"time"
)

// FormatTimestamp renders a Wayback capture timestamp (1-14 digits,
// YYYYMMDDHHMMSS) as "YYYY-MM-DD HH:MM:SS UTC". Short inputs are padded on
// the right with zeros before parsing. On any parse failure the input is
// returned unchanged; this never fails an operation.
func FormatTimestamp(ts string) string {
	padded := ts
	if len(padded) < 14 {
		padded += strings.Repeat("0", 14-len(padded))
	}
	t, err := time.Parse("20060102150405", padded[:14])
	if err != nil {
		return ts
	}
	return t.Format("2006-01-02 15:04:05") + " UTC"
}
