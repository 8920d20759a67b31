// Package datefmt renders timestamps in the fixed-width form used across order views.
package datefmt

import "time"

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// Format returns "YYYY-MM-DD HH:MM:SS" (or "YYYY-MM-DD" when withTime is false) using the
// calendar fields of t in its own location. A nil timestamp formats as the empty string.
func Format(t *time.Time, withTime bool) string {
	if t == nil {
		return ""
	}
	if withTime {
		return t.Format(dateTimeLayout)
	}
	return t.Format(dateLayout)
}
