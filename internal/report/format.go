// Package report renders analysis results for human consumption: console
// text, mermaid charts and a standalone HTML report.
package report

import (
	"fmt"
	"strings"
	"time"
)

// FormatDuration renders a dwell time as calendar-ish text, e.g.
// "2 months, 13 days". Months are counted as 30 days. Anything below a
// full day collapses to "less than a day".
func FormatDuration(d time.Duration) string {
	if d < 24*time.Hour {
		return "less than a day"
	}
	totalDays := int(d.Hours() / 24)
	months := totalDays / 30
	days := totalDays % 30

	var parts []string
	if months > 0 {
		parts = append(parts, fmt.Sprintf("%d month%s", months, plural(months)))
	}
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%d day%s", days, plural(days)))
	}
	return strings.Join(parts, ", ")
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
