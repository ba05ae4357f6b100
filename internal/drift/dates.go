package drift

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// DateRange is a closed calendar interval. A single-point date is encoded
// as Start == End. Times are UTC midnight.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// IsZero reports whether the range is unresolved.
func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// Contains reports whether d falls inside the range, boundaries included.
func (r DateRange) Contains(d time.Time) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

var (
	piPattern      = regexp.MustCompile(`PI(\d+)`)
	quarterPattern = regexp.MustCompile(`Q(\d)_(\d{2})`)
)

// NormalizeToken extracts the canonical "PIxx" or "Qx_yy" core from a noisy
// version string (e.g. "PrioQ1_25" -> "Q1_25"). The PI pattern is the more
// specific one and wins. Unrecognized input is returned unchanged.
func NormalizeToken(raw string) string {
	if raw == "" {
		return raw
	}
	if m := piPattern.FindString(raw); m != "" {
		return m
	}
	if m := quarterPattern.FindString(raw); m != "" {
		return m
	}
	return raw
}

// dateLayouts covers the literal date encodings seen in scraped field values.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// ParseDateValue parses a literal date field value into a single-day range.
// Supported encodings are ISO dates/timestamps and the scraped
// "label:DD/Mon/YYYY" form (text before the colon is discarded).
// Unparseable input yields (DateRange{}, false) and a diagnostic; it is
// never fatal.
func ParseDateValue(raw string) (DateRange, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return DateRange{}, false
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return dayRange(t), true
		}
	}
	// Custom form like "New:15/Apr/2025"
	if idx := strings.LastIndex(s, ":"); idx >= 0 {
		s = strings.TrimSpace(s[idx+1:])
	}
	if t, err := time.Parse("2/Jan/2006", s); err == nil {
		return dayRange(t), true
	}
	log.Warn().Str("value", raw).Msg("Could not parse date from field value")
	return DateRange{}, false
}

// ResolveVersionWindow maps a version/release token to the calendar quarter
// it denotes. A "PI<number>" pattern is tried first, then "Q<d>_<yy>";
// whichever matches first wins.
func (a PIAnchor) ResolveVersionWindow(raw string) (DateRange, bool) {
	if strings.TrimSpace(raw) == "" {
		return DateRange{}, false
	}

	if m := piPattern.FindStringSubmatch(raw); m != nil {
		n, _ := strconv.Atoi(m[1])
		// Quarter index relative to year zero; floor division keeps
		// increments below the anchor on the correct side.
		qIndex := (a.Quarter - 1) + (n - a.Number)
		yearOff := qIndex / 4
		rem := qIndex % 4
		if rem < 0 {
			rem += 4
			yearOff--
		}
		return quarterWindow(a.Year+yearOff, rem+1), true
	}

	if m := quarterPattern.FindStringSubmatch(raw); m != nil {
		q, _ := strconv.Atoi(m[1])
		yy, _ := strconv.Atoi(m[2])
		return quarterWindow(2000+yy, q), true
	}

	log.Warn().Str("value", raw).Msg("Could not resolve version token to a time window")
	return DateRange{}, false
}

// quarterWindow returns the exact calendar bounds of a quarter. The day-0
// trick lets time.Date normalize to the last day of the third month,
// including leap-year February.
func quarterWindow(year, quarter int) DateRange {
	startMonth := time.Month((quarter-1)*3 + 1)
	start := time.Date(year, startMonth, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, startMonth+3, 0, 0, 0, 0, 0, time.UTC)
	return DateRange{Start: start, End: end}
}

func dayRange(t time.Time) DateRange {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return DateRange{Start: d, End: d}
}
