package activity

import (
	"time"

	"github.com/rs/zerolog/log"
)

// Record represents a single field-level change scraped from the tracker's
// issue history. It is the primary unit of the activity log.
type Record struct {
	// IssueKey is the tracker key (e.g., PROJ-123).
	IssueKey string `json:"issue_key"`
	// Field is the name of the changed field (e.g., Status, Target end).
	Field string `json:"field"`
	// From is the raw value before the change. Empty means the field was unset.
	From string `json:"from,omitempty"`
	// To is the raw value after the change. Empty means the field was cleared.
	To string `json:"to,omitempty"`
	// Timestamp is the physical time the change occurred (Unix microseconds).
	Timestamp int64 `json:"ts"`
	// Author is the display name of the user who made the change.
	Author string `json:"author,omitempty"`
}

// At returns the record's timestamp as a time.Time.
func (r Record) At() time.Time {
	return time.UnixMicro(r.Timestamp)
}

// Day returns the calendar-day key ("2006-01-02") of the record in UTC.
func (r Record) Day() string {
	return r.At().UTC().Format("2006-01-02")
}

// timeLayouts covers the timestamp encodings seen in scraped histories.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05",
}

// ParseTime parses a scraped timestamp string, normalized to UTC.
func ParseTime(s string) (time.Time, error) {
	var lastErr error
	for _, l := range timeLayouts {
		t, err := time.Parse(l, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// Sanitize fills missing optional fields with safe sentinels and reports
// whether the record carries the minimum required shape. Records failing
// validation are dropped at the boundary rather than propagated inward.
func Sanitize(r *Record) bool {
	if r.IssueKey == "" || r.Field == "" || r.Timestamp == 0 {
		return false
	}
	if r.Author == "" {
		r.Author = "N/A"
	}
	return true
}

// SanitizeAll filters a batch down to well-formed records, logging drops.
func SanitizeAll(records []Record) []Record {
	out := records[:0]
	dropped := 0
	for _, r := range records {
		if Sanitize(&r) {
			out = append(out, r)
		} else {
			dropped++
		}
	}
	if dropped > 0 {
		log.Warn().Int("dropped", dropped).Msg("Discarded malformed activity records")
	}
	return out
}
