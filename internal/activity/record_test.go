package activity

import (
	"testing"
	"time"
)

func TestParseTime(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"2025-01-10T09:30:00Z", time.Date(2025, 1, 10, 9, 30, 0, 0, time.UTC)},
		{"2025-01-10T09:30:00+01:00", time.Date(2025, 1, 10, 8, 30, 0, 0, time.UTC)},
		{"2025-01-10T09:30:00.123+0100", time.Date(2025, 1, 10, 8, 30, 0, 123000000, time.UTC)},
		{"2025-01-10T09:30:00", time.Date(2025, 1, 10, 9, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseTime(tt.raw)
		if err != nil {
			t.Errorf("ParseTime(%q) returned error: %v", tt.raw, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseTime(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestParseTimeInvalid(t *testing.T) {
	if _, err := ParseTime("yesterday-ish"); err == nil {
		t.Fatal("expected error for unparseable timestamp")
	}
}

func TestRecordDay(t *testing.T) {
	ts, _ := ParseTime("2025-01-10T23:30:00-02:00")
	r := Record{IssueKey: "A-1", Field: "Status", Timestamp: ts.UnixMicro()}
	// 23:30 -02:00 is 01:30 UTC the next day
	if r.Day() != "2025-01-11" {
		t.Errorf("Day() = %s, want 2025-01-11", r.Day())
	}
}

func TestSanitize(t *testing.T) {
	ok := Record{IssueKey: "A-1", Field: "Status", Timestamp: 1}
	if !Sanitize(&ok) {
		t.Error("well-formed record rejected")
	}
	if ok.Author != "N/A" {
		t.Errorf("missing author must default to N/A, got %q", ok.Author)
	}

	for name, r := range map[string]Record{
		"no key":       {Field: "Status", Timestamp: 1},
		"no field":     {IssueKey: "A-1", Timestamp: 1},
		"no timestamp": {IssueKey: "A-1", Field: "Status"},
	} {
		r := r
		if Sanitize(&r) {
			t.Errorf("%s: malformed record accepted", name)
		}
	}
}

func TestSanitizeAll(t *testing.T) {
	records := []Record{
		{IssueKey: "A-1", Field: "Status", Timestamp: 1, Author: "Alex"},
		{Field: "Status", Timestamp: 2},
		{IssueKey: "A-2", Field: "Status", Timestamp: 3},
	}
	out := SanitizeAll(records)
	if len(out) != 2 {
		t.Fatalf("expected 2 surviving records, got %d", len(out))
	}
	if out[1].Author != "N/A" {
		t.Errorf("sanitization not applied to kept record: %q", out[1].Author)
	}
}
