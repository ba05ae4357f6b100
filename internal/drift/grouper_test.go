package drift

import (
	"testing"
	"time"

	"driftwatch/internal/activity"
)

func rec(key, field, from, to, ts string) activity.Record {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		panic(err)
	}
	return activity.Record{
		IssueKey:  key,
		Field:     field,
		From:      from,
		To:        to,
		Timestamp: t.UnixMicro(),
		Author:    "Tester",
	}
}

func TestGroupByIssue(t *testing.T) {
	records := []activity.Record{
		rec("B-1", "Status", "", "FUNNEL", "2025-01-02T10:00:00Z"),
		rec("A-1", "Status", "", "FUNNEL", "2025-01-01T10:00:00Z"),
		rec("A-1", "Target end", "", "2025-06-30", "2025-01-01T09:00:00Z"),
	}
	byIssue := GroupByIssue(records)
	if len(byIssue) != 2 {
		t.Fatalf("expected 2 issues, got %d", len(byIssue))
	}
	a := byIssue["A-1"]
	if len(a) != 2 {
		t.Fatalf("expected 2 records for A-1, got %d", len(a))
	}
	if a[0].Field != "Target end" {
		t.Errorf("A-1 records not sorted by timestamp: first is %s", a[0].Field)
	}
}

func TestDayBucketsConsolidation(t *testing.T) {
	records := []activity.Record{
		rec("A-1", "Target end", "", "2025-03-01", "2025-01-10T09:00:00Z"),
		rec("A-1", "Target end", "2025-03-01", "2025-04-01", "2025-01-10T11:00:00Z"),
		rec("A-1", "Target end", "2025-04-01", "2025-03-15", "2025-01-10T16:00:00Z"),
		rec("A-1", "Status", "", "FUNNEL", "2025-01-10T08:00:00Z"),
		rec("A-1", "Target end", "2025-03-15", "2025-05-01", "2025-01-20T09:00:00Z"),
	}
	buckets := DayBuckets(records, []string{"Target end", "Fix Version/s"})
	if len(buckets) != 2 {
		t.Fatalf("expected 2 day buckets, got %d", len(buckets))
	}
	if buckets[0].Day != "2025-01-10" || buckets[1].Day != "2025-01-20" {
		t.Fatalf("unexpected bucket days: %s, %s", buckets[0].Day, buckets[1].Day)
	}

	fd := buckets[0].Fields["Target end"]
	if fd.First.To != "2025-03-01" {
		t.Errorf("first change of the day = %q, want 2025-03-01", fd.First.To)
	}
	if fd.Last.To != "2025-03-15" {
		t.Errorf("last change of the day = %q, want 2025-03-15", fd.Last.To)
	}

	// untracked fields are dropped
	if _, ok := buckets[0].Fields["Status"]; ok {
		t.Error("Status must not appear in date-field buckets")
	}
}

func TestDayBucketsPreservesChronologicalOrder(t *testing.T) {
	records := []activity.Record{
		rec("A-1", "Target end", "", "2025-03-01", "2025-02-01T09:00:00Z"),
		rec("A-1", "Fix Version/s", "", "PI28", "2025-02-03T09:00:00Z"),
		rec("A-1", "Target end", "2025-03-01", "2025-03-10", "2025-02-05T09:00:00Z"),
	}
	buckets := DayBuckets(records, []string{"Target end", "Fix Version/s"})
	want := []string{"2025-02-01", "2025-02-03", "2025-02-05"}
	if len(buckets) != len(want) {
		t.Fatalf("expected %d buckets, got %d", len(want), len(buckets))
	}
	for i, day := range want {
		if buckets[i].Day != day {
			t.Errorf("bucket %d = %s, want %s", i, buckets[i].Day, day)
		}
	}
}
