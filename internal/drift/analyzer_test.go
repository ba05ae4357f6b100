package drift

import (
	"reflect"
	"testing"
	"time"

	"driftwatch/internal/activity"
)

func fixtureRecords() []activity.Record {
	return []activity.Record{
		rec("BEMABU-1", "Status", "", "FUNNEL", "2025-01-10T09:00:00Z"),
		rec("BEMABU-1", "Target end", "", "2025-03-31", "2025-01-11T09:00:00Z"),
		rec("BEMABU-1", "Target end", "2025-03-31", "2025-06-30", "2025-02-01T09:00:00Z"),
		rec("EPIC-1", "Status", "", "ANALYSIS", "2025-01-12T09:00:00Z"),
		rec("STORY-1", "Status", "", "IN PROGRESS", "2025-01-13T09:00:00Z"),
	}
}

func fixtureTypes() map[string]string {
	return map[string]string{
		"BEMABU-1": "Business Epic",
		"EPIC-1":   "Epic",
		"STORY-1":  "Story", // not a tracked type
		"EPIC-2":   "Epic",  // no history
	}
}

func testAnalyzer() *Analyzer {
	a := NewAnalyzer(DefaultConfig())
	a.Now = func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) }
	return a
}

func TestAnalyzeScopeAndOrdering(t *testing.T) {
	result := testAnalyzer().Analyze(fixtureRecords(), fixtureTypes())

	if len(result.Issues) != 2 {
		t.Fatalf("expected 2 issues, got %d", len(result.Issues))
	}
	if result.Issues[0].IssueKey != "BEMABU-1" || result.Issues[1].IssueKey != "EPIC-1" {
		t.Errorf("issues not sorted by key: %s, %s", result.Issues[0].IssueKey, result.Issues[1].IssueKey)
	}
	if result.Issues[0].Type != "Business Epic" {
		t.Errorf("issue type not carried: %s", result.Issues[0].Type)
	}
	if !reflect.DeepEqual(result.Skipped, []string{"EPIC-2"}) {
		t.Errorf("skipped = %v, want [EPIC-2]", result.Skipped)
	}
}

func TestAnalyzeExcludesUntrackedTypes(t *testing.T) {
	result := testAnalyzer().Analyze(fixtureRecords(), fixtureTypes())
	for _, issue := range result.Issues {
		if issue.IssueKey == "STORY-1" {
			t.Fatal("Story type must be out of scope")
		}
	}
	// the story's records still feed the global dynamics
	if result.Dynamics.TotalActivities != 5 {
		t.Errorf("dynamics must see all records, got %d", result.Dynamics.TotalActivities)
	}
}

func TestAnalyzePerIssueResults(t *testing.T) {
	result := testAnalyzer().Analyze(fixtureRecords(), fixtureTypes())

	be := result.Issues[0]
	if len(be.Events) != 2 {
		t.Fatalf("expected SET and CREEP for BEMABU-1, got %+v", be.Events)
	}
	if be.Events[1].Kind != EventCreep {
		t.Errorf("second event = %s, want CREEP", be.Events[1].Kind)
	}
	if be.Durations["FUNNEL"] <= 0 {
		t.Errorf("missing FUNNEL dwell: %v", be.Durations)
	}
	if len(be.Segments) == 0 {
		t.Error("missing status segments")
	}
}

func TestAnalyzeDeterminism(t *testing.T) {
	a := testAnalyzer()
	first := a.Analyze(fixtureRecords(), fixtureTypes())
	for i := 0; i < 5; i++ {
		next := a.Analyze(fixtureRecords(), fixtureTypes())
		if !reflect.DeepEqual(first, next) {
			t.Fatalf("run %d differs from first run", i+1)
		}
	}
}

func TestAnalyzeEmptyInput(t *testing.T) {
	result := testAnalyzer().Analyze(nil, map[string]string{"EPIC-1": "Epic"})
	if len(result.Issues) != 0 {
		t.Errorf("expected no issues, got %d", len(result.Issues))
	}
	if !reflect.DeepEqual(result.Skipped, []string{"EPIC-1"}) {
		t.Errorf("skipped = %v, want [EPIC-1]", result.Skipped)
	}
}
