package drift

import (
	"testing"

	"driftwatch/internal/activity"
)

// history builds a creation marker followed by the given records, so the
// schedule changes happen after the creation day.
func history(records ...activity.Record) []activity.Record {
	all := []activity.Record{rec("A-1", "Status", "", "FUNNEL", "2025-01-01T08:00:00Z")}
	return append(all, records...)
}

func TestReplaySetEvent(t *testing.T) {
	events := ReplayTimeline(DefaultConfig(), "A-1", history(
		rec("A-1", "Target end", "", "2025-06-30", "2025-01-10T09:00:00Z"),
	))
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d: %+v", len(events), events)
	}
	ev := events[0]
	if ev.Kind != EventSet || ev.New != "2025-06-30" || ev.Day != "2025-01-10" {
		t.Errorf("unexpected event: %+v", ev)
	}
}

func TestReplayCreepAndPullIn(t *testing.T) {
	events := ReplayTimeline(DefaultConfig(), "A-1", history(
		rec("A-1", "Target end", "", "2025-03-31", "2025-01-10T09:00:00Z"),
		rec("A-1", "Target end", "2025-03-31", "2025-06-30", "2025-02-01T09:00:00Z"),
		rec("A-1", "Target end", "2025-06-30", "2025-05-15", "2025-03-01T09:00:00Z"),
	))
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d: %+v", len(events), events)
	}
	if events[1].Kind != EventCreep {
		t.Errorf("expected CREEP, got %s", events[1].Kind)
	}
	if events[1].Detail != "'Target end' pushed out from 2025-03-31 to 2025-06-30" {
		t.Errorf("unexpected creep detail: %s", events[1].Detail)
	}
	if events[2].Kind != EventPullIn || events[2].Old != "2025-06-30" || events[2].New != "2025-05-15" {
		t.Errorf("unexpected pull-in: %+v", events[2])
	}
}

func TestReplayIntradayChurnCollapses(t *testing.T) {
	// Three edits on one day netting out to a single later date: one CREEP
	events := ReplayTimeline(DefaultConfig(), "A-1", history(
		rec("A-1", "Target end", "", "2025-03-31", "2025-01-10T09:00:00Z"),
		rec("A-1", "Target end", "2025-03-31", "2025-09-30", "2025-02-01T09:00:00Z"),
		rec("A-1", "Target end", "2025-09-30", "2025-02-01", "2025-02-01T11:00:00Z"),
		rec("A-1", "Target end", "2025-02-01", "2025-04-30", "2025-02-01T17:00:00Z"),
	))
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d: %+v", len(events), events)
	}
	ev := events[1]
	if ev.Kind != EventCreep || ev.Old != "2025-03-31" || ev.New != "2025-04-30" {
		t.Errorf("churn did not collapse to net change: %+v", ev)
	}
}

func TestReplayIntradayNetZeroIsSilent(t *testing.T) {
	// A day of edits that ends where it started produces nothing
	events := ReplayTimeline(DefaultConfig(), "A-1", history(
		rec("A-1", "Target end", "", "2025-03-31", "2025-01-10T09:00:00Z"),
		rec("A-1", "Target end", "2025-03-31", "2025-09-30", "2025-02-01T09:00:00Z"),
		rec("A-1", "Target end", "2025-09-30", "2025-03-31", "2025-02-01T15:00:00Z"),
	))
	if len(events) != 1 {
		t.Fatalf("expected only the initial SET, got %d: %+v", len(events), events)
	}
}

func TestReplayUnsetSilentByDefault(t *testing.T) {
	cfg := DefaultConfig()
	events := ReplayTimeline(cfg, "A-1", history(
		rec("A-1", "Target end", "", "2025-03-31", "2025-01-10T09:00:00Z"),
		rec("A-1", "Target end", "2025-03-31", "", "2025-02-01T09:00:00Z"),
		rec("A-1", "Target end", "", "2025-03-31", "2025-03-01T09:00:00Z"),
	))
	// clear is silent and state is retained, so the re-set to the same
	// value is no change either
	if len(events) != 1 {
		t.Fatalf("expected only the initial SET, got %d: %+v", len(events), events)
	}
}

func TestReplayUnsetEmittedWhenConfigured(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EmitUnsetEvents = true
	events := ReplayTimeline(cfg, "A-1", history(
		rec("A-1", "Target end", "", "2025-03-31", "2025-01-10T09:00:00Z"),
		rec("A-1", "Target end", "2025-03-31", "", "2025-02-01T09:00:00Z"),
		rec("A-1", "Target end", "", "2025-06-30", "2025-03-01T09:00:00Z"),
	))
	if len(events) != 3 {
		t.Fatalf("expected SET, UNSET, CREEP; got %d: %+v", len(events), events)
	}
	if events[1].Kind != EventUnset || events[1].Old != "2025-03-31" {
		t.Errorf("unexpected unset event: %+v", events[1])
	}
	// state was retained through the clear, so the later date is a creep
	// against the pre-clear value
	if events[2].Kind != EventCreep || events[2].Old != "2025-03-31" {
		t.Errorf("state not retained across clear: %+v", events[2])
	}
}

func TestReplayStateRetainedThroughUnparseable(t *testing.T) {
	events := ReplayTimeline(DefaultConfig(), "A-1", history(
		rec("A-1", "Target end", "", "2025-03-31", "2025-01-10T09:00:00Z"),
		rec("A-1", "Target end", "2025-03-31", "garbage value", "2025-02-01T09:00:00Z"),
		rec("A-1", "Target end", "garbage value", "2025-06-30", "2025-03-01T09:00:00Z"),
	))
	if len(events) != 2 {
		t.Fatalf("expected SET and CREEP, got %d: %+v", len(events), events)
	}
	if events[1].Kind != EventCreep || events[1].Old != "2025-03-31" {
		t.Errorf("creep must compare against last resolvable value: %+v", events[1])
	}
}

func TestReplayCreationDayForcesSet(t *testing.T) {
	// A from-value on the creation day cannot be prior state
	events := ReplayTimeline(DefaultConfig(), "A-1", []activity.Record{
		rec("A-1", "Status", "", "FUNNEL", "2025-01-10T08:00:00Z"),
		rec("A-1", "Target end", "2024-12-01", "2025-06-30", "2025-01-10T09:00:00Z"),
	})
	if len(events) != 1 || events[0].Kind != EventSet {
		t.Fatalf("expected a single SET on creation day, got %+v", events)
	}
}

func TestReplayVersionEvents(t *testing.T) {
	events := ReplayTimeline(DefaultConfig(), "A-1", history(
		rec("A-1", "Fix Version/s", "", "PI28", "2025-01-10T09:00:00Z"),
		rec("A-1", "Fix Version/s", "PI28", "PI30", "2025-02-01T09:00:00Z"),
		rec("A-1", "Fix Version/s", "PI30", "PI29", "2025-03-01T09:00:00Z"),
	))
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d: %+v", len(events), events)
	}
	if events[0].Kind != EventSet || events[0].New != "PI28" {
		t.Errorf("unexpected set: %+v", events[0])
	}
	if events[1].Kind != EventCreep || events[1].Detail != "'Fix Version/s' pushed out from PI28 to PI30" {
		t.Errorf("unexpected version creep: %+v", events[1])
	}
	if events[2].Kind != EventPullIn {
		t.Errorf("expected PULL_IN, got %s", events[2].Kind)
	}
}

func TestReplayVersionSuppressedInsideTargetWindow(t *testing.T) {
	// The target date is committed to 2025-03-15; a version change whose
	// window still brackets that date is a relabeling, not drift.
	events := ReplayTimeline(DefaultConfig(), "A-1", history(
		rec("A-1", "Target end", "", "2025-03-15", "2025-01-10T09:00:00Z"),
		rec("A-1", "Fix Version/s", "", "Q1_25", "2025-02-01T09:00:00Z"),
	))
	if len(events) != 1 {
		t.Fatalf("expected only the target SET, got %d: %+v", len(events), events)
	}
	if events[0].Field != "Target end" {
		t.Errorf("surviving event is not the target set: %+v", events[0])
	}
}

func TestReplayVersionOutsideTargetWindowStillCounts(t *testing.T) {
	events := ReplayTimeline(DefaultConfig(), "A-1", history(
		rec("A-1", "Target end", "", "2025-03-15", "2025-01-10T09:00:00Z"),
		rec("A-1", "Fix Version/s", "", "Q1_25", "2025-02-01T09:00:00Z"),
		rec("A-1", "Fix Version/s", "Q1_25", "Q3_25", "2025-03-01T09:00:00Z"),
	))
	// Q1_25 is suppressed (contains 2025-03-15) but still becomes the known
	// version state; the move to Q3_25 leaves the target behind and counts
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d: %+v", len(events), events)
	}
	last := events[len(events)-1]
	if last.Field != "Fix Version/s" || last.Kind != EventCreep || last.Old != "Q1_25" || last.New != "Q3_25" {
		t.Errorf("unexpected version event: %+v", last)
	}
}

func TestReplaySameDayDateAndVersionChange(t *testing.T) {
	// The date field is evaluated before the version field, so a same-day
	// target move into the new version window suppresses the version event
	events := ReplayTimeline(DefaultConfig(), "A-1", history(
		rec("A-1", "Target end", "", "2025-03-15", "2025-01-10T09:00:00Z"),
		rec("A-1", "Fix Version/s", "", "Q1_25", "2025-01-10T10:00:00Z"),
		rec("A-1", "Target end", "2025-03-15", "2025-05-20", "2025-04-02T09:00:00Z"),
		rec("A-1", "Fix Version/s", "Q1_25", "Q2_25", "2025-04-02T10:00:00Z"),
	))
	// Day 1: target SET (version suppressed). Day 2: target CREEP, and the
	// version move to Q2_25 is suppressed because 2025-05-20 is inside it.
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d: %+v", len(events), events)
	}
	if events[1].Kind != EventCreep || events[1].Field != "Target end" {
		t.Errorf("unexpected second event: %+v", events[1])
	}
}

func TestReplayAtMostOneEventPerFieldPerDay(t *testing.T) {
	events := ReplayTimeline(DefaultConfig(), "A-1", history(
		rec("A-1", "Target end", "", "2025-03-31", "2025-02-01T09:00:00Z"),
		rec("A-1", "Target end", "2025-03-31", "2025-04-30", "2025-02-01T10:00:00Z"),
		rec("A-1", "Target end", "2025-04-30", "2025-05-31", "2025-02-01T11:00:00Z"),
		rec("A-1", "Fix Version/s", "", "PI29", "2025-02-01T12:00:00Z"),
	))
	perFieldDay := make(map[string]int)
	for _, ev := range events {
		perFieldDay[ev.Field+"|"+ev.Day]++
	}
	for key, n := range perFieldDay {
		if n > 1 {
			t.Errorf("more than one event for %s: %d", key, n)
		}
	}
}

func TestReplayEmptyHistory(t *testing.T) {
	if events := ReplayTimeline(DefaultConfig(), "A-1", nil); events != nil {
		t.Errorf("expected nil events, got %+v", events)
	}
}
