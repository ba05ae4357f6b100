package config

import (
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATA_PATH", dir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ActivitySource != "activities" {
		t.Errorf("unexpected activity source: %s", cfg.ActivitySource)
	}
	if cfg.IssuesPath != filepath.Join(dir, "issues.jsonl") {
		t.Errorf("unexpected issues path: %s", cfg.IssuesPath)
	}
	if cfg.Engine.EmitUnsetEvents {
		t.Error("unset events must be off by default")
	}
	if cfg.Engine.Fields.Date != "Target end" || cfg.Engine.Fields.Version != "Fix Version/s" {
		t.Errorf("unexpected default fields: %+v", cfg.Engine.Fields)
	}
	if cfg.Engine.Anchor.Number != 27 || cfg.Engine.Anchor.Year != 2025 {
		t.Errorf("unexpected default anchor: %+v", cfg.Engine.Anchor)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATA_PATH", dir)
	t.Setenv("DRIFT_EMIT_UNSET_EVENTS", "true")
	t.Setenv("DRIFT_TRACKED_STATUSES", "FUNNEL, IN PROGRESS ,DONE")
	t.Setenv("DRIFT_DATE_FIELD", "Due date")
	t.Setenv("DRIFT_PI_ANCHOR_NUMBER", "31")
	t.Setenv("ACTIVITY_SOURCE", "sprint-42")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !cfg.Engine.EmitUnsetEvents {
		t.Error("DRIFT_EMIT_UNSET_EVENTS not applied")
	}
	want := []string{"FUNNEL", "IN PROGRESS", "DONE"}
	if !reflect.DeepEqual(cfg.Engine.TrackedStatuses, want) {
		t.Errorf("tracked statuses = %v, want %v", cfg.Engine.TrackedStatuses, want)
	}
	if cfg.Engine.Fields.Date != "Due date" {
		t.Errorf("date field override not applied: %s", cfg.Engine.Fields.Date)
	}
	if cfg.Engine.Anchor.Number != 31 {
		t.Errorf("anchor override not applied: %d", cfg.Engine.Anchor.Number)
	}
	if cfg.ActivitySource != "sprint-42" {
		t.Errorf("activity source override not applied: %s", cfg.ActivitySource)
	}
}
