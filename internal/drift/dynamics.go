package drift

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"driftwatch/internal/activity"
)

// KeyEvent is a chronological project milestone derived from the raw
// activity stream: blockages, schedule edits, scope adjustments.
type KeyEvent struct {
	Timestamp time.Time `json:"timestamp"`
	IssueKey  string    `json:"issue"`
	Kind      string    `json:"event_type"`
	Detail    string    `json:"details"`
}

// Contributor counts one user's significant changes.
type Contributor struct {
	Name          string `json:"name"`
	Contributions int    `json:"contributions"`
}

// Dynamics aggregates project-level activity metadata.
type Dynamics struct {
	TotalActivities    int            `json:"total_activities"`
	CountsByField      map[string]int `json:"activity_counts_by_field"`
	LastFourWeeks      int            `json:"activities_last_4_weeks"`
	SignificantChanges int            `json:"significant_changes"`
	TopContributors    []Contributor  `json:"key_contributors"`
	KeyEvents          []KeyEvent     `json:"key_events"`
}

// AnalyzeDynamics scans the full activity stream for key events and
// contribution metadata. records must be timestamp-sorted.
func AnalyzeDynamics(cfg Config, records []activity.Record, now time.Time) Dynamics {
	d := Dynamics{
		TotalActivities: len(records),
		CountsByField:   make(map[string]int),
	}
	if len(records) == 0 {
		return d
	}

	significant := make(map[string]bool)
	for _, f := range cfg.ScopeFields {
		significant[f] = true
	}
	significant[cfg.Fields.Status] = true
	significant[cfg.Fields.Version] = true
	significant["Assignee"] = true

	isScope := make(map[string]bool)
	for _, f := range cfg.ScopeFields {
		isScope[f] = true
	}

	fourWeeksAgo := now.Add(-4 * 7 * 24 * time.Hour)
	contributions := make(map[string]int)
	scopeSeen := make(map[string]bool) // issue+day dedup for scope edits

	for _, r := range records {
		d.CountsByField[r.Field]++
		if r.At().After(fourWeeksAgo) {
			d.LastFourWeeks++
		}

		switch {
		case r.Field == cfg.Fields.Status && strings.Contains(strings.ToUpper(r.To), "BLOCKED"):
			d.KeyEvents = append(d.KeyEvents, KeyEvent{
				Timestamp: r.At(), IssueKey: r.IssueKey, Kind: "STATUS_BLOCK",
				Detail: fmt.Sprintf("'%s' was set to Blocked", r.IssueKey),
			})
		case r.Field == cfg.Fields.Date || r.Field == cfg.Fields.Version:
			d.KeyEvents = append(d.KeyEvents, KeyEvent{
				Timestamp: r.At(), IssueKey: r.IssueKey, Kind: "TIME_CHANGE",
				Detail: fmt.Sprintf("Schedule of '%s' (%s) was changed", r.IssueKey, r.Field),
			})
		case isScope[r.Field]:
			dedup := r.IssueKey + "|" + r.Day()
			if !scopeSeen[dedup] {
				scopeSeen[dedup] = true
				d.KeyEvents = append(d.KeyEvents, KeyEvent{
					Timestamp: r.At(), IssueKey: r.IssueKey, Kind: "SCOPE_CHANGE",
					Detail: fmt.Sprintf("Scope of '%s' was adjusted on this day", r.IssueKey),
				})
			}
		}

		if significant[r.Field] {
			d.SignificantChanges++
			if r.Author != "" && r.Author != "N/A" {
				contributions[r.Author]++
			}
		}
	}

	for name, count := range contributions {
		d.TopContributors = append(d.TopContributors, Contributor{Name: name, Contributions: count})
	}
	sort.Slice(d.TopContributors, func(i, j int) bool {
		if d.TopContributors[i].Contributions != d.TopContributors[j].Contributions {
			return d.TopContributors[i].Contributions > d.TopContributors[j].Contributions
		}
		return d.TopContributors[i].Name < d.TopContributors[j].Name
	})
	if len(d.TopContributors) > 3 {
		d.TopContributors = d.TopContributors[:3]
	}

	return d
}
