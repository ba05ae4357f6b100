package report

import (
	"fmt"
	"sort"
	"strings"

	"driftwatch/internal/drift"
)

// RenderEvents renders the schedule-change timeline of a whole run as
// aligned text lines, ordered by day then issue.
func RenderEvents(result drift.Result) string {
	var events []drift.Event
	for _, issue := range result.Issues {
		events = append(events, issue.Events...)
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Day != events[j].Day {
			return events[i].Day < events[j].Day
		}
		return events[i].IssueKey < events[j].IssueKey
	})

	var sb strings.Builder
	sb.WriteString("--- Schedule drift events ---\n")
	if len(events) == 0 {
		sb.WriteString("No relevant schedule changes found.\n")
		return sb.String()
	}
	for _, ev := range events {
		fmt.Fprintf(&sb, "%s | %-15s | %-8s | %s\n", ev.Day, ev.IssueKey, ev.Kind, ev.Detail)
	}
	return sb.String()
}

// RenderDurations renders the per-issue status dwell times. Statuses with
// zero accumulated time are omitted; tracked statuses are printed in
// descending dwell order.
func RenderDurations(result drift.Result) string {
	var sb strings.Builder
	for _, issue := range result.Issues {
		fmt.Fprintf(&sb, "\n--- Status residency for %s ---\n", issue.IssueKey)
		type entry struct {
			status string
			dur    string
			secs   float64
		}
		var entries []entry
		for status, d := range issue.Durations {
			if d <= 0 {
				continue
			}
			entries = append(entries, entry{status, FormatDuration(d), d.Seconds()})
		}
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].secs != entries[j].secs {
				return entries[i].secs > entries[j].secs
			}
			return entries[i].status < entries[j].status
		})
		if len(entries) == 0 {
			sb.WriteString("No residency in tracked statuses.\n")
			continue
		}
		for _, e := range entries {
			fmt.Fprintf(&sb, "- %-25s: %s\n", e.status, e.dur)
		}
	}
	return sb.String()
}

// RenderDynamics renders the activity-dynamics summary.
func RenderDynamics(result drift.Result) string {
	d := result.Dynamics
	var sb strings.Builder
	sb.WriteString("\n--- Activity dynamics ---\n")
	fmt.Fprintf(&sb, "- Total activities          : %d\n", d.TotalActivities)
	fmt.Fprintf(&sb, "- Significant changes       : %d\n", d.SignificantChanges)
	fmt.Fprintf(&sb, "- Activities, last 4 weeks  : %d\n", d.LastFourWeeks)
	if len(d.TopContributors) > 0 {
		sb.WriteString("- Top contributors:\n")
		for _, c := range d.TopContributors {
			fmt.Fprintf(&sb, "    %-20s | %d changes\n", c.Name, c.Contributions)
		}
	}
	if len(d.KeyEvents) > 0 {
		sb.WriteString("- Key events:\n")
		for _, ev := range d.KeyEvents {
			fmt.Fprintf(&sb, "    %s | %-15s | %s\n", ev.Timestamp.Format("2006-01-02"), ev.IssueKey, ev.Kind)
		}
	}
	return sb.String()
}

// Render composes the full console report for one analysis run.
func Render(result drift.Result) string {
	var sb strings.Builder
	sb.WriteString(RenderEvents(result))
	sb.WriteString(RenderDurations(result))
	sb.WriteString(RenderDynamics(result))
	if len(result.Skipped) > 0 {
		fmt.Fprintf(&sb, "\nSkipped issues without history: %s\n", strings.Join(result.Skipped, ", "))
	}
	return sb.String()
}
