package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"driftwatch/internal/drift"
)

// GenerateStatusGantt creates a Mermaid gantt chart of one issue's status
// residency segments.
func GenerateStatusGantt(issue drift.IssueResult) string {
	if len(issue.Segments) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("gantt\n")
	sb.WriteString(fmt.Sprintf("    title Status history of %s\n", issue.IssueKey))
	sb.WriteString("    dateFormat YYYY-MM-DD\n")
	sb.WriteString("    axisFormat %b %y\n")
	sb.WriteString(fmt.Sprintf("    section %s\n", issue.IssueKey))

	for _, seg := range issue.Segments {
		// Mermaid task names break on colons
		safeName := strings.ReplaceAll(seg.Status, ":", " ")
		sb.WriteString(fmt.Sprintf("    %s :%s, %s\n",
			safeName,
			seg.Start.Format("2006-01-02"),
			seg.End.Format("2006-01-02")))
	}
	sb.WriteString("```")
	return sb.String()
}

// GenerateDriftChart creates a Mermaid bar chart of schedule-change counts
// per issue, split is not attempted; the bar height is the total number of
// drift events recorded for the issue.
func GenerateDriftChart(result drift.Result) string {
	var labels []string
	var values []string
	maxVal := 0

	// Limit to 20 issues to avoid overwhelming the text chart context
	limit := len(result.Issues)
	if limit > 20 {
		limit = 20
	}

	for i := 0; i < limit; i++ {
		issue := result.Issues[i]
		if len(issue.Events) == 0 {
			continue
		}
		labels = append(labels, fmt.Sprintf("%q", issue.IssueKey))
		values = append(values, fmt.Sprintf("%d", len(issue.Events)))
		if len(issue.Events) > maxVal {
			maxVal = len(issue.Events)
		}
	}
	if len(values) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Schedule Drift (Events per Issue)\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Events\" 0 --> %d\n", maxVal+int(math.Max(1, float64(maxVal)*0.2))))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateResidencyChart creates a Mermaid bar chart of dwell days per
// tracked status for one issue.
func GenerateResidencyChart(issue drift.IssueResult) string {
	if len(issue.Durations) == 0 {
		return ""
	}

	type row struct {
		status string
		days   float64
	}
	var rows []row
	maxVal := 0.0
	for status, d := range issue.Durations {
		days := d.Hours() / 24
		if days <= 0 {
			continue
		}
		rows = append(rows, row{status, days})
		if days > maxVal {
			maxVal = days
		}
	}
	if len(rows) == 0 {
		return ""
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].days != rows[j].days {
			return rows[i].days > rows[j].days
		}
		return rows[i].status < rows[j].status
	})

	var labels []string
	var values []string
	for _, r := range rows {
		// Replace spaces to help mermaid rendering
		safeName := strings.ReplaceAll(r.status, " ", "_")
		labels = append(labels, fmt.Sprintf("%q", safeName))
		values = append(values, fmt.Sprintf("%.1f", r.days))
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString(fmt.Sprintf("    title \"Status Residency %s (Days)\"\n", issue.IssueKey))
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Days\" 0 --> %d\n", int(math.Ceil(maxVal*1.2))))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```")
	return sb.String()
}
