package drift

import (
	"strings"
	"time"

	"driftwatch/internal/activity"
)

// StatusSegment represents a contiguous period an issue spent in one status.
type StatusSegment struct {
	Status string    `json:"status"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

// CleanStatusName extracts the bare status name from a raw scraped value
// like "Status:IN PROGRESS[10234]" and upper-cases it. Empty input maps to
// the "N/A" sentinel.
func CleanStatusName(raw string) string {
	if raw == "" {
		return "N/A"
	}
	s := raw
	if strings.Contains(s, "[") {
		if idx := strings.Index(s, ":"); idx >= 0 {
			s = s[idx+1:]
		}
		if idx := strings.Index(s, "["); idx >= 0 {
			s = s[:idx]
		}
	}
	return strings.ToUpper(strings.TrimSpace(s))
}

// StatusDurations folds an issue's full change history into per-status
// dwell time. Every individual status transition matters here; the day
// consolidation of the schedule timeline does not apply.
//
// A synthetic transition into cfg.InitialStatus is prepended at the
// timestamp of the issue's first activity of any kind, capturing the
// pre-tracking phase. Each interval is attributed to its starting status
// when that status is in the allow-list; the final open interval runs to
// now. Issues without any history yield an empty map.
//
// The returned segments cover all statuses in order, allow-listed or not,
// for timeline rendering.
func StatusDurations(cfg Config, records []activity.Record, now time.Time) (map[string]time.Duration, []StatusSegment) {
	durations := make(map[string]time.Duration)
	if len(records) == 0 {
		return durations, nil
	}

	type point struct {
		status string
		at     time.Time
	}

	points := []point{{status: CleanStatusName(cfg.InitialStatus), at: records[0].At()}}
	for _, r := range records {
		if r.Field != cfg.Fields.Status {
			continue
		}
		points = append(points, point{status: CleanStatusName(r.To), at: r.At()})
	}

	segments := make([]StatusSegment, 0, len(points))

	for i := 0; i < len(points)-1; i++ {
		cur, next := points[i], points[i+1]
		segments = append(segments, StatusSegment{Status: cur.status, Start: cur.at, End: next.at})
		if cfg.statusAllowed(cur.status) {
			durations[cur.status] += next.at.Sub(cur.at)
		}
	}

	// Still-open tail up to the evaluation clock.
	last := points[len(points)-1]
	if now.After(last.at) {
		segments = append(segments, StatusSegment{Status: last.status, Start: last.at, End: now})
		if cfg.statusAllowed(last.status) {
			durations[last.status] += now.Sub(last.at)
		}
	}

	return durations, segments
}
