package drift

import (
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"driftwatch/internal/activity"

	"github.com/rs/zerolog/log"
)

// IssueResult holds everything the engine derives for one issue.
type IssueResult struct {
	IssueKey  string                   `json:"issue"`
	Type      string                   `json:"type"`
	Events    []Event                  `json:"events,omitempty"`
	Durations map[string]time.Duration `json:"status_durations,omitempty"`
	Segments  []StatusSegment          `json:"status_segments,omitempty"`
}

// Result is the output of one analysis run. Issues are ordered by key and
// the whole structure is a pure function of the input, so identical input
// always produces identical output.
type Result struct {
	Issues   []IssueResult `json:"issues"`
	Skipped  []string      `json:"skipped,omitempty"`
	Dynamics Dynamics      `json:"dynamics"`
}

// Analyzer runs the schedule-drift and dwell-time analysis over an
// in-memory activity collection.
type Analyzer struct {
	cfg Config

	// Now is the evaluation clock for open status intervals and the
	// four-week activity window. Overridable for deterministic tests.
	Now func() time.Time
}

// NewAnalyzer creates an analyzer with the given engine configuration.
func NewAnalyzer(cfg Config) *Analyzer {
	return &Analyzer{cfg: cfg, Now: time.Now}
}

// Analyze processes the activity collection for every issue whose type is
// in scope. typeOf is the externally supplied issue-key -> issue-type
// lookup; issues absent from it, or of an unlisted type, are ignored.
// In-scope issues without any history are reported in Skipped, never as an
// error: no single bad issue may abort the rest of the run.
func (a *Analyzer) Analyze(records []activity.Record, typeOf map[string]string) Result {
	now := a.Now().UTC()
	byIssue := GroupByIssue(records)

	var keys []string
	var skipped []string
	for key, issueType := range typeOf {
		if !a.cfg.typeAllowed(issueType) {
			continue
		}
		if len(byIssue[key]) == 0 {
			log.Warn().Str("issue", key).Msg("Issue in scope but has no activity history; skipping")
			skipped = append(skipped, key)
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	sort.Strings(skipped)

	// Per-issue analyses are independent; fan out with a bounded group.
	results := make([]IssueResult, len(keys))
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())

	for i, key := range keys {
		g.Go(func() error {
			history := byIssue[key]
			durations, segments := StatusDurations(a.cfg, history, now)
			results[i] = IssueResult{
				IssueKey:  key,
				Type:      typeOf[key],
				Events:    ReplayTimeline(a.cfg, key, history),
				Durations: durations,
				Segments:  segments,
			}
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; diagnostics are logged

	return Result{
		Issues:   results,
		Skipped:  skipped,
		Dynamics: AnalyzeDynamics(a.cfg, sortedByTime(records), now),
	}
}

func sortedByTime(records []activity.Record) []activity.Record {
	out := make([]activity.Record, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp < out[j].Timestamp
	})
	return out
}
