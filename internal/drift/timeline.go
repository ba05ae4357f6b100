package drift

import (
	"fmt"
	"time"

	"driftwatch/internal/activity"
)

// EventKind classifies the net schedule change of one field on one day.
type EventKind string

const (
	// EventSet marks the first resolvable value of a field.
	EventSet EventKind = "SET"
	// EventUnset marks an explicit clear. Only emitted when the engine is
	// configured with EmitUnsetEvents; the default policy is silence.
	EventUnset EventKind = "UNSET"
	// EventCreep marks a forward (later) shift of the tracked date.
	EventCreep EventKind = "CREEP"
	// EventPullIn marks a backward (earlier) shift of the tracked date.
	EventPullIn EventKind = "PULL_IN"
)

// Event is one classified, day-consolidated schedule change. At most one
// Event exists per (issue, field, day).
type Event struct {
	IssueKey string    `json:"issue"`
	Field    string    `json:"field"`
	Kind     EventKind `json:"event_type"`
	Old      string    `json:"old_display,omitempty"`
	New      string    `json:"new_display,omitempty"`
	Detail   string    `json:"details"`
	Day      string    `json:"day"`
}

// fieldState is the last known resolved value of one field. A zero window
// means "never resolvably set", which is distinct from "cleared": a clear
// leaves the previous state in place for historical continuity.
type fieldState struct {
	display string
	window  DateRange
	set     bool
}

// ReplayTimeline replays an issue's tracked-field history day by day and
// returns the classified net schedule changes. records must be the issue's
// full, timestamp-sorted history (all fields); creation day is derived from
// its first record of any kind, and on that day the prior state is forced
// to unset, since nothing exists before creation.
func ReplayTimeline(cfg Config, issueKey string, records []activity.Record) []Event {
	if len(records) == 0 {
		return nil
	}
	creationDay := records[0].Day()
	buckets := DayBuckets(records, cfg.trackedDateFields())

	states := map[string]fieldState{}
	var events []Event

	for _, bucket := range buckets {
		for _, field := range cfg.trackedDateFields() {
			fd, ok := bucket.Fields[field]
			if !ok {
				continue
			}

			rawNew := fd.Last.To
			newWindow, resolved := cfg.resolveField(field, rawNew)

			startState := states[field]
			if bucket.Day == creationDay {
				startState = fieldState{}
			}

			if ev, emit := cfg.classifyDay(issueKey, field, bucket.Day, startState, rawNew, newWindow, resolved, states); emit {
				events = append(events, ev)
			}

			// Only a resolvable new value advances the state; clears and
			// unparseable edits keep the last known schedule.
			if resolved {
				states[field] = fieldState{
					display: cfg.displayValue(field, rawNew, newWindow),
					window:  newWindow,
					set:     true,
				}
			}
		}
	}

	return events
}

// resolveField parses a raw field value with the parser that matches the
// field's semantics: literal dates for the date field, quarter windows for
// the version field.
func (c Config) resolveField(field, raw string) (DateRange, bool) {
	if field == c.Fields.Version {
		return c.Anchor.ResolveVersionWindow(raw)
	}
	return ParseDateValue(raw)
}

// displayValue renders a field value for human-readable event details. The
// version field shows its normalized short token, the date field the ISO
// end date.
func (c Config) displayValue(field, raw string, window DateRange) string {
	if field == c.Fields.Version {
		if raw == "" {
			return "None"
		}
		return NormalizeToken(raw)
	}
	if window.IsZero() {
		return "None"
	}
	return window.End.Format("2006-01-02")
}

// classifyDay decides whether the day's net change on one field warrants an
// event. For the version field it first applies the cross-field context
// rule: a version window that still brackets the committed target date is a
// relabeling, not a schedule change, and is suppressed entirely.
func (c Config) classifyDay(issueKey, field, day string, start fieldState, rawNew string, newWindow DateRange, resolved bool, states map[string]fieldState) (Event, bool) {
	if field == c.Fields.Version && resolved {
		if target, ok := states[c.Fields.Date]; ok && target.set {
			if newWindow.Contains(target.window.End) {
				return Event{}, false
			}
		}
	}

	var oldEnd, newEnd time.Time
	oldSet := start.set
	if oldSet {
		oldEnd = start.window.End
	}
	if resolved {
		newEnd = newWindow.End
	}

	oldDisplay := "None"
	if oldSet {
		oldDisplay = start.display
	}
	newDisplay := c.displayValue(field, rawNew, newWindow)

	switch {
	case !oldSet && resolved:
		return Event{
			IssueKey: issueKey, Field: field, Kind: EventSet,
			New:    newDisplay,
			Detail: fmt.Sprintf("'%s' set to %s", field, newDisplay),
			Day:    day,
		}, true

	case oldSet && !resolved:
		if !c.EmitUnsetEvents {
			return Event{}, false
		}
		return Event{
			IssueKey: issueKey, Field: field, Kind: EventUnset,
			Old:    oldDisplay,
			Detail: fmt.Sprintf("'%s' cleared (was %s)", field, oldDisplay),
			Day:    day,
		}, true

	case oldSet && resolved && newEnd.After(oldEnd):
		return Event{
			IssueKey: issueKey, Field: field, Kind: EventCreep,
			Old: oldDisplay, New: newDisplay,
			Detail: fmt.Sprintf("'%s' pushed out from %s to %s", field, oldDisplay, newDisplay),
			Day:    day,
		}, true

	case oldSet && resolved && newEnd.Before(oldEnd):
		return Event{
			IssueKey: issueKey, Field: field, Kind: EventPullIn,
			Old: oldDisplay, New: newDisplay,
			Detail: fmt.Sprintf("'%s' pulled in from %s to %s", field, oldDisplay, newDisplay),
			Day:    day,
		}, true
	}

	return Event{}, false
}
