package drift

// Fields names the tracked fields of the change history. Anything outside
// this set is inert to the engine.
type Fields struct {
	// Date is the literal target-date field (e.g., "Target end").
	Date string
	// Version is the release/fix-version field (e.g., "Fix Version/s").
	Version string
	// Status is the workflow status field.
	Status string
}

// PIAnchor fixes the mapping from Program Increment ordinals to calendar
// quarters: increment Number corresponds to quarter Quarter of Year, and
// every 4 increments advance the year by one.
type PIAnchor struct {
	Number  int
	Quarter int
	Year    int
}

// Config holds the engine's allow-lists and policy switches. It is passed
// into the entry points explicitly so tests can vary every knob.
type Config struct {
	Fields Fields

	// TrackedStatuses is the allow-list of status names that accumulate
	// dwell time. Statuses outside it consume wall-clock time without
	// being attributed anywhere.
	TrackedStatuses []string

	// TrackedTypes is the allow-list of issue types in scope for the
	// analysis (strategic/epic-like types).
	TrackedTypes []string

	// ScopeFields are the fields whose edits count as scope changes in the
	// dynamics analysis.
	ScopeFields []string

	// InitialStatus is the synthetic status prepended at the issue's
	// first-ever activity to capture pre-tracking dwell time.
	InitialStatus string

	Anchor PIAnchor

	// EmitUnsetEvents restores the legacy behaviour of emitting an explicit
	// UNSET event when a date field is cleared. The default policy is that
	// unsets are silent. The flag controls emission only; the stored field
	// state always retains the last resolvable value.
	EmitUnsetEvents bool
}

// DefaultConfig returns the engine defaults used by the CLI and MCP surfaces.
func DefaultConfig() Config {
	return Config{
		Fields: Fields{
			Date:    "Target end",
			Version: "Fix Version/s",
			Status:  "Status",
		},
		TrackedStatuses: []string{
			"FUNNEL", "REVIEW", "ANALYSIS", "BACKLOG",
			"BACKLOG FOR ANALYSIS", "IN PROGRESS",
		},
		TrackedTypes: []string{
			"Business Epic", "Portfolio Epic", "Initiative", "Epic",
		},
		ScopeFields:   []string{"Description", "Acceptance Criteria"},
		InitialStatus: "FUNNEL",
		Anchor:        PIAnchor{Number: 27, Quarter: 1, Year: 2025},
	}
}

// trackedDateFields returns the two schedule-bearing fields in evaluation
// order. The date field is evaluated before the version field so that a
// same-day target-date change is visible to the version suppression check.
func (c Config) trackedDateFields() []string {
	return []string{c.Fields.Date, c.Fields.Version}
}

func (c Config) statusAllowed(name string) bool {
	for _, s := range c.TrackedStatuses {
		if s == name {
			return true
		}
	}
	return false
}

func (c Config) typeAllowed(name string) bool {
	for _, t := range c.TrackedTypes {
		if t == name {
			return true
		}
	}
	return false
}
