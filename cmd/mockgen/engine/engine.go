package engine

import (
	"bufio"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"driftwatch/internal/activity"
	"driftwatch/internal/drift"
	"driftwatch/internal/tree"
)

type GeneratorConfig struct {
	Scenario string // "steady", "creep" or "churn"
	Count    int
	Seed     int64
	Now      time.Time
}

const rootKey = "BEDEMO-1"

var authors = []string{"Alex Schmidt", "Sam Weber", "Kim Fischer", "Robin Braun"}

// Generate produces a synthetic change history for one business epic and
// its realized-by epics, plus the matching issue index. The same seed
// always yields the same data.
func Generate(cfg GeneratorConfig) ([]activity.Record, []tree.Issue) {
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	anchor := drift.DefaultConfig().Anchor

	issues := []tree.Issue{{Key: rootKey, Title: "Demo business epic", Type: "Business Epic"}}
	var records []activity.Record

	for i := 0; i < cfg.Count; i++ {
		key := fmt.Sprintf("DEMO-%d", i+1)
		issues[0].RealizedBy = append(issues[0].RealizedBy, key)
		issues = append(issues, tree.Issue{Key: key, Title: fmt.Sprintf("Demo epic %d", i+1), Type: "Epic"})

		created := cfg.Now.AddDate(0, 0, -200+i*6)
		author := func() string { return authors[rng.Intn(len(authors))] }

		rec := func(field, from, to string, at time.Time) {
			if at.After(cfg.Now) {
				return
			}
			records = append(records, activity.Record{
				IssueKey:  key,
				Field:     field,
				From:      from,
				To:        to,
				Timestamp: at.UnixMicro(),
				Author:    author(),
			})
		}

		// Status progression
		rec("Status", "", "FUNNEL", created)
		rec("Status", "FUNNEL", "ANALYSIS", created.AddDate(0, 0, 14+rng.Intn(7)))
		rec("Status", "ANALYSIS", "BACKLOG", created.AddDate(0, 0, 35+rng.Intn(10)))
		rec("Status", "BACKLOG", "IN PROGRESS", created.AddDate(0, 0, 60+rng.Intn(14)))

		// Initial schedule: a PI three increments past the anchor, target end
		// inside its window
		pi := anchor.Number + 1 + i%3
		window, _ := anchor.ResolveVersionWindow(fmt.Sprintf("PI%d", pi))
		target := window.End.AddDate(0, 0, -7)

		rec("Fix Version/s", "", fmt.Sprintf("PI%d", pi), created.AddDate(0, 0, 7))
		rec("Target end", "", target.Format("2006-01-02"), created.AddDate(0, 0, 8))

		switch cfg.Scenario {
		case "creep":
			// 1-3 pushes of roughly three weeks each; the version follows
			// once the date leaves its window
			creeps := 1 + rng.Intn(3)
			cur := target
			for c := 0; c < creeps; c++ {
				next := cur.AddDate(0, 0, 18+rng.Intn(10))
				at := created.AddDate(0, 0, 40+c*30+rng.Intn(5))
				rec("Target end", cur.Format("2006-01-02"), next.Format("2006-01-02"), at)
				if !window.Contains(next) {
					old := fmt.Sprintf("PI%d", pi)
					pi++
					window, _ = anchor.ResolveVersionWindow(fmt.Sprintf("PI%d", pi))
					rec("Fix Version/s", old, fmt.Sprintf("PI%d", pi), at.Add(2*time.Hour))
				}
				cur = next
			}

		case "churn":
			// Same-day edit storms that mostly cancel out, plus a version
			// relabel that stays inside the window
			day := created.AddDate(0, 0, 50)
			rec("Target end", target.Format("2006-01-02"), target.AddDate(0, 0, 30).Format("2006-01-02"), day.Add(9*time.Hour))
			rec("Target end", target.AddDate(0, 0, 30).Format("2006-01-02"), target.AddDate(0, 0, 2).Format("2006-01-02"), day.Add(11*time.Hour))
			rec("Target end", target.AddDate(0, 0, 2).Format("2006-01-02"), target.Format("2006-01-02"), day.Add(15*time.Hour))

			// quarter-token relabel of the same window
			q := fmt.Sprintf("Q%d_%02d", window.Start.Month()/3+1, window.Start.Year()%100)
			rec("Fix Version/s", fmt.Sprintf("PI%d", pi), q, created.AddDate(0, 0, 55))

			// clear and restore across two days
			rec("Target end", target.Format("2006-01-02"), "", created.AddDate(0, 0, 70))
			rec("Target end", "", target.Format("2006-01-02"), created.AddDate(0, 0, 72))

		default: // steady
			if rng.Float64() < 0.25 {
				pulled := target.AddDate(0, 0, -7)
				rec("Target end", target.Format("2006-01-02"), pulled.Format("2006-01-02"), created.AddDate(0, 0, 45))
			}
		}

		// Occasional scope and assignee noise for the dynamics analysis
		if rng.Float64() < 0.5 {
			rec("Description", "", "updated", created.AddDate(0, 0, 20))
		}
		if rng.Float64() < 0.3 {
			rec("Assignee", "", author(), created.AddDate(0, 0, 25))
		}
		if cfg.Scenario == "churn" && rng.Float64() < 0.3 {
			rec("Status", "IN PROGRESS", "BLOCKED", created.AddDate(0, 0, 80))
			rec("Status", "BLOCKED", "IN PROGRESS", created.AddDate(0, 0, 90))
		}
	}

	return records, issues
}

// Save writes the generated records and issue index the way the analyzer
// expects them: <out>/<sourceID>.jsonl and <out>/issues.jsonl.
func Save(outDir string, sourceID string, records []activity.Record, issues []tree.Issue) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	store := activity.NewStore()
	store.Append(sourceID, records)
	if err := store.Save(outDir, sourceID); err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(outDir, "issues.jsonl"))
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, iss := range issues {
		if err := enc.Encode(iss); err != nil {
			return err
		}
	}
	return w.Flush()
}
