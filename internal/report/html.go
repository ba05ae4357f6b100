package report

import (
	"fmt"
	"html/template"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog/log"

	"driftwatch/internal/drift"
)

const reportCSS = `
body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 2rem auto; max-width: 960px; color: #1d2733; }
h1 { border-bottom: 2px solid #2c6e9e; padding-bottom: .3rem; }
h2 { margin-top: 2rem; color: #2c6e9e; }
table { border-collapse: collapse; width: 100%; margin: 1rem 0; }
th, td { border: 1px solid #d5dde5; padding: .4rem .6rem; text-align: left; font-size: .9rem; }
th { background: #eef3f7; }
tr.kind-CREEP td.kind { color: #b3261e; font-weight: 600; }
tr.kind-PULL_IN td.kind { color: #1e7b34; font-weight: 600; }
tr.kind-SET td.kind, tr.kind-UNSET td.kind { color: #5f6b76; }
.summary { display: flex; gap: 1rem; }
.card { background: #eef3f7; border-radius: 6px; padding: 1rem; flex: 1; }
.card .num { font-size: 1.6rem; font-weight: 700; }
details { margin: .5rem 0; }
summary { cursor: pointer; font-weight: 600; }
.muted { color: #8a949e; }
`

const reportJS = `
document.addEventListener("DOMContentLoaded", function () {
	var toggle = document.getElementById("toggle-all");
	if (!toggle) return;
	toggle.addEventListener("click", function () {
		var open = toggle.dataset.state !== "open";
		document.querySelectorAll("details").forEach(function (d) { d.open = open; });
		toggle.dataset.state = open ? "open" : "closed";
		toggle.textContent = open ? "Collapse all" : "Expand all";
	});
});
`

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Schedule Drift Report</title>
<style>{{.CSS}}</style>
</head>
<body>
<h1>Schedule Drift Report</h1>
<p class="muted">Generated {{.Generated}}</p>

<div class="summary">
  <div class="card"><div class="num">{{.IssueCount}}</div>issues analyzed</div>
  <div class="card"><div class="num">{{.EventCount}}</div>schedule changes</div>
  <div class="card"><div class="num">{{.Dynamics.SignificantChanges}}</div>significant activities</div>
  <div class="card"><div class="num">{{.Dynamics.LastFourWeeks}}</div>activities, last 4 weeks</div>
</div>

<h2>Schedule changes</h2>
{{if .Events}}
<table>
<tr><th>Day</th><th>Issue</th><th>Field</th><th>Change</th><th>Details</th></tr>
{{range .Events}}<tr class="kind-{{.Kind}}"><td>{{.Day}}</td><td>{{.IssueKey}}</td><td>{{.Field}}</td><td class="kind">{{.Kind}}</td><td>{{.Detail}}</td></tr>
{{end}}</table>
{{else}}<p class="muted">No relevant schedule changes found.</p>{{end}}

<h2>Status residency <button id="toggle-all" data-state="closed">Expand all</button></h2>
{{range .Issues}}
<details>
<summary>{{.IssueKey}} ({{.Type}})</summary>
{{if .Rows}}
<table>
<tr><th>Status</th><th>Residency</th></tr>
{{range .Rows}}<tr><td>{{.Status}}</td><td>{{.Text}}</td></tr>
{{end}}</table>
{{else}}<p class="muted">No residency in tracked statuses.</p>{{end}}
</details>
{{end}}

{{if .Contributors}}
<h2>Top contributors</h2>
<table>
<tr><th>Name</th><th>Significant changes</th></tr>
{{range .Contributors}}<tr><td>{{.Name}}</td><td>{{.Contributions}}</td></tr>
{{end}}</table>
{{end}}

{{if .Skipped}}<p class="muted">Skipped issues without history: {{.Skipped}}</p>{{end}}
<script>{{.JS}}</script>
</body>
</html>
`))

type htmlRow struct {
	Status string
	Text   string
}

type htmlIssue struct {
	IssueKey string
	Type     string
	Rows     []htmlRow
}

type htmlData struct {
	Generated    string
	IssueCount   int
	EventCount   int
	Events       []drift.Event
	Issues       []htmlIssue
	Dynamics     drift.Dynamics
	Contributors []drift.Contributor
	Skipped      string
	CSS          template.CSS
	JS           template.JS
}

// WriteHTML renders the analysis result as a standalone HTML file. The
// inline style and script are minified; if minification reports errors the
// unminified source is embedded instead.
func WriteHTML(path string, result drift.Result) error {
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

	issues := make([]htmlIssue, 0, len(result.Issues))
	for _, issue := range result.Issues {
		hi := htmlIssue{IssueKey: issue.IssueKey, Type: issue.Type}
		type row struct {
			status string
			d      time.Duration
		}
		var rows []row
		for status, d := range issue.Durations {
			if d > 0 {
				rows = append(rows, row{status, d})
			}
		}
		sort.Slice(rows, func(i, j int) bool {
			if rows[i].d != rows[j].d {
				return rows[i].d > rows[j].d
			}
			return rows[i].status < rows[j].status
		})
		for _, r := range rows {
			hi.Rows = append(hi.Rows, htmlRow{Status: r.status, Text: FormatDuration(r.d)})
		}
		issues = append(issues, hi)
	}

	data := htmlData{
		Generated:    time.Now().UTC().Format("2006-01-02 15:04 UTC"),
		IssueCount:   len(result.Issues),
		EventCount:   len(events),
		Events:       events,
		Issues:       issues,
		Dynamics:     result.Dynamics,
		Contributors: result.Dynamics.TopContributors,
		Skipped:      strings.Join(result.Skipped, ", "),
		CSS:          template.CSS(minify(reportCSS, api.LoaderCSS)),
		JS:           template.JS(minify(reportJS, api.LoaderJS)),
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()
	if err := reportTemplate.Execute(f, data); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	log.Info().Str("path", path).Int("issues", len(issues)).Msg("HTML report written")
	return nil
}

func minify(src string, loader api.Loader) string {
	res := api.Transform(src, api.TransformOptions{
		Loader:            loader,
		MinifyWhitespace:  true,
		MinifyIdentifiers: loader == api.LoaderJS,
		MinifySyntax:      true,
	})
	if len(res.Errors) > 0 {
		log.Warn().Interface("errors", res.Errors).Msg("Asset minification failed; embedding unminified source")
		return src
	}
	return string(res.Code)
}
