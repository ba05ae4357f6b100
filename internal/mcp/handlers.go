package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"driftwatch/internal/activity"
	"driftwatch/internal/drift"
	"driftwatch/internal/report"
	"driftwatch/internal/tree"
)

type analyzeDriftArgs struct {
	Source     string `json:"source,omitempty" jsonschema:"activity log partition name; defaults to the configured source"`
	RootKey    string `json:"root_key,omitempty" jsonschema:"restrict the analysis to the hierarchy under this issue"`
	EmitUnsets bool   `json:"emit_unsets,omitempty" jsonschema:"also report explicit schedule clears as UNSET events"`
}

type analyzeDurationsArgs struct {
	Source   string `json:"source,omitempty" jsonschema:"activity log partition name; defaults to the configured source"`
	IssueKey string `json:"issue_key,omitempty" jsonschema:"restrict the report to a single issue"`
}

type metadataArgs struct {
	Source string `json:"source,omitempty"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "analyze_schedule_drift",
		Description: "Replay the recorded change history and report classified schedule changes " +
			"(SET, CREEP, PULL_IN) for target-end dates and release versions.",
	}, s.handleAnalyzeDrift)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "analyze_status_durations",
		Description: "Reconstruct how long each issue spent in each workflow status.",
	}, s.handleAnalyzeDurations)

	// Explicit schema: the metadata tool accepts a single optional string
	// and must not reject unknown partitions at the schema level.
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_activity_metadata",
		Description: "Probe an activity log partition: volume, field distribution, contributors and key events.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"source": {
					Type:        "string",
					Description: "Activity log partition name; defaults to the configured source.",
				},
			},
		},
	}, s.handleMetadata)
}

// loadScope loads the activity log and issue index, optionally narrowed to
// the hierarchy under rootKey.
func (s *Server) loadScope(source, rootKey string) ([]activity.Record, map[string]string, error) {
	if source == "" {
		source = s.cfg.ActivitySource
	}

	store := activity.NewStore()
	if err := store.Load(s.cfg.DataPath, source); err != nil {
		return nil, nil, fmt.Errorf("load activity log %q: %w", source, err)
	}
	records := store.All(source)
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("activity log %q is empty", source)
	}

	idx, err := tree.LoadIndex(s.cfg.IssuesPath)
	if err != nil {
		return nil, nil, err
	}

	scope := idx.TypeOf()
	if rootKey != "" {
		root, err := tree.Build(idx, rootKey)
		if err != nil {
			return nil, nil, err
		}
		scope = root.Scope(idx)
	}
	return records, scope, nil
}

func (s *Server) handleAnalyzeDrift(ctx context.Context, req *mcp.CallToolRequest, args analyzeDriftArgs) (*mcp.CallToolResult, drift.Result, error) {
	records, scope, err := s.loadScope(args.Source, args.RootKey)
	if err != nil {
		return nil, drift.Result{}, err
	}

	engine := s.cfg.Engine
	engine.EmitUnsetEvents = engine.EmitUnsetEvents || args.EmitUnsets

	result := drift.NewAnalyzer(engine).Analyze(records, scope)
	log.Debug().Int("issues", len(result.Issues)).Msg("Drift analysis served over MCP")

	return textResult(report.RenderEvents(result)), result, nil
}

func (s *Server) handleAnalyzeDurations(ctx context.Context, req *mcp.CallToolRequest, args analyzeDurationsArgs) (*mcp.CallToolResult, drift.Result, error) {
	records, scope, err := s.loadScope(args.Source, "")
	if err != nil {
		return nil, drift.Result{}, err
	}
	if args.IssueKey != "" {
		if _, ok := scope[args.IssueKey]; !ok {
			return nil, drift.Result{}, fmt.Errorf("issue %s is not in the analysis scope", args.IssueKey)
		}
		scope = map[string]string{args.IssueKey: scope[args.IssueKey]}
	}

	result := drift.NewAnalyzer(s.cfg.Engine).Analyze(records, scope)
	return textResult(report.RenderDurations(result)), result, nil
}

type activityMetadata struct {
	Source    string         `json:"source"`
	Dynamics  drift.Dynamics `json:"dynamics"`
	FirstSeen time.Time      `json:"first_seen"`
	LastSeen  time.Time      `json:"last_seen"`
}

func (s *Server) handleMetadata(ctx context.Context, req *mcp.CallToolRequest, args metadataArgs) (*mcp.CallToolResult, activityMetadata, error) {
	source := args.Source
	if source == "" {
		source = s.cfg.ActivitySource
	}

	store := activity.NewStore()
	if err := store.Load(s.cfg.DataPath, source); err != nil {
		return nil, activityMetadata{}, fmt.Errorf("load activity log %q: %w", source, err)
	}
	records := store.All(source)
	if len(records) == 0 {
		return nil, activityMetadata{}, fmt.Errorf("activity log %q is empty", source)
	}

	meta := activityMetadata{
		Source:    source,
		Dynamics:  drift.AnalyzeDynamics(s.cfg.Engine, records, time.Now().UTC()),
		FirstSeen: records[0].At(),
		LastSeen:  store.LatestTimestamp(source),
	}

	out, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, activityMetadata{}, err
	}
	return textResult(string(out)), meta, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}
