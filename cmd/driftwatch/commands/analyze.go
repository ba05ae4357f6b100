package commands

import (
	"fmt"
	"path/filepath"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"driftwatch/internal/activity"
	"driftwatch/internal/drift"
	"driftwatch/internal/report"
	"driftwatch/internal/tree"
)

var (
	analyzeSource  string
	analyzeRoot    string
	analyzeUnsets  bool
	analyzeHTML    bool
	analyzeOpen    bool
	analyzeMermaid bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the drift and residency analysis and print a report",
	RunE: func(cmd *cobra.Command, args []string) error {
		source := analyzeSource
		if source == "" {
			source = cfg.ActivitySource
		}

		store := activity.NewStore()
		if err := store.Load(cfg.DataPath, source); err != nil {
			return err
		}
		records := store.All(source)
		if len(records) == 0 {
			return fmt.Errorf("activity log %q is empty", source)
		}

		idx, err := tree.LoadIndex(cfg.IssuesPath)
		if err != nil {
			return err
		}
		scope := idx.TypeOf()
		if analyzeRoot != "" {
			root, err := tree.Build(idx, analyzeRoot)
			if err != nil {
				return err
			}
			scope = root.Scope(idx)
		}

		engine := cfg.Engine
		engine.EmitUnsetEvents = engine.EmitUnsetEvents || analyzeUnsets
		result := drift.NewAnalyzer(engine).Analyze(records, scope)

		fmt.Print(report.Render(result))

		if analyzeMermaid {
			for _, issue := range result.Issues {
				if chart := report.GenerateStatusGantt(issue); chart != "" {
					fmt.Printf("\n%s\n", chart)
				}
			}
			if chart := report.GenerateDriftChart(result); chart != "" {
				fmt.Printf("\n%s\n", chart)
			}
		}

		if analyzeHTML || analyzeOpen {
			path := filepath.Join(cfg.ReportDir, fmt.Sprintf("%s-drift.html", source))
			if err := report.WriteHTML(path, result); err != nil {
				return err
			}
			fmt.Printf("\nHTML report: %s\n", path)
			if analyzeOpen {
				if err := browser.OpenFile(path); err != nil {
					log.Warn().Err(err).Str("path", path).Msg("Could not open report in browser")
				}
			}
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeSource, "source", "", "activity log partition (defaults to configured source)")
	analyzeCmd.Flags().StringVar(&analyzeRoot, "root", "", "restrict the analysis to the hierarchy under this issue key")
	analyzeCmd.Flags().BoolVar(&analyzeUnsets, "emit-unsets", false, "report explicit schedule clears as UNSET events")
	analyzeCmd.Flags().BoolVar(&analyzeHTML, "html", false, "write a standalone HTML report")
	analyzeCmd.Flags().BoolVar(&analyzeOpen, "open", false, "write the HTML report and open it in the browser")
	analyzeCmd.Flags().BoolVar(&analyzeMermaid, "charts", false, "print mermaid charts alongside the text report")
	rootCmd.AddCommand(analyzeCmd)
}
