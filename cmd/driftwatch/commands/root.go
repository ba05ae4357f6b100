package commands

import (
	"driftwatch/internal/config"
	"driftwatch/internal/logging"
	"driftwatch/internal/mcp"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "driftwatch",
	Short: "Driftwatch reconstructs schedule drift and status residency from issue change histories",
	Long: `Driftwatch replays scraped per-issue change histories and reconstructs how long
issues dwelled in each workflow status, plus a noise-reduced timeline of schedule
changes (SET, CREEP, PULL_IN) across target-end dates and release versions.

Without a subcommand it serves the analyses as MCP tools over stdio.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(verbose)

		// Load configuration
		var err error
		cfg, err = config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Msg("Driftwatch starting")
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return mcp.NewServer(cfg).Run(cmd.Context())
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}
