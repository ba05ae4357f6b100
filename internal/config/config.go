package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"driftwatch/internal/drift"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Engine drift.Config

	DataPath  string
	LogDir    string
	ReportDir string

	// ActivitySource names the activity log partition: records live in
	// <DataPath>/<ActivitySource>.jsonl.
	ActivitySource string
	IssuesPath     string
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory (highest priority for MCP servers)
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory (useful for development/go run)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	// 3. Resolve data paths
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	logDir := filepath.Join(dataPath, "logs")
	reportDir := filepath.Join(dataPath, "reports")

	// Ensure directories exist
	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", logDir).Msg("Failed to create log directory")
	}
	if err := os.MkdirAll(reportDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", reportDir).Msg("Failed to create report directory")
	}

	engine := drift.DefaultConfig()
	engine.EmitUnsetEvents = getEnvBool("DRIFT_EMIT_UNSET_EVENTS", false)
	if v := os.Getenv("DRIFT_TRACKED_STATUSES"); v != "" {
		engine.TrackedStatuses = splitList(v)
	}
	if v := os.Getenv("DRIFT_TRACKED_TYPES"); v != "" {
		engine.TrackedTypes = splitList(v)
	}
	if v := os.Getenv("DRIFT_DATE_FIELD"); v != "" {
		engine.Fields.Date = v
	}
	if v := os.Getenv("DRIFT_VERSION_FIELD"); v != "" {
		engine.Fields.Version = v
	}
	if v, err := strconv.Atoi(os.Getenv("DRIFT_PI_ANCHOR_NUMBER")); err == nil {
		engine.Anchor.Number = v
	}
	if v, err := strconv.Atoi(os.Getenv("DRIFT_PI_ANCHOR_YEAR")); err == nil {
		engine.Anchor.Year = v
	}

	cfg := &AppConfig{
		Engine:         engine,
		DataPath:       dataPath,
		LogDir:         logDir,
		ReportDir:      reportDir,
		ActivitySource: getEnv("ACTIVITY_SOURCE", "activities"),
		IssuesPath:     getEnv("ISSUES_PATH", filepath.Join(dataPath, "issues.jsonl")),
	}

	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
