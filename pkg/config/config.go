package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string
	CronSecret  string
	LogLevel    string
	LogFormat   string

	// SLA and matching
	SLATargetMinutes int
	MatchBatchSize   int
	MatchTimeBudget  time.Duration

	// Routing rules
	TeamAddress           string
	CompanyDomain         string
	SystemSenders         []string
	SystemSubjectKeywords []string
	SolverSubjectKeywords []string

	// Ingestion
	MailSource     string // "graph", "imap" or "" (disabled)
	IngestLookback time.Duration

	// Microsoft Graph
	GraphTenantID     string
	GraphClientID     string
	GraphClientSecret string

	// IMAP
	IMAPServer   string
	IMAPPort     int
	IMAPEmail    string
	IMAPPassword string

	// Scheduler
	SchedulerEnabled  bool
	IngestInterval    time.Duration
	MatchInterval     time.Duration
	AggregateInterval time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=slatrack port=5432 sslmode=disable"),
		CronSecret:  getEnv("CRON_SECRET", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),

		SLATargetMinutes: getEnvInt("SLA_TARGET_MINUTES", 15),
		MatchBatchSize:   getEnvInt("MATCH_BATCH_SIZE", 200),
		MatchTimeBudget:  getEnvDuration("MATCH_TIME_BUDGET", 45*time.Second),

		TeamAddress:           getEnv("TEAM_ADDRESS", "team@solvit.co.ke"),
		CompanyDomain:         getEnv("COMPANY_DOMAIN", "solvit.co.ke"),
		SystemSenders:         getEnvList("SYSTEM_SENDERS", "solvit@solvit.com"),
		SystemSubjectKeywords: getEnvList("SYSTEM_SUBJECT_KEYWORDS", "valuation status update,valuation request,pending"),
		SolverSubjectKeywords: getEnvList("SOLVER_SUBJECT_KEYWORDS", "attached,document from,(no subject)"),

		MailSource:     getEnv("MAIL_SOURCE", ""),
		IngestLookback: getEnvDuration("INGEST_LOOKBACK", 48*time.Hour),

		GraphTenantID:     getEnv("AZURE_TENANT_ID", ""),
		GraphClientID:     getEnv("AZURE_CLIENT_ID", ""),
		GraphClientSecret: getEnv("AZURE_CLIENT_SECRET", ""),

		IMAPServer:   getEnv("IMAP_SERVER", ""),
		IMAPPort:     getEnvInt("IMAP_PORT", 993),
		IMAPEmail:    getEnv("IMAP_EMAIL", ""),
		IMAPPassword: getEnv("IMAP_PASSWORD", ""),

		SchedulerEnabled:  getEnvBool("SCHEDULER_ENABLED", true),
		IngestInterval:    getEnvDuration("INGEST_INTERVAL", 5*time.Minute),
		MatchInterval:     getEnvDuration("MATCH_INTERVAL", 2*time.Minute),
		AggregateInterval: getEnvDuration("AGGREGATE_INTERVAL", 1*time.Hour),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvList parses a comma-separated env value, trimming whitespace
// around each entry and dropping empty ones.
func getEnvList(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
