package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/nfl-data-pipeline/internal/platform/logging"
)

// Config stores runtime configuration for the pipeline.
type Config struct {
	AppEnv         string `validate:"oneof=dev stage prod"`
	ServiceName    string `validate:"required"`
	ServiceVersion string `validate:"required"`
	LogLevel       logging.Level
	LogFormat      string `validate:"oneof=json console"`

	OutputDir          string `validate:"required"`
	CurrentSeason      int    `validate:"gte=1999,lte=2100"`
	HistoryStartSeason int    `validate:"gte=1999,ltefield=CurrentSeason"`
	UploadAfterFetch   bool

	NFLVerseBaseURL             string        `validate:"required,http_url"`
	NFLVerseTimeout             time.Duration `validate:"gt=0"`
	NFLVerseCircuitEnabled      bool
	NFLVerseCircuitFailureCount int           `validate:"gte=1"`
	NFLVerseCircuitOpenTimeout  time.Duration `validate:"gt=0"`
	NFLVerseCircuitHalfOpenMax  int           `validate:"gte=1"`

	SupabaseURL       string        `validate:"omitempty,http_url"`
	SupabaseKey       string
	SupabaseTimeout   time.Duration `validate:"gt=0"`
	SupabaseBatchSize int           `validate:"gte=1,lte=100"`

	UptraceEnabled bool
	UptraceDSN     string `validate:"required_if=UptraceEnabled true"`
}

// UploadConfigured reports whether both remote database credentials are present.
func (c Config) UploadConfigured() bool {
	return c.SupabaseURL != "" && c.SupabaseKey != ""
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	currentSeason, err := getEnvAsInt("NFL_CURRENT_SEASON", 2024)
	if err != nil {
		return Config{}, fmt.Errorf("parse NFL_CURRENT_SEASON: %w", err)
	}
	historyStartSeason, err := getEnvAsInt("NFL_HISTORY_START_SEASON", 2018)
	if err != nil {
		return Config{}, fmt.Errorf("parse NFL_HISTORY_START_SEASON: %w", err)
	}
	uploadAfterFetch, err := strconv.ParseBool(getEnv("PIPELINE_UPLOAD", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PIPELINE_UPLOAD: %w", err)
	}

	nflverseTimeout, err := time.ParseDuration(getEnv("NFLVERSE_TIMEOUT", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse NFLVERSE_TIMEOUT: %w", err)
	}
	nflverseCircuitEnabled, err := strconv.ParseBool(getEnv("NFLVERSE_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse NFLVERSE_CIRCUIT_ENABLED: %w", err)
	}
	nflverseCircuitFailureCount, err := getEnvAsInt("NFLVERSE_CIRCUIT_FAILURE_COUNT", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse NFLVERSE_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	nflverseCircuitOpenTimeout, err := time.ParseDuration(getEnv("NFLVERSE_CIRCUIT_OPEN_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse NFLVERSE_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	nflverseCircuitHalfOpenMax, err := getEnvAsInt("NFLVERSE_CIRCUIT_HALF_OPEN_MAX_REQ", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse NFLVERSE_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}

	supabaseTimeout, err := time.ParseDuration(getEnv("SUPABASE_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SUPABASE_TIMEOUT: %w", err)
	}
	supabaseBatchSize, err := getEnvAsInt("SUPABASE_BATCH_SIZE", 100)
	if err != nil {
		return Config{}, fmt.Errorf("parse SUPABASE_BATCH_SIZE: %w", err)
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}

	cfg := Config{
		AppEnv:                      appEnv,
		ServiceName:                 strings.TrimSpace(getEnv("APP_SERVICE_NAME", "nfl-data-pipeline")),
		ServiceVersion:              strings.TrimSpace(getEnv("APP_SERVICE_VERSION", "dev")),
		LogLevel:                    parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
		LogFormat:                   strings.ToLower(strings.TrimSpace(getEnv("APP_LOG_FORMAT", logging.FormatConsole))),
		OutputDir:                   strings.TrimSpace(getEnv("NFL_OUTPUT_DIR", "data/nfl")),
		CurrentSeason:               currentSeason,
		HistoryStartSeason:          historyStartSeason,
		UploadAfterFetch:            uploadAfterFetch,
		NFLVerseBaseURL:             strings.TrimRight(strings.TrimSpace(getEnv("NFLVERSE_BASE_URL", "https://github.com/nflverse/nflverse-data/releases/download")), "/"),
		NFLVerseTimeout:             nflverseTimeout,
		NFLVerseCircuitEnabled:      nflverseCircuitEnabled,
		NFLVerseCircuitFailureCount: nflverseCircuitFailureCount,
		NFLVerseCircuitOpenTimeout:  nflverseCircuitOpenTimeout,
		NFLVerseCircuitHalfOpenMax:  nflverseCircuitHalfOpenMax,
		SupabaseURL:                 strings.TrimSpace(getEnvWithFallback("SUPABASE_URL", "NEXT_PUBLIC_SUPABASE_URL")),
		SupabaseKey:                 strings.TrimSpace(getEnvWithFallback("SUPABASE_KEY", "NEXT_PUBLIC_SUPABASE_ANON_KEY")),
		SupabaseTimeout:             supabaseTimeout,
		SupabaseBatchSize:           supabaseBatchSize,
		UptraceEnabled:              uptraceEnabled,
		UptraceDSN:                  uptraceDSN,
	}

	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

// getEnvWithFallback returns the first non-empty value among keys.
func getEnvWithFallback(keys ...string) string {
	for _, key := range keys {
		if value := getEnv(key, ""); value != "" {
			return value
		}
	}
	return ""
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
