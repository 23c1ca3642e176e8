package config

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
    Level      string
    Pretty     bool
    File       string
    MaxSizeMB  int
    MaxBackups int
    MaxAgeDays int
    Compress   bool
}

// AxiomConfig holds Axiom logging configuration.
type AxiomConfig struct {
    Send          bool
    APIKey        string
    OrgID         string
    Dataset       string
    FlushInterval time.Duration
}

// ConverterConfig controls the LibreOffice process.
type ConverterConfig struct {
    Binary  string
    Timeout time.Duration
}

// SpoolerConfig names the CUPS client programs.
type SpoolerConfig struct {
    LPBinary     string
    LPStatBinary string
    Timeout      time.Duration
}

// StorageConfig configures S3 export.
type StorageConfig struct {
    Region          string
    Endpoint        string
    AccessKeyID     string
    SecretAccessKey string
    UsePathStyle    bool
    // Password enables client-side encryption of uploaded PDFs
    Password string
}

// StatusConfig configures the optional Redis status mirror.
type StatusConfig struct {
    RedisURL string
    TTL      time.Duration
}

// MetricsConfig points at a node_exporter textfile; empty disables the dump.
type MetricsConfig struct {
    TextfilePath string
}

// PathsConfig holds filesystem locations.
type PathsConfig struct {
    SettingsFile string
    TempDir      string
    StaleAfter   time.Duration
}

// Config is the top-level configuration.
type Config struct {
    Logging   LoggingConfig
    Axiom     AxiomConfig
    Converter ConverterConfig
    Spooler   SpoolerConfig
    Storage   StorageConfig
    Status    StatusConfig
    Metrics   MetricsConfig
    Paths     PathsConfig
}

// FromEnv loads configuration from environment with sensible defaults.
func FromEnv() Config {
    cfg := Config{}

    // Logging defaults
    cfg.Logging = LoggingConfig{
        Level:      getEnv("LOG_LEVEL", "info"),
        Pretty:     parseBool(getEnv("LOG_PRETTY", devDefaultPretty())),
        File:       os.Getenv("LOG_FILE"),
        MaxSizeMB:  parseInt(getEnv("LOG_MAX_SIZE_MB", "20"), 20),
        MaxBackups: parseInt(getEnv("LOG_MAX_BACKUPS", "5"), 5),
        MaxAgeDays: parseInt(getEnv("LOG_MAX_AGE_DAYS", "30"), 30),
        Compress:   parseBool(getEnv("LOG_COMPRESS", "true")),
    }

    // Axiom defaults
    baseDataset := getEnv("AXIOM_DATASET", "dev")
    cfg.Axiom = AxiomConfig{
        Send:          parseBool(getEnv("SEND_LOGS_TO_AXIOM", "0")),
        APIKey:        getEnv("AXIOM_API_KEY", ""),
        OrgID:         getEnv("AXIOM_ORG_ID", ""),
        Dataset:       baseDataset + "_batchprint",
        FlushInterval: parseDuration(getEnv("AXIOM_FLUSH_INTERVAL", "10s"), 10*time.Second),
    }

    cfg.Converter = ConverterConfig{
        Binary:  getEnv("CONVERTER_BINARY", "soffice"),
        Timeout: parseDuration(getEnv("CONVERT_TIMEOUT", "180s"), 180*time.Second),
    }

    cfg.Spooler = SpoolerConfig{
        LPBinary:     getEnv("LP_BINARY", "lp"),
        LPStatBinary: getEnv("LPSTAT_BINARY", "lpstat"),
        Timeout:      parseDuration(getEnv("SPOOL_TIMEOUT", "30s"), 30*time.Second),
    }

    cfg.Storage = StorageConfig{
        Region:          getEnv("AWS_REGION", "us-east-1"),
        Endpoint:        getEnv("S3_ENDPOINT", ""),
        AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
        SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
        UsePathStyle:    parseBool(getEnv("S3_USE_PATH_STYLE", "false")),
        Password:        getEnv("S3_ENCRYPTION_PASSWORD", ""),
    }

    cfg.Status = StatusConfig{
        RedisURL: getEnv("REDIS_URL", ""),
        TTL:      parseDuration(getEnv("STATUS_TTL", "24h"), 24*time.Hour),
    }

    cfg.Metrics = MetricsConfig{
        TextfilePath: getEnv("METRICS_TEXTFILE", ""),
    }

    cfg.Paths = PathsConfig{
        SettingsFile: getEnv("BATCHPRINT_SETTINGS_FILE", ""),
        TempDir:      getEnv("BATCHPRINT_TEMP_DIR", os.TempDir()),
        StaleAfter:   parseDuration(getEnv("TEMP_STALE_AFTER", "24h"), 24*time.Hour),
    }

    return cfg
}

// Helpers
func getEnv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

func parseInt(s string, def int) int {
    if s == "" { return def }
    if n, err := strconv.Atoi(s); err == nil { return n }
    return def
}

func parseBool(s string) bool {
    v := strings.ToLower(strings.TrimSpace(s))
    return v == "1" || v == "true" || v == "yes" || v == "on"
}

func parseDuration(s string, def time.Duration) time.Duration {
    if s == "" { return def }
    if d, err := time.ParseDuration(s); err == nil { return d }
    return def
}

func devDefaultPretty() string {
    env := strings.ToLower(os.Getenv("ENVIRONMENT"))
    if env == "dev" || env == "development" || env == "local" { return "true" }
    return "false"
}
