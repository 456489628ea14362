package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Logging    LoggingConfig
	Google     GoogleConfig
	CaseLog    CaseLogConfig
	Blob       BlobConfig
	Database   DatabaseConfig
	Moderation ModerationConfig
	Uploads    UploadsConfig
	App        AppConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	HTTPAddr string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string
}

// GoogleConfig holds Google API credentials and resource ids.
type GoogleConfig struct {
	// Credentials is either a service-account JSON blob or a path to one.
	Credentials   string
	SpreadsheetID string
	RootFolderID  string
}

// CaseLogConfig selects the tabular-log backend
type CaseLogConfig struct {
	Backend string // "sheets" or "postgres"
}

// BlobConfig selects the photo blob-store backend
type BlobConfig struct {
	Backend  string // "drive" or "local"
	LocalDir string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// ModerationConfig holds photo screening settings.
type ModerationConfig struct {
	Enabled          bool
	AWSRegion        string
	RejectConfidence float64
	Timeout          time.Duration
}

// UploadsConfig holds pending-upload store settings.
type UploadsConfig struct {
	Backend   string // "memory" or "redis"
	RedisAddr string
	TTL       time.Duration
}

// AppConfig holds capture-flow settings.
type AppConfig struct {
	WeightVersion      string
	AggregateThreshold int
}

// ConfigurationError lists every required key found missing at startup.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", strings.Join(e.Missing, ", "))
}

// Load parses flags and environment variables to build configuration
func Load() *Config {
	cfg := &Config{}

	// Define flags with defaults
	httpAddr := flag.String("http", ":8080", "HTTP server address")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	logBackend := flag.String("log-backend", "sheets", "Tabular log backend: sheets or postgres")
	blobBackend := flag.String("blob-backend", "drive", "Photo blob store backend: drive or local")
	blobLocalDir := flag.String("blob-local-dir", "./uploads", "Directory for the local blob store backend")
	uploadBackend := flag.String("upload-backend", "memory", "Pending upload store backend: memory or redis")
	redisAddr := flag.String("redis-addr", "localhost:6379", "Redis server address")
	uploadTTL := flag.Duration("upload-ttl", 10*time.Minute, "Pending upload lifetime")
	weightVersion := flag.String("weight-version", "COACH_v1.0", "Weight version tag stamped on case rows")
	aggregateThreshold := flag.Int("aggregate-threshold", 3, "Photo count that unlocks the aggregate judgment")
	dbHost := flag.String("db-host", "localhost", "PostgreSQL host")
	dbPort := flag.Int("db-port", 5432, "PostgreSQL port")
	dbUser := flag.String("db-user", "postgres", "PostgreSQL user")
	dbPassword := flag.String("db-password", "postgres", "PostgreSQL password")
	dbName := flag.String("db-name", "inspection_console", "PostgreSQL database name")
	dbSSLMode := flag.String("db-sslmode", "disable", "PostgreSQL SSL mode")

	flag.Parse()

	applyEnvOverrides(httpAddr, logLevel, logBackend, blobBackend, blobLocalDir,
		uploadBackend, redisAddr, uploadTTL, weightVersion, aggregateThreshold,
		dbHost, dbPort, dbUser, dbPassword, dbName, dbSSLMode)

	cfg.Server = ServerConfig{HTTPAddr: *httpAddr}
	cfg.Logging = LoggingConfig{Level: *logLevel}
	cfg.CaseLog = CaseLogConfig{Backend: *logBackend}
	cfg.Blob = BlobConfig{Backend: *blobBackend, LocalDir: *blobLocalDir}
	cfg.Uploads = UploadsConfig{
		Backend:   *uploadBackend,
		RedisAddr: *redisAddr,
		TTL:       *uploadTTL,
	}
	cfg.App = AppConfig{
		WeightVersion:      *weightVersion,
		AggregateThreshold: *aggregateThreshold,
	}
	cfg.Database = DatabaseConfig{
		Host:     *dbHost,
		Port:     *dbPort,
		User:     *dbUser,
		Password: *dbPassword,
		Database: *dbName,
		SSLMode:  *dbSSLMode,
	}

	cfg.Google = loadGoogleConfig()
	cfg.Moderation = loadModerationConfig()

	return cfg
}

func loadGoogleConfig() GoogleConfig {
	return GoogleConfig{
		Credentials:   os.Getenv("GCP_SERVICE_ACCOUNT_JSON"),
		SpreadsheetID: os.Getenv("SHEETS_SPREADSHEET_ID"),
		RootFolderID:  os.Getenv("DRIVE_PARENT_FOLDER_ID"),
	}
}

func loadModerationConfig() ModerationConfig {
	rejectConfidence := 70.0
	if v := os.Getenv("MODERATION_REJECT_CONFIDENCE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
			rejectConfidence = parsed
		}
	}

	timeout := 5 * time.Second
	if v := os.Getenv("MODERATION_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			timeout = parsed
		}
	}

	enabled := false
	if v := strings.ToLower(strings.TrimSpace(os.Getenv("IMAGE_MODERATION_ENABLED"))); v == "true" || v == "1" {
		enabled = true
	}

	return ModerationConfig{
		Enabled:          enabled,
		AWSRegion:        os.Getenv("AWS_REGION"),
		RejectConfidence: rejectConfidence,
		Timeout:          timeout,
	}
}

// Validate checks that every key required by the selected backends is present.
// The caller treats a returned *ConfigurationError as fatal.
func (c *Config) Validate() error {
	var missing []string

	if c.Blob.Backend == "drive" || c.CaseLog.Backend == "sheets" {
		if strings.TrimSpace(c.Google.Credentials) == "" {
			missing = append(missing, "GCP_SERVICE_ACCOUNT_JSON")
		}
	}
	if c.Blob.Backend == "drive" && strings.TrimSpace(c.Google.RootFolderID) == "" {
		missing = append(missing, "DRIVE_PARENT_FOLDER_ID")
	}
	if c.CaseLog.Backend == "sheets" && strings.TrimSpace(c.Google.SpreadsheetID) == "" {
		missing = append(missing, "SHEETS_SPREADSHEET_ID")
	}
	if c.Moderation.Enabled && strings.TrimSpace(c.Moderation.AWSRegion) == "" {
		missing = append(missing, "AWS_REGION")
	}

	if len(missing) > 0 {
		return &ConfigurationError{Missing: missing}
	}

	switch c.CaseLog.Backend {
	case "sheets", "postgres":
	default:
		return fmt.Errorf("unknown log backend %q", c.CaseLog.Backend)
	}
	switch c.Blob.Backend {
	case "drive", "local":
	default:
		return fmt.Errorf("unknown blob backend %q", c.Blob.Backend)
	}
	switch c.Uploads.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown upload backend %q", c.Uploads.Backend)
	}

	return nil
}

func applyEnvOverrides(
	httpAddr *string,
	logLevel *string,
	logBackend *string,
	blobBackend *string,
	blobLocalDir *string,
	uploadBackend *string,
	redisAddr *string,
	uploadTTL *time.Duration,
	weightVersion *string,
	aggregateThreshold *int,
	dbHost *string,
	dbPort *int,
	dbUser *string,
	dbPassword *string,
	dbName *string,
	dbSSLMode *string,
) {
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		*httpAddr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		*logLevel = v
	}
	if v := os.Getenv("LOG_BACKEND"); v != "" {
		*logBackend = v
	}
	if v := os.Getenv("BLOB_BACKEND"); v != "" {
		*blobBackend = v
	}
	if v := os.Getenv("BLOB_LOCAL_DIR"); v != "" {
		*blobLocalDir = v
	}
	if v := os.Getenv("UPLOAD_BACKEND"); v != "" {
		*uploadBackend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		*redisAddr = v
	}
	if v := os.Getenv("UPLOAD_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*uploadTTL = d
		}
	}
	if v := os.Getenv("WEIGHT_VERSION"); v != "" {
		*weightVersion = v
	}
	if v := os.Getenv("AGGREGATE_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			*aggregateThreshold = n
		}
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		*dbHost = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			*dbPort = p
		}
	}
	if v := os.Getenv("DB_USER"); v != "" {
		*dbUser = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		*dbPassword = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		*dbName = v
	}
	if v := os.Getenv("DB_SSLMODE"); v != "" {
		*dbSSLMode = v
	}
}
