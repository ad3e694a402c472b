package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"seqtrack/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Ops      OpsConfig
	Blob     BlobConfig
	Auth     AuthConfig
	Records  RecordsConfig
	Log      LogConfig
}

// DatabaseConfig selects and addresses the record store
type DatabaseConfig struct {
	Driver        string
	URL           string
	MongoDatabase string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port            string
	GinMode         string
	ShutdownTimeout time.Duration
}

// OpsConfig holds the health/metrics listener settings
type OpsConfig struct {
	Port         string
	Enabled      bool
	PprofEnabled bool
}

// BlobConfig selects where uploaded spreadsheets are archived
type BlobConfig struct {
	Driver      string
	Root        string
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3PathStyle bool
	S3AccessKey string
	S3SecretKey string
}

// AuthConfig holds access gate settings
type AuthConfig struct {
	Token      string
	CookieName string
}

// RecordsConfig holds record processing settings
type RecordsConfig struct {
	Numbering      string
	MaxUploadBytes int64
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string
	Format string
}

// Store drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// Blob drivers
const (
	BlobLocal  = "local"
	BlobS3     = "s3"
	BlobMemory = "memory"
)

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: loadDatabaseConfig(),
		Server:   loadServerConfig(),
		Ops:      loadOpsConfig(),
		Blob:     loadBlobConfig(),
		Auth:     loadAuthConfig(),
		Records:  loadRecordsConfig(),
		Log:      loadLogConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Driver:        strings.ToLower(getEnvOrDefault("STORE_DRIVER", DriverPostgres)),
		URL:           os.Getenv("DATABASE_URL"),
		MongoDatabase: getEnvOrDefault("MONGO_DATABASE", "excelData"),
	}
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:            getEnvOrDefault("PORT", "3000"),
		GinMode:         getEnvOrDefault("GIN_MODE", "release"),
		ShutdownTimeout: getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func loadOpsConfig() OpsConfig {
	return OpsConfig{
		Port:         getEnvOrDefault("OPS_PORT", "9090"),
		Enabled:      getEnvBoolOrDefault("OPS_ENABLED", true),
		PprofEnabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
	}
}

func loadBlobConfig() BlobConfig {
	return BlobConfig{
		Driver:      strings.ToLower(getEnvOrDefault("BLOB_DRIVER", BlobLocal)),
		Root:        getEnvOrDefault("BLOB_ROOT", "./uploads"),
		S3Bucket:    os.Getenv("BLOB_S3_BUCKET"),
		S3Region:    getEnvOrDefault("BLOB_S3_REGION", "us-east-1"),
		S3Endpoint:  os.Getenv("BLOB_S3_ENDPOINT"),
		S3PathStyle: getEnvBoolOrDefault("BLOB_S3_PATH_STYLE", false),
		S3AccessKey: os.Getenv("BLOB_S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("BLOB_S3_SECRET_KEY"),
	}
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		Token:      os.Getenv("AUTH_TOKEN"),
		CookieName: getEnvOrDefault("AUTH_COOKIE", "seqtrack_session"),
	}
}

func loadRecordsConfig() RecordsConfig {
	return RecordsConfig{
		Numbering:      strings.ToLower(getEnvOrDefault("PROJECT_NUMBERING", "stable")),
		MaxUploadBytes: int64(getEnvIntOrDefault("MAX_UPLOAD_MB", 50)) * 1024 * 1024,
	}
}

func loadLogConfig() LogConfig {
	return LogConfig{
		Level:  getEnvOrDefault("LOG_LEVEL", "INFO"),
		Format: getEnvOrDefault("LOG_FORMAT", "console"),
	}
}

func validateConfig(config *Config) error {
	switch config.Database.Driver {
	case DriverPostgres, DriverSQLite, DriverMongo:
		if config.Database.URL == "" {
			return errors.ConfigInvalid("DATABASE_URL is required for store driver " + config.Database.Driver)
		}
	case DriverMemory:
	default:
		return errors.ConfigInvalid("unknown STORE_DRIVER " + config.Database.Driver)
	}

	switch config.Blob.Driver {
	case BlobLocal:
		if config.Blob.Root == "" {
			return errors.ConfigInvalid("BLOB_ROOT is required for the local blob driver")
		}
	case BlobS3:
		if config.Blob.S3Bucket == "" {
			return errors.ConfigInvalid("BLOB_S3_BUCKET is required for the s3 blob driver")
		}
	case BlobMemory:
	default:
		return errors.ConfigInvalid("unknown BLOB_DRIVER " + config.Blob.Driver)
	}

	switch config.Records.Numbering {
	case "stable", "positional":
	default:
		return errors.ConfigInvalid("PROJECT_NUMBERING must be stable or positional")
	}

	if config.Records.MaxUploadBytes <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be positive")
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
