// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	AuthProviderFirebase = "firebase"
	AuthProviderJWT      = "jwt"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

// Config holds all configuration for the application.
type Config struct {
	// Server Configuration
	GinMode            string        `mapstructure:"GIN_MODE"`
	ServerHost         string        `mapstructure:"SERVER_HOST"`
	ServerPort         string        `mapstructure:"SERVER_PORT"`
	ServerTimeout      time.Duration `mapstructure:"-"` // SERVER_TIMEOUT_SECONDS
	CORSAllowedOrigins []string      `mapstructure:"-"`

	// Database Configuration
	DBDriver          string        `mapstructure:"DB_DRIVER"`
	DBHost            string        `mapstructure:"DB_HOST"`
	DBPort            string        `mapstructure:"DB_PORT"`
	DBUser            string        `mapstructure:"DB_USER"`
	DBPassword        string        `mapstructure:"DB_PASSWORD"`
	DBName            string        `mapstructure:"DB_NAME"`
	DBSSLMode         string        `mapstructure:"DB_SSL_MODE"`
	DBTimezone        string        `mapstructure:"DB_TIMEZONE"`
	DBMaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBMaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBConnMaxLifetime time.Duration `mapstructure:"-"` // DB_CONN_MAX_LIFETIME_MINUTES
	DBSource          string        `mapstructure:"DB_SOURCE"`
	DBSQLitePath      string        `mapstructure:"DB_SQLITE_PATH"`

	// Logging Configuration
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// Authentication
	AuthProvider string        `mapstructure:"AUTH_PROVIDER"`
	JWTSecret    string        `mapstructure:"JWT_SECRET"`
	JWTIssuer    string        `mapstructure:"JWT_ISSUER"`
	JWTTTL       time.Duration `mapstructure:"-"` // JWT_TTL_MINUTES

	// Firebase Configuration
	FirebaseServiceAccountKeyPath string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_KEY_PATH"`
	FirebaseProjectID             string `mapstructure:"FIREBASE_PROJECT_ID"`

	// Elasticsearch Configuration. Empty URL disables the catalog index.
	ElasticsearchURL string `mapstructure:"ELASTICSEARCH_URL"`

	// ISBN lookup
	ISBNLookupBaseURL string        `mapstructure:"ISBN_LOOKUP_BASE_URL"`
	ISBNLookupTimeout time.Duration `mapstructure:"-"` // ISBN_LOOKUP_TIMEOUT_SECONDS
	ISBNCacheTTL      time.Duration `mapstructure:"-"` // ISBN_CACHE_TTL_MINUTES

	// Covers
	CoverStoragePath string `mapstructure:"COVER_STORAGE_PATH"`
	MaxCoverSizeMB   int64  `mapstructure:"MAX_COVER_SIZE_MB"`

	// Request orchestration
	StoreRetryAttempts int           `mapstructure:"STORE_RETRY_ATTEMPTS"`
	StoreRetryBackoff  time.Duration `mapstructure:"-"` // STORE_RETRY_BACKOFF_MS

	// Cron Jobs
	ConsistencyAuditSchedule string `mapstructure:"CONSISTENCY_AUDIT_SCHEDULE"`
}

// Load attempts to load configuration from a .env file (if present) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling configuration: %w", err)
	}

	// Durations are plain integers in the unit their key names, so they are
	// read here rather than decoded by Unmarshal.
	cfg.ServerTimeout = time.Duration(v.GetInt("SERVER_TIMEOUT_SECONDS")) * time.Second
	cfg.DBConnMaxLifetime = time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME_MINUTES")) * time.Minute
	cfg.JWTTTL = time.Duration(v.GetInt("JWT_TTL_MINUTES")) * time.Minute
	cfg.ISBNLookupTimeout = time.Duration(v.GetInt("ISBN_LOOKUP_TIMEOUT_SECONDS")) * time.Second
	cfg.ISBNCacheTTL = time.Duration(v.GetInt("ISBN_CACHE_TTL_MINUTES")) * time.Minute
	cfg.StoreRetryBackoff = time.Duration(v.GetInt("STORE_RETRY_BACKOFF_MS")) * time.Millisecond
	cfg.CORSAllowedOrigins = splitList(v.GetString("CORS_ALLOWED_ORIGINS"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_TIMEOUT_SECONDS", 30)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	v.SetDefault("DB_DRIVER", DBDriverPostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "bookshare_db")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_TIMEZONE", "UTC")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 60)
	v.SetDefault("DB_SOURCE", "")
	v.SetDefault("DB_SQLITE_PATH", "bookshare.db")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("AUTH_PROVIDER", AuthProviderFirebase)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "bookshare_backend")
	v.SetDefault("JWT_TTL_MINUTES", 60)

	v.SetDefault("FIREBASE_PROJECT_ID", "")
	v.SetDefault("FIREBASE_SERVICE_ACCOUNT_KEY_PATH", "")

	v.SetDefault("ELASTICSEARCH_URL", "")

	v.SetDefault("ISBN_LOOKUP_BASE_URL", "https://openlibrary.org")
	v.SetDefault("ISBN_LOOKUP_TIMEOUT_SECONDS", 5)
	v.SetDefault("ISBN_CACHE_TTL_MINUTES", 24*60)

	v.SetDefault("COVER_STORAGE_PATH", "./uploads")
	v.SetDefault("MAX_COVER_SIZE_MB", 5)

	v.SetDefault("STORE_RETRY_ATTEMPTS", 3)
	v.SetDefault("STORE_RETRY_BACKOFF_MS", 100)

	v.SetDefault("CONSISTENCY_AUDIT_SCHEDULE", "@hourly")
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DBDriverPostgres, DBDriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	switch c.AuthProvider {
	case AuthProviderFirebase:
		if strings.TrimSpace(c.FirebaseServiceAccountKeyPath) == "" {
			return fmt.Errorf("FATAL: FIREBASE_SERVICE_ACCOUNT_KEY_PATH is not set. This is required when AUTH_PROVIDER=firebase")
		}
		if _, err := os.Stat(c.FirebaseServiceAccountKeyPath); os.IsNotExist(err) {
			return fmt.Errorf("FATAL: Firebase service account key file specified in FIREBASE_SERVICE_ACCOUNT_KEY_PATH (%s) not found", c.FirebaseServiceAccountKeyPath)
		}
	case AuthProviderJWT:
		if strings.TrimSpace(c.JWTSecret) == "" {
			return fmt.Errorf("FATAL: JWT_SECRET is not set. This is required when AUTH_PROVIDER=jwt")
		}
	default:
		return fmt.Errorf("unsupported AUTH_PROVIDER %q", c.AuthProvider)
	}

	if c.StoreRetryAttempts < 1 {
		c.StoreRetryAttempts = 1
	}
	return nil
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
