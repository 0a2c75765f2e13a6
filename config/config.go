package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the complete gateway configuration
type Config struct {
	Server        ServerConfig
	Upstream      UpstreamConfig
	Session       SessionConfig
	Redis         RedisConfig
	AuditDatabase *DatabaseConfig // Optional: nil disables the audit trail
	Observability ObservabilityConfig
	Environment   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string // SPA origins for CORS
}

// UpstreamConfig holds the TMS REST API the gateway fronts
type UpstreamConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SessionConfig holds session cookie and lifetime configuration
type SessionConfig struct {
	SigningKey string        // HS256 key for the session-ID cookie
	TTL        time.Duration // session entry lifetime
	LoginPath  string        // login entry point for guard redirects
	Secure     bool          // Secure flag on the session cookie
}

// RedisConfig holds the session store backend. Addr empty means the
// in-memory store is used instead.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// DatabaseConfig holds PostgreSQL configuration for the audit trail.
// When ConnectionString (from AUDIT_DATABASE_URL) is set, it takes
// precedence over individual fields.
type DatabaseConfig struct {
	ConnectionString string
	Host             string
	Port             int
	User             string
	Password         string
	Database         string
	SSLMode          string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
}

// ObservabilityConfig holds logging configuration
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string // json or text
}

// New creates a new Config instance by loading environment variables
func New() (*Config, error) {
	// Load .env if present (running from repo root or from a deploy dir)
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			AllowedOrigins:  splitAndTrim(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
		},
		Upstream: UpstreamConfig{
			BaseURL: getEnv("UPSTREAM_BASE_URL", "http://localhost:9000"),
			Timeout: getEnvAsDuration("UPSTREAM_TIMEOUT", 15*time.Second),
		},
		Session: SessionConfig{
			SigningKey: getEnv("SESSION_SIGNING_KEY", ""),
			TTL:        getEnvAsDuration("SESSION_TTL", 12*time.Hour),
			LoginPath:  getEnv("LOGIN_PATH", "/login"),
			Secure:     getEnvAsBool("SESSION_COOKIE_SECURE", false),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		AuditDatabase: loadAuditDatabaseConfig(),
		Observability: ObservabilityConfig{
			LogLevel:  getEnv("LOG_LEVEL", "info"),
			LogFormat: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream base URL is required: set UPSTREAM_BASE_URL")
	}
	if _, err := url.Parse(c.Upstream.BaseURL); err != nil {
		return fmt.Errorf("upstream base URL is invalid: %w", err)
	}
	if c.Session.SigningKey == "" {
		if c.IsProduction() {
			return fmt.Errorf("session signing key is required in production: set SESSION_SIGNING_KEY")
		}
		// Development fallback so the gateway boots without a .env
		c.Session.SigningKey = "dev-only-insecure-signing-key"
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session TTL must be positive")
	}
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}
	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DSN returns the PostgreSQL connection string. Uses ConnectionString
// when set; otherwise builds from individual fields.
func (c *DatabaseConfig) DSN() string {
	if c.ConnectionString != "" {
		return c.ConnectionString
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// LogString returns a safe string for logging (no password)
func (c *DatabaseConfig) LogString() string {
	if c.ConnectionString != "" {
		u, err := url.Parse(c.ConnectionString)
		if err == nil {
			host := u.Hostname()
			port := u.Port()
			if port == "" {
				port = "5432"
			}
			db := strings.TrimPrefix(u.Path, "/")
			return fmt.Sprintf("host=%s port=%s database=%s", host, port, db)
		}
		return "host=<from AUDIT_DATABASE_URL>"
	}
	return fmt.Sprintf("host=%s port=%d database=%s", c.Host, c.Port, c.Database)
}

// loadAuditDatabaseConfig loads the audit DB config. Returns nil when
// neither AUDIT_DATABASE_URL nor AUDIT_DB_HOST is set (audit disabled).
func loadAuditDatabaseConfig() *DatabaseConfig {
	dbURL := getEnv("AUDIT_DATABASE_URL", "")
	if dbURL != "" {
		return &DatabaseConfig{
			ConnectionString: dbURL,
			MaxOpenConns:     getEnvAsInt("AUDIT_DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:     getEnvAsInt("AUDIT_DB_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime:  getEnvAsDuration("AUDIT_DB_CONN_MAX_LIFETIME", 5*time.Minute),
		}
	}
	host := getEnv("AUDIT_DB_HOST", "")
	if host == "" {
		return nil
	}
	return &DatabaseConfig{
		Host:            host,
		Port:            getEnvAsInt("AUDIT_DB_PORT", 5432),
		User:            getEnv("AUDIT_DB_USER", "console"),
		Password:        getEnv("AUDIT_DB_PASSWORD", ""),
		Database:        getEnv("AUDIT_DB_NAME", "console_audit"),
		SSLMode:         getEnv("AUDIT_DB_SSLMODE", "disable"),
		MaxOpenConns:    getEnvAsInt("AUDIT_DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    getEnvAsInt("AUDIT_DB_MAX_IDLE_CONNS", 2),
		ConnMaxLifetime: getEnvAsDuration("AUDIT_DB_CONN_MAX_LIFETIME", 5*time.Minute),
	}
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
