package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for both binaries. The site server reads
// Site, WordPress, Session and Logging; the identity service reads
// Identity, Database, Redis and Logging.
type Config struct {
	Site      SiteConfig
	WordPress WordPressConfig
	Session   SessionConfig
	Identity  IdentityConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Logging   LoggingConfig
}

// SiteConfig holds the frontend HTTP server configuration.
type SiteConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// WordPressConfig holds the remote content/identity API configuration.
type WordPressConfig struct {
	// BaseURL is the WordPress root or wp-json URL; the clients normalize
	// it to end in /wp-json either way.
	BaseURL     string
	HTTPTimeout time.Duration
	CacheTTL    time.Duration
}

// SessionConfig holds session-gateway configuration.
type SessionConfig struct {
	// TokenTTLDays is the lifetime of login-issued token cookies.
	TokenTTLDays int
	// RedirectMarkerTTL bounds the redirect_after_login cookie.
	RedirectMarkerTTL time.Duration
	// SecureCookies marks cookies Secure; enable when serving over TLS.
	SecureCookies bool
	// RoutesFile optionally points at a YAML file overriding the default
	// public-route set.
	RoutesFile string
}

// IdentityConfig holds the identity service configuration.
type IdentityConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	Issuer    string
	JWTSecret string
	TokenTTL  time.Duration

	// Login throttling
	ThrottleEnabled bool
	ThrottleMax     int
	ThrottleWindow  time.Duration

	// Argon2id parameters
	Argon2Memory      uint32
	Argon2Iterations  uint32
	Argon2Parallelism uint8
	Argon2SaltLength  uint32
	Argon2KeyLength   uint32
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
}

// LoggingConfig holds logger configuration.
type LoggingConfig struct {
	Level       string
	Environment string
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Site: SiteConfig{
			Host:         getEnv("SITE_HOST", "0.0.0.0"),
			Port:         getEnvInt("SITE_PORT", 4321),
			ReadTimeout:  getEnvDuration("SITE_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvDuration("SITE_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getEnvDuration("SITE_IDLE_TIMEOUT", 120*time.Second),
		},
		WordPress: WordPressConfig{
			BaseURL:     getEnv("WP_API_URL", "http://localhost:8080"),
			HTTPTimeout: getEnvDuration("WP_HTTP_TIMEOUT", 30*time.Second),
			CacheTTL:    getEnvDuration("WP_CACHE_TTL", 5*time.Minute),
		},
		Session: SessionConfig{
			TokenTTLDays:      getEnvInt("SESSION_TOKEN_TTL_DAYS", 14),
			RedirectMarkerTTL: getEnvDuration("SESSION_REDIRECT_MARKER_TTL", 10*time.Minute),
			SecureCookies:     getEnvBool("SECURE_COOKIES", false),
			RoutesFile:        getEnv("PUBLIC_ROUTES_FILE", ""),
		},
		Identity: IdentityConfig{
			Host:         getEnv("IDENTITY_HOST", "0.0.0.0"),
			Port:         getEnvInt("IDENTITY_PORT", 8080),
			ReadTimeout:  getEnvDuration("IDENTITY_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvDuration("IDENTITY_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getEnvDuration("IDENTITY_IDLE_TIMEOUT", 120*time.Second),

			Issuer:    getEnv("JWT_ISSUER", "http://localhost:8080"),
			JWTSecret: getEnv("JWT_SECRET", ""),
			TokenTTL:  getEnvDuration("JWT_TOKEN_TTL", 7*24*time.Hour),

			ThrottleEnabled: getEnvBool("LOGIN_THROTTLE_ENABLED", true),
			ThrottleMax:     getEnvInt("LOGIN_THROTTLE_MAX", 10),
			ThrottleWindow:  getEnvDuration("LOGIN_THROTTLE_WINDOW", 5*time.Minute),

			// Argon2id recommended parameters (OWASP)
			Argon2Memory:      getEnvUint32("ARGON2_MEMORY", 64*1024),
			Argon2Iterations:  getEnvUint32("ARGON2_ITERATIONS", 3),
			Argon2Parallelism: getEnvUint8("ARGON2_PARALLELISM", 4),
			Argon2SaltLength:  getEnvUint32("ARGON2_SALT_LENGTH", 16),
			Argon2KeyLength:   getEnvUint32("ARGON2_KEY_LENGTH", 32),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "wordpress"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "identity"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnvInt("REDIS_PORT", 6379),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvInt("REDIS_DB", 0),
			PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvInt("REDIS_MIN_IDLE_CONNS", 5),
		},
		Logging: LoggingConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
	}
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" port=" + strconv.Itoa(c.Port) +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Database +
		" sslmode=" + c.SSLMode
}

// Addr returns the Redis host:port address.
func (c *RedisConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvUint32(key string, defaultValue uint32) uint32 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseUint(value, 10, 32); err == nil {
			return uint32(intValue)
		}
	}
	return defaultValue
}

func getEnvUint8(key string, defaultValue uint8) uint8 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseUint(value, 10, 8); err == nil {
			return uint8(intValue)
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
