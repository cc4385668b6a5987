package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"casino/database"
	"casino/domain/entities"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds all application configuration
type Config struct {
	// HTTP configuration
	HTTPAddr           string
	CORSAllowedOrigins []string
	RateLimitPerMinute int

	// Auth configuration
	JWTSecret string

	// Database configuration
	DatabaseURL    string
	DatabaseName   string
	StorageBackend string // "postgres" or "memory"

	// NATS configuration
	NATSServers string // NATS server addresses (comma-separated), empty disables publishing

	// Wagering configuration
	StartingBalance    int64
	HistoryWindow      int
	LedgerMaxRetries   uint64
	PersistenceTimeout time.Duration
	GameTablesPath     string
	Tables             GameTables

	// Logging
	LogLevel string

	// Environment
	Environment string // "development", "production" or "test"
}

const (
	StorageBackendPostgres = "postgres"
	StorageBackendMemory   = "memory"
)

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// Load reads a dotenv file into the process environment. A missing file is not an error.
func Load(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// EventsEnabled reports whether domain events are published to NATS
func (c *Config) EventsEnabled() bool {
	return strings.TrimSpace(c.NATSServers) != ""
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		HTTPAddr:           getEnvWithDefault("HTTP_ADDR", ":8080"),
		CORSAllowedOrigins: splitList(getEnvWithDefault("CORS_ALLOWED_ORIGINS", "*")),
		RateLimitPerMinute: 120,

		JWTSecret: os.Getenv("JWT_SECRET"),

		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DatabaseName:   os.Getenv("DATABASE_NAME"),
		StorageBackend: getEnvWithDefault("STORAGE_BACKEND", StorageBackendPostgres),

		NATSServers: os.Getenv("NATS_SERVERS"),

		StartingBalance:    1000,
		HistoryWindow:      50,
		LedgerMaxRetries:   5,
		PersistenceTimeout: 5 * time.Second,
		GameTablesPath:     getEnvWithDefault("GAME_TABLES_PATH", "tables.yaml"),

		LogLevel:    getEnvWithDefault("LOG_LEVEL", "info"),
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if v := os.Getenv("STARTING_BALANCE"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil || parsed < 0 {
			return nil, fmt.Errorf("STARTING_BALANCE must be a non-negative integer, got %q", v)
		}
		config.StartingBalance = parsed
	}
	if v := os.Getenv("HISTORY_WINDOW"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			config.HistoryWindow = parsed
		}
	}
	if v := os.Getenv("RATE_LIMIT_PER_MINUTE"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			config.RateLimitPerMinute = parsed
		}
	}
	if v := os.Getenv("LEDGER_MAX_RETRIES"); v != "" {
		if parsed, err := strconv.ParseUint(v, 10, 64); err == nil {
			config.LedgerMaxRetries = parsed
		}
	}
	if v := os.Getenv("PERSISTENCE_TIMEOUT"); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("PERSISTENCE_TIMEOUT must be a positive duration, got %q", v)
		}
		config.PersistenceTimeout = parsed
	}

	tables, err := LoadGameTables(config.GameTablesPath)
	if err != nil {
		return nil, err
	}
	config.Tables = tables

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		if config.JWTSecret == "" {
			return nil, fmt.Errorf("JWT_SECRET is required")
		}
		switch config.StorageBackend {
		case StorageBackendPostgres:
			if config.DatabaseURL == "" {
				return nil, fmt.Errorf("DATABASE_URL is required")
			}
		case StorageBackendMemory:
		default:
			return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", config.StorageBackend)
		}
		if config.DatabaseName != "" && strings.TrimSpace(config.DatabaseName) == "" {
			return nil, fmt.Errorf("DATABASE_NAME cannot be empty when provided")
		}
	}

	return config, nil
}

// ConfigureLogging applies the level and formatter for the environment
func (c *Config) ConfigureLogging() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.WithField("level", c.LogLevel).Warn("Unknown log level, falling back to info")
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if c.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:        "test",
		HTTPAddr:           ":0",
		CORSAllowedOrigins: []string{"*"},
		RateLimitPerMinute: 600,
		JWTSecret:          "test-secret",
		StorageBackend:     StorageBackendMemory,
		StartingBalance:    1000,
		HistoryWindow:      50,
		LedgerMaxRetries:   5,
		PersistenceTimeout: time.Second,
		LogLevel:           "error",
		Tables:             DefaultGameTables(),
	}
}

// TableLimitsFor returns the configured bet limits for a game
func (c *Config) TableLimitsFor(game entities.GameKind) entities.TableLimits {
	return c.Tables.For(game)
}
