package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// Every environment variable is read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Dataset
	Dataset DatasetConfig

	// Models
	Models ModelConfig

	// External services
	Gemini GeminiConfig
	Mandi  MandiConfig

	// Forecast defaults
	Forecast ForecastConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	URL string

	// Connection pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatasetConfig points at the historical sales dataset.
type DatasetConfig struct {
	// CSVPath is the cleaned flower sales CSV. When empty, history is
	// loaded from Postgres instead.
	CSVPath string
}

// ModelConfig describes where trained regression models are served from.
type ModelConfig struct {
	// ServerURL is the inference service base URL. When empty, the
	// exported coefficient files below are used in-process.
	ServerURL      string
	RevenueWeights string
	ProfitWeights  string
	RequestTimeout time.Duration
}

// GeminiConfig holds the narration service configuration.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// MandiConfig holds the wholesale price board configuration.
type MandiConfig struct {
	BaseURL string
	Enabled bool
}

// ForecastConfig holds synthetic-quantity defaults for forecasting.
type ForecastConfig struct {
	QuantityLow  int // inclusive
	QuantityHigh int // exclusive
	UnitCost     float64
	CacheTTL     time.Duration
}

// Load reads configuration from environment variables.
// Only this function calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8086"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},

		// Dataset
		Dataset: DatasetConfig{
			CSVPath: getEnv("DATASET_CSV_PATH", ""),
		},

		// Models
		Models: ModelConfig{
			ServerURL:      getEnv("MODEL_SERVER_URL", ""),
			RevenueWeights: getEnv("REVENUE_WEIGHTS_PATH", ""),
			ProfitWeights:  getEnv("PROFIT_WEIGHTS_PATH", ""),
			RequestTimeout: getEnvAsDuration("MODEL_REQUEST_TIMEOUT", "30s"),
		},

		// External services
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		},
		Mandi: MandiConfig{
			BaseURL: getEnv("MANDI_BASE_URL", ""),
			Enabled: getEnvAsBool("MANDI_ENABLED", false),
		},

		// Forecast defaults
		Forecast: ForecastConfig{
			QuantityLow:  getEnvAsInt("FORECAST_QTY_LOW", 50),
			QuantityHigh: getEnvAsInt("FORECAST_QTY_HIGH", 200),
			UnitCost:     getEnvAsFloat("FORECAST_UNIT_COST", 50),
			CacheTTL:     getEnvAsDuration("FORECAST_CACHE_TTL", "24h"),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set.
func (c *Config) validate() error {
	// History has to come from somewhere
	if c.Dataset.CSVPath == "" && c.Database.URL == "" {
		return fmt.Errorf("either DATASET_CSV_PATH or DATABASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Forecast.QuantityLow < 0 || c.Forecast.QuantityHigh <= c.Forecast.QuantityLow {
		return fmt.Errorf("FORECAST_QTY_LOW/FORECAST_QTY_HIGH must form a valid [low, high) range")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations.
func loadEnvFile() {
	paths := []string{
		".env",         // Current directory
		"backend/.env", // From project root
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
			filepath.Join(exeDir, "..", "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
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

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
