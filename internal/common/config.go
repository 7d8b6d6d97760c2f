package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Store   StoreConfig
	AI      AIConfig
	OCR     OCRConfig
	Batch   BatchConfig
	Persist PersistConfig
	Metrics MetricsConfig
	Log     LogConfig
}

// StoreConfig holds durable key-value store configuration.
type StoreConfig struct {
	Path string
}

// AIConfig holds AI extraction engine configuration.
type AIConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float32
	Timeout     time.Duration
	RateLimit   float64 // requests per second
	RateBurst   int
}

// OCRConfig holds the traditional OCR engine configuration.
type OCRConfig struct {
	Tesseract string // binary name or absolute path; if empty -> "tesseract"
	Languages string // default "ara+eng"
	PSM       int
	Timeout   time.Duration
	TmpDir    string
}

// BatchConfig holds batch scheduler configuration.
type BatchConfig struct {
	Size  int
	Delay time.Duration
}

// PersistConfig holds the record persistence collaborator configuration.
type PersistConfig struct {
	DSN             string
	MaxConns        int32
	MaxConnLifetime time.Duration
	DialTimeout     time.Duration
}

// MetricsConfig holds the metrics listener configuration.
type MetricsConfig struct {
	Addr string // empty disables the listener
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Path: getEnv("STORE_PATH", "textify.db"),
		},
		AI: AIConfig{
			BaseURL:     getEnv("AI_BASE_URL", "https://api.openai.com/v1"),
			APIKey:      getEnv("AI_API_KEY", ""),
			Model:       getEnv("AI_MODEL", "gpt-4o-mini"),
			Temperature: getEnvAsFloat32("AI_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("AI_TIMEOUT", 15*time.Second),
			RateLimit:   getEnvAsFloat64("AI_RATE_LIMIT", 2),
			RateBurst:   getEnvAsInt("AI_RATE_BURST", 5),
		},
		OCR: OCRConfig{
			Tesseract: getEnv("TESSERACT_BIN", "tesseract"),
			Languages: getEnv("OCR_LANGUAGES", "ara+eng"),
			PSM:       getEnvAsInt("OCR_PSM", 6),
			Timeout:   getEnvAsDuration("OCR_TIMEOUT", 60*time.Second),
			TmpDir:    getEnv("OCR_TMP_DIR", os.TempDir()),
		},
		Batch: BatchConfig{
			Size:  getEnvAsInt("BATCH_SIZE", 5),
			Delay: getEnvAsDuration("BATCH_DELAY", time.Second),
		},
		Persist: PersistConfig{
			DSN:             getEnv("DB_URL", ""),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 10),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Metrics: MetricsConfig{
			Addr: getEnv("METRICS_ADDR", ""),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}
}

// Validate checks the loaded configuration for required values.
func (c *Config) Validate() error {
	if c.Store.Path == "" {
		return NewAppError("CONFIG_ERROR", "STORE_PATH is required", nil)
	}
	if c.Batch.Size <= 0 {
		return NewAppError("CONFIG_ERROR", "BATCH_SIZE must be positive", nil)
	}
	return nil
}

// Helper functions for environment variable parsing.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
