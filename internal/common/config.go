package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server ServerConfig
	Verify VerifyConfig
	OCR    OCRConfig
	Scan   ScanConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
	MaxUploadBytes  int64
}

// VerifyConfig holds verification-service client configuration
type VerifyConfig struct {
	APIURL      string
	Timeout     time.Duration
	RatePerSec  float64
	RateBurst   int
}

// OCRConfig holds recognition-engine configuration
type OCRConfig struct {
	TessdataDir string
	Language    string
}

// ScanConfig holds pipeline configuration
type ScanConfig struct {
	DropDir string // directory watched for dropped images (CLI)
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            getEnv("HTTP_ADDR", ":8080"),
			ShutdownTimeout: getEnvAsDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
			MaxUploadBytes:  getEnvAsInt64("HTTP_MAX_UPLOAD_BYTES", 10<<20),
		},
		Verify: VerifyConfig{
			APIURL:     getEnv("VERIFY_API_URL", ""),
			Timeout:    getEnvAsDuration("VERIFY_TIMEOUT", 15*time.Second),
			RatePerSec: getEnvAsFloat64("VERIFY_RATE_PER_SEC", 2),
			RateBurst:  getEnvAsInt("VERIFY_RATE_BURST", 1),
		},
		OCR: OCRConfig{
			TessdataDir: getEnv("TESSDATA_PREFIX", ""),
			Language:    getEnv("OCR_LANG", "eng"),
		},
		Scan: ScanConfig{
			DropDir: getEnv("SCAN_DROP_DIR", ""),
		},
	}
}

// Helper functions for environment variable parsing
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

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
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

// ValidateConfig validates the loaded configuration
func (c *Config) Validate() error {
	if c.Verify.APIURL == "" {
		return NewAppError("CONFIG_ERROR", "VERIFY_API_URL is required", ErrTransport)
	}
	if c.Server.Addr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", nil)
	}
	return nil
}
