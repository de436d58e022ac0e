package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config represents runtime configuration for the relay, read once at
// startup and treated as immutable afterwards.
type Config struct {
	Port          string
	BaseURL       string
	APIKey        string
	FlowID        string
	FileComponent string
	UploadDir     string
}

// Load reads configuration from the environment. A .env file in the
// working directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", "3001"),
		BaseURL:       strings.TrimRight(getEnv("LANGFLOW_BASE_URL", "http://localhost:7860"), "/"),
		APIKey:        os.Getenv("LANGFLOW_API_KEY"),
		FlowID:        os.Getenv("LANGFLOW_FLOW_ID"),
		FileComponent: os.Getenv("LANGFLOW_FILE_COMPONENT"),
		UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
	}

	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid LANGFLOW_BASE_URL %q", cfg.BaseURL)
	}
	return cfg, nil
}

// getEnv returns the value of key, or fallback when unset or empty.
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
