package config

import (
	"os"
	"strconv"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	AI       AIConfig
	Search   SearchConfig
	Sandbox  SandboxConfig
	Server   ServerConfig
}

// DatabaseConfig holds database connection settings. An empty URL runs the
// application without persistence: all repositories become no-ops.
type DatabaseConfig struct {
	URL string
}

// AIConfig holds generation-service settings
type AIConfig struct {
	GeminiKey          string
	GeminiModel        string
	Timeout            time.Duration
	PersonaConcurrency int
}

// SearchConfig holds per-provider search credentials. Every key is optional:
// a missing key degrades that provider to an empty result, never a startup
// failure.
type SearchConfig struct {
	BraveKey    string
	ParallelKey string
}

// SandboxConfig holds sandbox provisioning settings
type SandboxConfig struct {
	E2BKey             string
	Template           string
	FirecrawlImage     string
	FirecrawlContainer string
	FirecrawlPort      string
	FirecrawlTarget    string
	FirecrawlAPIURL    string
	FirecrawlAPIKey    string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// Load reads configuration from environment variables. Every setting is
// optional; missing ones degrade the owning component instead of failing
// startup.
func Load() *Config {
	config := &Config{
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		AI: AIConfig{
			GeminiKey:          os.Getenv("GEMINI_API_KEY"),
			GeminiModel:        getEnvOrDefault("GEMINI_MODEL", "gemini-2.5-pro"),
			Timeout:            getEnvDurationOrDefault("GEMINI_TIMEOUT", 60*time.Second),
			PersonaConcurrency: getEnvIntOrDefault("PERSONA_CONCURRENCY", 2),
		},
		Search: SearchConfig{
			BraveKey:    os.Getenv("BRAVE_API_KEY"),
			ParallelKey: os.Getenv("PARALLEL_API_KEY"),
		},
		Sandbox: SandboxConfig{
			E2BKey:             os.Getenv("E2B_API_KEY"),
			Template:           getEnvOrDefault("E2B_TEMPLATE_ID", "base"),
			FirecrawlImage:     getEnvOrDefault("FIRECRAWL_IMAGE", "ghcr.io/mendableai/firecrawl:latest"),
			FirecrawlContainer: getEnvOrDefault("FIRECRAWL_CONTAINER", "firecrawl-api"),
			FirecrawlPort:      getEnvOrDefault("FIRECRAWL_PORT", "3002"),
			FirecrawlTarget:    getEnvOrDefault("FIRECRAWL_TARGET_PORT", "3000"),
			FirecrawlAPIURL:    os.Getenv("FIRECRAWL_API_URL"),
			FirecrawlAPIKey:    os.Getenv("FIRECRAWL_API_KEY"),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "4000"),
		},
	}

	return config
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

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
