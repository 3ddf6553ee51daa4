package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultJWTSecret is only acceptable outside production.
const DefaultJWTSecret = "dev-secret-change-me"

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	Port           string
	FrontendURL    string
	RequestTimeout time.Duration
	LogLevel       string

	// Storage
	DatabaseURL string
	RedisURL    string

	// JWT configuration
	JWTSecret    string
	JWTExpiresIn time.Duration

	// Azure OpenAI
	AzureOpenAIEndpoint   string
	AzureOpenAIAPIKey     string
	AzureOpenAIAPIVersion string
	AzureOpenAIDeployment string
	AIRequestTimeout      time.Duration

	// Recipe generation limits
	MaxIngredients  int
	DefaultServings int

	// Avatar storage
	S3BucketName string
	AWSRegion    string
}

// secretKeys are read from SECRETS_DIR and override the environment when present.
var secretKeys = map[string]string{
	"jwt_secret":           "JWT_SECRET",
	"database_url":         "DATABASE_URL",
	"azure_openai_api_key": "AZURE_OPENAI_API_KEY",
	"redis_url":            "REDIS_URL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "5000")
	v.SetDefault("ENV", string(Development))
	v.SetDefault("DATABASE_URL", "file:recipes.db?cache=shared")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("JWT_SECRET", DefaultJWTSecret)
	v.SetDefault("JWT_EXPIRES_IN", "168h")
	v.SetDefault("AZURE_OPENAI_ENDPOINT", "")
	v.SetDefault("AZURE_OPENAI_API_KEY", "")
	v.SetDefault("AZURE_OPENAI_API_VERSION", "2024-02-01")
	v.SetDefault("AZURE_OPENAI_DEPLOYMENT_NAME", "")
	v.SetDefault("MAX_INGREDIENTS", 20)
	v.SetDefault("DEFAULT_SERVINGS", 4)
	v.SetDefault("FRONTEND_URL", "http://localhost:3000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("AI_REQUEST_TIMEOUT", "60s")
	v.SetDefault("S3_BUCKET_NAME", "")
	v.SetDefault("AWS_REGION", "us-east-1")
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	for name, key := range secretKeys {
		if value := readSecret(name); value != "" {
			v.Set(key, value)
		}
	}

	cfg, err := fromViper(v)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Environment:           GetEnvironment(),
		Port:                  v.GetString("PORT"),
		FrontendURL:           v.GetString("FRONTEND_URL"),
		LogLevel:              v.GetString("LOG_LEVEL"),
		DatabaseURL:           v.GetString("DATABASE_URL"),
		RedisURL:              v.GetString("REDIS_URL"),
		JWTSecret:             v.GetString("JWT_SECRET"),
		AzureOpenAIEndpoint:   v.GetString("AZURE_OPENAI_ENDPOINT"),
		AzureOpenAIAPIKey:     v.GetString("AZURE_OPENAI_API_KEY"),
		AzureOpenAIAPIVersion: v.GetString("AZURE_OPENAI_API_VERSION"),
		AzureOpenAIDeployment: v.GetString("AZURE_OPENAI_DEPLOYMENT_NAME"),
		MaxIngredients:        v.GetInt("MAX_INGREDIENTS"),
		DefaultServings:       v.GetInt("DEFAULT_SERVINGS"),
		S3BucketName:          v.GetString("S3_BUCKET_NAME"),
		AWSRegion:             v.GetString("AWS_REGION"),
	}

	var err error
	if cfg.JWTExpiresIn, err = parseDuration(v, "JWT_EXPIRES_IN"); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = parseDuration(v, "REQUEST_TIMEOUT"); err != nil {
		return nil, err
	}
	if cfg.AIRequestTimeout, err = parseDuration(v, "AI_REQUEST_TIMEOUT"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// parseDuration accepts Go durations ("168h") and the "7d" form used by
// token expiry settings.
func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if strings.HasSuffix(raw, "d") {
		var days int
		if _, err := fmt.Sscanf(raw, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	return d, nil
}

// AIConfigured reports whether every Azure OpenAI setting is present.
func (c *Config) AIConfigured() bool {
	return c.AzureOpenAIEndpoint != "" && c.AzureOpenAIAPIKey != "" && c.AzureOpenAIDeployment != ""
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
