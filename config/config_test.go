package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigWithDefaults(t *testing.T) {
	t.Setenv("SECRETS_DIR", t.TempDir())
	t.Setenv("ENV", "test")
	t.Setenv("CI", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, Test, cfg.Environment)
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, 168*time.Hour, cfg.JWTExpiresIn)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 60*time.Second, cfg.AIRequestTimeout)
	assert.Equal(t, 20, cfg.MaxIngredients)
	assert.Equal(t, 4, cfg.DefaultServings)
	assert.Equal(t, "2024-02-01", cfg.AzureOpenAIAPIVersion)
	assert.Equal(t, "http://localhost:3000", cfg.FrontendURL)
	assert.False(t, cfg.AIConfigured())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("SECRETS_DIR", t.TempDir())
	t.Setenv("ENV", "development")
	t.Setenv("CI", "")
	t.Setenv("PORT", "8080")
	t.Setenv("JWT_EXPIRES_IN", "7d")
	t.Setenv("MAX_INGREDIENTS", "12")
	t.Setenv("AZURE_OPENAI_ENDPOINT", "https://example.openai.azure.com")
	t.Setenv("AZURE_OPENAI_API_KEY", "key")
	t.Setenv("AZURE_OPENAI_DEPLOYMENT_NAME", "gpt-4o")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTExpiresIn)
	assert.Equal(t, 12, cfg.MaxIngredients)
	assert.True(t, cfg.AIConfigured())
	assert.True(t, cfg.Environment.IsDevelopment())
}

func TestSecretsOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jwt_secret"), []byte("from-secret\n"), 0o600))
	t.Setenv("SECRETS_DIR", dir)
	t.Setenv("ENV", "test")
	t.Setenv("CI", "")
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-secret", cfg.JWTSecret)
}

func TestValidateConfigProduction(t *testing.T) {
	t.Setenv("SECRETS_DIR", t.TempDir())
	t.Setenv("ENV", "production")
	t.Setenv("CI", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_secret")
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestValidateConfigRejectsBadServings(t *testing.T) {
	cfg := &Config{
		Environment:     Test,
		Port:            "5000",
		DatabaseURL:     "file::memory:",
		JWTSecret:       "x",
		JWTExpiresIn:    time.Hour,
		MaxIngredients:  20,
		DefaultServings: 25,
	}
	err := ValidateConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DEFAULT_SERVINGS")
}

func TestGetEnvironment(t *testing.T) {
	t.Setenv("CI", "true")
	assert.Equal(t, CI, GetEnvironment())

	t.Setenv("CI", "")
	t.Setenv("ENV", "production")
	assert.Equal(t, Production, GetEnvironment())

	t.Setenv("ENV", "")
	assert.Equal(t, Development, GetEnvironment())
}
