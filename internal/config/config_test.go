package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"APP_CONFIG", "PORT", "SECRET_KEY", "MAIL_SERVER", "MAIL_PORT", "MAIL_USE_TLS",
		"APP_ADMIN", "DOMAIN", "FAKE_API", "DEV_DATABASE_URL", "TEST_DATABASE_URL",
		"DATABASE_URL", "DYNO",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "2525", cfg.Port)
	assert.Equal(t, "sqlite:///data-dev.sqlite", cfg.DatabaseURL)
	assert.Equal(t, "smtp.googlemail.com", cfg.MailServer)
	assert.Equal(t, 587, cfg.MailPort)
	assert.True(t, cfg.MailUseTLS)
	assert.Equal(t, "https://fakestoreapi.com/products/", cfg.CatalogAPI)
	assert.Equal(t, 3600*time.Second, cfg.TokenTTL)
	assert.Len(t, cfg.SecretKey, 64)
	assert.False(t, cfg.SSLRedirect)
}

func TestLoad_Environments(t *testing.T) {
	clearEnv(t)

	t.Setenv("APP_CONFIG", "testing")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite://", cfg.DatabaseURL)
	assert.False(t, cfg.IsProduction())

	t.Setenv("APP_CONFIG", "production")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/shop")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db:5432/shop", cfg.DatabaseURL)
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.SSLRedirect)

	t.Setenv("APP_CONFIG", "cloud")
	t.Setenv("DYNO", "web.1")
	cfg, err = Load()
	require.NoError(t, err)
	assert.True(t, cfg.SSLRedirect)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	t.Setenv("APP_CONFIG", "staging")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("APP_CONFIG", "")
	t.Setenv("MAIL_PORT", "abc")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadDotenv(t *testing.T) {
	clearEnv(t)
	//godotenvは既存の変数を上書きしないので消しておく
	os.Unsetenv("SECRET_KEY")
	os.Unsetenv("APP_ADMIN")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SECRET_KEY=from-dotenv\nAPP_ADMIN=admin@example.com\n"), 0o600))

	cfg, err := LoadDotenv(path)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.SecretKey)
	assert.Equal(t, "admin@example.com", cfg.AdminEmail)
}
