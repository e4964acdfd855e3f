package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	cfg := New()
	assert.Equal(t, DefaultAppName, cfg.App.Name)
	assert.Equal(t, ":"+DefaultServerPort, cfg.Server.Address())
	assert.Equal(t, "localhost:6379", cfg.Redis.Address())
	assert.Equal(t, DefaultLockTTL, cfg.Redis.LockTTL)
	assert.True(t, cfg.Consent.Preferences["privacy_policy"])
	assert.NoError(t, cfg.Validate())
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("APP_NAME", "users")
	t.Setenv("PORT", "8081")
	t.Setenv("MODE", "RELEASE")
	t.Setenv("DB_URL", "mongodb://db:27017")
	t.Setenv("DB", "people")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("REDIS_LOCK_TTL", "2s")
	t.Setenv("PAGE_SIZE", "not-a-number")

	cfg := New()
	assert.Equal(t, "users", cfg.App.Name)
	assert.Equal(t, "release", cfg.App.Mode)
	assert.Equal(t, "8081", cfg.Server.Port)
	assert.Equal(t, "mongodb://db:27017", cfg.Mongo.URI)
	assert.Equal(t, "people", cfg.Mongo.Database)
	assert.Equal(t, "cache:6380", cfg.Redis.Address())
	assert.Equal(t, 2*time.Second, cfg.Redis.LockTTL)
	assert.Equal(t, DefaultPageSize, cfg.PageSize)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := New()
	cfg.App.Mode = "chaos"
	assert.Error(t, cfg.Validate())

	cfg = New()
	cfg.SystemUser.Reference = "not-a-uuid"
	assert.Error(t, cfg.Validate())

	cfg = New()
	cfg.PageSize = MaxPageSize + 1
	assert.Error(t, cfg.Validate())
}

func TestLoadConsentTemplate(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "consent.yaml")
	require.NoError(t, os.WriteFile(good, []byte(`
version: 1
preferences:
  privacy_policy: true
  marketing_emails: false
`), 0644))

	tmpl, err := LoadConsentTemplate(good)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"privacy_policy": true, "marketing_emails": false}, tmpl.Mandatory())

	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte(`
version: 1
preferences:
  privacy_policy: true
extra: yes
`), 0644))
	_, err = LoadConsentTemplate(unknown)
	assert.Error(t, err)

	future := filepath.Join(dir, "future.yaml")
	require.NoError(t, os.WriteFile(future, []byte("version: 2\npreferences:\n  a: true\n"), 0644))
	_, err = LoadConsentTemplate(future)
	assert.ErrorContains(t, err, "unsupported version")
}

func TestLoadWithEnvFile(t *testing.T) {
	dir := t.TempDir()
	tmplPath := filepath.Join(dir, "consent.yaml")
	require.NoError(t, os.WriteFile(tmplPath, []byte("version: 1\npreferences:\n  privacy_policy: true\n"), 0644))

	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("APP_NAME=from-dotenv\nCONSENT_TEMPLATE_FILE="+tmplPath+"\n"), 0644))

	t.Cleanup(func() {
		os.Unsetenv("APP_NAME")
		os.Unsetenv("CONSENT_TEMPLATE_FILE")
	})

	cfg, err := Load(envPath)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.App.Name)
	assert.Equal(t, map[string]bool{"privacy_policy": true}, cfg.Consent.Preferences)

	_, err = Load(filepath.Join(dir, "missing.env"))
	assert.Error(t, err)
}
