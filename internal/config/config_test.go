package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, BackendFile, cfg.Storage.Backend)
}

func TestLoadYAMLAndJSON(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "cleanquote.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
server:
  addr: ":9090"
storage:
  backend: memory
logging:
  level: debug
`), 0644))

	cfg, err := Load(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 30, cfg.Server.WriteTimeoutSeconds)

	jsonPath := filepath.Join(dir, "cleanquote.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"seed": {"path": "seed.hcl"}}`), 0644))
	cfg, err = Load(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "seed.hcl", cfg.Seed.Path)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CLEANQUOTE_STORAGE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/cleanquote")
	t.Setenv("CLEANQUOTE_LOG_FORMAT", "json")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, BackendPostgres, cfg.Storage.Backend)
	assert.Equal(t, "postgres://localhost/cleanquote", cfg.Storage.DatabaseURL)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestValidateRejectsBadStorage(t *testing.T) {
	t.Setenv("CLEANQUOTE_STORAGE_BACKEND", "sqlite")
	_, err := Load("")
	assert.Error(t, err)

	cfg := Default()
	cfg.Storage.Backend = BackendPostgres
	cfg.Storage.DatabaseURL = ""
	assert.Error(t, cfg.Validate())
}

func TestWebhookConfig(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, cfg.Webhook.URL)
	assert.Equal(t, 3, cfg.Webhook.RetryCount)

	t.Setenv("CLEANQUOTE_WEBHOOK_URL", "https://hooks.example.com/pricing")
	t.Setenv("CLEANQUOTE_WEBHOOK_PROVIDER", "slack")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://hooks.example.com/pricing", cfg.Webhook.URL)
	assert.Equal(t, "slack", cfg.Webhook.Provider)

	t.Setenv("CLEANQUOTE_WEBHOOK_PROVIDER", "github")
	_, err = Load("")
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("CLEANQUOTE_ADDR=:7070\n"), 0644))
	t.Setenv("CLEANQUOTE_ADDR", "")
	os.Unsetenv("CLEANQUOTE_ADDR")

	require.NoError(t, LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")))
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cleanquote.yml")
	cfg := Default()
	cfg.Storage.Backend = BackendMemory
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
