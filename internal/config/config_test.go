package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Security.RateLimit.Enabled)
	assert.False(t, cfg.Faults.ExposeDetail)
	assert.False(t, cfg.Faults.IncludeStack)
	assert.True(t, cfg.Feed.Enabled)
	assert.False(t, cfg.Tracing.Enabled)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("FAULTGATE_SERVER_PORT", "9090")
	t.Setenv("FAULTGATE_LOGGING_LEVEL", "debug")
	t.Setenv("FAULTGATE_FAULTS_EXPOSE_DETAIL", "true")
	t.Setenv("FAULTGATE_SECURITY_RATE_LIMIT_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Faults.ExposeDetail)
	assert.False(t, cfg.Security.RateLimit.Enabled)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "faultgate.yaml")

	yaml := `
server:
  port: 7070
logging:
  level: warn
faults:
  secrets:
    - super-secret
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("FAULTGATE_CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, []string{"super-secret"}, cfg.Faults.Secrets)
}

func TestLoad_EnvWinsOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "faultgate.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 7070\n"), 0o644))

	t.Setenv("FAULTGATE_CONFIG_FILE", path)
	t.Setenv("FAULTGATE_SERVER_PORT", "6060")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 6060, cfg.Server.Port)
}

func TestLoad_ValidationFailures(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"invalid port", map[string]string{"FAULTGATE_SERVER_PORT": "70000"}},
		{"zero rps with rate limiting on", map[string]string{"FAULTGATE_SECURITY_RATE_LIMIT_RPS": "0"}},
		{"zero burst with rate limiting on", map[string]string{"FAULTGATE_SECURITY_RATE_LIMIT_BURST": "0"}},
		{"sample ratio above one", map[string]string{"FAULTGATE_TRACING_SAMPLE_RATIO": "1.5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestAddr(t *testing.T) {
	cfg := &Config{Server: ServerConfig{Port: 8080}}
	assert.Equal(t, ":8080", cfg.Addr())
}
