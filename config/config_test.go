package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost", c.ServerURL)
	assert.Equal(t, "http://localhost/tcpcm", c.APIBase())
	assert.Equal(t, "TcPCM_Test", c.Databases.PCM)
	assert.Equal(t, "TcPCM_Console", c.Databases.Console)
	assert.Equal(t, 15, c.PageSize)
	assert.Equal(t, 300*time.Millisecond, c.Debounce)
	assert.Equal(t, int64(300), c.DebounceMillis())
	assert.Equal(t, "ko", c.DefaultLanguage)
	assert.Equal(t, "/debug/prometheus", c.Prometheus.Path)
	assert.False(t, c.OAuth.Enabled())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("CONSOLE_SERVER_URL", "https://pcm.example.com/")
	t.Setenv("CONSOLE_API_PATH", "/api-root")
	t.Setenv("CONSOLE_DB_PCM", "PCM_Prod")
	t.Setenv("CONSOLE_PAGE_SIZE", "50")
	t.Setenv("CONSOLE_API_USER", "svc")

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://pcm.example.com", c.ServerURL)
	assert.Equal(t, "https://pcm.example.com/api-root", c.APIBase())
	assert.Equal(t, "PCM_Prod", c.Databases.PCM)
	assert.Equal(t, 50, c.PageSize)
	assert.True(t, c.OAuth.Enabled())
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("CONSOLE_DB_CONSOLE=FromFile\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("CONSOLE_DB_CONSOLE") })

	n, err := LoadEnv([]string{path, filepath.Join(dir, "missing.env")})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "FromFile", c.Databases.Console)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Configuration)
	}{
		{"relative server url", func(c *Configuration) { c.ServerURL = "localhost" }},
		{"api path without slash", func(c *Configuration) { c.APIPath = "tcpcm" }},
		{"zero page size", func(c *Configuration) { c.PageSize = 0 }},
		{"negative debounce", func(c *Configuration) { c.Debounce = -time.Second }},
		{"unknown log format", func(c *Configuration) { c.LogFormat = "xml" }},
		{"empty database", func(c *Configuration) { c.Databases.PCM = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Load()
			require.NoError(t, err)
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestLogrusLogLevel(t *testing.T) {
	c := &Configuration{LogLevel: "debug"}
	assert.Equal(t, logrus.DebugLevel, c.LogrusLogLevel())
	c.LogLevel = "bogus"
	assert.Equal(t, logrus.InfoLevel, c.LogrusLogLevel())
}
