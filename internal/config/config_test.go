package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"GITHUB_TOKEN", "GITHUB_ORGANISATION", "GITHUB_ORGANIZATION", "GITHUB_TIMEOUT",
		"OUTPUT_DIR", "DATABASE_URL", "PGUSER", "PGDATABASE", "ALLOWED_ORIGINS", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "outputs", cfg.Output.Dir)
	assert.Equal(t, 30*time.Second, cfg.GitHub.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "POST", cfg.Webhook.Method)
	assert.False(t, cfg.Postgres.Enabled())
	assert.Empty(t, cfg.Server.AllowedOrigins)
}

func TestLoadOrganizationAlias(t *testing.T) {
	t.Setenv("GITHUB_ORGANISATION", "")
	t.Setenv("GITHUB_ORGANIZATION", "acme")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "acme", cfg.GitHub.Organization)

	t.Setenv("GITHUB_ORGANISATION", "acme-uk")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "acme-uk", cfg.GitHub.Organization)
}

func TestLoadInvalidTimeout(t *testing.T) {
	t.Setenv("GITHUB_TIMEOUT", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GITHUB_TIMEOUT")
}

func TestPostgresEnabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  PostgresConfig
		want bool
	}{
		{name: "empty", cfg: PostgresConfig{}, want: false},
		{name: "database-url", cfg: PostgresConfig{DatabaseURL: "postgres://localhost/reports"}, want: true},
		{name: "user-only", cfg: PostgresConfig{User: "report"}, want: false},
		{name: "user-and-database", cfg: PostgresConfig{User: "report", Database: "reports"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.Enabled())
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"http://a", "http://b"}, splitList(" http://a, ,http://b ", ","))
	assert.Empty(t, splitList("", ","))
}

func TestLoadWebhookHeadersAllowCommaInValue(t *testing.T) {
	t.Setenv("REPORT_WEBHOOK_HEADERS", "Accept: application/json, text/plain\r\n\nAuthorization: Bearer abc\n")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Accept: application/json, text/plain",
		"Authorization: Bearer abc",
	}, cfg.Webhook.Headers)
}
