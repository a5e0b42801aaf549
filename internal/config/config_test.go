package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_PORT", "DB_APP_NAME", "JWT_TTL", "EMAIL_CODE_TTL", "WORKFLOW_CONCURRENCY", "FIELD_CACHE_SIZE"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "crmapi", cfg.Database.AppName)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 10*time.Minute, cfg.Auth.CodeTTL)
	assert.Equal(t, 4, cfg.Workflow.Concurrency)
	assert.Equal(t, 256, cfg.FieldCacheSize)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("DB_HOST", "pg.internal")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("JWT_TTL", "1h")
	t.Setenv("WORKFLOW_WEBHOOK_TIMEOUT", "3s")
	t.Setenv("STATIC_DIR", "/srv/web")

	cfg := Load()

	assert.Equal(t, "pg.internal", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, 2525, cfg.SMTP.Port)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 3*time.Second, cfg.Workflow.WebhookTimeout)
	assert.Equal(t, "/srv/web", cfg.StaticDir)
}

func TestLocation(t *testing.T) {
	cfg := &AppConfig{Timezone: "Asia/Jakarta"}
	assert.Equal(t, "Asia/Jakarta", cfg.Location().String())

	cfg.Timezone = "Not/AZone"
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestEnvHelpers(t *testing.T) {
	const key = "CRMAPI_TEST_VALUE"

	tests := []struct {
		name  string
		value string
		check func(t *testing.T)
	}{
		{"string set", "value", func(t *testing.T) { assert.Equal(t, "value", getEnv(key, "default")) }},
		{"string unset", "", func(t *testing.T) { assert.Equal(t, "default", getEnv(key, "default")) }},
		{"bool true", "true", func(t *testing.T) { assert.True(t, getEnvBool(key, false)) }},
		{"bool false", "false", func(t *testing.T) { assert.False(t, getEnvBool(key, true)) }},
		{"bool invalid", "maybe", func(t *testing.T) { assert.True(t, getEnvBool(key, true)) }},
		{"int", "123", func(t *testing.T) { assert.Equal(t, 123, getEnvInt(key, 0)) }},
		{"int invalid", "many", func(t *testing.T) { assert.Equal(t, 10, getEnvInt(key, 10)) }},
		{"duration", "90s", func(t *testing.T) { assert.Equal(t, 90*time.Second, getEnvDuration(key, time.Minute)) }},
		{"duration invalid", "soon", func(t *testing.T) { assert.Equal(t, time.Minute, getEnvDuration(key, time.Minute)) }},
		{"duration unset", "", func(t *testing.T) { assert.Equal(t, time.Minute, getEnvDuration(key, time.Minute)) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(key, tt.value)
			tt.check(t)
		})
	}
}
