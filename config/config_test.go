package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SQLITE_PATH", "")
	t.Setenv("EVENT_TIMEZONE", "")
	t.Setenv("REQUEST_TIMEOUT", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("PUBLIC_BASE_URL", "")
	t.Setenv("PAYMENT_PROVIDER", "")
	t.Setenv("PAYMENT_CURRENCY", "")
	t.Setenv("MIDTRANS_PRODUCTION", "")
	t.Setenv("EMAIL_PROVIDER", "")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.NotEmpty(t, cfg.DBUrl)
	assert.Equal(t, time.Local, cfg.EventLocation)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "http://localhost:8080", cfg.PublicBaseURL)
	assert.Equal(t, "RUB", cfg.Payment.Currency)
	assert.Equal(t, "", cfg.Payment.Provider)
	assert.Equal(t, "noop", cfg.Email.Provider)
	assert.Empty(t, cfg.AllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("EVENT_TIMEZONE", "Europe/Moscow")
	t.Setenv("REQUEST_TIMEOUT", "3s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("PUBLIC_BASE_URL", "https://club.test/")
	t.Setenv("PAYMENT_PROVIDER", "Midtrans")
	t.Setenv("MIDTRANS_PRODUCTION", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "/tmp/x.db", cfg.SQLitePath)
	assert.Equal(t, "Europe/Moscow", cfg.EventLocation.String())
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, "https://club.test", cfg.PublicBaseURL)
	assert.Equal(t, "midtrans", cfg.Payment.Provider)
	assert.True(t, cfg.Payment.MidtransProduction)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"missing jwt secret", "JWT_SECRET", ""},
		{"unknown driver", "DB_DRIVER", "mysql"},
		{"bad timezone", "EVENT_TIMEZONE", "Mars/Olympus"},
		{"bad timeout", "REQUEST_TIMEOUT", "soon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			require.Error(t, err)
		})
	}
}
