package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "hris-leave.db", cfg.Database.SQLitePath)
	assert.Equal(t, 25, cfg.Database.MaxConns)
	assert.Equal(t, 5, cfg.Database.MinConns)
	assert.Equal(t, time.Hour, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, 24*time.Hour, cfg.Leave.ProvisionInterval)
	assert.Equal(t, int64(5<<20), cfg.Leave.MaxAttachmentSize)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Empty(t, cfg.SMTP.Host)
	assert.Equal(t, "Asia/Jakarta", cfg.Location().String())
	assert.False(t, cfg.Google.Enabled())
	assert.Equal(t, "http://localhost:3000", cfg.App.FrontendURL)
}

func TestLoad_Google(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("GOOGLE_CLIENT_ID", "client-id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "client-secret")
	t.Setenv("GOOGLE_REDIRECT_URL", "http://localhost:8080/api/v1/auth/oauth/callback/google")
	t.Setenv("FRONTEND_URL", "https://hr.example.com/")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Google.Enabled())
	assert.Equal(t, []string{"https://www.googleapis.com/auth/userinfo.email"}, cfg.Google.Scopes)
	assert.Equal(t, "https://hr.example.com", cfg.App.FrontendURL)

	t.Setenv("GOOGLE_CLIENT_SECRET", "")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())

	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing jwt secret", map[string]string{"DB_DRIVER": "sqlite"}},
		{"missing postgres password", map[string]string{"JWT_SECRET_KEY": "s"}},
		{"unknown driver", map[string]string{"DB_DRIVER": "mysql", "JWT_SECRET_KEY": "s"}},
		{"bad port", map[string]string{"DB_DRIVER": "sqlite", "JWT_SECRET_KEY": "s", "APP_PORT": "eighty"}},
		{"bad timezone", map[string]string{"DB_DRIVER": "sqlite", "JWT_SECRET_KEY": "s", "APP_TIMEZONE": "Mars/Base"}},
		{"bad interval", map[string]string{"DB_DRIVER": "sqlite", "JWT_SECRET_KEY": "s", "LEAVE_PROVISION_INTERVAL": "daily"}},
		{"pool min above max", map[string]string{"JWT_SECRET_KEY": "s", "DB_PASSWORD": "p", "DB_MAX_CONNS": "2", "DB_MIN_CONNS": "4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"DB_DRIVER", "DB_PASSWORD", "JWT_SECRET_KEY", "APP_PORT", "APP_TIMEZONE", "LEAVE_PROVISION_INTERVAL", "DB_MAX_CONNS", "DB_MIN_CONNS"} {
				t.Setenv(key, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
