package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("SESSION_BACKEND", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("ADMIN_EMAIL", "")
	t.Setenv("ADMIN_PASSWORD", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "redis", cfg.SessionBackend)
	assert.Equal(t, 14*24*time.Hour, cfg.SessionTTL)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.EqualError(t, err, "JWT_SECRET is required")
}

func TestLoad_InvalidDriver(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_DRIVER", "mysql")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_BrokersCSV(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SESSION_BACKEND", "memory")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
}

func TestPostgresDSN(t *testing.T) {
	c := Config{PostgresHost: "db", PostgresPort: 5433, PostgresUser: "u", PostgresPassword: "p", PostgresDB: "shop", PostgresSSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=shop sslmode=disable", c.PostgresDSN())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.PostgresDSN())
}

func TestLoad_UserLinkSecretMustDiffer(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SESSION_BACKEND", "memory")
	t.Setenv("USER_LINK_SECRET", "secret")

	_, err := Load()
	assert.EqualError(t, err, "USER_LINK_SECRET must differ from JWT_SECRET")

	t.Setenv("USER_LINK_SECRET", "bot-secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "bot-secret", cfg.UserLinkSecret)
}
