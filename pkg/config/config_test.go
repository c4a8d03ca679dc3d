package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "staff", cfg.Access.PageDefault)
	assert.Equal(t, "deny", cfg.Access.ActionDefault)
	assert.Equal(t, 3, cfg.Events.MaxRetries)
	assert.Equal(t, "inventory.location-events", cfg.Kafka.Topic)
	assert.False(t, cfg.Kafka.Enabled())
	assert.Equal(t, 24*time.Hour, cfg.Redis.TTL())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_VariablesDeEntorno(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("ACCESS_ACTION_DEFAULT", "ADMIN")
	t.Setenv("EVENTS_MAX_RETRIES", "5")
	t.Setenv("EVENTS_TIMEZONE", "America/Bogota")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
	assert.Equal(t, "admin", cfg.Access.ActionDefault)
	assert.Equal(t, 5, cfg.Events.MaxRetries)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)

	loc, err := cfg.Events.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Bogota", loc.String())
	assert.NoError(t, cfg.Validate())
}

func TestValidate_Errores(t *testing.T) {
	cfg := &Config{
		App:    AppConfig{Env: "production"},
		Access: AccessConfig{PageDefault: "staff", ActionDefault: "deny"},
		Events: EventsConfig{MaxRetries: -1, Timezone: "Marte/Olympus"},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "EVENTS_MAX_RETRIES")
	assert.Contains(t, err.Error(), "EVENTS_TIMEZONE")
}

func TestDSN_EscapaPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss:w/rd", DBName: "bo", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss%3Aw%2Frd@db:5432/bo?sslmode=disable", c.DSN())
	assert.Equal(t, c.DSN(), c.ConnectionString())
}
