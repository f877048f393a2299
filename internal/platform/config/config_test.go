package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PETCLINIC_CONFIG", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, VerifyDev, cfg.Auth.VerifyMode)
	assert.Equal(t, "@every 1h", cfg.Billing.OverdueSchedule)
	assert.Empty(t, cfg.KafkaBrokers())
}

func TestDefault_RequestCountResetEvery30Days(t *testing.T) {
	sched, err := cron.ParseStandard(Default().Products.ResetSchedule)
	require.NoError(t, err)

	from := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, from.Add(30*24*time.Hour), sched.Next(from))
}

func TestLoad_YAMLThenEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "petclinic.yaml")
	yml := []byte(`
port: 9000
db:
  driver: mysql
  dsn: "user:pw@tcp(localhost:3306)/petclinic"
auth:
  jwt_ttl: 30m
services:
  billing: http://billing:8080
`)
	require.NoError(t, os.WriteFile(path, yml, 0o600))

	t.Setenv("PORT", "9100")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port, "env wins over yaml")
	assert.Equal(t, "mysql", cfg.DB.Driver)
	assert.Equal(t, 30*time.Minute, cfg.Auth.JWTTTL)
	assert.Equal(t, "http://billing:8080", cfg.Services.Billing)
	assert.Equal(t, "http://localhost:8080", cfg.Services.Vets, "unset keys keep defaults")
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers())
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Auth.VerifyMode = VerifyLocal
	assert.Error(t, cfg.Validate(), "local mode without secret")

	cfg.Auth.JWTSecret = "s3cret"
	assert.NoError(t, cfg.Validate())

	cfg.DB.Driver = "sqlite"
	assert.Error(t, cfg.Validate())
}
