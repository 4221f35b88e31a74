package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 8080, cfg.Gateway.Port)
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.GuestTTL)
	assert.Equal(t, "dev-jwt-secret", cfg.Auth.JWTSecret)
	assert.False(t, cfg.App.IsProduction())
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowOrigins)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
app:
  env: production
database:
  driver: postgres
  host: db.internal
  port: 5432
  username: shop
  password: secret
  database: rentals
auth:
  jwt_secret: from-file
gateway:
  port: 9090
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("RENTAL_GATEWAY_PORT", "9191")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.App.IsProduction())
	assert.Equal(t, 9191, cfg.Gateway.Port)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.Equal(t,
		"host=db.internal port=5432 user=shop password=secret dbname=rentals sslmode=disable",
		cfg.Database.ConnectionString())
}

func TestLoadRejectsMissingSecretInProduction(t *testing.T) {
	t.Setenv("RENTAL_APP_ENV", "production")
	_, err := Load("")
	require.Error(t, err)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("RENTAL_DATABASE_DRIVER", "oracle")
	_, err := Load("")
	require.Error(t, err)
}

func TestMySQLConnectionString(t *testing.T) {
	c := DatabaseConfig{Driver: "mysql", Host: "localhost", Port: 3306, Username: "root", Password: "pw", Database: "shop"}
	assert.Equal(t,
		"root:pw@tcp(localhost:3306)/shop?charset=utf8mb4&parseTime=True&loc=UTC&clientFoundRows=true",
		c.ConnectionString())

	c.DSN = "explicit"
	assert.Equal(t, "explicit", c.ConnectionString())
}
