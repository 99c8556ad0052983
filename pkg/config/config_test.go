package config_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Mantenimiento-api/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "postgres", cfg.App.StoreDriver)
	assert.True(t, cfg.Maintenance.ApprovalThreshold.IsZero())
	assert.Equal(t, []string{"SUPER_ADMIN", "MANAGEMENT"}, cfg.Maintenance.GlobalRoles)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("STORE_SEED_FILE", "./repuestos.json")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DB_AUTO_MIGRATE", "true")
	t.Setenv("MAINTENANCE_APPROVAL_THRESHOLD", "250000.50")
	t.Setenv("MAINTENANCE_GLOBAL_ROLES", "super_admin, AUDITOR ,")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.App.StoreDriver)
	assert.Equal(t, "./repuestos.json", cfg.App.SeedFile)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.True(t, cfg.DB.AutoMigrate)
	assert.True(t, cfg.Maintenance.ApprovalThreshold.Equal(decimal.RequireFromString("250000.50")))
	assert.Equal(t, []string{"super_admin", "AUDITOR"}, cfg.Maintenance.GlobalRoles)
}

func TestLoad_Invalidos(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongo")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss", DBName: "m", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss@db:5432/m?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
