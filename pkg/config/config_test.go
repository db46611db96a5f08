package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_ValoresPorDefecto(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, "sam_invoice.db", cfg.DB.Path)
	assert.Equal(t, 250*time.Millisecond, cfg.Search.Debounce)
	assert.Equal(t, 50, cfg.Search.Limit)
	assert.Equal(t, 5*time.Second, cfg.Search.Timeout)
	assert.Equal(t, 50, cfg.Search.MaxShown)
}

func TestFromViper_Sobrescritos(t *testing.T) {
	v := viper.New()
	v.Set("DB_DRIVER", "POSTGRES")
	v.Set("DB_HOST", "db.local")
	v.Set("DB_PORT", "6543")
	v.Set("SEARCH_DEBOUNCE_MS", 100)
	v.Set("SEARCH_LIMIT", "20")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, 6543, cfg.DB.Port)
	assert.Equal(t, 100*time.Millisecond, cfg.Search.Debounce)
	assert.Equal(t, 20, cfg.Search.Limit)
	assert.Equal(t, "postgres://postgres:@db.local:6543/sam_invoice?sslmode=disable", cfg.DB.ConnectionString())
}

func TestFromViper_DriverInvalido(t *testing.T) {
	v := viper.New()
	v.Set("DB_DRIVER", "oracle")
	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestFromViper_BusquedaInvalida(t *testing.T) {
	v := viper.New()
	v.Set("SEARCH_LIMIT", 0)
	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	sqlite := DBConfig{Driver: DriverSQLite, Path: "/tmp/x.db"}
	assert.Equal(t, "/tmp/x.db", sqlite.ConnectionString())

	pg := DBConfig{Driver: DriverPostgres, DatabaseURL: "postgres://u:p@h:5432/d"}
	assert.Equal(t, "postgres://u:p@h:5432/d", pg.ConnectionString())

	// caracteres especiales en la contraseña
	pg = DBConfig{Driver: DriverPostgres, User: "u", Password: "p@ss/w", Host: "h", Port: 5432, DBName: "d", SSLMode: "require"}
	assert.Equal(t, "postgres://u:p%40ss%2Fw@h:5432/d?sslmode=require", pg.ConnectionString())
}

func TestLoad_DesdeEntorno(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SEARCH_TIMEOUT_MS", "1500")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.App.Env)
	assert.Equal(t, 1500*time.Millisecond, cfg.Search.Timeout)
}
