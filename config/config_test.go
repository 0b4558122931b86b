package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("NORMALIZE_WORKERS", "")

	cfg := Load()
	assert.Equal(t, StoreNone, cfg.StoreDriver)
	assert.Equal(t, 4, cfg.NormalizeWorkers)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("NORMALIZE_WORKERS", "8")
	t.Setenv("PREVIEW_ROWS", "not-a-number")

	cfg := Load()
	assert.Equal(t, StoreSQLite, cfg.StoreDriver)
	assert.Equal(t, "/tmp/x.db", cfg.StoreDSN())
	assert.Equal(t, 8, cfg.NormalizeWorkers)
	assert.Equal(t, 10, cfg.PreviewRows)
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORE_DRIVER", "mongo")

	err := Load().Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "StoreDriver")
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		StoreDriver:      StorePostgres,
		PostgresHost:     "db",
		PostgresPort:     "5432",
		PostgresUser:     "u",
		PostgresPassword: "p",
		PostgresDB:       "real_estate",
		PostgresSSLMode:  "disable",
	}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=real_estate sslmode=disable", cfg.StoreDSN())
}
