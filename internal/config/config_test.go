package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDoesNotInjectWeakAuthDefaults(t *testing.T) {
	t.Setenv("AUTH_SECRET", "")

	cfg := Load()
	assert.Empty(t, cfg.AuthSecret)
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"STORE_DRIVER", "DATABASE_URL", "SUMMARY_CACHE_TTL_SECONDS", "LOW_STOCK_THRESHOLD", "BUSINESS_TIMEZONE"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, 300, cfg.SummaryCacheTTLSeconds)
	assert.Equal(t, 5, cfg.LowStockThreshold)
	assert.Equal(t, "Asia/Jakarta", cfg.BusinessTimezone)
	assert.Equal(t, ":8080", Config{Port: "8080"}.Address())
}

func TestLoadPicksPostgresWhenDatabaseURLSet(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/catatkas")
	t.Setenv("BUSINESS_TIMEZONE", "UTC")

	cfg := Load()
	assert.Equal(t, StorePostgres, cfg.StoreDriver)
	assert.NoError(t, cfg.Validate())
}

func TestInvalidNumbersFallBack(t *testing.T) {
	t.Setenv("LOW_STOCK_THRESHOLD", "-3")
	t.Setenv("ACCESS_TOKEN_TTL_MINUTES", "soon")
	t.Setenv("LOG_DEVELOPMENT", "yes please")

	cfg := Load()
	assert.Equal(t, 5, cfg.LowStockThreshold)
	assert.Equal(t, 480, cfg.AccessTokenTTLMinutes)
	assert.False(t, cfg.LogDevelopment)
}

func TestValidate(t *testing.T) {
	base := Config{StoreDriver: StoreMemory, BusinessTimezone: "UTC"}
	require.NoError(t, base.Validate())

	bad := base
	bad.StoreDriver = "mongo"
	assert.Error(t, bad.Validate())

	bad = base
	bad.StoreDriver = StorePostgres
	assert.Error(t, bad.Validate())

	bad = base
	bad.BusinessTimezone = "Mars/Olympus"
	assert.Error(t, bad.Validate())
}

func TestDotEnvFileIsRead(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SQLITE_PATH=/tmp/from-dotenv.db\n"), 0o600))
	t.Chdir(dir)
	t.Setenv("SQLITE_PATH", "")
	require.NoError(t, os.Unsetenv("SQLITE_PATH"))

	cfg := Load()
	assert.Equal(t, "/tmp/from-dotenv.db", cfg.SQLitePath)
}
