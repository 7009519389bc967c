package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	t.Run("Applies defaults", func(t *testing.T) {
		path := writeConfig(t, "log-level: debug\n")

		config, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, "debug", config.LogLevel)
		assert.Equal(t, "9090", config.HTTPPort)
		assert.Equal(t, DriverRedis, config.Storage.Driver)
		assert.Equal(t, DriverRedis, config.Storage.ScoreLedger)
		assert.Equal(t, "localhost:6379", config.Redis.GetRedisAddr())
		assert.Equal(t, time.Minute, config.Jobs.AverageMovesInterval)
		assert.Equal(t, 24*time.Hour, config.Jobs.ReminderInterval)
		assert.Equal(t, 587, config.Mail.Port)
		assert.Empty(t, config.Mail.Host)
		assert.True(t, config.UsesRedis())
	})

	t.Run("Reads every section", func(t *testing.T) {
		path := writeConfig(t, `
http-port: "8080"
storage:
  driver: memory
  score-ledger: sqlite
  sqlite-path: /tmp/scores.db
redis:
  host: cache
  port: "6380"
  db: 2
jobs:
  average-moves-interval: 30s
  reminder-interval: -1s
mail:
  host: smtp.example.com
  port: 2525
  from: league@example.com
`)

		config, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, "8080", config.HTTPPort)
		assert.Equal(t, DriverMemory, config.Storage.Driver)
		assert.Equal(t, DriverSQLite, config.Storage.ScoreLedger)
		assert.Equal(t, "/tmp/scores.db", config.Storage.SQLitePath)
		assert.Equal(t, "cache:6380", config.Redis.GetRedisAddr())
		assert.Equal(t, 2, config.Redis.DB)
		assert.Equal(t, 30*time.Second, config.Jobs.AverageMovesInterval)
		assert.Equal(t, -time.Second, config.Jobs.ReminderInterval)
		assert.Equal(t, "smtp.example.com", config.Mail.Host)
		assert.Equal(t, 2525, config.Mail.Port)
		assert.False(t, config.UsesRedis())
	})

	t.Run("Environment overrides the file", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "memory")
		t.Setenv("SCORE_LEDGER", "memory")
		t.Setenv("HTTP_PORT", "7070")

		config, err := Load(writeConfig(t, "http-port: \"8080\"\n"))

		require.NoError(t, err)
		assert.Equal(t, "7070", config.HTTPPort)
		assert.Equal(t, DriverMemory, config.Storage.Driver)
	})

	t.Run("Rejects unknown drivers", func(t *testing.T) {
		_, err := Load(writeConfig(t, "storage:\n  driver: postgres\n"))
		require.Error(t, err)

		_, err = Load(writeConfig(t, "storage:\n  score-ledger: mongo\n"))
		require.Error(t, err)
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))

		require.Error(t, err)
		assert.Panics(t, func() {
			MustLoad(filepath.Join(t.TempDir(), "absent.yml"))
		})
	})
}
