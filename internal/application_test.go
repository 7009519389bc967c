package application

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-league/internal/config"
	"github.com/rocketscienceinc/tictactoe-league/internal/entity"
	"github.com/rocketscienceinc/tictactoe-league/internal/service"
	"github.com/rocketscienceinc/tictactoe-league/testing/suite"
)

func TestOpenRepositories(t *testing.T) {
	ctx := context.Background()

	t.Run("Memory with a SQLite score ledger", func(t *testing.T) {
		// Given: no Redis in the configuration
		conf := &config.Config{
			Storage: config.Storage{
				Driver:      config.DriverMemory,
				ScoreLedger: config.DriverSQLite,
				SQLitePath:  filepath.Join(t.TempDir(), "scores.db"),
			},
		}

		// When: the repositories are opened
		repos, err := openRepositories(ctx, conf)
		require.NoError(t, err)
		t.Cleanup(func() { repos.Close(suite.NewLogger()) })

		// Then: the score ledger persists to SQLite
		score := entity.NewScore("alice", true, 3, time.Now())
		require.NoError(t, repos.scores.Append(ctx, score))

		scores, err := repos.scores.ListByPlayer(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, scores, 1)
		assert.Equal(t, 3, scores[0].Moves)

		assert.Len(t, repos.closers, 1)
		assert.NotNil(t, repos.players)
		assert.NotNil(t, repos.games)
		assert.NotNil(t, repos.stats)
	})

	t.Run("All in memory", func(t *testing.T) {
		conf := &config.Config{
			Storage: config.Storage{Driver: config.DriverMemory, ScoreLedger: config.DriverMemory},
		}

		repos, err := openRepositories(ctx, conf)

		require.NoError(t, err)
		assert.Empty(t, repos.closers)
	})

	t.Run("Unreachable Redis", func(t *testing.T) {
		conf := &config.Config{
			Storage: config.Storage{Driver: config.DriverRedis, ScoreLedger: config.DriverMemory},
			Redis:   config.Redis{Host: "127.0.0.1", Port: "1"},
		}

		_, err := openRepositories(ctx, conf)

		require.Error(t, err)
	})
}

func TestNewNotifier(t *testing.T) {
	logger := suite.NewLogger()

	assert.IsType(t, &service.LogNotifier{}, newNotifier(logger, config.Mail{}))
	assert.IsType(t, &service.SMTPNotifier{}, newNotifier(logger, config.Mail{Host: "smtp.example.com", Port: 587}))
}
