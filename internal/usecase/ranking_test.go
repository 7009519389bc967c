package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-league/internal/entity"
)

func TestGameManager_Rankings(t *testing.T) {
	ctx := context.Background()

	t.Run("Orders players by ascending performance", func(t *testing.T) {
		// Given: alice 0.0, bob 2.5, carol 1.0
		f := newFixture(t)
		for _, player := range []*entity.Player{
			{Name: "alice", Performance: 0},
			{Name: "bob", GamesWon: 5, GamesLost: 2, Performance: 2.5},
			{Name: "carol", GamesWon: 1, GamesLost: 1, Performance: 1},
		} {
			require.NoError(t, f.players.Create(ctx, player))
		}

		// When: the rankings are requested
		rankings, err := f.manager.Rankings(ctx)

		// Then: alice, carol, bob
		require.NoError(t, err)
		require.Len(t, rankings, 3)
		assert.Equal(t, "alice", rankings[0].Name)
		assert.Equal(t, "carol", rankings[1].Name)
		assert.Equal(t, "bob", rankings[2].Name)
		assert.InDelta(t, 2.5, rankings[2].Performance, 1e-9)
	})

	t.Run("Empty directory", func(t *testing.T) {
		f := newFixture(t)

		rankings, err := f.manager.Rankings(ctx)

		require.NoError(t, err)
		assert.Empty(t, rankings)
	})
}

func TestRankPlayers_TieBreak(t *testing.T) {
	rankings := RankPlayers([]*entity.Player{
		{Name: "zed", Performance: 1},
		{Name: "amy", Performance: 1},
		{Name: "kim", Performance: 0.5},
	})

	names := []string{rankings[0].Name, rankings[1].Name, rankings[2].Name}
	assert.Equal(t, []string{"kim", "amy", "zed"}, names)
}

func TestTopScores(t *testing.T) {
	day := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	scores := []*entity.Score{
		{Player: "alice", Date: day, Won: true, Moves: 3},
		{Player: "bob", Date: day, Moves: 5},
		{Player: "carol", Date: day, Moves: 4},
		{Player: "dave", Date: day, Moves: 5},
	}

	t.Run("Most moves first, insertion order on ties", func(t *testing.T) {
		top := TopScores(scores, 0)

		require.Len(t, top, 4)
		assert.Equal(t, "bob", top[0].Player)
		assert.Equal(t, "dave", top[1].Player)
		assert.Equal(t, "carol", top[2].Player)
		assert.Equal(t, "alice", top[3].Player)

		// And: the input is left untouched
		assert.Equal(t, "alice", scores[0].Player)
	})

	t.Run("Limit cuts the tail", func(t *testing.T) {
		top := TopScores(scores, 2)

		require.Len(t, top, 2)
		assert.Equal(t, 5, top[0].Moves)
		assert.Equal(t, 5, top[1].Moves)
	})

	t.Run("Limit above the length returns everything", func(t *testing.T) {
		assert.Len(t, TopScores(scores, 10), 4)
	})
}

func TestGameManager_Leaderboard(t *testing.T) {
	ctx := context.Background()

	// Given: two finished games with different lengths
	f := newFixture(t)
	f.register(t, "alice", "bob", "carol")

	quick := f.newGame(t, "alice", "bob")
	f.play(t, quick.ID, "alice", 1, "bob", 4, "alice", 2, "bob", 5, "alice", 3)

	long := f.newGame(t, "carol", "bob")
	f.play(t, long.ID, "carol", 1, "bob", 2, "carol", 5, "bob", 3, "carol", 4, "bob", 6, "carol", 9)

	// When: the top three are requested
	top, err := f.manager.Leaderboard(ctx, 3)

	// Then: carol's four-move win leads
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, "carol", top[0].Player)
	assert.Equal(t, 4, top[0].Moves)
	assert.Equal(t, 3, top[1].Moves)
	assert.Equal(t, 3, top[2].Moves)
}

func TestGameManager_AverageMoves(t *testing.T) {
	ctx := context.Background()

	t.Run("Nothing cached before the first refresh", func(t *testing.T) {
		f := newFixture(t)

		message, err := f.manager.AverageRemainingMoves(ctx)

		require.NoError(t, err)
		assert.Empty(t, message)
	})

	t.Run("Refresh averages moves over active games", func(t *testing.T) {
		// Given: one game with three moves and one with none
		f := newFixture(t)
		f.register(t, "alice", "bob", "carol")
		busy := f.newGame(t, "alice", "bob")
		f.play(t, busy.ID, "alice", 1, "bob", 5, "alice", 9)
		f.newGame(t, "carol", "alice")

		// When: the cache is refreshed
		message, err := f.manager.RefreshAverageMoves(ctx)

		// Then: (3 + 0) / 2
		require.NoError(t, err)
		assert.Equal(t, "The average moves remaining is 1.50", message)

		cached, err := f.manager.AverageRemainingMoves(ctx)
		require.NoError(t, err)
		assert.Equal(t, message, cached)
	})

	t.Run("Refresh clears the cache when no games are active", func(t *testing.T) {
		f := newFixture(t)
		f.register(t, "alice", "bob")
		game := f.newGame(t, "alice", "bob")

		_, err := f.manager.RefreshAverageMoves(ctx)
		require.NoError(t, err)

		require.NoError(t, f.manager.CancelGame(ctx, game.ID))

		message, err := f.manager.RefreshAverageMoves(ctx)
		require.NoError(t, err)
		assert.Empty(t, message)

		cached, err := f.manager.AverageRemainingMoves(ctx)
		require.NoError(t, err)
		assert.Empty(t, cached)
	})
}
