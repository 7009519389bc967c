package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-league/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-league/internal/entity"
	"github.com/rocketscienceinc/tictactoe-league/testing/suite"
)

func TestGameRepository_CreateOrUpdate(t *testing.T) {
	ctx, st := suite.New(t)

	gameRepo := NewGameRepository(st.Storage)

	// Given: a new game
	game := entity.NewGame("123", "alice", "bob")

	// When: CreateOrUpdate is called
	err := gameRepo.CreateOrUpdate(ctx, game)

	// Then: no error should be returned, and game is stored
	require.NoError(t, err)
}

func TestGameRepository_GetByID(t *testing.T) {
	t.Run("GetByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage)

		// Given: a game with one move
		game := entity.NewGame("123", "alice", "bob")
		_, err := game.ApplyMove("alice", 5)
		require.NoError(t, err)

		err = gameRepo.CreateOrUpdate(ctx, game)
		require.NoError(t, err)

		// When: GetByID is called with existing ID
		retrievedGame, err := gameRepo.GetByID(ctx, game.ID)

		// Then: the retrieved game should match the saved game
		require.NoError(t, err)
		assert.Equal(t, game.ID, retrievedGame.ID)
		assert.Equal(t, game.Board, retrievedGame.Board)
		assert.Equal(t, game.History, retrievedGame.History)
		assert.Equal(t, 1, retrievedGame.UserMoves)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage)

		// When: GetByID is called with non-existent ID
		retrievedGame, err := gameRepo.GetByID(ctx, "9999999")

		// Then: an ErrGameNotFound error should be returned
		require.ErrorIs(t, err, ErrGameNotFound)
		require.ErrorIs(t, err, apperror.ErrNotFound)
		assert.Nil(t, retrievedGame)
	})
}

func TestGameRepository_DeleteByID(t *testing.T) {
	t.Run("DeleteByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage)

		// Given: a stored active game
		game := entity.NewGame("123", "alice", "bob")
		require.NoError(t, gameRepo.CreateOrUpdate(ctx, game))

		// When: DeleteByID is called with existing ID
		err := gameRepo.DeleteByID(ctx, game.ID)

		// Then: the game and its index entries are gone
		require.NoError(t, err)

		_, err = gameRepo.GetByID(ctx, game.ID)
		require.ErrorIs(t, err, ErrGameNotFound)

		active, err := gameRepo.ListActiveByPlayer(ctx, "alice")
		require.NoError(t, err)
		assert.Empty(t, active)
	})

	t.Run("DeleteByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage)

		// When: DeleteByID is called with non-existent ID
		err := gameRepo.DeleteByID(ctx, "9999999")

		// Then: an ErrGameNotFound error should be returned
		require.ErrorIs(t, err, ErrGameNotFound)
	})
}

func TestGameRepository_ListActive(t *testing.T) {
	ctx, st := suite.New(t)

	gameRepo := NewGameRepository(st.Storage)

	// Given: two active games and one finished game
	first := entity.NewGame("1", "alice", "bob")
	second := entity.NewGame("2", "carol", "alice")
	finished := entity.NewGame("3", "bob", "carol")
	require.NoError(t, finished.Finalize(entity.ResultUserWin))

	for _, game := range []*entity.Game{first, second, finished} {
		require.NoError(t, gameRepo.CreateOrUpdate(ctx, game))
	}

	// When: listing active games
	active, err := gameRepo.ListActive(ctx)
	require.NoError(t, err)

	// Then: the finished game is excluded
	assert.ElementsMatch(t, []string{"1", "2"}, gameIDs(active))

	// And: alice sees games where she is user or opponent
	aliceGames, err := gameRepo.ListActiveByPlayer(ctx, "alice")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1", "2"}, gameIDs(aliceGames))

	// And: finishing a game removes it from the indexes
	require.NoError(t, first.Finalize(entity.ResultOpponentWin))
	require.NoError(t, gameRepo.CreateOrUpdate(ctx, first))

	bobGames, err := gameRepo.ListActiveByPlayer(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, bobGames)
}

func TestGameRepository_ListUnsettled(t *testing.T) {
	ctx, st := suite.New(t)

	gameRepo := NewGameRepository(st.Storage)

	// Given: an active game and a finished game with nothing settled yet
	active := entity.NewGame("1", "alice", "bob")
	finished := entity.NewGame("2", "carol", "dave")
	require.NoError(t, finished.Finalize(entity.ResultUserWin))

	for _, game := range []*entity.Game{active, finished} {
		require.NoError(t, gameRepo.CreateOrUpdate(ctx, game))
	}

	// When: listing unsettled games
	pending, err := gameRepo.ListUnsettled(ctx)

	// Then: only the finished game is pending
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, gameIDs(pending))

	// And: partial progress survives a round trip
	finished.MarkProfileSettled("carol")
	require.NoError(t, gameRepo.CreateOrUpdate(ctx, finished))

	stored, err := gameRepo.GetByID(ctx, "2")
	require.NoError(t, err)
	assert.False(t, stored.NeedsProfileUpdate("carol"))
	assert.True(t, stored.NeedsProfileUpdate("dave"))

	// And: a fully settled game leaves the index
	for _, name := range []string{"carol", "dave"} {
		if finished.NeedsProfileUpdate(name) {
			finished.MarkProfileSettled(name)
		}
		finished.MarkScoreSettled(name)
	}
	require.NoError(t, gameRepo.CreateOrUpdate(ctx, finished))

	pending, err = gameRepo.ListUnsettled(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func gameIDs(games []*entity.Game) []string {
	ids := make([]string, 0, len(games))
	for _, game := range games {
		ids = append(ids, game.ID)
	}

	return ids
}
