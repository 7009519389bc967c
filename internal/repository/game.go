package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-league/internal/entity"
)

const (
	activeGamesKey    = "games:active"
	unsettledGamesKey = "games:unsettled"
)

type GameRepository interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error

	ListActive(ctx context.Context) ([]*entity.Game, error)
	ListActiveByPlayer(ctx context.Context, name string) ([]*entity.Game, error)
	// ListUnsettled - finished games whose profile updates or score records are not all written yet.
	ListUnsettled(ctx context.Context) ([]*entity.Game, error)
}

type dbGame struct {
	client *redis.Client
}

func NewGameRepository(client *redis.Client) GameRepository {
	return &dbGame{
		client: client,
	}
}

func gameKey(id string) string {
	return "game:" + id
}

func playerActiveGamesKey(name string) string {
	return "player_games_active:" + name
}

// CreateOrUpdate - stores the game and keeps the active and unsettled indexes in step with it.
func (that *dbGame) CreateOrUpdate(ctx context.Context, game *entity.Game) error {
	gameJSON, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, gameKey(game.ID), gameJSON, 0)

		if game.IsActive() {
			pipe.SAdd(ctx, activeGamesKey, game.ID)
			pipe.SAdd(ctx, playerActiveGamesKey(game.User), game.ID)
			pipe.SAdd(ctx, playerActiveGamesKey(game.Opponent), game.ID)
		} else {
			pipe.SRem(ctx, activeGamesKey, game.ID)
			pipe.SRem(ctx, playerActiveGamesKey(game.User), game.ID)
			pipe.SRem(ctx, playerActiveGamesKey(game.Opponent), game.ID)
		}

		if game.GameOver && !game.IsSettled() {
			pipe.SAdd(ctx, unsettledGamesKey, game.ID)
		} else {
			pipe.SRem(ctx, unsettledGamesKey, game.ID)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set game: %w", err)
	}

	return nil
}

func (that *dbGame) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	response, err := that.client.Get(ctx, gameKey(id)).Result()

	if errors.Is(err, redis.Nil) {
		return nil, ErrGameNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	var existingGame entity.Game
	if err = json.Unmarshal([]byte(response), &existingGame); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game: %w", err)
	}

	return &existingGame, nil
}

func (that *dbGame) DeleteByID(ctx context.Context, id string) error {
	game, err := that.GetByID(ctx, id)
	if err != nil {
		return err
	}

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, gameKey(id))
		pipe.SRem(ctx, activeGamesKey, id)
		pipe.SRem(ctx, unsettledGamesKey, id)
		pipe.SRem(ctx, playerActiveGamesKey(game.User), id)
		pipe.SRem(ctx, playerActiveGamesKey(game.Opponent), id)

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete game by ID: %w", err)
	}

	return nil
}

func (that *dbGame) ListActive(ctx context.Context) ([]*entity.Game, error) {
	return that.listFromIndex(ctx, activeGamesKey, isActive)
}

// ListActiveByPlayer - active games where the player is either participant.
func (that *dbGame) ListActiveByPlayer(ctx context.Context, name string) ([]*entity.Game, error) {
	return that.listFromIndex(ctx, playerActiveGamesKey(name), isActive)
}

func (that *dbGame) ListUnsettled(ctx context.Context) ([]*entity.Game, error) {
	return that.listFromIndex(ctx, unsettledGamesKey, func(game *entity.Game) bool {
		return game.GameOver && !game.IsSettled()
	})
}

func isActive(game *entity.Game) bool {
	return game.IsActive()
}

func (that *dbGame) listFromIndex(ctx context.Context, indexKey string, keep func(game *entity.Game) bool) ([]*entity.Game, error) {
	ids, err := that.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read game index %s: %w", indexKey, err)
	}

	if len(ids) == 0 {
		return []*entity.Game{}, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, gameKey(id))
	}

	values, err := that.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get games: %w", err)
	}

	games := make([]*entity.Game, 0, len(values))
	for _, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}

		var game entity.Game
		if err = json.Unmarshal([]byte(raw), &game); err != nil {
			return nil, fmt.Errorf("failed to unmarshal game: %w", err)
		}

		if keep(&game) {
			games = append(games, &game)
		}
	}

	sortGames(games)

	return games, nil
}
