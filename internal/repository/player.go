package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-league/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-league/internal/entity"
)

const playersKey = "players"

type PlayerRepository interface {
	Create(ctx context.Context, player *entity.Player) error
	Update(ctx context.Context, player *entity.Player) error
	GetByName(ctx context.Context, name string) (*entity.Player, error)
	List(ctx context.Context) ([]*entity.Player, error)
}

type dbPlayer struct {
	client *redis.Client
}

func NewPlayerRepository(client *redis.Client) PlayerRepository {
	return &dbPlayer{
		client: client,
	}
}

// Per-player keys share no prefix with each other, so no name can land on another player's key.
func playerKey(name string) string {
	return "player:" + name
}

func (that *dbPlayer) Create(ctx context.Context, player *entity.Player) error {
	playerJSON, err := json.Marshal(player)
	if err != nil {
		return fmt.Errorf("failed to marshal player: %w", err)
	}

	// SADD of an existing name is a no-op, so a duplicate leaves the index untouched.
	var created *redis.BoolCmd
	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		created = pipe.SetNX(ctx, playerKey(player.Name), playerJSON, 0)
		pipe.SAdd(ctx, playersKey, player.Name)

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create player: %w", err)
	}

	if !created.Val() {
		return fmt.Errorf("%w: %s", apperror.ErrDuplicatePlayer, player.Name)
	}

	return nil
}

func (that *dbPlayer) Update(ctx context.Context, player *entity.Player) error {
	playerJSON, err := json.Marshal(player)
	if err != nil {
		return fmt.Errorf("failed to marshal player: %w", err)
	}

	updated, err := that.client.SetXX(ctx, playerKey(player.Name), playerJSON, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}

	if !updated {
		return ErrPlayerNotFound
	}

	return nil
}

func (that *dbPlayer) GetByName(ctx context.Context, name string) (*entity.Player, error) {
	response, err := that.client.Get(ctx, playerKey(name)).Result()

	if errors.Is(err, redis.Nil) {
		return nil, ErrPlayerNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get player by name: %w", err)
	}

	var existingPlayer entity.Player
	if err = json.Unmarshal([]byte(response), &existingPlayer); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player: %w", err)
	}

	return &existingPlayer, nil
}

func (that *dbPlayer) List(ctx context.Context) ([]*entity.Player, error) {
	names, err := that.client.SMembers(ctx, playersKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list player names: %w", err)
	}

	if len(names) == 0 {
		return []*entity.Player{}, nil
	}

	keys := make([]string, 0, len(names))
	for _, name := range names {
		keys = append(keys, playerKey(name))
	}

	values, err := that.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get players: %w", err)
	}

	players := make([]*entity.Player, 0, len(values))
	for _, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}

		var player entity.Player
		if err = json.Unmarshal([]byte(raw), &player); err != nil {
			return nil, fmt.Errorf("failed to unmarshal player: %w", err)
		}

		players = append(players, &player)
	}

	return players, nil
}
