package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const averageMovesKey = "stats:average_moves"

// StatsRepository - cache for derived statistics. Values never expire on their own.
type StatsRepository interface {
	SetAverageMoves(ctx context.Context, message string) error
	GetAverageMoves(ctx context.Context) (string, error)
}

type dbStats struct {
	client *redis.Client
}

func NewStatsRepository(client *redis.Client) StatsRepository {
	return &dbStats{
		client: client,
	}
}

// SetAverageMoves - an empty message clears the cached value.
func (that *dbStats) SetAverageMoves(ctx context.Context, message string) error {
	if message == "" {
		if err := that.client.Del(ctx, averageMovesKey).Err(); err != nil {
			return fmt.Errorf("failed to clear average moves: %w", err)
		}

		return nil
	}

	if err := that.client.Set(ctx, averageMovesKey, message, 0).Err(); err != nil {
		return fmt.Errorf("failed to set average moves: %w", err)
	}

	return nil
}

func (that *dbStats) GetAverageMoves(ctx context.Context) (string, error) {
	message, err := that.client.Get(ctx, averageMovesKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("failed to get average moves: %w", err)
	}

	return message, nil
}
