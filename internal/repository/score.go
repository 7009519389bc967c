package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-league/internal/entity"
)

const scoresKey = "scores"

type ScoreRepository interface {
	Append(ctx context.Context, score *entity.Score) error
	List(ctx context.Context) ([]*entity.Score, error)
	ListByPlayer(ctx context.Context, name string) ([]*entity.Score, error)
}

type dbScore struct {
	client *redis.Client
}

func NewScoreRepository(client *redis.Client) ScoreRepository {
	return &dbScore{
		client: client,
	}
}

func playerScoresKey(name string) string {
	return "player_scores:" + name
}

func (that *dbScore) Append(ctx context.Context, score *entity.Score) error {
	scoreJSON, err := json.Marshal(score)
	if err != nil {
		return fmt.Errorf("failed to marshal score: %w", err)
	}

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, scoresKey, scoreJSON)
		pipe.RPush(ctx, playerScoresKey(score.Player), scoreJSON)

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append score: %w", err)
	}

	return nil
}

func (that *dbScore) List(ctx context.Context) ([]*entity.Score, error) {
	return that.listFrom(ctx, scoresKey)
}

func (that *dbScore) ListByPlayer(ctx context.Context, name string) ([]*entity.Score, error) {
	return that.listFrom(ctx, playerScoresKey(name))
}

func (that *dbScore) listFrom(ctx context.Context, key string) ([]*entity.Score, error) {
	values, err := that.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list scores: %w", err)
	}

	scores := make([]*entity.Score, 0, len(values))
	for _, value := range values {
		var score entity.Score
		if err = json.Unmarshal([]byte(value), &score); err != nil {
			return nil, fmt.Errorf("failed to unmarshal score: %w", err)
		}

		scores = append(scores, &score)
	}

	return scores, nil
}
