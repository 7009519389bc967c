package usecase

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/rocketscienceinc/tictactoe-league/internal/entity"
)

const averageMovesFormat = "The average moves remaining is %.2f"

// Rankings - players by performance, lowest first. Equal performance falls back to name order.
func (that *GameManager) Rankings(ctx context.Context) ([]*entity.Ranking, error) {
	players, err := that.playerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}

	return RankPlayers(players), nil
}

func RankPlayers(players []*entity.Player) []*entity.Ranking {
	rankings := make([]*entity.Ranking, 0, len(players))
	for _, player := range players {
		rankings = append(rankings, &entity.Ranking{
			Name:        player.Name,
			Performance: player.Performance,
		})
	}

	slices.SortStableFunc(rankings, func(a, b *entity.Ranking) int {
		if c := cmp.Compare(a.Performance, b.Performance); c != 0 {
			return c
		}

		return cmp.Compare(a.Name, b.Name)
	})

	return rankings
}

// Leaderboard - score records with the most moves first. limit <= 0 returns all of them.
func (that *GameManager) Leaderboard(ctx context.Context, limit int) ([]*entity.Score, error) {
	scores, err := that.scoreRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list scores: %w", err)
	}

	return TopScores(scores, limit), nil
}

func TopScores(scores []*entity.Score, limit int) []*entity.Score {
	sorted := slices.Clone(scores)
	slices.SortStableFunc(sorted, func(a, b *entity.Score) int {
		return cmp.Compare(b.Moves, a.Moves)
	})

	if limit > 0 && limit < len(sorted) {
		sorted = sorted[:limit]
	}

	return sorted
}

// AverageRemainingMoves - last cached value, empty until a refresh found active games.
func (that *GameManager) AverageRemainingMoves(ctx context.Context) (string, error) {
	message, err := that.statsRepo.GetAverageMoves(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get average moves: %w", err)
	}

	return message, nil
}

// RefreshAverageMoves - recomputes the cached average over active games.
func (that *GameManager) RefreshAverageMoves(ctx context.Context) (string, error) {
	games, err := that.gameRepo.ListActive(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list active games: %w", err)
	}

	message := AverageMovesMessage(games)

	if err = that.statsRepo.SetAverageMoves(ctx, message); err != nil {
		return "", fmt.Errorf("failed to cache average moves: %w", err)
	}

	that.logger.Debug("average moves refreshed", "active_games", len(games), "message", message)

	return message, nil
}

// AverageMovesMessage - mean of both participants' moves over the given games, empty when there are none.
func AverageMovesMessage(games []*entity.Game) string {
	if len(games) == 0 {
		return ""
	}

	var total int
	for _, game := range games {
		total += game.TotalMoves()
	}

	return fmt.Sprintf(averageMovesFormat, float64(total)/float64(len(games)))
}
