package repository

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/rocketscienceinc/tictactoe-league/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-league/internal/entity"
)

// In-memory repositories for the "memory" storage driver and for tests.
// They hand out copies so callers never share state with the store, same as the Redis ones.

type memoryPlayer struct {
	mu      sync.RWMutex
	players map[string]entity.Player
}

func NewMemoryPlayerRepository() PlayerRepository {
	return &memoryPlayer{
		players: make(map[string]entity.Player),
	}
}

func (that *memoryPlayer) Create(_ context.Context, player *entity.Player) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.players[player.Name]; ok {
		return fmt.Errorf("%w: %s", apperror.ErrDuplicatePlayer, player.Name)
	}

	that.players[player.Name] = *player

	return nil
}

func (that *memoryPlayer) Update(_ context.Context, player *entity.Player) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.players[player.Name]; !ok {
		return ErrPlayerNotFound
	}

	that.players[player.Name] = *player

	return nil
}

func (that *memoryPlayer) GetByName(_ context.Context, name string) (*entity.Player, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	player, ok := that.players[name]
	if !ok {
		return nil, ErrPlayerNotFound
	}

	return &player, nil
}

func (that *memoryPlayer) List(_ context.Context) ([]*entity.Player, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	players := make([]*entity.Player, 0, len(that.players))
	for _, player := range that.players {
		players = append(players, &player)
	}

	slices.SortFunc(players, func(a, b *entity.Player) int {
		return cmp.Compare(a.Name, b.Name)
	})

	return players, nil
}

type memoryGame struct {
	mu    sync.RWMutex
	games map[string]*entity.Game
}

func NewMemoryGameRepository() GameRepository {
	return &memoryGame{
		games: make(map[string]*entity.Game),
	}
}

func cloneGame(game *entity.Game) *entity.Game {
	clone := *game
	clone.History = slices.Clone(game.History)
	clone.Settlement.Profiles = slices.Clone(game.Settlement.Profiles)
	clone.Settlement.Scores = slices.Clone(game.Settlement.Scores)

	return &clone
}

func (that *memoryGame) CreateOrUpdate(_ context.Context, game *entity.Game) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.games[game.ID] = cloneGame(game)

	return nil
}

func (that *memoryGame) GetByID(_ context.Context, id string) (*entity.Game, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	game, ok := that.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}

	return cloneGame(game), nil
}

func (that *memoryGame) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.games[id]; !ok {
		return ErrGameNotFound
	}

	delete(that.games, id)

	return nil
}

func (that *memoryGame) ListActive(_ context.Context) ([]*entity.Game, error) {
	return that.filter(func(game *entity.Game) bool {
		return game.IsActive()
	}), nil
}

func (that *memoryGame) ListActiveByPlayer(_ context.Context, name string) ([]*entity.Game, error) {
	return that.filter(func(game *entity.Game) bool {
		return game.IsActive() && game.IsParticipant(name)
	}), nil
}

func (that *memoryGame) ListUnsettled(_ context.Context) ([]*entity.Game, error) {
	return that.filter(func(game *entity.Game) bool {
		return game.GameOver && !game.IsSettled()
	}), nil
}

func (that *memoryGame) filter(keep func(game *entity.Game) bool) []*entity.Game {
	that.mu.RLock()
	defer that.mu.RUnlock()

	games := []*entity.Game{}
	for _, game := range that.games {
		if keep(game) {
			games = append(games, cloneGame(game))
		}
	}

	sortGames(games)

	return games
}

type memoryScore struct {
	mu     sync.RWMutex
	scores []entity.Score
}

func NewMemoryScoreRepository() ScoreRepository {
	return &memoryScore{}
}

func (that *memoryScore) Append(_ context.Context, score *entity.Score) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.scores = append(that.scores, *score)

	return nil
}

func (that *memoryScore) List(_ context.Context) ([]*entity.Score, error) {
	return that.filter(func(*entity.Score) bool { return true }), nil
}

func (that *memoryScore) ListByPlayer(_ context.Context, name string) ([]*entity.Score, error) {
	return that.filter(func(score *entity.Score) bool { return score.Player == name }), nil
}

func (that *memoryScore) filter(keep func(score *entity.Score) bool) []*entity.Score {
	that.mu.RLock()
	defer that.mu.RUnlock()

	scores := []*entity.Score{}
	for _, score := range that.scores {
		if keep(&score) {
			scores = append(scores, &score)
		}
	}

	return scores
}

type memoryStats struct {
	mu           sync.RWMutex
	averageMoves string
}

func NewMemoryStatsRepository() StatsRepository {
	return &memoryStats{}
}

func (that *memoryStats) SetAverageMoves(_ context.Context, message string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.averageMoves = message

	return nil
}

func (that *memoryStats) GetAverageMoves(_ context.Context) (string, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.averageMoves, nil
}

// sortGames - oldest first, id as tie-break.
func sortGames(games []*entity.Game) {
	slices.SortFunc(games, func(a, b *entity.Game) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}

		return cmp.Compare(a.ID, b.ID)
	})
}
