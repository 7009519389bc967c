package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rocketscienceinc/tictactoe-league/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-league/internal/entity"
	"github.com/rocketscienceinc/tictactoe-league/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-league/internal/tictactoe"
)

const (
	MessageNewGame     = "Good luck playing Tic Tac Toe!"
	MessageGetGame     = "Time to make a move!"
	MessageUserWon     = "You win!"
	MessageUserLost    = "You lose!"
	MessageActiveGame  = "Active game"
	MessageGameDeleted = "Game has been successfully deleted!"
	MessageDraw        = "It's a draw!"
)

type playerRepo interface {
	Create(ctx context.Context, player *entity.Player) error
	Update(ctx context.Context, player *entity.Player) error
	GetByName(ctx context.Context, name string) (*entity.Player, error)
	List(ctx context.Context) ([]*entity.Player, error)
}

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
	ListActive(ctx context.Context) ([]*entity.Game, error)
	ListActiveByPlayer(ctx context.Context, name string) ([]*entity.Game, error)
	ListUnsettled(ctx context.Context) ([]*entity.Game, error)
}

type scoreRepo interface {
	Append(ctx context.Context, score *entity.Score) error
	List(ctx context.Context) ([]*entity.Score, error)
	ListByPlayer(ctx context.Context, name string) ([]*entity.Score, error)
}

type statsRepo interface {
	SetAverageMoves(ctx context.Context, message string) error
	GetAverageMoves(ctx context.Context) (string, error)
}

// refreshTrigger - best-effort request to recompute the cached average out of band.
type refreshTrigger interface {
	TriggerAverageMovesRefresh()
}

type gameRecorder interface {
	PlayerRegistered()
	GameCreated()
	MoveApplied()
	GameFinished(result string)
	GameCancelled()
}

type GameManager struct {
	logger *slog.Logger

	playerRepo playerRepo
	gameRepo   gameRepo
	scoreRepo  scoreRepo
	statsRepo  statsRepo

	trigger  refreshTrigger
	recorder gameRecorder

	gameLocks   *pkg.KeyedMutex
	playerLocks *pkg.KeyedMutex

	now func() time.Time
}

type Option func(*GameManager)

// WithRefreshTrigger - called after every created game.
func WithRefreshTrigger(trigger refreshTrigger) Option {
	return func(that *GameManager) {
		that.trigger = trigger
	}
}

func WithRecorder(recorder gameRecorder) Option {
	return func(that *GameManager) {
		that.recorder = recorder
	}
}

func WithClock(now func() time.Time) Option {
	return func(that *GameManager) {
		that.now = now
	}
}

func NewGameManager(logger *slog.Logger, playerRepo playerRepo, gameRepo gameRepo, scoreRepo scoreRepo, statsRepo statsRepo, opts ...Option) *GameManager {
	manager := &GameManager{
		logger: logger.With("component", "game_manager"),

		playerRepo: playerRepo,
		gameRepo:   gameRepo,
		scoreRepo:  scoreRepo,
		statsRepo:  statsRepo,

		recorder: noopRecorder{},

		gameLocks:   pkg.NewKeyedMutex(),
		playerLocks: pkg.NewKeyedMutex(),

		now: time.Now,
	}

	for _, opt := range opts {
		opt(manager)
	}

	return manager
}

func (that *GameManager) RegisterPlayer(ctx context.Context, name, email string) (*entity.Player, error) {
	player := entity.NewPlayer(name, email)

	if err := that.playerRepo.Create(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to register player: %w", err)
	}

	that.recorder.PlayerRegistered()
	that.logger.Info("player registered", "player", name)

	return player, nil
}

func (that *GameManager) GetPlayer(ctx context.Context, name string) (*entity.Player, error) {
	player, err := that.playerRepo.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return player, nil
}

func (that *GameManager) CreateGame(ctx context.Context, userName, opponentName string) (*entity.Game, error) {
	for _, name := range []string{userName, opponentName} {
		if _, err := that.playerRepo.GetByName(ctx, name); err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				return nil, fmt.Errorf("%w: %w", apperror.ErrInvalidParticipants, err)
			}

			return nil, fmt.Errorf("failed to get player %s: %w", name, err)
		}
	}

	if userName == opponentName {
		return nil, fmt.Errorf("%w: a user can not play by themselves", apperror.ErrInvalidParticipants)
	}

	gameID, err := pkg.GenerateGameID()
	if err != nil {
		return nil, err
	}

	game := entity.NewGame(gameID, userName, opponentName)
	game.CreatedAt = that.now().UTC()

	if err = that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	that.recorder.GameCreated()
	that.logger.Info("game created", "game", game.ID, "user", userName, "opponent", opponentName)

	if that.trigger != nil {
		that.trigger.TriggerAverageMovesRefresh()
	}

	return game, nil
}

func (that *GameManager) GetGame(ctx context.Context, id string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// MakeMove - applies a move under the game lock and settles scores when the move ends the game.
func (that *GameManager) MakeMove(ctx context.Context, id, actor string, position int) (*entity.GameView, error) {
	unlock := that.gameLocks.Lock(id)
	defer unlock()

	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	if err = that.resumeSettlement(ctx, game); err != nil {
		return nil, err
	}

	outcome, err := game.ApplyMove(actor, position)
	if err != nil {
		return nil, fmt.Errorf("failed to make move: %w", err)
	}

	if err = that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	that.recorder.MoveApplied()

	if outcome == tictactoe.OutcomeNone {
		return game.Describe(actor + " made a move!"), nil
	}

	if err = that.settle(ctx, game); err != nil {
		return nil, err
	}

	if outcome == tictactoe.OutcomeUserWin {
		return game.Describe(MessageUserWon), nil
	}

	return game.Describe(MessageUserLost), nil
}

// DeclareDraw - ends a game whose board filled up without a winner. Boards are never declared drawn on their own.
func (that *GameManager) DeclareDraw(ctx context.Context, id string) (*entity.Game, error) {
	unlock := that.gameLocks.Lock(id)
	defer unlock()

	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	if err = that.resumeSettlement(ctx, game); err != nil {
		return nil, err
	}

	if game.GameOver {
		return nil, fmt.Errorf("failed to declare draw: %w", apperror.ErrGameAlreadyOver)
	}

	if game.Board.Filled() < tictactoe.Size {
		return nil, fmt.Errorf("%w: board is not full", apperror.ErrInvalidMove)
	}

	if err = game.Finalize(entity.ResultDraw); err != nil {
		return nil, fmt.Errorf("failed to declare draw: %w", err)
	}

	if err = that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	if err = that.settle(ctx, game); err != nil {
		return nil, err
	}

	return game, nil
}

// settle - profile updates and score appends for a finished game. Caller holds the game lock.
// Each written step is recorded on the game, so a failed settlement resumes where it stopped.
func (that *GameManager) settle(ctx context.Context, game *entity.Game) error {
	log := that.logger.With("method", "settle", "game", game.ID)

	winner := game.Winner()
	settledAt := that.now()

	for _, name := range []string{game.User, game.Opponent} {
		if game.NeedsProfileUpdate(name) {
			if err := that.updateProfile(ctx, name, name == winner); err != nil {
				log.Error("failed to update profile", "player", name, "error", err)
				return err
			}

			game.MarkProfileSettled(name)
			if err := that.saveSettlement(ctx, game); err != nil {
				log.Error("failed to record profile update", "player", name, "error", err)
				return err
			}
		}

		if game.NeedsScore(name) {
			score := entity.NewScore(name, name == winner, game.MovesOf(name), settledAt)
			if err := that.scoreRepo.Append(ctx, score); err != nil {
				log.Error("failed to append score", "player", name, "error", err)
				return fmt.Errorf("failed to append score: %w", err)
			}

			game.MarkScoreSettled(name)
			if err := that.saveSettlement(ctx, game); err != nil {
				log.Error("failed to record score append", "player", name, "error", err)
				return err
			}
		}
	}

	that.recorder.GameFinished(game.Result)
	log.Info("game finished", "result", game.Result, "winner", winner)

	return nil
}

func (that *GameManager) saveSettlement(ctx context.Context, game *entity.Game) error {
	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}

// resumeSettlement - finishes the bookkeeping of a game whose earlier settlement failed part way.
func (that *GameManager) resumeSettlement(ctx context.Context, game *entity.Game) error {
	if !game.GameOver || game.IsSettled() {
		return nil
	}

	that.logger.Warn("resuming settlement", "game", game.ID)

	return that.settle(ctx, game)
}

// SettlePending - resumes every interrupted settlement. Returns how many games were completed.
func (that *GameManager) SettlePending(ctx context.Context) (int, error) {
	games, err := that.gameRepo.ListUnsettled(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list unsettled games: %w", err)
	}

	var (
		settled int
		errs    []error
	)

	for _, pending := range games {
		if err = that.settlePending(ctx, pending.ID); err != nil {
			errs = append(errs, err)
			continue
		}

		settled++
	}

	return settled, errors.Join(errs...)
}

func (that *GameManager) settlePending(ctx context.Context, id string) error {
	unlock := that.gameLocks.Lock(id)
	defer unlock()

	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get game: %w", err)
	}

	return that.resumeSettlement(ctx, game)
}

func (that *GameManager) updateProfile(ctx context.Context, name string, won bool) error {
	unlock := that.playerLocks.Lock(name)
	defer unlock()

	player, err := that.playerRepo.GetByName(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to get player: %w", err)
	}

	if won {
		player.RecordWin()
	} else {
		player.RecordLoss()
	}

	if err = that.playerRepo.Update(ctx, player); err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}

	return nil
}

// CancelGame - removes an unfinished game without touching scores or profiles.
func (that *GameManager) CancelGame(ctx context.Context, id string) error {
	unlock := that.gameLocks.Lock(id)
	defer unlock()

	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get game: %w", err)
	}

	if err = that.resumeSettlement(ctx, game); err != nil {
		return err
	}

	if game.GameOver {
		return fmt.Errorf("failed to cancel game: %w", apperror.ErrGameAlreadyOver)
	}

	if err = that.gameRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	that.recorder.GameCancelled()
	that.logger.Info("game cancelled", "game", id)

	return nil
}

func (that *GameManager) GetHistory(ctx context.Context, id string) ([]string, error) {
	game, err := that.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}

	return game.History, nil
}

// FormatHistory - history joined into the single status line clients display.
func FormatHistory(history []string) string {
	return strings.Join(history, ", ")
}

func (that *GameManager) ListActiveGames(ctx context.Context, name string) ([]*entity.Game, error) {
	if _, err := that.playerRepo.GetByName(ctx, name); err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	games, err := that.gameRepo.ListActiveByPlayer(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to list active games: %w", err)
	}

	return games, nil
}

// ListScores - every score record, or only the named player's when name is set.
func (that *GameManager) ListScores(ctx context.Context, name string) ([]*entity.Score, error) {
	if name == "" {
		scores, err := that.scoreRepo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list scores: %w", err)
		}

		return scores, nil
	}

	if _, err := that.playerRepo.GetByName(ctx, name); err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	scores, err := that.scoreRepo.ListByPlayer(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to list player scores: %w", err)
	}

	return scores, nil
}

// PlayersWithActiveGames - profiles taking part in at least one unfinished game.
func (that *GameManager) PlayersWithActiveGames(ctx context.Context) ([]*entity.Player, error) {
	games, err := that.gameRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active games: %w", err)
	}

	seen := make(map[string]struct{})
	players := []*entity.Player{}

	for _, game := range games {
		for _, name := range []string{game.User, game.Opponent} {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}

			player, err := that.playerRepo.GetByName(ctx, name)
			if err != nil {
				return nil, fmt.Errorf("failed to get player %s: %w", name, err)
			}

			players = append(players, player)
		}
	}

	return players, nil
}

type noopRecorder struct{}

func (noopRecorder) PlayerRegistered()   {}
func (noopRecorder) GameCreated()        {}
func (noopRecorder) MoveApplied()        {}
func (noopRecorder) GameFinished(string) {}
func (noopRecorder) GameCancelled()      {}
