package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rocketscienceinc/tictactoe-league/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-league/internal/entity"
	"github.com/rocketscienceinc/tictactoe-league/internal/usecase"
)

type gameManager interface {
	RegisterPlayer(ctx context.Context, name, email string) (*entity.Player, error)
	GetPlayer(ctx context.Context, name string) (*entity.Player, error)
	CreateGame(ctx context.Context, userName, opponentName string) (*entity.Game, error)
	GetGame(ctx context.Context, id string) (*entity.Game, error)
	MakeMove(ctx context.Context, id, actor string, position int) (*entity.GameView, error)
	DeclareDraw(ctx context.Context, id string) (*entity.Game, error)
	CancelGame(ctx context.Context, id string) error
	GetHistory(ctx context.Context, id string) ([]string, error)
	ListActiveGames(ctx context.Context, name string) ([]*entity.Game, error)
	ListScores(ctx context.Context, name string) ([]*entity.Score, error)
	Rankings(ctx context.Context) ([]*entity.Ranking, error)
	Leaderboard(ctx context.Context, limit int) ([]*entity.Score, error)
	AverageRemainingMoves(ctx context.Context) (string, error)
}

type registerPlayerRequest struct {
	Name  string `json:"user_name" binding:"required"`
	Email string `json:"email" binding:"omitempty,email"`
}

type createGameRequest struct {
	User     string `json:"user_name" binding:"required"`
	Opponent string `json:"opponent_name" binding:"required"`
}

type makeMoveRequest struct {
	Actor    string `json:"user_name" binding:"required"`
	Position *int   `json:"move" binding:"required"`
}

type playerResponse struct {
	*entity.Player
	Message string `json:"message,omitempty"`
}

type historyResponse struct {
	History []string `json:"history"`
	Message string   `json:"message"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type handlers struct {
	logger  *slog.Logger
	manager gameManager
}

func newHandlers(logger *slog.Logger, manager gameManager) *handlers {
	return &handlers{
		logger:  logger.With("component", "rest_handlers"),
		manager: manager,
	}
}

func (that *handlers) registerPlayer(c *gin.Context) {
	var req registerPlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	player, err := that.manager.RegisterPlayer(c.Request.Context(), req.Name, req.Email)
	if err != nil {
		that.fail(c, "registerPlayer", err)
		return
	}

	c.JSON(http.StatusCreated, playerResponse{
		Player:  player,
		Message: "User " + player.Name + " created!",
	})
}

func (that *handlers) getPlayer(c *gin.Context) {
	player, err := that.manager.GetPlayer(c.Request.Context(), c.Param("name"))
	if err != nil {
		that.fail(c, "getPlayer", err)
		return
	}

	c.JSON(http.StatusOK, playerResponse{Player: player})
}

func (that *handlers) listActiveGames(c *gin.Context) {
	games, err := that.manager.ListActiveGames(c.Request.Context(), c.Param("name"))
	if err != nil {
		that.fail(c, "listActiveGames", err)
		return
	}

	views := make([]*entity.GameView, 0, len(games))
	for _, game := range games {
		views = append(views, game.Describe(usecase.MessageActiveGame))
	}

	c.JSON(http.StatusOK, gin.H{"games": views})
}

func (that *handlers) createGame(c *gin.Context) {
	var req createGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	game, err := that.manager.CreateGame(c.Request.Context(), req.User, req.Opponent)
	if err != nil {
		that.fail(c, "createGame", err)
		return
	}

	c.JSON(http.StatusCreated, game.Describe(usecase.MessageNewGame))
}

func (that *handlers) getGame(c *gin.Context) {
	game, err := that.manager.GetGame(c.Request.Context(), c.Param("id"))
	if err != nil {
		that.fail(c, "getGame", err)
		return
	}

	c.JSON(http.StatusOK, game.Describe(usecase.MessageGetGame))
}

func (that *handlers) makeMove(c *gin.Context) {
	var req makeMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	view, err := that.manager.MakeMove(c.Request.Context(), c.Param("id"), req.Actor, *req.Position)
	if err != nil {
		that.fail(c, "makeMove", err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (that *handlers) declareDraw(c *gin.Context) {
	game, err := that.manager.DeclareDraw(c.Request.Context(), c.Param("id"))
	if err != nil {
		that.fail(c, "declareDraw", err)
		return
	}

	c.JSON(http.StatusOK, game.Describe(usecase.MessageDraw))
}

func (that *handlers) cancelGame(c *gin.Context) {
	if err := that.manager.CancelGame(c.Request.Context(), c.Param("id")); err != nil {
		that.fail(c, "cancelGame", err)
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: usecase.MessageGameDeleted})
}

func (that *handlers) getHistory(c *gin.Context) {
	history, err := that.manager.GetHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		that.fail(c, "getHistory", err)
		return
	}

	c.JSON(http.StatusOK, historyResponse{
		History: history,
		Message: usecase.FormatHistory(history),
	})
}

func (that *handlers) averageMoves(c *gin.Context) {
	message, err := that.manager.AverageRemainingMoves(c.Request.Context())
	if err != nil {
		that.fail(c, "averageMoves", err)
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: message})
}

func (that *handlers) listScores(c *gin.Context) {
	scores, err := that.manager.ListScores(c.Request.Context(), "")
	if err != nil {
		that.fail(c, "listScores", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": scores})
}

func (that *handlers) listPlayerScores(c *gin.Context) {
	scores, err := that.manager.ListScores(c.Request.Context(), c.Param("name"))
	if err != nil {
		that.fail(c, "listPlayerScores", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": scores})
}

func (that *handlers) leaderboard(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "limit must be an integer"})
			return
		}
		limit = parsed
	}

	scores, err := that.manager.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		that.fail(c, "leaderboard", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": scores})
}

func (that *handlers) rankings(c *gin.Context) {
	rankings, err := that.manager.Rankings(c.Request.Context())
	if err != nil {
		that.fail(c, "rankings", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": rankings})
}

// fail - maps domain errors to status codes. NotFound is checked first since a missing participant also wraps InvalidParticipants.
func (that *handlers) fail(c *gin.Context, method string, err error) {
	status := statusFor(err)

	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "method", method, "error", err)
		c.JSON(status, errorResponse{Error: http.StatusText(status)})
		return
	}

	c.JSON(status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrDuplicatePlayer):
		return http.StatusConflict
	case errors.Is(err, apperror.ErrInvalidParticipants),
		errors.Is(err, apperror.ErrGameAlreadyOver),
		errors.Is(err, apperror.ErrInvalidMove),
		errors.Is(err, apperror.ErrUnknownActor):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
