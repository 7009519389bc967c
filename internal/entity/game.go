package entity

import (
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/rocketscienceinc/tictactoe-league/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-league/internal/tictactoe"
)

const (
	ResultNone        = ""
	ResultUserWin     = "user_win"
	ResultOpponentWin = "opponent_win"
	ResultDraw        = "draw"
)

const (
	MinPosition = 1
	MaxPosition = tictactoe.Size
)

type Game struct {
	ID            string          `json:"id"`
	User          string          `json:"user"`
	Opponent      string          `json:"opponent"`
	Board         tictactoe.Board `json:"board"`
	UserMoves     int             `json:"user_moves"`
	OpponentMoves int             `json:"opponent_moves"`
	History       []string        `json:"history"`
	GameOver      bool            `json:"game_over"`
	Result        string          `json:"result"`
	Settlement    Settlement      `json:"settlement"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Settlement - participants whose profile update and score record are already written for a finished game.
type Settlement struct {
	Profiles []string `json:"profiles,omitempty"`
	Scores   []string `json:"scores,omitempty"`
}

// GameView - read-only projection of a game with a status message for the caller.
type GameView struct {
	ID            string          `json:"urlsafe_key"`
	User          string          `json:"user_name"`
	Opponent      string          `json:"opponent_name"`
	Board         tictactoe.Board `json:"board_state"`
	UserMoves     int             `json:"user_moves"`
	OpponentMoves int             `json:"opponent_moves"`
	GameOver      bool            `json:"game_over"`
	Result        string          `json:"result,omitempty"`
	Message       string          `json:"message"`
}

func NewGame(id, user, opponent string) *Game {
	return &Game{
		ID:        id,
		User:      user,
		Opponent:  opponent,
		History:   []string{},
		CreatedAt: time.Now().UTC(),
	}
}

func (that *Game) IsParticipant(name string) bool {
	return name == that.User || name == that.Opponent
}

func (that *Game) IsActive() bool {
	return !that.GameOver
}

// TotalMoves - moves made by both participants.
func (that *Game) TotalMoves() int {
	return that.UserMoves + that.OpponentMoves
}

// ApplyMove - places the actor's mark on a 1-based position and finalizes the game on a win.
func (that *Game) ApplyMove(actor string, position int) (tictactoe.Outcome, error) {
	if that.GameOver {
		return tictactoe.OutcomeNone, apperror.ErrGameAlreadyOver
	}

	if position < MinPosition || position > MaxPosition {
		return tictactoe.OutcomeNone, fmt.Errorf("%w: move outside the range (%d-%d)", apperror.ErrInvalidMove, MinPosition, MaxPosition)
	}

	if !that.Board.IsCellEmpty(position - 1) {
		return tictactoe.OutcomeNone, fmt.Errorf("%w: %w", apperror.ErrInvalidMove, tictactoe.ErrCellOccupied)
	}

	if !that.IsParticipant(actor) {
		return tictactoe.OutcomeNone, fmt.Errorf("%w: %s", apperror.ErrUnknownActor, actor)
	}

	mark := tictactoe.OpponentMark
	if actor == that.User {
		mark = tictactoe.UserMark
	}

	if err := that.Board.Place(position-1, mark); err != nil {
		return tictactoe.OutcomeNone, fmt.Errorf("%w: %w", apperror.ErrInvalidMove, err)
	}

	if mark == tictactoe.UserMark {
		that.UserMoves++
	} else {
		that.OpponentMoves++
	}

	that.History = append(that.History, "Player "+actor+" moved to: "+strconv.Itoa(position))

	outcome := that.Board.Evaluate()
	switch outcome {
	case tictactoe.OutcomeUserWin:
		return outcome, that.Finalize(ResultUserWin)
	case tictactoe.OutcomeOpponentWin:
		return outcome, that.Finalize(ResultOpponentWin)
	default:
		return outcome, nil
	}
}

// Finalize - one-time transition to game over.
func (that *Game) Finalize(result string) error {
	if that.GameOver {
		return apperror.ErrGameAlreadyOver
	}

	that.GameOver = true
	that.Result = result

	return nil
}

// Winner - name of the winning participant, empty when there is none.
func (that *Game) Winner() string {
	switch that.Result {
	case ResultUserWin:
		return that.User
	case ResultOpponentWin:
		return that.Opponent
	default:
		return ""
	}
}

// NeedsProfileUpdate - whether the participant's win or loss is still to be recorded.
func (that *Game) NeedsProfileUpdate(name string) bool {
	return that.Winner() != "" && !slices.Contains(that.Settlement.Profiles, name)
}

// NeedsScore - whether the participant's score record is still to be appended.
func (that *Game) NeedsScore(name string) bool {
	return that.GameOver && !slices.Contains(that.Settlement.Scores, name)
}

func (that *Game) MarkProfileSettled(name string) {
	that.Settlement.Profiles = append(that.Settlement.Profiles, name)
}

func (that *Game) MarkScoreSettled(name string) {
	that.Settlement.Scores = append(that.Settlement.Scores, name)
}

// IsSettled - finished and every participant's bookkeeping is written.
func (that *Game) IsSettled() bool {
	if !that.GameOver {
		return false
	}

	for _, name := range []string{that.User, that.Opponent} {
		if that.NeedsProfileUpdate(name) || that.NeedsScore(name) {
			return false
		}
	}

	return true
}

// MovesOf - moves made by the named participant.
func (that *Game) MovesOf(name string) int {
	switch name {
	case that.User:
		return that.UserMoves
	case that.Opponent:
		return that.OpponentMoves
	default:
		return 0
	}
}

func (that *Game) Describe(message string) *GameView {
	return &GameView{
		ID:            that.ID,
		User:          that.User,
		Opponent:      that.Opponent,
		Board:         that.Board,
		UserMoves:     that.UserMoves,
		OpponentMoves: that.OpponentMoves,
		GameOver:      that.GameOver,
		Result:        that.Result,
		Message:       message,
	}
}
