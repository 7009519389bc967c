package apperror

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrDuplicatePlayer     = errors.New("player with that name already exists")
	ErrInvalidParticipants = errors.New("invalid game participants")
	ErrGameAlreadyOver     = errors.New("game is already over")
	ErrInvalidMove         = errors.New("invalid move")
	ErrUnknownActor        = errors.New("player is not a participant of the game")
)
