package repository

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-league/internal/apperror"
)

var (
	ErrPlayerNotFound = fmt.Errorf("player %w", apperror.ErrNotFound)
	ErrGameNotFound   = fmt.Errorf("game %w", apperror.ErrNotFound)
)
