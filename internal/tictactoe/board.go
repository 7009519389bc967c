package tictactoe

import (
	"errors"
	"fmt"
)

// Mark is the symbol a participant places on a cell.
type Mark string

const (
	Empty        Mark = ""
	UserMark     Mark = "X"
	OpponentMark Mark = "O"
)

// Outcome is the result of evaluating a board.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeUserWin
	OutcomeOpponentWin
)

const Size = 9

var (
	ErrInvalidCell  = errors.New("invalid cell index")
	ErrCellOccupied = errors.New("cell is already occupied")

	// WinCombos - rows, then columns, then diagonals.
	WinCombos = [8][3]int{
		{0, 1, 2},
		{3, 4, 5},
		{6, 7, 8},
		{0, 3, 6},
		{1, 4, 7},
		{2, 5, 8},
		{0, 4, 8},
		{2, 4, 6},
	}
)

// Board is a row-major 3x3 grid.
type Board [Size]Mark

func (that *Board) IsCellEmpty(cell int) bool {
	if cell < 0 || cell >= Size {
		return false
	}

	return that[cell] == Empty
}

// Place - writes mark into an empty cell.
func (that *Board) Place(cell int, mark Mark) error {
	if cell < 0 || cell >= Size {
		return fmt.Errorf("%w: cell %d", ErrInvalidCell, cell)
	}

	if that[cell] != Empty {
		return fmt.Errorf("%w: cell %d", ErrCellOccupied, cell)
	}

	that[cell] = mark

	return nil
}

// Evaluate - reports the first three-in-a-row found. A full board without a winner is OutcomeNone.
func (that *Board) Evaluate() Outcome {
	for _, combo := range WinCombos {
		a, b, c := that[combo[0]], that[combo[1]], that[combo[2]]
		if a == Empty || a != b || b != c {
			continue
		}

		switch a {
		case UserMark:
			return OutcomeUserWin
		case OpponentMark:
			return OutcomeOpponentWin
		}
	}

	return OutcomeNone
}

// Filled - number of non-empty cells.
func (that *Board) Filled() int {
	var filled int
	for _, cell := range that {
		if cell != Empty {
			filled++
		}
	}

	return filled
}
