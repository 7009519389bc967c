package entity

import "time"

// Score - one participant's result in a finished game. Never mutated after append.
type Score struct {
	Player string    `json:"user_name"`
	Date   time.Time `json:"date"`
	Won    bool      `json:"won"`
	Moves  int       `json:"moves"`
}

func NewScore(player string, won bool, moves int, at time.Time) *Score {
	return &Score{
		Player: player,
		Date:   at.UTC().Truncate(24 * time.Hour),
		Won:    won,
		Moves:  moves,
	}
}
