package entity

import "time"

type Player struct {
	Name        string    `json:"name"`
	Email       string    `json:"email,omitempty"`
	GamesWon    int       `json:"games_won"`
	GamesLost   int       `json:"games_lost"`
	Performance float64   `json:"performance"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewPlayer(name, email string) *Player {
	return &Player{
		Name:      name,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
}

func (that *Player) RecordWin() {
	that.GamesWon++
	that.recomputePerformance()
}

func (that *Player) RecordLoss() {
	that.GamesLost++
	that.recomputePerformance()
}

// recomputePerformance - won/lost ratio, 0 while the player has no losses.
func (that *Player) recomputePerformance() {
	if that.GamesLost == 0 {
		that.Performance = 0
		return
	}

	that.Performance = float64(that.GamesWon) / float64(that.GamesLost)
}

// Ranking - a player's position entry in the rankings view.
type Ranking struct {
	Name        string  `json:"user_name"`
	Performance float64 `json:"performance"`
}
