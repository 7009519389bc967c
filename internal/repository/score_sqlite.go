package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rocketscienceinc/tictactoe-league/internal/entity"
)

type sqliteScore struct {
	conn *sql.DB
}

// NewSQLiteScoreRepository - durable score ledger; expects the scores table created by storage.SQLiteStorage.Init.
func NewSQLiteScoreRepository(conn *sql.DB) ScoreRepository {
	return &sqliteScore{
		conn: conn,
	}
}

func (that *sqliteScore) Append(ctx context.Context, score *entity.Score) error {
	query := `INSERT INTO scores (player, date, won, moves) VALUES (?, ?, ?, ?)`

	_, err := that.conn.ExecContext(ctx, query, score.Player, score.Date.Format(time.DateOnly), score.Won, score.Moves)
	if err != nil {
		return fmt.Errorf("can't append score: %w", err)
	}

	return nil
}

func (that *sqliteScore) List(ctx context.Context) ([]*entity.Score, error) {
	query := `SELECT player, date, won, moves FROM scores ORDER BY id`

	return that.query(ctx, query)
}

func (that *sqliteScore) ListByPlayer(ctx context.Context, name string) ([]*entity.Score, error) {
	query := `SELECT player, date, won, moves FROM scores WHERE player = ? ORDER BY id`

	return that.query(ctx, query, name)
}

func (that *sqliteScore) query(ctx context.Context, query string, args ...any) ([]*entity.Score, error) {
	rows, err := that.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("can't query scores: %w", err)
	}
	defer rows.Close()

	scores := []*entity.Score{}
	for rows.Next() {
		var (
			score entity.Score
			date  string
		)

		if err = rows.Scan(&score.Player, &date, &score.Won, &score.Moves); err != nil {
			return nil, fmt.Errorf("can't scan score: %w", err)
		}

		if score.Date, err = time.Parse(time.DateOnly, date); err != nil {
			return nil, fmt.Errorf("can't parse score date %q: %w", date, err)
		}

		scores = append(scores, &score)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("can't read scores: %w", err)
	}

	return scores, nil
}
