package storage

import (
	"context"
	"database/sql"
	"fmt"

	// import the SQLite driver to register it with the database/sql package.
	_ "modernc.org/sqlite"
)

type SQLiteStorage struct {
	Connection *sql.DB
}

func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("can't open database: %w", err)
	}

	// sqlite allows a single writer
	conn.SetMaxOpenConns(1)

	if err = conn.Ping(); err != nil {
		return nil, fmt.Errorf("can't connect to database: %w", err)
	}

	return &SQLiteStorage{Connection: conn}, nil
}

func (that *SQLiteStorage) Init(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS scores (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			player TEXT NOT NULL,
			date TEXT NOT NULL,
			won INTEGER NOT NULL,
			moves INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS scores_player_idx ON scores (player)`,
	}

	for _, query := range queries {
		if _, err := that.Connection.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("can't create table: %w", err)
		}
	}

	return nil
}

func (that *SQLiteStorage) Close() error {
	if err := that.Connection.Close(); err != nil {
		return fmt.Errorf("can't close database: %w", err)
	}

	return nil
}
