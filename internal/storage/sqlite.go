// Package storage provides SQLite-based persistence for finished games.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// ErrNotFound is returned when a game record does not exist.
var ErrNotFound = errors.New("game not found")

// DefaultPath is where the high score database lives unless overridden.
const DefaultPath = "~/.t2048/scores.db"

// Store manages the SQLite database connection for game records.
type Store struct {
	db *sql.DB
}

// GameRecord is one finished game.
type GameRecord struct {
	ID        int64
	Player    string
	BoardSize int
	Score     int
	MaxTile   int
	Result    string // "win" or "loss"
	Moves     int
	Duration  int // Duration in seconds
	CreatedAt time.Time
}

// Stats contains aggregated statistics for one board size.
type Stats struct {
	BoardSize  int
	GamesCount int
	Wins       int
	HighScore  int
	BestTile   int
	AvgScore   float64
	LastPlayed time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS games (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			player TEXT NOT NULL DEFAULT '',
			board_size INTEGER NOT NULL,
			score INTEGER NOT NULL,
			max_tile INTEGER NOT NULL,
			result TEXT NOT NULL,
			moves INTEGER NOT NULL DEFAULT 0,
			duration_secs INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_games_top ON games(board_size, score DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveGame records a finished game.
// Returns the ID of the inserted record.
func (s *Store) SaveGame(rec GameRecord) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO games (player, board_size, score, max_tile, result, moves, duration_secs)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.Player, rec.BoardSize, rec.Score, rec.MaxTile, rec.Result, rec.Moves, rec.Duration,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save game: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// UpdateGame overwrites the game with the given ID. Used when play
// continues after a win and the game later ends again.
func (s *Store) UpdateGame(id int64, rec GameRecord) error {
	result, err := s.db.Exec(
		`UPDATE games
		 SET player = ?, board_size = ?, score = ?, max_tile = ?, result = ?, moves = ?, duration_secs = ?
		 WHERE id = ?`,
		rec.Player, rec.BoardSize, rec.Score, rec.MaxTile, rec.Result, rec.Moves, rec.Duration, id,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot update game: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage: cannot get affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("storage: cannot update game %d: %w", id, ErrNotFound)
	}
	return nil
}

// TopScores retrieves the top N games for the given board size.
// Results are ordered by score descending, earliest first on ties.
func (s *Store) TopScores(boardSize, limit int) ([]GameRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, player, board_size, score, max_tile, result, moves, duration_secs, created_at
		 FROM games
		 WHERE board_size = ?
		 ORDER BY score DESC, id ASC
		 LIMIT ?`,
		boardSize, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scores: %w", err)
	}
	defer rows.Close()

	var records []GameRecord
	for rows.Next() {
		var r GameRecord
		var createdAt any
		if err := rows.Scan(&r.ID, &r.Player, &r.BoardSize, &r.Score, &r.MaxTile,
			&r.Result, &r.Moves, &r.Duration, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.CreatedAt = parseTime(createdAt)
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return records, nil
}

// HighScore returns the highest score for the given board size.
// Returns 0 if no games exist.
func (s *Store) HighScore(boardSize int) (int, error) {
	var score sql.NullInt64
	err := s.db.QueryRow(
		"SELECT MAX(score) FROM games WHERE board_size = ?",
		boardSize,
	).Scan(&score)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot query high score: %w", err)
	}

	if !score.Valid {
		return 0, nil
	}
	return int(score.Int64), nil
}

// ClearScores deletes all games for the given board size.
func (s *Store) ClearScores(boardSize int) error {
	if _, err := s.db.Exec("DELETE FROM games WHERE board_size = ?", boardSize); err != nil {
		return fmt.Errorf("storage: cannot clear scores: %w", err)
	}
	return nil
}

// GameStats retrieves aggregated statistics for one board size.
func (s *Store) GameStats(boardSize int) (*Stats, error) {
	stats := &Stats{BoardSize: boardSize}

	err := s.db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN result = 'win' THEN 1 ELSE 0 END), 0),
		        COALESCE(MAX(score), 0), COALESCE(MAX(max_tile), 0), COALESCE(AVG(score), 0)
		 FROM games WHERE board_size = ?`,
		boardSize,
	).Scan(&stats.GamesCount, &stats.Wins, &stats.HighScore, &stats.BestTile, &stats.AvgScore)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get game stats: %w", err)
	}

	var lastPlayed any
	err = s.db.QueryRow(
		`SELECT created_at FROM games WHERE board_size = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		boardSize,
	).Scan(&lastPlayed)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("storage: cannot get last played: %w", err)
	}
	if err == nil {
		stats.LastPlayed = parseTime(lastPlayed)
	}

	return stats, nil
}

// BoardSizes lists the board sizes that have recorded games, smallest first.
func (s *Store) BoardSizes() ([]int, error) {
	rows, err := s.db.Query(`SELECT DISTINCT board_size FROM games ORDER BY board_size`)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query board sizes: %w", err)
	}
	defer rows.Close()

	var sizes []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		sizes = append(sizes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return sizes, nil
}

// parseTime handles both time.Time and string datetimes from the driver.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
