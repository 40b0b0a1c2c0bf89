// Package storage provides SQLite-based persistence for episode results and
// viewer sessions. Uses the pure-Go modernc.org/sqlite driver to avoid CGO
// dependencies.
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

const sqliteTime = "2006-01-02 15:04:05"

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// Episode is one finished episode of the random-action runner.
type Episode struct {
	ID          int64
	EnvID       string
	Seed        int64
	Steps       int
	TotalReward float64
	Terminated  bool // false when the episode was truncated
	CreatedAt   time.Time
}

// Session is one interactive viewer session, local or over SSH.
type Session struct {
	ID        int64
	EnvID     string
	User      string
	Ticks     uint64
	Duration  time.Duration
	EndReason string // "quit", "error", "disconnect"
	CreatedAt time.Time
}

// EnvStats contains aggregated episode statistics for one simulation.
type EnvStats struct {
	EnvID      string
	Episodes   int
	BestReward float64
	AvgReward  float64
	AvgSteps   float64
	LastRun    time.Time
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
		CREATE TABLE IF NOT EXISTS episodes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			env_id TEXT NOT NULL,
			seed INTEGER NOT NULL,
			steps INTEGER NOT NULL,
			total_reward REAL NOT NULL,
			terminated INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_episodes_env_id ON episodes(env_id);
		CREATE INDEX IF NOT EXISTS idx_episodes_best ON episodes(env_id, total_reward DESC);

		CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			env_id TEXT NOT NULL,
			user_name TEXT NOT NULL DEFAULT '',
			ticks INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			end_reason TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_env_id ON sessions(env_id);
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

// SaveEpisode records a finished episode.
// Returns the ID of the inserted record.
func (s *Store) SaveEpisode(e Episode) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO episodes (env_id, seed, steps, total_reward, terminated)
		 VALUES (?, ?, ?, ?, ?)`,
		e.EnvID, e.Seed, e.Steps, e.TotalReward, e.Terminated,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save episode: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// RecentEpisodes retrieves the latest episodes, newest first.
// An empty envID matches every simulation.
func (s *Store) RecentEpisodes(envID string, limit int) ([]Episode, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, env_id, seed, steps, total_reward, terminated, created_at
		 FROM episodes
		 WHERE ? = '' OR env_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		envID, envID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query episodes: %w", err)
	}
	defer rows.Close()

	var episodes []Episode
	for rows.Next() {
		e, err := scanEpisode(rows)
		if err != nil {
			return nil, err
		}
		episodes = append(episodes, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return episodes, nil
}

// BestEpisode returns the episode with the highest total reward for envID.
// Returns nil if no episodes exist.
func (s *Store) BestEpisode(envID string) (*Episode, error) {
	row := s.db.QueryRow(
		`SELECT id, env_id, seed, steps, total_reward, terminated, created_at
		 FROM episodes
		 WHERE env_id = ?
		 ORDER BY total_reward DESC, steps ASC, id ASC
		 LIMIT 1`,
		envID,
	)

	e, err := scanEpisode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Stats retrieves aggregated episode statistics for envID.
func (s *Store) Stats(envID string) (*EnvStats, error) {
	stats := &EnvStats{EnvID: envID}

	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(MAX(total_reward), 0), COALESCE(AVG(total_reward), 0),
		        COALESCE(AVG(steps), 0)
		 FROM episodes WHERE env_id = ?`,
		envID,
	).Scan(&stats.Episodes, &stats.BestReward, &stats.AvgReward, &stats.AvgSteps)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get env stats: %w", err)
	}

	var lastRun any
	err = s.db.QueryRow(
		`SELECT created_at FROM episodes WHERE env_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		envID,
	).Scan(&lastRun)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("storage: cannot get last run: %w", err)
	}
	if err == nil {
		stats.LastRun = parseTime(lastRun)
	}

	return stats, nil
}

// SaveSession records a finished viewer session.
func (s *Store) SaveSession(sess Session) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO sessions (env_id, user_name, ticks, duration_ms, end_reason)
		 VALUES (?, ?, ?, ?, ?)`,
		sess.EnvID, sess.User, int64(sess.Ticks), sess.Duration.Milliseconds(), sess.EndReason,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save session: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// RecentSessions retrieves the latest sessions, newest first.
// An empty envID matches every simulation.
func (s *Store) RecentSessions(envID string, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, env_id, user_name, ticks, duration_ms, end_reason, created_at
		 FROM sessions
		 WHERE ? = '' OR env_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		envID, envID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		var ticks, durationMS int64
		var createdAt any
		if err := rows.Scan(
			&sess.ID,
			&sess.EnvID,
			&sess.User,
			&ticks,
			&durationMS,
			&sess.EndReason,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		sess.Ticks = uint64(ticks)
		sess.Duration = time.Duration(durationMS) * time.Millisecond
		sess.CreatedAt = parseTime(createdAt)
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return sessions, nil
}

// Clear deletes all episodes and sessions for the given simulation.
func (s *Store) Clear(envID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM episodes WHERE env_id = ?", envID); err != nil {
		return fmt.Errorf("storage: cannot clear episodes: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM sessions WHERE env_id = ?", envID); err != nil {
		return fmt.Errorf("storage: cannot clear sessions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit clear: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEpisode(row scanner) (Episode, error) {
	var e Episode
	var createdAt any
	err := row.Scan(&e.ID, &e.EnvID, &e.Seed, &e.Steps, &e.TotalReward, &e.Terminated, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return e, err
	}
	if err != nil {
		return e, fmt.Errorf("storage: cannot scan row: %w", err)
	}
	e.CreatedAt = parseTime(createdAt)
	return e, nil
}

// parseTime handles both time.Time and string datetime values.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(sqliteTime, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
