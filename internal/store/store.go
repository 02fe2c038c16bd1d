// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/spacelane/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for play sessions.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			mode TEXT NOT NULL,
			hazards INTEGER NOT NULL,
			period_ms REAL NOT NULL,
			waves INTEGER NOT NULL,
			hits INTEGER NOT NULL,
			hazard_hits INTEGER NOT NULL,
			escapes INTEGER NOT NULL,
			dodges INTEGER NOT NULL,
			final_score INTEGER NOT NULL,
			peak_score INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS session_decisions (
			session_id INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			displayed INTEGER NOT NULL,
			chosen INTEGER NOT NULL,
			latency_ms REAL NOT NULL,
			PRIMARY KEY (session_id, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_mode ON sessions(mode);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertSession stores a finished session and its decisions.
func (s *Store) InsertSession(ctx context.Context, stats model.SessionStats, decisions []model.Decision) (id int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (started_at, ended_at, mode, hazards, period_ms, waves, hits, hazard_hits, escapes, dodges, final_score, peak_score, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		stats.StartedAt.Format(time.RFC3339Nano),
		stats.EndedAt.Format(time.RFC3339Nano),
		stats.Mode,
		boolToInt(stats.Hazards),
		stats.PeriodMs,
		stats.Waves,
		stats.Hits,
		stats.HazardHits,
		stats.Escapes,
		stats.Dodges,
		stats.FinalScore,
		stats.PeakScore,
		stats.DurationMs,
	)
	if err != nil {
		return 0, err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(decisions) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO session_decisions (session_id, seq, correct, displayed, chosen, latency_ms)
			 VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for i, d := range decisions {
			if _, err := stmt.ExecContext(ctx, id, i, d.Correct, d.Displayed, d.Chosen, d.LatencyMs); err != nil {
				return 0, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListSessions returns session aggregates filtered by stats config, oldest first.
func (s *Store) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Mode != "" {
		clauses = append(clauses, "s.mode = ?")
		args = append(args, cfg.Mode)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "s.ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT s.id, s.ended_at, s.mode, s.waves, s.hits, s.hazard_hits, s.final_score, s.peak_score, s.duration_ms,
			COUNT(d.seq), COALESCE(SUM(CASE WHEN d.chosen = d.correct THEN 1 ELSE 0 END), 0), COALESCE(SUM(d.latency_ms), 0)
		FROM sessions s
		LEFT JOIN session_decisions d ON d.session_id = s.id
		WHERE %s
		GROUP BY s.id
		ORDER BY s.ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.SessionAggregate
	for rows.Next() {
		var agg model.SessionAggregate
		var endedAt string
		if err := rows.Scan(&agg.SessionID, &endedAt, &agg.Mode, &agg.Waves, &agg.Hits, &agg.HazardHits,
			&agg.FinalScore, &agg.PeakScore, &agg.DurationMs,
			&agg.Decisions, &agg.CorrectChoices, &agg.LatencySumMs); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		sessions = append(sessions, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListModeAggregates aggregates decisions per access mode across sessions.
func (s *Store) ListModeAggregates(ctx context.Context, sessionIDs []int64) ([]model.ModeAggregate, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(sessionIDs))
	args := make([]any, len(sessionIDs))
	for i, id := range sessionIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT s.mode, COUNT(DISTINCT s.id), COUNT(d.seq),
			COALESCE(SUM(CASE WHEN d.chosen = d.correct THEN 1 ELSE 0 END), 0), COALESCE(SUM(d.latency_ms), 0)
		FROM sessions s
		LEFT JOIN session_decisions d ON d.session_id = s.id
		WHERE s.id IN (%s)
		GROUP BY s.mode
		ORDER BY s.mode`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.ModeAggregate
	for rows.Next() {
		var agg model.ModeAggregate
		if err := rows.Scan(&agg.Mode, &agg.Sessions, &agg.Decisions, &agg.Correct, &agg.LatencySumMs); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// BestScore returns the highest peak score recorded for a mode, or any mode when mode is empty.
func (s *Store) BestScore(ctx context.Context, mode string) (int, error) {
	var best sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(peak_score) FROM sessions WHERE (? = '' OR mode = ?)`, mode, mode).Scan(&best)
	if err != nil {
		return 0, err
	}
	if !best.Valid {
		return 0, nil
	}
	return int(best.Int64), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
