package telemetry

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists query metrics to a local SQLite database so
// aggregates survive process restarts.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (or creates) the metrics database at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open telemetry db: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// initSchema creates the telemetry tables if they don't exist.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Engine usage (aggregated daily)
	CREATE TABLE IF NOT EXISTS query_engine_stats (
		date TEXT NOT NULL,
		engine TEXT NOT NULL,
		count INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (date, engine)
	);

	-- Zero-result queries (bounded, newest kept)
	CREATE TABLE IF NOT EXISTS zero_result_queries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		query TEXT NOT NULL,
		timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- Latency histogram (buckets: <10ms, 10-50ms, 50-100ms, 100-500ms, >=500ms)
	CREATE TABLE IF NOT EXISTS query_latency_stats (
		date TEXT NOT NULL,
		bucket TEXT NOT NULL,
		count INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (date, bucket)
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create telemetry schema: %w", err)
	}
	return nil
}

// Flush writes the in-memory aggregates into the database under today's
// date, then trims the zero-result table to its cap.
func (s *SQLiteStore) Flush(summary Summary) error {
	date := time.Now().Format("2006-01-02")

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin telemetry flush: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for engine, count := range summary.EngineCounts {
		if _, err := tx.Exec(`
			INSERT INTO query_engine_stats (date, engine, count) VALUES (?, ?, ?)
			ON CONFLICT(date, engine) DO UPDATE SET count = count + excluded.count`,
			date, engine, count); err != nil {
			return fmt.Errorf("flush engine stats: %w", err)
		}
	}

	for bucket, count := range summary.LatencyCounts {
		if _, err := tx.Exec(`
			INSERT INTO query_latency_stats (date, bucket, count) VALUES (?, ?, ?)
			ON CONFLICT(date, bucket) DO UPDATE SET count = count + excluded.count`,
			date, string(bucket), count); err != nil {
			return fmt.Errorf("flush latency stats: %w", err)
		}
	}

	for _, q := range summary.ZeroResults {
		if _, err := tx.Exec(`INSERT INTO zero_result_queries (query) VALUES (?)`, q); err != nil {
			return fmt.Errorf("flush zero-result queries: %w", err)
		}
	}
	if _, err := tx.Exec(`
		DELETE FROM zero_result_queries WHERE id NOT IN (
			SELECT id FROM zero_result_queries ORDER BY id DESC LIMIT ?)`,
		maxZeroResultQueries); err != nil {
		return fmt.Errorf("trim zero-result queries: %w", err)
	}

	return tx.Commit()
}

// ZeroResultQueries returns the most recent zero-result queries, newest first.
func (s *SQLiteStore) ZeroResultQueries(limit int) ([]string, error) {
	if limit <= 0 {
		limit = maxZeroResultQueries
	}
	rows, err := s.db.Query(`
		SELECT query FROM zero_result_queries ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query zero-result queries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var queries []string
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, err
		}
		queries = append(queries, q)
	}
	return queries, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
