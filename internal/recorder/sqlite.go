package recorder

import (
	"database/sql"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"ReversalScanner/internal/logger"
	"ReversalScanner/internal/model"
)

// SQLiteRecorder persists scan runs to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL so report readers do not block the scanner's writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scan_runs (
			run_id       TEXT PRIMARY KEY,
			kind         TEXT NOT NULL,
			timestamp    INTEGER NOT NULL,
			universe     INTEGER,
			matched      INTEGER,
			no_match     INTEGER,
			skipped      INTEGER,
			duration_ms  INTEGER,
			report_path  TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_kind_ts ON scan_runs(kind, timestamp)`,

		`CREATE TABLE IF NOT EXISTS scan_matches (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id            TEXT NOT NULL,
			rank              INTEGER,
			code              TEXT NOT NULL,
			name              TEXT,
			label             TEXT,
			price             REAL,
			vol_ratio         REAL,
			rsi6              REAL,
			potential         REAL,
			change_pct        REAL,
			consecutive_drops INTEGER,
			dist_to_ma13      REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_run ON scan_matches(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_code ON scan_matches(code)`,

		`CREATE TABLE IF NOT EXISTS scan_skips (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id  TEXT NOT NULL,
			code    TEXT NOT NULL,
			reason  TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_skips_run ON scan_skips(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordScan writes the run, its matches and its skips in one transaction.
func (r *SQLiteRecorder) RecordScan(rec *RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rep := rec.Report
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO scan_runs
		(run_id, kind, timestamp, universe, matched, no_match, skipped, duration_ms, report_path)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		rep.RunID, string(rep.Kind), rep.RunAt.Unix(), rep.Universe,
		len(rep.Results), rep.NoMatch, len(rep.Skips),
		rec.Duration.Milliseconds(), rec.ReportPath,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	matchStmt, err := tx.Prepare(`INSERT INTO scan_matches
		(run_id, rank, code, name, label, price, vol_ratio, rsi6, potential, change_pct, consecutive_drops, dist_to_ma13)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare match insert: %w", err)
	}
	defer matchStmt.Close()

	for i, res := range rep.Results {
		m := matchColumns(res)
		if _, err := matchStmt.Exec(rep.RunID, i+1, res.Code, res.Name, res.Label.Name,
			m.price, m.volRatio, m.rsi6, m.potential, m.change, m.drops, m.dist,
		); err != nil {
			return fmt.Errorf("insert match %s: %w", res.Code, err)
		}
	}

	for _, s := range rep.Skips {
		if _, err := tx.Exec(`INSERT INTO scan_skips (run_id, code, reason) VALUES (?,?,?)`,
			rep.RunID, s.Code, s.Reason); err != nil {
			return fmt.Errorf("insert skip %s: %w", s.Code, err)
		}
	}

	return tx.Commit()
}

type matchRow struct {
	price, volRatio, rsi6, potential, change, dist sql.NullFloat64
	drops                                          sql.NullInt64
}

func matchColumns(res model.ScanResult) matchRow {
	var m matchRow
	if s := res.Snapshot; s != nil {
		m.price, m.volRatio, m.rsi6 = nullable(s.Close), nullable(s.VolRatio), nullable(s.RSI6)
	}
	if d := res.Oversold; d != nil {
		m.price, m.volRatio, m.rsi6 = nullable(d.Price), nullable(d.VolRatio), nullable(d.RSI6)
		m.potential, m.change = nullable(d.Potential), nullable(d.Change)
		m.drops = sql.NullInt64{Int64: int64(d.ConsecutiveDrops), Valid: true}
	}
	if tr := res.Track; tr != nil {
		m.price, m.dist = nullable(tr.Close), nullable(tr.DistToMA13)
	}
	return m
}

func nullable(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func (r *SQLiteRecorder) RecentRuns(kind model.ScanKind, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.Query(`SELECT run_id, kind, timestamp, universe, matched, no_match, skipped, report_path
		FROM scan_runs
		WHERE (? = '' OR kind = ?)
		ORDER BY timestamp DESC, rowid DESC
		LIMIT ?`, string(kind), string(kind), limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var (
			s    RunSummary
			k    string
			ts   int64
			path sql.NullString
		)
		if err := rows.Scan(&s.RunID, &k, &ts, &s.Universe, &s.Matched, &s.NoMatch, &s.Skipped, &path); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		s.Kind = model.ScanKind(k)
		s.RunAt = time.Unix(ts, 0)
		s.ReportPath = path.String
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	logger.Info("closing sqlite recorder")
	return r.db.Close()
}
