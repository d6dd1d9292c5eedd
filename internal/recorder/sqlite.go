package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SnapshotInfo summarizes one recorded collection.
type SnapshotInfo struct {
	ID              int64     `json:"id"`
	RecordedAt      time.Time `json:"recorded_at"`
	Source          string    `json:"source"`
	GDPPoints       int       `json:"gdp_points"`
	InflationPoints int       `json:"inflation_points"`
	Rows            int       `json:"rows"`
}

// SQLiteRecorder persists collection history to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log *zap.SugaredLogger
	now func() time.Time
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log *zap.SugaredLogger) (*SQLiteRecorder, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log, now: time.Now}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Infow("sqlite recorder opened", "path", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp        INTEGER NOT NULL,
			source           TEXT,
			gdp_points       INTEGER,
			inflation_points INTEGER,
			row_count        INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_ts ON snapshots(timestamp)`,

		`CREATE TABLE IF NOT EXISTS snapshot_rows (
			snapshot_id INTEGER NOT NULL REFERENCES snapshots(id),
			year        TEXT NOT NULL,
			gdp         REAL,
			inflation   REAL,
			PRIMARY KEY (snapshot_id, year)
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordSnapshot writes the snapshot header and its rows in one transaction.
func (r *SQLiteRecorder) RecordSnapshot(snap *Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := 0
	if snap.Table != nil {
		rows = snap.Table.Len()
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.Exec(`INSERT INTO snapshots
		(timestamp, source, gdp_points, inflation_points, row_count)
		VALUES (?,?,?,?,?)`,
		r.now().Unix(), snap.Source, snap.GDPPoints, snap.InflationPoints, rows,
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("snapshot id: %w", err)
	}

	if snap.Table != nil {
		for _, row := range snap.Table.Rows {
			if _, err := tx.Exec(`INSERT INTO snapshot_rows
				(snapshot_id, year, gdp, inflation) VALUES (?,?,?,?)`,
				id, row.Year, row.GDP, row.Inflation,
			); err != nil {
				return fmt.Errorf("insert row %s: %w", row.Year, err)
			}
		}
	}
	return tx.Commit()
}

// ListSnapshots returns the most recent snapshots, newest first.
func (r *SQLiteRecorder) ListSnapshots(limit int) ([]SnapshotInfo, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Query(`SELECT id, timestamp, source, gdp_points, inflation_points, row_count
		FROM snapshots ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotInfo
	for rows.Next() {
		var (
			info SnapshotInfo
			ts   int64
		)
		if err := rows.Scan(&info.ID, &ts, &info.Source, &info.GDPPoints, &info.InflationPoints, &info.Rows); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		info.RecordedAt = time.Unix(ts, 0).UTC()
		out = append(out, info)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info("closing sqlite recorder")
	return r.db.Close()
}
