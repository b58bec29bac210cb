package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/forgelabs/scanforge/internal/model"

	_ "modernc.org/sqlite"
)

const createScansTable = `
CREATE TABLE IF NOT EXISTS scans (
    id          TEXT PRIMARY KEY,
    mode        TEXT NOT NULL,
    status      TEXT NOT NULL,
    code        TEXT,
    message     TEXT,
    result      BLOB,
    timeout_ms  INTEGER NOT NULL,
    duration_ms INTEGER,
    created_at  DATETIME NOT NULL,
    finished_at DATETIME
)`

// Compile-time interface satisfaction check.
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the SQLite database at dbPath and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One connection: serializes writers and keeps :memory: databases from
	// being split across pool connections.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if _, err := db.Exec(createScansTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create scans table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateScan inserts a new scan record.
func (s *SQLiteStore) CreateScan(ctx context.Context, sc *model.Scan) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scans (
			id, mode, status, code, message, result,
			timeout_ms, duration_ms, created_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sc.ID, sc.Mode, sc.Status, sc.Code, sc.Message, sc.Result,
		sc.TimeoutMS, sc.DurationMS, sc.CreatedAt, sc.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert scan: %w", err)
	}
	return nil
}

// GetScan retrieves a scan record by ID.
func (s *SQLiteStore) GetScan(ctx context.Context, id string) (*model.Scan, error) {
	sc := &model.Scan{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, mode, status, code, message, result,
			timeout_ms, duration_ms, created_at, finished_at
		FROM scans WHERE id = ?`, id,
	).Scan(
		&sc.ID, &sc.Mode, &sc.Status, &sc.Code, &sc.Message, &sc.Result,
		&sc.TimeoutMS, &sc.DurationMS, &sc.CreatedAt, &sc.FinishedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get scan: %w", err)
	}
	return sc, nil
}

// ListScans returns a paginated list of scans ordered by created_at DESC,
// along with the total count of all scans.
func (s *SQLiteStore) ListScans(ctx context.Context, limit, offset int) ([]*model.Scan, int, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, 0, fmt.Errorf("begin read tx: %w", err)
	}
	defer tx.Rollback()

	var total int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM scans").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count scans: %w", err)
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT id, mode, status, code, message, result,
			timeout_ms, duration_ms, created_at, finished_at
		FROM scans ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list scans: %w", err)
	}
	defer rows.Close()

	var scans []*model.Scan
	for rows.Next() {
		sc := &model.Scan{}
		if err := rows.Scan(
			&sc.ID, &sc.Mode, &sc.Status, &sc.Code, &sc.Message, &sc.Result,
			&sc.TimeoutMS, &sc.DurationMS, &sc.CreatedAt, &sc.FinishedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan row: %w", err)
		}
		scans = append(scans, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate scans: %w", err)
	}

	return scans, total, nil
}

// FinishScan records a job's terminal outcome on its scan record.
func (s *SQLiteStore) FinishScan(ctx context.Context, out model.Outcome, finishedAt time.Time) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE scans SET status = ?, code = ?, message = ?, result = ?,
			duration_ms = ?, finished_at = ? WHERE id = ?`,
		out.Status, out.Code, out.Message, []byte(out.Result),
		out.DurationMS, finishedAt, out.JobID,
	)
	if err != nil {
		return fmt.Errorf("finish scan: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// GetScanStats computes aggregate statistics across all scan records.
func (s *SQLiteStore) GetScanStats(ctx context.Context) (*ScanStats, error) {
	stats := &ScanStats{
		CountByStatus: make(map[string]int),
		CountByMode:   make(map[string]int),
	}

	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM scans GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		stats.CountByStatus[status] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status counts: %w", err)
	}

	modeRows, err := s.db.QueryContext(ctx, "SELECT mode, COUNT(*) FROM scans GROUP BY mode")
	if err != nil {
		return nil, fmt.Errorf("count by mode: %w", err)
	}
	defer modeRows.Close()
	for modeRows.Next() {
		var mode string
		var count int
		if err := modeRows.Scan(&mode, &count); err != nil {
			return nil, fmt.Errorf("scan mode count: %w", err)
		}
		stats.CountByMode[mode] = count
	}
	if err := modeRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mode counts: %w", err)
	}

	var avg sql.NullFloat64
	if err := s.db.QueryRowContext(ctx,
		"SELECT AVG(duration_ms) FROM scans WHERE duration_ms IS NOT NULL",
	).Scan(&avg); err != nil {
		return nil, fmt.Errorf("average duration: %w", err)
	}
	if avg.Valid {
		stats.AvgDurationMS = avg.Float64
	}

	return stats, nil
}
