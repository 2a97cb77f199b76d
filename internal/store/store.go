// Package store persists reading plans in SQLite and PDF payloads on disk.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/csheth/pagewise/internal/plan"
)

// ErrNotFound is returned for unknown plan ids.
var ErrNotFound = errors.New("plan not found")

const schema = `
CREATE TABLE IF NOT EXISTS plans (
	id                 TEXT PRIMARY KEY,
	file_name          TEXT NOT NULL,
	original_file_name TEXT NOT NULL,
	total_pages        INTEGER NOT NULL,
	current_day_index  INTEGER NOT NULL DEFAULT 0,
	blob_key           TEXT NOT NULL,
	days               TEXT NOT NULL,
	last_accessed      INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS plans_last_accessed ON plans(last_accessed DESC);
`

// Store keeps plan metadata. Days are stored as a JSON column.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open plan database")
	}
	// One writer; the database file is private to this process.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "init plan schema")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SavePlan inserts or replaces p.
func (s *Store) SavePlan(ctx context.Context, p *plan.Plan) error {
	if p == nil || p.ID == "" {
		return errors.New("plan id is required")
	}
	days, err := json.Marshal(p.Days)
	if err != nil {
		return errors.Wrap(err, "encode days")
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO plans (id, file_name, original_file_name, total_pages, current_day_index, blob_key, days, last_accessed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			file_name = excluded.file_name,
			original_file_name = excluded.original_file_name,
			total_pages = excluded.total_pages,
			current_day_index = excluded.current_day_index,
			blob_key = excluded.blob_key,
			days = excluded.days,
			last_accessed = excluded.last_accessed`,
		p.ID, p.FileName, p.OriginalFileName, p.TotalPages, p.CurrentDayIndex, p.BlobKey, string(days), p.LastAccessed.UnixMilli(),
	)
	return errors.Wrapf(err, "save plan %s", p.ID)
}

// GetPlan loads one plan.
func (s *Store) GetPlan(ctx context.Context, id string) (*plan.Plan, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, file_name, original_file_name, total_pages, current_day_index, blob_key, days, last_accessed
		FROM plans WHERE id = ?`, id)
	p, err := scanPlan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(ErrNotFound, "plan %s", id)
	}
	return p, err
}

// ListPlans returns every plan, most recently opened first.
func (s *Store) ListPlans(ctx context.Context) ([]*plan.Plan, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, file_name, original_file_name, total_pages, current_day_index, blob_key, days, last_accessed
		FROM plans ORDER BY last_accessed DESC, id`)
	if err != nil {
		return nil, errors.Wrap(err, "list plans")
	}
	defer rows.Close()

	var plans []*plan.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, errors.Wrap(rows.Err(), "list plans")
}

// DeletePlan removes a plan and returns its blob key.
func (s *Store) DeletePlan(ctx context.Context, id string) (string, error) {
	p, err := s.GetPlan(ctx, id)
	if err != nil {
		return "", err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM plans WHERE id = ?`, id); err != nil {
		return "", errors.Wrapf(err, "delete plan %s", id)
	}
	return p.BlobKey, nil
}

// BlobInUse reports whether any plan still references key.
func (s *Store) BlobInUse(ctx context.Context, key string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM plans WHERE blob_key = ?`, key).Scan(&n)
	if err != nil {
		return false, errors.Wrap(err, "count blob references")
	}
	return n > 0, nil
}

// Touch records that a plan was opened at.
func (s *Store) Touch(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `UPDATE plans SET last_accessed = ? WHERE id = ?`, at.UnixMilli(), id)
	if err != nil {
		return errors.Wrapf(err, "touch plan %s", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.Wrapf(ErrNotFound, "plan %s", id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlan(row scanner) (*plan.Plan, error) {
	var (
		p        plan.Plan
		days     string
		accessed int64
	)
	if err := row.Scan(&p.ID, &p.FileName, &p.OriginalFileName, &p.TotalPages, &p.CurrentDayIndex, &p.BlobKey, &days, &accessed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, errors.Wrap(err, "scan plan")
	}
	if err := json.Unmarshal([]byte(days), &p.Days); err != nil {
		return nil, errors.Wrapf(err, "decode days of plan %s", p.ID)
	}
	p.LastAccessed = time.UnixMilli(accessed)
	return &p, nil
}
