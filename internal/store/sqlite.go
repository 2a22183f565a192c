package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nvandessel/neuropulse/internal/models"
)

// timeLayout is fixed-width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// ErrRunNotFound is returned when a run id (or any run at all) is missing.
var ErrRunNotFound = errors.New("run not found")

// Run describes one stored generation run.
type Run struct {
	ID        string    `json:"id"`
	Seed      uint64    `json:"seed"`
	Samples   int       `json:"samples"`
	UserPool  int       `json:"user_pool"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
}

// SQLiteStore keeps runs and their sessions in a SQLite database.
type SQLiteStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	dbPath string
}

// Open opens or creates the database at path and initializes the schema.
func Open(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite works best with single writer

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteStore{db: db, dbPath: path}, nil
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

// DB exposes the underlying handle for maintenance commands and tests.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun stores run and its records in one transaction. ID, Samples,
// Checksum and CreatedAt are assigned when empty; the completed Run is
// returned.
func (s *SQLiteStore) SaveRun(ctx context.Context, run Run, records []models.SessionRecord) (Run, error) {
	payload, err := EncodePayload(records)
	if err != nil {
		return Run{}, err
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	run.CreatedAt = run.CreatedAt.UTC().Round(0)
	run.Samples = len(records)
	run.Checksum = Checksum(payload)

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, seed, samples, user_pool, checksum, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, int64(run.Seed), run.Samples, run.UserPool, run.Checksum,
		run.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return Run{}, fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sessions (
			run_id, idx, user_id, session_duration, unlock_count, app_category,
			notif_count, notif_response, app_switch_count, time_of_day,
			consecutive_same_app, binge_flag, scrolls_per_minute, unlock_frequency,
			dopamine_spike_flag, addiction_flag, regime, dopamine_probability, addiction_score
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return Run{}, fmt.Errorf("failed to prepare session insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		_, err := stmt.ExecContext(ctx,
			run.ID, i, r.UserID, r.SessionDurationMs, r.UnlockCount, int(r.AppCategory),
			r.NotifCount, r.NotifResponseLevel, r.AppSwitchCount, r.TimeOfDay,
			r.ConsecutiveMinutes, r.BingeFlag, r.ScrollsPerMinute, r.UnlockFrequency,
			r.DopamineSpike, int(r.AddictionLevel), string(r.Regime), r.DopamineProbability, r.AddictionScore)
		if err != nil {
			return Run{}, fmt.Errorf("failed to insert session %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("failed to commit run: %w", err)
	}
	return run, nil
}

// GetRun returns the metadata of one run.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, seed, samples, user_pool, checksum, created_at
		FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

// LoadRun returns a run and its records in generation order.
func (s *SQLiteStore) LoadRun(ctx context.Context, id string) (Run, []models.SessionRecord, error) {
	run, err := s.GetRun(ctx, id)
	if err != nil {
		return Run{}, nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, session_duration, unlock_count, app_category,
			notif_count, notif_response, app_switch_count, time_of_day,
			consecutive_same_app, binge_flag, scrolls_per_minute, unlock_frequency,
			dopamine_spike_flag, addiction_flag, regime, dopamine_probability, addiction_score
		FROM sessions WHERE run_id = ? ORDER BY idx`, id)
	if err != nil {
		return Run{}, nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	records := make([]models.SessionRecord, 0, run.Samples)
	for rows.Next() {
		var (
			r               models.SessionRecord
			category, level int
			binge, spike    bool
			regime          string
		)
		if err := rows.Scan(
			&r.UserID, &r.SessionDurationMs, &r.UnlockCount, &category,
			&r.NotifCount, &r.NotifResponseLevel, &r.AppSwitchCount, &r.TimeOfDay,
			&r.ConsecutiveMinutes, &binge, &r.ScrollsPerMinute, &r.UnlockFrequency,
			&spike, &level, &regime, &r.DopamineProbability, &r.AddictionScore,
		); err != nil {
			return Run{}, nil, fmt.Errorf("failed to scan session %d: %w", len(records), err)
		}
		r.AppCategory = models.Category(category)
		r.AddictionLevel = models.AddictionLevel(level)
		r.BingeFlag = binge
		r.DopamineSpike = spike
		r.Regime = models.Regime(regime)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return Run{}, nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}
	if len(records) != run.Samples {
		return Run{}, nil, fmt.Errorf("run %s declares %d sessions, found %d", id, run.Samples, len(records))
	}
	return run, records, nil
}

// ListRuns returns every run, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seed, samples, user_pool, checksum, created_at
		FROM runs ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// LatestRun returns the most recently created run.
func (s *SQLiteStore) LatestRun(ctx context.Context) (Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, seed, samples, user_pool, checksum, created_at
		FROM runs ORDER BY created_at DESC, rowid DESC LIMIT 1`)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	return run, err
}

// DeleteRun removes a run and its sessions.
func (s *SQLiteStore) DeleteRun(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		run       Run
		seed      int64
		createdAt string
	)
	if err := sc.Scan(&run.ID, &seed, &run.Samples, &run.UserPool, &run.Checksum, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("failed to scan run: %w", err)
	}
	run.Seed = uint64(seed)

	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return Run{}, fmt.Errorf("failed to parse created_at %q: %w", createdAt, err)
	}
	run.CreatedAt = t
	return run, nil
}
