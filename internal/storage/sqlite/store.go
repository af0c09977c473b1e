// Package sqlite provides SQLite-backed persistence for the scenario
// archive and telemetry events.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sandtable-sim/sandtable/internal/errors"
	"github.com/sandtable-sim/sandtable/internal/platform/storage/sqlitemigrate"
	"github.com/sandtable-sim/sandtable/internal/storage"
	"github.com/sandtable-sim/sandtable/internal/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Store implements storage.ScenarioStore and storage.TelemetryStore over a
// single SQLite database.
type Store struct {
	sqlDB *sql.DB
}

// DB returns the underlying sql.DB instance.
func (s *Store) DB() *sql.DB {
	if s == nil {
		return nil
	}
	return s.sqlDB
}

// Open opens a SQLite store at the provided path and applies migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := sqlitemigrate.Apply(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveScenario upserts an archived scenario document.
func (s *Store) SaveScenario(ctx context.Context, record storage.ScenarioRecord) error {
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("scenario id is required")
	}
	if len(record.Document) == 0 {
		return fmt.Errorf("scenario document is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO scenarios (id, topic, model, frame_count, error_count, document, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    topic = excluded.topic,
    model = excluded.model,
    frame_count = excluded.frame_count,
    error_count = excluded.error_count,
    document = excluded.document
`,
		record.ID,
		record.Topic,
		record.Model,
		record.FrameCount,
		record.ErrorCount,
		record.Document,
		toMillis(record.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("save scenario: %w", err)
	}
	return nil
}

// GetScenario fetches one archived scenario by id.
func (s *Store) GetScenario(ctx context.Context, id string) (storage.ScenarioRecord, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, topic, model, frame_count, error_count, document, created_at
FROM scenarios
WHERE id = ?
`, id)

	record, err := scanScenarioRow(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return storage.ScenarioRecord{}, errors.Newf(errors.CodeNotFound, "scenario %s not found", id)
		}
		return storage.ScenarioRecord{}, fmt.Errorf("get scenario: %w", err)
	}
	return record, nil
}

// ListScenarios returns archived scenarios, newest first.
func (s *Store) ListScenarios(ctx context.Context, limit int) ([]storage.ScenarioRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, topic, model, frame_count, error_count, document, created_at
FROM scenarios
ORDER BY created_at DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	defer rows.Close()

	var records []storage.ScenarioRecord
	for rows.Next() {
		record, err := scanScenarioRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan scenario row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scenarios: %w", err)
	}
	return records, nil
}

func scanScenarioRow(scan func(dest ...any) error) (storage.ScenarioRecord, error) {
	var (
		record    storage.ScenarioRecord
		createdAt int64
	)
	if err := scan(
		&record.ID,
		&record.Topic,
		&record.Model,
		&record.FrameCount,
		&record.ErrorCount,
		&record.Document,
		&createdAt,
	); err != nil {
		return storage.ScenarioRecord{}, err
	}
	record.CreatedAt = fromMillis(createdAt)
	return record, nil
}

// AppendTelemetryEvent records one operational event.
func (s *Store) AppendTelemetryEvent(ctx context.Context, evt storage.TelemetryEvent) error {
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO telemetry_events (timestamp, severity, event, detail)
VALUES (?, ?, ?, ?)
`,
		toMillis(evt.Timestamp),
		evt.Severity,
		evt.Event,
		evt.Detail,
	)
	if err != nil {
		return fmt.Errorf("append telemetry event: %w", err)
	}
	return nil
}
