// Package sqlite implements the storage interface using SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	sqlite3 "github.com/mattn/go-sqlite3" // also registers the sqlite3 driver

	"github.com/hopperhq/hopper/internal/storage"
	"github.com/hopperhq/hopper/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS work_items (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	description     TEXT NOT NULL DEFAULT '',
	type            TEXT NOT NULL,
	status          TEXT NOT NULL,
	priority        INTEGER NOT NULL DEFAULT 0,
	owner           TEXT NOT NULL DEFAULT '',
	external_id     TEXT NOT NULL DEFAULT '',
	tags            TEXT NOT NULL DEFAULT '',
	estimated_hours REAL,
	parent_id       TEXT REFERENCES work_items(id),
	sprint          TEXT NOT NULL DEFAULT '',
	created_at      TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS dependencies (
	dependent_id TEXT NOT NULL REFERENCES work_items(id),
	required_id  TEXT NOT NULL REFERENCES work_items(id),
	created_at   TIMESTAMP NOT NULL,
	PRIMARY KEY (dependent_id, required_id),
	CHECK (dependent_id != required_id)
);

CREATE INDEX IF NOT EXISTS idx_work_items_parent ON work_items(parent_id);
CREATE INDEX IF NOT EXISTS idx_dependencies_required ON dependencies(required_id);
`

// Store implements storage.Store on a SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// New opens (creating if needed) a SQLite-backed store at path.
// Pass ":memory:" for an ephemeral database.
func New(ctx context.Context, path string) (*Store, error) {
	connStr := path
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		connStr = fmt.Sprintf("file:%s?_fk=1&_busy_timeout=30000&_journal_mode=WAL", path)
	}

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer at a time; a single connection avoids
	// SQLITE_BUSY churn between our own connections.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// withBusyRetry runs fn, retrying with exponential backoff while the
// database reports SQLITE_BUSY / SQLITE_LOCKED (another process holds the
// write lock). Non-busy errors fail immediately.
func withBusyRetry(ctx context.Context, fn func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 50 * time.Millisecond
	policy.MaxElapsedTime = 5 * time.Second

	return backoff.Retry(func() error {
		err := fn()
		if err == nil {
			return nil
		}
		if isBusyError(err) {
			return err // retryable
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(policy, ctx))
}

func isBusyError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	return false
}

func isUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

func isForeignKeyConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}

// CreateWorkItem persists a new work item.
func (s *Store) CreateWorkItem(ctx context.Context, item *types.WorkItem) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("invalid work item: %w", err)
	}

	var hours interface{}
	if item.EstimatedHours != nil {
		hours = *item.EstimatedHours
	}
	var parent interface{}
	if item.ParentID != "" {
		parent = item.ParentID
	}

	err := withBusyRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO work_items (id, name, description, type, status, priority,
				owner, external_id, tags, estimated_hours, parent_id, sprint, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID, item.Name, item.Description, string(item.Type), string(item.Status),
			item.Priority, item.Owner, item.ExternalID, strings.Join(item.Tags, ","),
			hours, parent, item.Sprint, item.CreatedAt)
		return err
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: %s", storage.ErrDuplicateID, item.ID)
		}
		return fmt.Errorf("failed to create work item %s: %w", item.ID, err)
	}
	return nil
}

// SetParent records a parent link on an existing item.
func (s *Store) SetParent(ctx context.Context, id, parentID string) error {
	err := withBusyRetry(ctx, func() error {
		res, err := s.db.ExecContext(ctx,
			`UPDATE work_items SET parent_id = ? WHERE id = ?`, parentID, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return backoff.Permanent(fmt.Errorf("%w: %s", storage.ErrNotFound, id))
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return err
		}
		if isForeignKeyConstraintError(err) {
			return fmt.Errorf("%w: parent %s", storage.ErrNotFound, parentID)
		}
		return fmt.Errorf("failed to set parent of %s: %w", id, err)
	}
	return nil
}

// AddDependency records a requires edge. Duplicate inserts are a no-op
// (INSERT OR IGNORE on the edge primary key).
func (s *Store) AddDependency(ctx context.Context, dependentID, requiredID string) error {
	if dependentID == requiredID {
		return fmt.Errorf("%w: %s", storage.ErrSelfDependency, dependentID)
	}

	err := withBusyRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT OR IGNORE INTO dependencies (dependent_id, required_id, created_at)
			VALUES (?, ?, ?)`,
			dependentID, requiredID, time.Now().UTC())
		return err
	})
	if err != nil {
		if isForeignKeyConstraintError(err) {
			return fmt.Errorf("%w: %s -> %s", storage.ErrNotFound, dependentID, requiredID)
		}
		return fmt.Errorf("failed to add dependency %s -> %s: %w", dependentID, requiredID, err)
	}
	return nil
}

// GetWorkItem fetches one item by id.
func (s *Store) GetWorkItem(ctx context.Context, id string) (*types.WorkItem, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, type, status, priority, owner, external_id,
			tags, estimated_hours, parent_id, sprint, created_at
		FROM work_items WHERE id = ?`, id)
	item, err := scanWorkItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get work item %s: %w", id, err)
	}
	return item, nil
}

// ListWorkItems returns all items in creation order.
func (s *Store) ListWorkItems(ctx context.Context) ([]*types.WorkItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, type, status, priority, owner, external_id,
			tags, estimated_hours, parent_id, sprint, created_at
		FROM work_items ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to list work items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []*types.WorkItem
	for rows.Next() {
		item, err := scanWorkItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan work item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ListDependencies returns all edges in insertion order.
func (s *Store) ListDependencies(ctx context.Context) ([]*types.Dependency, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT dependent_id, required_id, created_at
		FROM dependencies ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to list dependencies: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var deps []*types.Dependency
	for rows.Next() {
		var d types.Dependency
		if err := rows.Scan(&d.DependentID, &d.RequiredID, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan dependency: %w", err)
		}
		deps = append(deps, &d)
	}
	return deps, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanWorkItem(r rowScanner) (*types.WorkItem, error) {
	var (
		item   types.WorkItem
		typ    string
		status string
		tags   string
		hours  sql.NullFloat64
		parent sql.NullString
	)
	err := r.Scan(&item.ID, &item.Name, &item.Description, &typ, &status,
		&item.Priority, &item.Owner, &item.ExternalID, &tags, &hours, &parent,
		&item.Sprint, &item.CreatedAt)
	if err != nil {
		return nil, err
	}
	item.Type = types.ItemType(typ)
	item.Status = types.Status(status)
	if tags != "" {
		item.Tags = strings.Split(tags, ",")
	}
	if hours.Valid {
		h := hours.Float64
		item.EstimatedHours = &h
	}
	if parent.Valid {
		item.ParentID = parent.String
	}
	return &item, nil
}
