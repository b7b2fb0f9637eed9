package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"
	_ "github.com/go-sql-driver/mysql"
	"github.com/rogersnm/taskmanager/internal/config"
	"github.com/rogersnm/taskmanager/internal/id"
	"github.com/rogersnm/taskmanager/internal/model"
	_ "modernc.org/sqlite"
)

var createTableSQL = map[string]string{
	config.DriverSQLite: `CREATE TABLE IF NOT EXISTS tasks (
    id          TEXT    PRIMARY KEY,
    title       TEXT    NOT NULL,
    description TEXT    NOT NULL DEFAULT '',
    status      TEXT    NOT NULL,
    created_at  INTEGER NOT NULL,
    updated_at  INTEGER NOT NULL
)`,
	config.DriverMySQL: `CREATE TABLE IF NOT EXISTS tasks (
    id          VARCHAR(32) PRIMARY KEY,
    title       TEXT        NOT NULL,
    description TEXT        NOT NULL,
    status      VARCHAR(20) NOT NULL,
    created_at  BIGINT      NOT NULL,
    updated_at  BIGINT      NOT NULL
)`,
}

var createIndexSQL = map[string]string{
	config.DriverSQLite: `CREATE INDEX IF NOT EXISTS idx_tasks_created_at ON tasks(created_at)`,
	// MySQL lacks IF NOT EXISTS for CREATE INDEX; duplicates are ignored.
	config.DriverMySQL: `CREATE INDEX idx_tasks_created_at ON tasks(created_at)`,
}

const taskColumns = `id, title, description, status, created_at, updated_at`

// SQLStore keeps tasks in a relational table. Timestamps are stored as
// unix milliseconds so sqlite and mysql behave the same.
type SQLStore struct {
	db     *sql.DB
	driver string
	log    logr.Logger

	mu    sync.Mutex
	ready bool
}

// compile-time check
var _ Store = (*SQLStore)(nil)

// OpenSQL opens driver ("sqlite" or "mysql") at dsn. An unreachable
// database is logged; the schema is created on first successful use.
func OpenSQL(ctx context.Context, driver, dsn string, log logr.Logger) (*SQLStore, error) {
	if _, ok := createTableSQL[driver]; !ok {
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", driver, err)
	}
	if driver == config.DriverSQLite {
		db.SetMaxOpenConns(1)
	}
	return NewSQLStore(ctx, db, driver, log), nil
}

// NewSQLStore wraps an open *sql.DB.
func NewSQLStore(ctx context.Context, db *sql.DB, driver string, log logr.Logger) *SQLStore {
	s := &SQLStore{db: db, driver: driver, log: log}
	if err := s.ensureSchema(ctx); err != nil {
		log.Error(err, "database not ready, will retry on next request")
	} else {
		log.Info("database connected")
	}
	return s
}

func (s *SQLStore) ensureSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("connecting to %s: %w", s.driver, err)
	}
	if _, err := s.db.ExecContext(ctx, createTableSQL[s.driver]); err != nil {
		return fmt.Errorf("creating tasks table: %w", err)
	}
	if err := s.execIgnoreDupIndex(ctx, createIndexSQL[s.driver]); err != nil {
		return fmt.Errorf("creating index: %w", err)
	}
	s.ready = true
	return nil
}

func (s *SQLStore) execIgnoreDupIndex(ctx context.Context, ddl string) error {
	_, err := s.db.ExecContext(ctx, ddl)
	if err != nil {
		e := err.Error()
		if strings.Contains(e, "Duplicate key name") || strings.Contains(e, "1061") {
			return nil
		}
	}
	return err
}

func (s *SQLStore) Create(ctx context.Context, in model.TaskInput) (*model.Task, error) {
	t := model.NewTask(id.New(), in, now())
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, t.Description, string(t.Status), t.CreatedAt.UnixMilli(), t.UpdatedAt.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("inserting task: %w", err)
	}
	return t, nil
}

// Find filters status in SQL and keyword in Go, so that case folding
// matches the other backends for non-ASCII text.
func (s *SQLStore) Find(ctx context.Context, filter Filter) ([]model.Task, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	query := `SELECT ` + taskColumns + ` FROM tasks`
	var args []any
	if filter.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		if t.Matches(filter.Keyword, "") {
			tasks = append(tasks, t)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading tasks: %w", err)
	}
	return tasks, nil
}

func (s *SQLStore) FindByID(ctx context.Context, taskID string) (*model.Task, error) {
	if err := id.Validate(taskID); err != nil {
		return nil, invalidID(taskID)
	}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, taskID)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (s *SQLStore) UpdateByID(ctx context.Context, taskID string, upd model.TaskUpdate) (*model.Task, error) {
	current, err := s.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	t := current.Apply(upd, now())
	if err := t.Validate(); err != nil {
		return nil, err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE tasks SET title = ?, description = ?, status = ?, updated_at = ? WHERE id = ?`,
		t.Title, t.Description, string(t.Status), t.UpdatedAt.UnixMilli(), t.ID)
	if err != nil {
		return nil, fmt.Errorf("updating task: %w", err)
	}
	// MySQL reports zero affected rows when nothing changed, so a zero
	// count alone does not mean the row is gone.
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if _, err := s.FindByID(ctx, taskID); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (s *SQLStore) DeleteByID(ctx context.Context, taskID string) error {
	if err := id.Validate(taskID); err != nil {
		return invalidID(taskID)
	}
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, taskID)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) Close() error { return s.db.Close() }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(r rowScanner) (model.Task, error) {
	var (
		t                model.Task
		status           string
		created, updated int64
	)
	if err := r.Scan(&t.ID, &t.Title, &t.Description, &status, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return t, err
		}
		return t, fmt.Errorf("scanning task: %w", err)
	}
	t.Status = model.Status(status)
	t.CreatedAt = time.UnixMilli(created).UTC()
	t.UpdatedAt = time.UnixMilli(updated).UTC()
	return t, nil
}
