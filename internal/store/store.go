package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-logr/logr"
	"github.com/rogersnm/taskmanager/internal/config"
	"github.com/rogersnm/taskmanager/internal/model"
)

// Store defines the task persistence operations. FileStore, SQLStore and
// MongoStore implement it locally; client.Client implements it over HTTP.
type Store interface {
	Create(ctx context.Context, in model.TaskInput) (*model.Task, error)
	Find(ctx context.Context, filter Filter) ([]model.Task, error)
	FindByID(ctx context.Context, taskID string) (*model.Task, error)
	UpdateByID(ctx context.Context, taskID string, upd model.TaskUpdate) (*model.Task, error)
	DeleteByID(ctx context.Context, taskID string) error
	Close() error
}

// Filter narrows Find. Zero values match everything.
type Filter struct {
	Keyword string
	Status  model.Status
}

var (
	ErrNotFound = errors.New("task not found")

	// ErrInvalidID is returned for ids the backend could never have issued.
	// It matches ErrNotFound under errors.Is.
	ErrInvalidID = &invalidIDError{}
)

type invalidIDError struct{ id string }

func (e *invalidIDError) Error() string {
	if e.id == "" {
		return "invalid task id"
	}
	return fmt.Sprintf("invalid task id %q", e.id)
}

func (e *invalidIDError) Is(target error) bool {
	if target == ErrNotFound {
		return true
	}
	_, ok := target.(*invalidIDError)
	return ok
}

func invalidID(taskID string) error {
	return &invalidIDError{id: taskID}
}

// Open returns the backend selected by cfg. Connection problems with
// network backends are logged, not returned: the store retries on the next
// call so the service can start before its database.
func Open(ctx context.Context, cfg config.StoreConfig, log logr.Logger) (Store, error) {
	log = log.WithValues("driver", cfg.Driver)
	switch cfg.Driver {
	case config.DriverFile:
		return NewFileStore(cfg.DSN, log)
	case config.DriverSQLite, config.DriverMySQL:
		return OpenSQL(ctx, cfg.Driver, cfg.DSN, log)
	case config.DriverMongo:
		return OpenMongo(ctx, cfg.DSN, cfg.Database, log)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// sortNewestFirst orders by createdAt descending, then id descending.
func sortNewestFirst(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		}
		return tasks[i].ID > tasks[j].ID
	})
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
