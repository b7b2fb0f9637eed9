package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
	"github.com/rogersnm/taskmanager/internal/id"
	"github.com/rogersnm/taskmanager/internal/model"
)

// FileStore keeps one markdown document per task in Dir.
type FileStore struct {
	Dir string
	log logr.Logger
}

// compile-time check
var _ Store = (*FileStore)(nil)

// NewFileStore returns a store rooted at dir. A directory that cannot be
// created is logged; operations report the error until it is fixed.
func NewFileStore(dir string, log logr.Logger) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("file store directory is required")
	}
	s := &FileStore{Dir: dir, log: log}
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Error(err, "creating task directory", "dir", dir)
	}
	return s, nil
}

func (s *FileStore) path(taskID string) string {
	return filepath.Join(s.Dir, taskID+".md")
}

func (s *FileStore) Create(ctx context.Context, in model.TaskInput) (*model.Task, error) {
	t := model.NewTask(id.New(), in, now())
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := s.write(t); err != nil {
		return nil, fmt.Errorf("writing task: %w", err)
	}
	return t, nil
}

func (s *FileStore) Find(ctx context.Context, filter Filter) ([]model.Task, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.Dir, err)
	}

	tasks := []model.Task{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		t, err := s.read(filepath.Join(s.Dir, e.Name()))
		if err == nil {
			err = t.Validate()
		}
		if err != nil {
			s.log.V(1).Info("skipping unreadable task", "file", e.Name(), "error", err.Error())
			continue
		}
		if t.Matches(filter.Keyword, filter.Status) {
			tasks = append(tasks, t)
		}
	}
	sortNewestFirst(tasks)
	return tasks, nil
}

func (s *FileStore) FindByID(ctx context.Context, taskID string) (*model.Task, error) {
	if err := id.Validate(taskID); err != nil {
		return nil, invalidID(taskID)
	}
	t, err := s.read(s.path(taskID))
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *FileStore) UpdateByID(ctx context.Context, taskID string, upd model.TaskUpdate) (*model.Task, error) {
	current, err := s.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	t := current.Apply(upd, now())
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := s.write(t); err != nil {
		return nil, fmt.Errorf("writing task: %w", err)
	}
	return t, nil
}

func (s *FileStore) DeleteByID(ctx context.Context, taskID string) error {
	if err := id.Validate(taskID); err != nil {
		return invalidID(taskID)
	}
	if err := os.Remove(s.path(taskID)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("removing task: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) read(path string) (model.Task, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.Task{}, ErrNotFound
		}
		return model.Task{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return decodeTask(f)
}

// write replaces the task document atomically via a temp file and rename.
func (s *FileStore) write(t *model.Task) error {
	data, err := encodeTask(t)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", s.Dir, err)
	}
	tmp, err := os.CreateTemp(s.Dir, ".tmp-"+t.ID+"-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path(t.ID))
}
