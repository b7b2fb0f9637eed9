package board

import (
	"context"
	"errors"
	"strings"

	"github.com/go-logr/logr"
	"github.com/rogersnm/taskmanager/internal/model"
	"github.com/rogersnm/taskmanager/internal/store"
)

var (
	ErrTitleRequired = errors.New("title is required")
	ErrNotEditing    = errors.New("no task is being edited")
	ErrDeclined      = errors.New("deletion cancelled")
)

// ConfirmFunc asks the user to approve a destructive action.
type ConfirmFunc func(prompt string) (bool, error)

// Board mirrors the filtered task list shown to the user and owns the
// drafts for adding and editing. Every successful mutation re-fetches
// the list.
type Board struct {
	Tasks []model.Task

	Title       string
	Description string

	Search string
	Filter model.Status

	EditingID   string
	DraftStatus model.Status

	Confirm ConfirmFunc

	store store.Store
	log   logr.Logger
}

func New(st store.Store, log logr.Logger) *Board {
	return &Board{
		Tasks:       []model.Task{},
		DraftStatus: model.StatusPending,
		store:       st,
		log:         log,
	}
}

// Refresh replaces Tasks with the store's current view. On failure Tasks
// is left as it was.
func (b *Board) Refresh(ctx context.Context) error {
	tasks, err := b.store.Find(ctx, store.Filter{Keyword: b.Search, Status: b.Filter})
	if err != nil {
		b.log.Error(err, "fetching tasks", "search", b.Search, "status", string(b.Filter))
		return err
	}
	b.Tasks = tasks
	return nil
}

func (b *Board) SetSearch(ctx context.Context, s string) error {
	b.Search = s
	return b.Refresh(ctx)
}

func (b *Board) SetFilter(ctx context.Context, status model.Status) error {
	b.Filter = status
	return b.Refresh(ctx)
}

// Add creates a pending task from the drafts and clears them on success.
func (b *Board) Add(ctx context.Context) (*model.Task, error) {
	if strings.TrimSpace(b.Title) == "" {
		return nil, ErrTitleRequired
	}
	pending := model.StatusPending
	t, err := b.store.Create(ctx, model.TaskInput{
		Title:       b.Title,
		Description: b.Description,
		Status:      &pending,
	})
	if err != nil {
		b.log.Error(err, "adding task", "title", b.Title)
		return nil, err
	}
	b.Title = ""
	b.Description = ""
	return t, b.Refresh(ctx)
}

// StartEdit puts one row into edit mode, replacing any row already being
// edited.
func (b *Board) StartEdit(t model.Task) {
	b.EditingID = t.ID
	b.DraftStatus = t.Status
}

func (b *Board) SetDraftStatus(s model.Status) {
	b.DraftStatus = s
}

// SaveEdit sends the draft status for the row in edit mode. On failure the
// row stays in edit mode with its draft intact.
func (b *Board) SaveEdit(ctx context.Context) (*model.Task, error) {
	if b.EditingID == "" {
		return nil, ErrNotEditing
	}
	status := b.DraftStatus
	t, err := b.store.UpdateByID(ctx, b.EditingID, model.TaskUpdate{Status: &status})
	if err != nil {
		b.log.Error(err, "updating task", "id", b.EditingID, "status", string(status))
		return nil, err
	}
	b.EditingID = ""
	b.DraftStatus = model.StatusPending
	return t, b.Refresh(ctx)
}

func (b *Board) CancelEdit() {
	b.EditingID = ""
	b.DraftStatus = model.StatusPending
}

// IsEditing reports whether the given row is in edit mode.
func (b *Board) IsEditing(taskID string) bool {
	return taskID != "" && b.EditingID == taskID
}

// Delete removes t after Confirm approves. Without a Confirm callback the
// deletion proceeds.
func (b *Board) Delete(ctx context.Context, t model.Task) error {
	if b.Confirm != nil {
		ok, err := b.Confirm("Are you sure you want to delete this task?")
		if err != nil {
			return err
		}
		if !ok {
			return ErrDeclined
		}
	}
	if err := b.store.DeleteByID(ctx, t.ID); err != nil {
		b.log.Error(err, "deleting task", "id", t.ID)
		return err
	}
	if b.EditingID == t.ID {
		b.CancelEdit()
	}
	return b.Refresh(ctx)
}

// Find returns the listed task with the given id.
func (b *Board) Find(taskID string) (model.Task, bool) {
	for _, t := range b.Tasks {
		if t.ID == taskID {
			return t, true
		}
	}
	return model.Task{}, false
}

// Color names used by StatusClass.
const (
	ColorOrange = "orange"
	ColorYellow = "yellow"
	ColorGreen  = "green"
	ColorGray   = "gray"
)

// StatusStyle is how a status is presented.
type StatusStyle struct {
	Color         string
	Strikethrough bool
}

func StatusClass(s model.Status) StatusStyle {
	switch s {
	case model.StatusPending:
		return StatusStyle{Color: ColorOrange}
	case model.StatusInProgress:
		return StatusStyle{Color: ColorYellow}
	case model.StatusCompleted:
		return StatusStyle{Color: ColorGreen, Strikethrough: true}
	default:
		return StatusStyle{Color: ColorGray}
	}
}
