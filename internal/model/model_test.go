package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask_Validate_ValidStatuses(t *testing.T) {
	for _, s := range Statuses {
		task := &Task{ID: "abc", Title: "Test", Status: s}
		assert.NoError(t, task.Validate())
	}
}

func TestTask_Validate_MissingTitle(t *testing.T) {
	task := &Task{ID: "abc", Status: StatusPending}
	err := task.Validate()
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.Has("title"))
	assert.False(t, verr.Has("status"))
}

func TestTask_Validate_BlankTitle(t *testing.T) {
	task := &Task{ID: "abc", Title: "   ", Status: StatusPending}
	assert.True(t, IsValidation(task.Validate()))
}

func TestTask_Validate_InvalidStatus(t *testing.T) {
	task := &Task{ID: "abc", Title: "Test", Status: "done"}
	err := task.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid status "done"`)
}

func TestTask_Validate_EmptyStatus(t *testing.T) {
	task := &Task{ID: "abc", Title: "Test"}
	assert.Error(t, task.Validate())
}

func TestTask_Validate_ReportsAllFields(t *testing.T) {
	task := &Task{Status: "nope"}
	var verr *ValidationError
	require.True(t, errors.As(task.Validate(), &verr))
	assert.Len(t, verr.Fields, 3)
	assert.Contains(t, verr.Error(), "task validation failed: ")
}

func TestNewTask_DefaultsStatus(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	task := NewTask("abc", TaskInput{Title: "Buy milk"}, now)
	assert.Equal(t, StatusPending, task.Status)
	assert.Equal(t, now, task.CreatedAt)
	assert.Equal(t, now, task.UpdatedAt)
}

func TestNewTask_ExplicitStatus(t *testing.T) {
	s := StatusCompleted
	task := NewTask("abc", TaskInput{Title: "x", Status: &s}, time.Now())
	assert.Equal(t, StatusCompleted, task.Status)
}

func TestTask_Apply_Partial(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	orig := Task{ID: "abc", Title: "T", Description: "D", Status: StatusPending, CreatedAt: created, UpdatedAt: created}

	s := StatusCompleted
	later := created.Add(time.Minute)
	got := orig.Apply(TaskUpdate{Status: &s}, later)

	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, "T", got.Title)
	assert.Equal(t, "D", got.Description)
	assert.Equal(t, created, got.CreatedAt)
	assert.Equal(t, later, got.UpdatedAt)
	assert.Equal(t, StatusPending, orig.Status, "receiver must not change")
}

func TestTask_Matches(t *testing.T) {
	task := &Task{Title: "Buy Milk", Description: "from the corner shop", Status: StatusPending}

	assert.True(t, task.Matches("", ""))
	assert.True(t, task.Matches("milk", ""))
	assert.True(t, task.Matches("CORNER", ""))
	assert.True(t, task.Matches("milk", StatusPending))
	assert.False(t, task.Matches("milk", StatusCompleted))
	assert.False(t, task.Matches("bread", ""))
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("in-progress")
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, s)

	s, err = ParseStatus("")
	require.NoError(t, err)
	assert.Equal(t, Status(""), s)

	_, err = ParseStatus("in_progress")
	assert.Error(t, err)
}
