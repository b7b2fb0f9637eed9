package model

import (
	"strings"
	"time"
)

type Task struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description" yaml:"-"`
	Status      Status    `json:"status" yaml:"status"`
	CreatedAt   time.Time `json:"createdAt" yaml:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" yaml:"updated_at"`
}

// TaskInput carries the fields accepted on create. A nil Status means the
// default (pending) applies.
type TaskInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Status      *Status `json:"status,omitempty"`
}

// TaskUpdate carries a partial update; nil fields are left unchanged.
type TaskUpdate struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *Status `json:"status,omitempty"`
}

func (u TaskUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Status == nil
}

// NewTask builds an unsaved task from input, applying the status default.
func NewTask(id string, in TaskInput, now time.Time) *Task {
	status := StatusPending
	if in.Status != nil {
		status = *in.Status
	}
	return &Task{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Apply merges the non-nil fields of upd into a copy of t and stamps
// UpdatedAt. The receiver is not modified.
func (t Task) Apply(upd TaskUpdate, now time.Time) *Task {
	if upd.Title != nil {
		t.Title = *upd.Title
	}
	if upd.Description != nil {
		t.Description = *upd.Description
	}
	if upd.Status != nil {
		t.Status = *upd.Status
	}
	t.UpdatedAt = now
	return &t
}

// Validate checks the invariants every persisted task must hold. It returns
// nil or a *ValidationError listing each failing field.
func (t *Task) Validate() error {
	var verr ValidationError
	if t.ID == "" {
		verr.Add("id", "task id is required")
	}
	if strings.TrimSpace(t.Title) == "" {
		verr.Add("title", "title is required")
	}
	if err := ValidateStatus(t.Status); err != nil {
		verr.Add("status", err.Error())
	}
	return verr.OrNil()
}

// Matches reports whether the task satisfies a keyword (case-insensitive
// substring of title or description) and an optional exact status.
func (t *Task) Matches(keyword string, status Status) bool {
	if status != "" && t.Status != status {
		return false
	}
	if keyword == "" {
		return true
	}
	q := strings.ToLower(keyword)
	return strings.Contains(strings.ToLower(t.Title), q) ||
		strings.Contains(strings.ToLower(t.Description), q)
}
