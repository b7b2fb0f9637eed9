package model

import "fmt"

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Statuses lists the valid statuses in workflow order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

func ValidateStatus(s Status) error {
	for _, v := range Statuses {
		if s == v {
			return nil
		}
	}
	return fmt.Errorf("invalid status %q: must be one of pending, in-progress, completed", s)
}

// ParseStatus accepts an empty string as "no status" and rejects anything
// outside the enumerated set.
func ParseStatus(s string) (Status, error) {
	if s == "" {
		return "", nil
	}
	st := Status(s)
	if err := ValidateStatus(st); err != nil {
		return "", err
	}
	return st, nil
}
