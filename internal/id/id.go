package id

import (
	"fmt"

	"github.com/rs/xid"
)

const idLen = 20

// New returns a globally unique, k-sortable task id. Ids generated later
// sort after earlier ones, which the stores use to break createdAt ties.
func New() string {
	return xid.New().String()
}

// Validate reports whether s is a well-formed id.
func Validate(s string) error {
	if len(s) != idLen {
		return fmt.Errorf("invalid id %q: must be %d chars", s, idLen)
	}
	if _, err := xid.FromString(s); err != nil {
		return fmt.Errorf("invalid id %q: %w", s, err)
	}
	return nil
}
