package instrument

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is matched by errors.Is for every unknown-instrument error.
var ErrNotFound = errors.New("instrument not found")

// NotFoundError reports a lookup of an id that is not in the catalog.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("instrument %q not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Violation describes a single catalog configuration problem.
type Violation struct {
	Path    string
	Message string
}

func (v Violation) Error() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// ConfigError is returned when a catalog fails validation. It lists every
// violation found, not just the first.
type ConfigError struct {
	Violations []Violation
}

func (e *ConfigError) Error() string {
	if len(e.Violations) == 1 {
		return "invalid instrument catalog: " + e.Violations[0].Error()
	}
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Error()
	}
	return fmt.Sprintf("invalid instrument catalog (%d problems): %s", len(e.Violations), strings.Join(msgs, "; "))
}
