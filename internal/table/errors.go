package table

import (
	"errors"
	"fmt"
	"strings"
)

// Configuration failures. They stop the current analysis until the user
// changes the input or the column selection. Match them with errors.Is.
var (
	ErrDuplicateColumns = errors.New("duplicate column names")
	ErrNoUsableColumns  = errors.New("no usable columns found in the table")
	ErrSameColumn       = errors.New("the time column cannot also be the KPI column")
	ErrUnknownColumn    = errors.New("unknown column")
)

// ConfigError is a configuration failure carrying the offending column names.
type ConfigError struct {
	Kind  error
	Names []string
}

func (e *ConfigError) Error() string {
	if len(e.Names) == 0 {
		return e.Kind.Error()
	}
	quoted := make([]string, len(e.Names))
	for i, n := range e.Names {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	return fmt.Sprintf("%s: %s", e.Kind, strings.Join(quoted, ", "))
}

func (e *ConfigError) Unwrap() error {
	return e.Kind
}

// IsConfigError reports whether err is a configuration failure.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
