package storage

import (
	"fmt"
	"strings"
)

// MissingColumnsError is returned when an input table lacks required columns.
// Loading cannot proceed past it.
type MissingColumnsError struct {
	Source  string
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%s: missing required columns: %s", e.Source, strings.Join(e.Columns, ", "))
}
