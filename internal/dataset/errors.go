package dataset

import (
	"errors"
	"fmt"
)

// ErrInvalidFilter is returned when a site filter is neither AllSites nor a site
// present in the dataset.
var ErrInvalidFilter = errors.New("invalid site filter")

// LoadError reports that the input table could not be read or lacks required columns.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading dataset %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// SchemaError reports a cell whose value violates the record schema.
// Line is the 1-based line (or spreadsheet row) in the input; zero when the
// record did not come from a file.
type SchemaError struct {
	Path   string
	Line   int
	Column string
	Value  string
	Reason string
}

func (e *SchemaError) Error() string {
	loc := e.Path
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", e.Path, e.Line)
	}
	if loc == "" {
		return fmt.Sprintf("column %q value %q: %s", e.Column, e.Value, e.Reason)
	}
	return fmt.Sprintf("%s: column %q value %q: %s", loc, e.Column, e.Value, e.Reason)
}
