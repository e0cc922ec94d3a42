package config

import (
	"fmt"
	"strings"
)

// Issue is one problem found in a config document.
type Issue struct {
	Field   string // dotted path, e.g. "contact[0].name"; empty for document-level problems
	Message string
}

func (i Issue) String() string {
	if i.Field == "" {
		return i.Message
	}
	return i.Field + ": " + i.Message
}

// Error reports everything wrong with one config source. It is returned
// before any network activity, so callers can fix the file and retry.
type Error struct {
	Source string // file path or description of the input
	Issues []Issue
	Err    error // underlying read or parse failure, if any
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "invalid config %s", e.Source)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	switch len(e.Issues) {
	case 0:
	case 1:
		fmt.Fprintf(&b, ": %s", e.Issues[0])
	default:
		for _, issue := range e.Issues {
			fmt.Fprintf(&b, "\n  - %s", issue)
		}
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) addf(field, format string, args ...any) {
	e.Issues = append(e.Issues, Issue{Field: field, Message: fmt.Sprintf(format, args...)})
}

// orNil returns e when it carries any problem and nil otherwise.
func (e *Error) orNil() error {
	if e.Err == nil && len(e.Issues) == 0 {
		return nil
	}
	return e
}
