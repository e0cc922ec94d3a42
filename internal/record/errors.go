package record

import (
	"fmt"
	"strings"
)

// Code classifies a validation failure.
type Code int

const (
	// MissingIdentifiers means a required id was not supplied. It is
	// reported before any dataset or network access.
	MissingIdentifiers Code = iota + 1
	// InvalidRecord means a built record does not satisfy the catalog
	// extension rules.
	InvalidRecord
	// InvalidIdentifiers means an id would escape its document directory.
	InvalidIdentifiers
)

func (c Code) String() string {
	switch c {
	case MissingIdentifiers:
		return "missing identifiers"
	case InvalidRecord:
		return "invalid record"
	case InvalidIdentifiers:
		return "invalid identifiers"
	}
	return "unknown"
}

// ValidationError reports a record that cannot be published.
type ValidationError struct {
	Code   Code
	Record string // id of the offending record, if known
	Issues []string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(e.Code.String())
	if e.Record != "" {
		fmt.Fprintf(&b, " %s", e.Record)
	}
	if len(e.Issues) > 0 {
		fmt.Fprintf(&b, ": %s", strings.Join(e.Issues, "; "))
	}
	return b.String()
}

// Is matches any *ValidationError with the same code.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Code == e.Code
}

// CheckIdentifiers reports a MissingIdentifiers error unless both the
// dataset id and the collection id are set, and an InvalidIdentifiers error
// for a collection id that is not a single path segment.
func CheckIdentifiers(datasetID, collectionID string) error {
	var issues []string
	if strings.TrimSpace(datasetID) == "" {
		issues = append(issues, "dataset_id is required")
	}
	if strings.TrimSpace(collectionID) == "" {
		issues = append(issues, "collection_id is required")
	}
	if len(issues) > 0 {
		return &ValidationError{Code: MissingIdentifiers, Issues: issues}
	}
	if issue := segmentIssue("collection_id", collectionID); issue != "" {
		return &ValidationError{Code: InvalidIdentifiers, Record: collectionID, Issues: []string{issue}}
	}
	return nil
}

// CheckWorkflowID reports a MissingIdentifiers error for an empty workflow
// id and an InvalidIdentifiers error for one that is not a single path
// segment.
func CheckWorkflowID(id string) error {
	if strings.TrimSpace(id) == "" {
		return &ValidationError{Code: MissingIdentifiers, Issues: []string{"workflow_id is required"}}
	}
	if issue := segmentIssue("workflow_id", id); issue != "" {
		return &ValidationError{Code: InvalidIdentifiers, Record: id, Issues: []string{issue}}
	}
	return nil
}

// segmentIssue describes why id cannot name a directory under a catalog
// section, or returns "".
func segmentIssue(field, id string) string {
	if strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return fmt.Sprintf("%s %q must not contain '/', '\\' or '..'", field, id)
	}
	return ""
}
