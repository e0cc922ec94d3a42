package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidDatasetStatuses lists the osc:status values the catalog accepts.
var ValidDatasetStatuses = []string{"ongoing", "completed", "planned", "operational", "closed"}

// ValidRecordTypes lists the record type values a workflow config may set.
var ValidRecordTypes = []string{"workflow", "experiment"}

// ValidThemeNames lists the accepted ui.theme values.
var ValidThemeNames = []string{"default", "none"}

// ValidateStatus validates a dataset status against ValidDatasetStatuses.
func ValidateStatus(status string) error {
	return validateEnum(status, "dataset_status", ValidDatasetStatuses)
}

// validateEnum checks that value (if non-empty) is one of the allowed values.
// Returns a formatted error mentioning the field name and allowed options.
func validateEnum(value, field string, allowed []string) error {
	if value == "" {
		return nil
	}
	if !slices.Contains(allowed, value) {
		return fmt.Errorf("invalid %s %q: must be %s", field, value, formatOptions(allowed))
	}
	return nil
}

// formatOptions formats a list of allowed values for error messages.
// E.g., ["a", "b", "c"] -> `"a", "b", or "c"`
func formatOptions(opts []string) string {
	quoted := make([]string, len(opts))
	for i, o := range opts {
		quoted[i] = fmt.Sprintf("%q", o)
	}
	if len(quoted) <= 2 {
		return strings.Join(quoted, " or ")
	}
	return strings.Join(quoted[:len(quoted)-1], ", ") + ", or " + quoted[len(quoted)-1]
}
