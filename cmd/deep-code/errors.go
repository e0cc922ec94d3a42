package main

import (
	"errors"
	"fmt"

	"github.com/deepesdl/deep-code/internal/config"
	"github.com/deepesdl/deep-code/internal/dataset"
	"github.com/deepesdl/deep-code/internal/extract"
	"github.com/deepesdl/deep-code/internal/gitpublish"
	"github.com/deepesdl/deep-code/internal/record"
	"github.com/deepesdl/deep-code/internal/ui/styles"
)

// formatError renders err as one message naming the phase that failed.
func formatError(err error) string {
	return styles.ErrorStyle.Render("Error:") + " " + describeError(err)
}

func describeError(err error) string {
	var (
		cfgErr     *config.Error
		openErr    *dataset.OpenError
		extractErr *extract.ExtractionError
		validErr   *record.ValidationError
		pubErr     *gitpublish.PublishError
	)
	switch {
	case errors.As(err, &cfgErr):
		return fmt.Sprintf("configuration: %v", err)
	case errors.As(err, &validErr):
		return fmt.Sprintf("validation: %v", err)
	case errors.As(err, &openErr):
		return fmt.Sprintf("opening dataset: %v", err)
	case errors.As(err, &extractErr):
		return fmt.Sprintf("extracting metadata: %v", err)
	case errors.As(err, &pubErr):
		msg := fmt.Sprintf("publishing: %v", err)
		if pubErr.Step.OrphansBranch() {
			msg += fmt.Sprintf("\nBranch %q was pushed to your fork without a pull request; see 'deep-code history --orphaned'", pubErr.Branch)
		}
		return msg
	default:
		return err.Error()
	}
}
