package main

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/deepesdl/deep-code/internal/config"
	"github.com/deepesdl/deep-code/internal/dataset"
	"github.com/deepesdl/deep-code/internal/extract"
	"github.com/deepesdl/deep-code/internal/gitpublish"
	"github.com/deepesdl/deep-code/internal/record"
)

func TestDescribeError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantPrefix string
		wantHint   bool
	}{
		{
			name:       "config",
			err:        &config.Error{Source: ".gitaccess", Issues: []config.Issue{{Field: "github-token", Message: "is required"}}},
			wantPrefix: "configuration: ",
		},
		{
			name:       "validation",
			err:        &record.ValidationError{Code: record.MissingIdentifiers, Issues: []string{"dataset_id is required"}},
			wantPrefix: "validation: ",
		},
		{
			name:       "open",
			err:        &dataset.OpenError{DatasetID: "x.zarr", Tried: []string{"public"}, Last: errors.New("no such bucket")},
			wantPrefix: "opening dataset: ",
		},
		{
			name:       "extract",
			err:        fmt.Errorf("publish: %w", &extract.ExtractionError{Kind: extract.MissingCoordinates}),
			wantPrefix: "extracting metadata: ",
		},
		{
			name:       "push failure",
			err:        &gitpublish.PublishError{Step: gitpublish.StepPushed, Branch: "b", Err: errors.New("rejected")},
			wantPrefix: "publishing: ",
		},
		{
			name:       "pull request failure leaves branch",
			err:        &gitpublish.PublishError{Step: gitpublish.StepPROpened, Branch: "add-new-workflow-wf", Err: errors.New("422")},
			wantPrefix: "publishing: ",
			wantHint:   true,
		},
		{
			name:       "other",
			err:        errors.New("git executable not found"),
			wantPrefix: "git executable not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := describeError(tt.err)
			if !strings.HasPrefix(got, tt.wantPrefix) {
				t.Errorf("describeError() = %q, want prefix %q", got, tt.wantPrefix)
			}
			if hint := strings.Contains(got, "deep-code history --orphaned"); hint != tt.wantHint {
				t.Errorf("orphan hint present = %v, want %v in %q", hint, tt.wantHint, got)
			}
		})
	}
}

func TestNextStep(t *testing.T) {
	t.Parallel()

	tests := []struct {
		step   gitpublish.Step
		want   gitpublish.Step
		wantOK bool
	}{
		{gitpublish.StepUnforked, gitpublish.StepForked, true},
		{gitpublish.StepCommitted, gitpublish.StepPushed, true},
		{gitpublish.StepPROpened, gitpublish.StepCleanedUp, true},
		{gitpublish.StepCleanedUp, "", false},
		{gitpublish.Step("BOGUS"), "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.step), func(t *testing.T) {
			t.Parallel()
			got, ok := nextStep(tt.step)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("nextStep(%s) = %q, %v, want %q, %v", tt.step, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
