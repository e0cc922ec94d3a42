package main

import (
	"os"
	"slices"

	"github.com/deepesdl/deep-code/internal/gitpublish"
	"github.com/deepesdl/deep-code/internal/ui/progress"
)

// stepReporter turns publish transitions into progress output. The reporter
// is started on the first transition so extraction logs are not drawn over.
type stepReporter struct {
	title    string
	reporter progress.Reporter
}

func newStepReporter(title string) *stepReporter {
	return &stepReporter{title: title}
}

// OnStep is passed to gitpublish.Publisher.
func (r *stepReporter) OnStep(step gitpublish.Step) {
	if quiet {
		return
	}
	if r.reporter == nil {
		if verbose {
			// Debug lines would interleave with a spinner
			r.reporter = progress.NewLines(os.Stderr, r.title)
		} else {
			r.reporter = progress.New(os.Stderr, r.title)
		}
	}
	if step != gitpublish.StepUnforked && step != gitpublish.StepCleanedUp {
		r.reporter.Done(step.Description())
	}
	if next, ok := nextStep(step); ok && next != gitpublish.StepCleanedUp {
		r.reporter.Update(next.Description())
	}
}

// Stop ends the reporter. Safe to call more than once.
func (r *stepReporter) Stop() {
	if r.reporter != nil {
		r.reporter.Stop()
	}
}

func nextStep(step gitpublish.Step) (gitpublish.Step, bool) {
	i := slices.Index(gitpublish.Steps, step)
	if i < 0 || i+1 >= len(gitpublish.Steps) {
		return "", false
	}
	return gitpublish.Steps[i+1], true
}
