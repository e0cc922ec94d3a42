package publish

import (
	"context"

	"github.com/deepesdl/deep-code/internal/config"
	"github.com/deepesdl/deep-code/internal/gitpublish"
	"github.com/deepesdl/deep-code/internal/history"
	"github.com/deepesdl/deep-code/internal/linker"
	"github.com/deepesdl/deep-code/internal/log"
	"github.com/deepesdl/deep-code/internal/record"
)

// Workflow publishes workflow and experiment records.
type Workflow struct {
	Builder   *record.Builder
	Publisher Publisher
	History   Recorder // optional
	Logger    *log.Logger
}

// Publish builds the workflow and experiment records for cfg, links them
// into their indexes and opens a pull request.
func (w *Workflow) Publish(ctx context.Context, cfg config.WorkflowConfig) (*Result, error) {
	l := loggerOr(ctx, w.Logger)

	if err := record.CheckWorkflowID(cfg.WorkflowID); err != nil {
		return nil, err
	}

	l.Println("Generating OGC API records...")
	wf, err := w.Builder.BuildWorkflowRecord(cfg)
	if err != nil {
		return nil, err
	}
	exp, err := w.Builder.BuildExperimentRecord(cfg)
	if err != nil {
		return nil, err
	}
	change := linker.WorkflowChange{Workflow: wf, Experiment: exp}

	branch := "add-new-workflow-" + wf.ID
	req := gitpublish.Request{
		Branch:        branch,
		CommitMessage: "Add new workflow: " + wf.ID,
		Title:         "Add new workflow",
		Body:          "This PR adds a new workflow and its experiment to the repository.",
		Prepare: func(_ context.Context, wc *gitpublish.WorkingCopy) (gitpublish.Files, error) {
			existing, err := wc.LoadExisting(linker.WorkflowPaths(change))
			if err != nil {
				return nil, err
			}
			files, err := linker.LinkWorkflow(change, existing)
			if err != nil {
				return nil, err
			}
			return toGitFiles(files), nil
		},
	}

	l.Println("Automating GitHub tasks...")
	res, err := w.Publisher.Publish(ctx, req)
	recordAttempt(l, w.History, history.KindWorkflow, wf.ID, branch, res, err)
	if err != nil {
		return nil, err
	}
	l.Debug("pull request created", "url", res.URL)
	return &Result{URL: res.URL, Branch: res.Branch, Files: res.Files}, nil
}
