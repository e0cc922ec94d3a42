// Package publish sequences extraction, record building, linking and the
// git transaction into the two user-facing operations: publishing a dataset
// and publishing a workflow.
//
// Both fail on missing identifiers before any network or git activity, and
// record building and validation errors surface before the fork is touched.
package publish

import (
	"context"
	"errors"
	"time"

	"github.com/deepesdl/deep-code/internal/dataset"
	"github.com/deepesdl/deep-code/internal/gitpublish"
	"github.com/deepesdl/deep-code/internal/history"
	"github.com/deepesdl/deep-code/internal/linker"
	"github.com/deepesdl/deep-code/internal/log"
)

// branchTimeLayout is the timestamp suffix of dataset branches.
const branchTimeLayout = "20060102150405"

// Opener opens a dataset by id.
type Opener interface {
	Open(ctx context.Context, datasetID string) (*dataset.Dataset, error)
}

// Publisher runs the git transaction.
type Publisher interface {
	Publish(ctx context.Context, req gitpublish.Request) (*gitpublish.Result, error)
}

// Recorder stores publish attempts. *history.Ledger implements it.
type Recorder interface {
	Record(e history.Entry) error
}

// Result is the outcome of a successful publish.
type Result struct {
	URL    string
	Branch string
	Files  []string
}

func toGitFiles(files linker.Files) gitpublish.Files {
	out := make(gitpublish.Files, len(files))
	for path, doc := range files {
		out[path] = doc
	}
	return out
}

// recordAttempt writes a ledger entry for an attempt that reached the
// forge. Ledger failures are reported but never fail the publish.
func recordAttempt(l *log.Logger, rec Recorder, kind history.Kind, id, branch string, res *gitpublish.Result, err error) {
	if rec == nil {
		return
	}
	e := history.Entry{Kind: kind, ID: id, Branch: branch, Time: time.Now().UTC()}
	if res != nil {
		e.PRURL = res.URL
	}
	if err != nil {
		e.Error = err.Error()
		var pubErr *gitpublish.PublishError
		if errors.As(err, &pubErr) {
			e.FailedStep = string(pubErr.Step)
			e.Orphaned = pubErr.Step.OrphansBranch()
		}
	}
	if rerr := rec.Record(e); rerr != nil {
		l.Warn("failed to record publish history", "error", rerr)
	}
}

func loggerOr(ctx context.Context, l *log.Logger) *log.Logger {
	if l != nil {
		return l
	}
	return log.FromContext(ctx)
}
