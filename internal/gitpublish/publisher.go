package gitpublish

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/google/uuid"

	"github.com/deepesdl/deep-code/internal/cmd"
	"github.com/deepesdl/deep-code/internal/forge"
	"github.com/deepesdl/deep-code/internal/git"
	"github.com/deepesdl/deep-code/internal/log"
	"github.com/deepesdl/deep-code/internal/storage"
)

// Files maps repository-relative slash paths to JSON-encodable content.
type Files map[string]any

// PrepareFunc computes more files from the freshly branched working copy.
// Its result is merged over Request.Files.
type PrepareFunc func(ctx context.Context, wc *WorkingCopy) (Files, error)

// Request describes one pull request.
type Request struct {
	Branch        string
	CommitMessage string
	Title         string
	Body          string
	Files         Files
	Prepare       PrepareFunc
}

// Result describes the opened pull request.
type Result struct {
	URL    string
	Number int
	Branch string
	Fork   string // owner/name
	Files  []string
}

// Publisher runs the fork-to-pull-request transaction.
type Publisher struct {
	Forge forge.Forge

	// WorkDir holds the per-call clone directories. It is created on demand.
	WorkDir string

	// BaseBranch is the upstream branch pull requests target. Empty means
	// the upstream default branch.
	BaseBranch string

	Logger *log.Logger

	// OnStep, if set, is called after every state transition.
	OnStep func(Step)
}

// Publish runs the transaction for req and returns the pull request.
// The local clone is removed before Publish returns, whatever the outcome.
func (p *Publisher) Publish(ctx context.Context, req Request) (*Result, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	l := p.Logger
	if l == nil {
		l = log.FromContext(ctx)
	}
	ctx = log.WithLogger(ctx, l)

	p.enter(l, StepUnforked)
	fail := func(step Step, err error) (*Result, error) {
		return nil, &PublishError{Step: step, Branch: req.Branch, Err: err}
	}

	fork, err := p.Forge.Fork(ctx)
	if err != nil {
		return fail(StepForked, err)
	}
	p.enter(l, StepForked, "fork", fork.Owner+"/"+fork.Name)

	if err := os.MkdirAll(p.WorkDir, 0o755); err != nil {
		return fail(StepCloned, err)
	}
	dir := filepath.Join(p.WorkDir, uuid.NewString())
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			l.Warn("failed to remove working copy", "dir", dir, "error", err)
			return
		}
		p.enter(l, StepCleanedUp, "dir", dir)
	}()

	if err := git.Clone(ctx, fork.CloneURL, dir); err != nil {
		return fail(StepCloned, err)
	}
	p.enter(l, StepCloned, "url", cmd.Redact(fork.CloneURL), "dir", dir)

	if err := git.CreateBranch(ctx, dir, req.Branch); err != nil {
		return fail(StepBranched, err)
	}
	p.enter(l, StepBranched, "branch", req.Branch)

	wc := &WorkingCopy{Dir: dir}
	files, err := p.collect(ctx, wc, req)
	if err != nil {
		return fail(StepFilesWritten, err)
	}
	paths := slices.Sorted(maps.Keys(files))
	if err := writeFiles(ctx, wc, files, paths); err != nil {
		return fail(StepFilesWritten, err)
	}
	p.enter(l, StepFilesWritten, "files", len(paths))

	if err := git.Commit(ctx, dir, req.CommitMessage, git.NoReplyIdentity(fork.Owner)); err != nil {
		return fail(StepCommitted, err)
	}
	p.enter(l, StepCommitted)

	if err := git.Push(ctx, dir, req.Branch); err != nil {
		return fail(StepPushed, err)
	}
	p.enter(l, StepPushed, "branch", req.Branch)

	pr, err := p.Forge.CreatePR(ctx, forge.CreatePRParams{
		Title: req.Title,
		Body:  req.Body,
		Base:  p.BaseBranch,
		Head:  fork.Owner + ":" + req.Branch,
	})
	if err != nil {
		return fail(StepPROpened, err)
	}
	p.enter(l, StepPROpened, "url", pr.URL)

	return &Result{
		URL:    pr.URL,
		Number: pr.Number,
		Branch: req.Branch,
		Fork:   fork.Owner + "/" + fork.Name,
		Files:  paths,
	}, nil
}

func (p *Publisher) enter(l *log.Logger, s Step, keyvals ...any) {
	l.Debug("publish: "+string(s), keyvals...)
	if p.OnStep != nil {
		p.OnStep(s)
	}
}

func (p *Publisher) collect(ctx context.Context, wc *WorkingCopy, req Request) (Files, error) {
	files := make(Files, len(req.Files))
	maps.Copy(files, req.Files)
	if req.Prepare != nil {
		more, err := req.Prepare(ctx, wc)
		if err != nil {
			return nil, err
		}
		maps.Copy(files, more)
	}
	if len(files) == 0 {
		return nil, errors.New("no files to publish")
	}
	return files, nil
}

func writeFiles(ctx context.Context, wc *WorkingCopy, files Files, paths []string) error {
	for _, rel := range paths {
		abs, err := wc.Path(rel)
		if err != nil {
			return err
		}
		if err := storage.WriteDocument(abs, files[rel]); err != nil {
			return fmt.Errorf("failed to write %s: %w", rel, err)
		}
	}
	return git.Add(ctx, wc.Dir, paths...)
}

func validateRequest(req Request) error {
	switch {
	case req.Branch == "":
		return errors.New("publish request has no branch name")
	case req.CommitMessage == "":
		return errors.New("publish request has no commit message")
	case req.Title == "":
		return errors.New("publish request has no pull request title")
	}
	return nil
}
