package publish

import (
	"context"
	"fmt"

	"github.com/deepesdl/deep-code/internal/config"
	"github.com/deepesdl/deep-code/internal/extract"
	"github.com/deepesdl/deep-code/internal/gitpublish"
	"github.com/deepesdl/deep-code/internal/history"
	"github.com/deepesdl/deep-code/internal/linker"
	"github.com/deepesdl/deep-code/internal/log"
	"github.com/deepesdl/deep-code/internal/record"
	"github.com/deepesdl/deep-code/internal/stac"
)

// Dataset publishes product collections.
type Dataset struct {
	Opener    Opener
	Extractor *extract.Extractor
	Builder   *record.Builder
	Publisher Publisher
	History   Recorder // optional
	Logger    *log.Logger
}

// Branch returns the branch a dataset publish at the builder's current time
// pushes.
func (d *Dataset) Branch(collectionID string) string {
	return fmt.Sprintf("add-new-collection-%s-%s", collectionID, d.Builder.Time().Format(branchTimeLayout))
}

// Publish opens the dataset, builds its collection and variable catalogs,
// links them into the catalog and opens a pull request.
func (d *Dataset) Publish(ctx context.Context, cfg config.DatasetConfig) (*Result, error) {
	l := loggerOr(ctx, d.Logger)

	if err := record.CheckIdentifiers(cfg.DatasetID, cfg.CollectionID); err != nil {
		return nil, err
	}
	if err := config.ValidateStatus(cfg.Status); err != nil {
		return nil, err
	}

	l.Printf("Opening dataset %s...\n", cfg.DatasetID)
	ds, err := d.Opener.Open(ctx, cfg.DatasetID)
	if err != nil {
		return nil, err
	}

	extractor := d.Extractor
	if extractor == nil {
		extractor = extract.New(l)
	}
	md, err := extractor.Extract(ds)
	if err != nil {
		return nil, err
	}

	l.Println("Generating STAC collection...")
	collection, err := d.Builder.BuildCollection(record.DatasetInputFromConfig(cfg, md))
	if err != nil {
		return nil, err
	}
	change := linker.DatasetChange{
		Collection:       collection,
		VariableCatalogs: d.Builder.BuildVariableCatalogs(collection, md),
		ProjectID:        d.Builder.ProjectID,
	}

	branch := d.Branch(collection.ID)
	req := gitpublish.Request{
		Branch:        branch,
		CommitMessage: "Add new dataset collection: " + collection.ID,
		Title:         "Add new dataset collection",
		Body:          "This PR adds a new collection to the repository.",
		Prepare: func(_ context.Context, wc *gitpublish.WorkingCopy) (gitpublish.Files, error) {
			existing, err := wc.LoadExisting(linker.DatasetPaths(change))
			if err != nil {
				return nil, err
			}
			for _, cat := range change.VariableCatalogs {
				path := stac.DocumentPath(stac.SectionVariables, cat.ID, stac.FileCatalog)
				if _, ok := existing[path]; ok {
					l.Debug("variable catalog exists, adding product link", "variable", cat.ID)
				}
			}
			files, err := linker.LinkDataset(change, existing)
			if err != nil {
				return nil, err
			}
			return toGitFiles(files), nil
		},
	}

	l.Println("Automating GitHub tasks...")
	res, err := d.Publisher.Publish(ctx, req)
	recordAttempt(l, d.History, history.KindDataset, collection.ID, branch, res, err)
	if err != nil {
		return nil, err
	}
	l.Debug("pull request created", "url", res.URL)
	return &Result{URL: res.URL, Branch: res.Branch, Files: res.Files}, nil
}
