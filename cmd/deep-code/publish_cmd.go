package main

import (
	"context"
	"os"
	"strconv"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/deepesdl/deep-code/internal/config"
	"github.com/deepesdl/deep-code/internal/dataset"
	"github.com/deepesdl/deep-code/internal/extract"
	"github.com/deepesdl/deep-code/internal/forge"
	"github.com/deepesdl/deep-code/internal/gitpublish"
	"github.com/deepesdl/deep-code/internal/history"
	"github.com/deepesdl/deep-code/internal/log"
	"github.com/deepesdl/deep-code/internal/output"
	"github.com/deepesdl/deep-code/internal/publish"
	"github.com/deepesdl/deep-code/internal/record"
	"github.com/deepesdl/deep-code/internal/ui/styles"
)

// publishFlags are shared by the publish commands.
type publishFlags struct {
	gitConfig string
	copy      bool
}

func (f *publishFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.gitConfig, "git-config", config.DefaultCredentialsFile, "YAML file with github-username and github-token")
	cmd.Flags().BoolVar(&f.copy, "copy", false, "Copy the pull request URL to the clipboard")
}

func newPublishDatasetCmd() *cobra.Command {
	var (
		flags         publishFlags
		datasetConfig string
	)

	cmd := &cobra.Command{
		Use:     "publish-dataset",
		Short:   "Publish a dataset as a product collection",
		GroupID: GroupPublish,
		Args:    cobra.NoArgs,
		Long: `Publish a dataset as a product collection.

Opens the Zarr dataset named by dataset_id, extracts its spatial and
temporal extent and variables, builds the product collection and one
catalog per variable, and opens a pull request adding them to the catalog.

The dataset is read from the public bucket first and, failing that, from
the bucket named by S3_USER_STORAGE_BUCKET using S3_USER_STORAGE_KEY and
S3_USER_STORAGE_SECRET.`,
		Example: `  deep-code publish-dataset --dataset-config dataset-config.yaml
  deep-code publish-dataset --git-config ~/.gitaccess --dataset-config ds.yaml --copy`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)

			creds, err := config.LoadCredentials(flags.gitConfig)
			if err != nil {
				return err
			}
			dsCfg, err := config.LoadDataset(datasetConfig)
			if err != nil {
				return err
			}

			reporter := newStepReporter("Publishing collection " + dsCfg.CollectionID)
			defer reporter.Stop()

			pub, err := newGitPublisher(cfg, creds, l, reporter.OnStep)
			if err != nil {
				return err
			}

			d := &publish.Dataset{
				Opener:    dataset.NewOpener(l, dataset.DefaultCandidates(cfg.Store, os.Getenv)...),
				Extractor: extract.New(l),
				Builder:   record.NewBuilder(cfg.Catalog.BaseURL, cfg.Catalog.ProjectID),
				Publisher: pub,
				Logger:    l,
			}
			if rec := ledger(l); rec != nil {
				d.History = rec
			}

			res, err := d.Publish(ctx, dsCfg)
			reporter.Stop()
			if err != nil {
				return err
			}
			return reportResult(ctx, res, flags.copy)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&datasetConfig, "dataset-config", "", "YAML file describing the dataset")
	_ = cmd.MarkFlagRequired("dataset-config")
	_ = cmd.MarkFlagFilename("dataset-config", "yaml", "yml")
	_ = cmd.MarkFlagFilename("git-config")

	return cmd
}

func newPublishWorkflowCmd() *cobra.Command {
	var (
		flags          publishFlags
		workflowConfig string
	)

	cmd := &cobra.Command{
		Use:     "publish-workflow",
		Short:   "Publish a workflow and its experiment record",
		GroupID: GroupPublish,
		Args:    cobra.NoArgs,
		Long: `Publish a workflow and its experiment record.

Builds the workflow and experiment OGC API records from the workflow
config, links them into the workflow and experiment indexes and opens a
pull request adding them to the catalog.`,
		Example: `  deep-code publish-workflow --workflow-config workflow-config.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)

			creds, err := config.LoadCredentials(flags.gitConfig)
			if err != nil {
				return err
			}
			wfCfg, err := config.LoadWorkflow(workflowConfig)
			if err != nil {
				return err
			}

			reporter := newStepReporter("Publishing workflow " + wfCfg.WorkflowID)
			defer reporter.Stop()

			pub, err := newGitPublisher(cfg, creds, l, reporter.OnStep)
			if err != nil {
				return err
			}

			w := &publish.Workflow{
				Builder:   record.NewBuilder(cfg.Catalog.BaseURL, cfg.Catalog.ProjectID),
				Publisher: pub,
				Logger:    l,
			}
			if rec := ledger(l); rec != nil {
				w.History = rec
			}

			res, err := w.Publish(ctx, wfCfg)
			reporter.Stop()
			if err != nil {
				return err
			}
			return reportResult(ctx, res, flags.copy)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&workflowConfig, "workflow-config", "", "YAML file describing the workflow")
	_ = cmd.MarkFlagRequired("workflow-config")
	_ = cmd.MarkFlagFilename("workflow-config", "yaml", "yml")
	_ = cmd.MarkFlagFilename("git-config")

	return cmd
}

// newGitPublisher wires the GitHub forge into a git transaction.
func newGitPublisher(cfg *config.Config, creds config.Credentials, l *log.Logger, onStep func(gitpublish.Step)) (*gitpublish.Publisher, error) {
	f, err := forge.NewGitHub(forge.GitHubOptions{
		APIURL:   cfg.GitHub.APIURL,
		Owner:    cfg.Catalog.RepoOwner,
		Repo:     cfg.Catalog.RepoName,
		Username: creds.Username,
		Token:    creds.Token,
	})
	if err != nil {
		return nil, err
	}
	return &gitpublish.Publisher{
		Forge:      f,
		WorkDir:    cfg.WorkDir,
		BaseBranch: cfg.Catalog.BaseBranch,
		Logger:     l,
		OnStep:     onStep,
	}, nil
}

// ledger opens the publish history. A missing home directory disables it.
func ledger(l *log.Logger) *history.Ledger {
	path, err := history.DefaultPath()
	if err != nil {
		l.Warn("publish history disabled", "error", err)
		return nil
	}
	return &history.Ledger{Path: path}
}

func reportResult(ctx context.Context, res *publish.Result, copyURL bool) error {
	out := output.FromContext(ctx)
	out.Success("Pull request created")
	out.Field("url", res.URL)
	out.Field("branch", res.Branch)
	out.Field("files", strconv.Itoa(len(res.Files)))
	for _, f := range res.Files {
		out.Printf("  %s %s\n", styles.Arrow, f)
	}

	if copyURL {
		if err := clipboard.WriteAll(res.URL); err != nil {
			log.FromContext(ctx).Warn("failed to copy to clipboard", "error", err)
		}
	}
	return nil
}
