package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/deepesdl/deep-code/internal/config"
	"github.com/deepesdl/deep-code/internal/git"
	"github.com/deepesdl/deep-code/internal/log"
	"github.com/deepesdl/deep-code/internal/output"
	"github.com/deepesdl/deep-code/internal/ui/styles"
)

var (
	// Global flags
	verbose bool
	quiet   bool

	// Shared state injected into commands
	cfg *config.Config
)

// Command group IDs for organizing help output
const (
	GroupPublish = "publish"
	GroupUtility = "utility"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "deep-code",
	Short: "Publish DeepESDL datasets and workflows to the Open Science Catalog",
	Long: `deep-code generates catalog metadata for DeepESDL datasets and workflows
and publishes it as a pull request against the Open Science Catalog
metadata repository.

Every publish forks the catalog repository, writes the new documents on a
fresh branch and opens a pull request for review.`,
	SilenceUsage:               true,
	SilenceErrors:              true,
	SuggestionsMinimumDistance: 2,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// The logger is created after flag parsing
		l := log.New(os.Stderr, verbose, quiet)
		ctx := log.WithLogger(cmd.Context(), l)
		cmd.SetContext(ctx)

		if cmd.GroupID != GroupPublish {
			return nil
		}
		if err := git.CheckGit(); err != nil {
			return err
		}
		if l.IsVerbose() {
			if v, err := git.Version(ctx); err == nil {
				l.Debug("using git", "version", v)
			}
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	loadedCfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	cfg = &loadedCfg

	if err := styles.Init(cfg.UI.Theme); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	// Create context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Primary output goes to stdout, downsampled to what it supports
	ctx = output.WithPrinter(ctx, output.Downsample(os.Stdout))

	rootCmd.SetContext(ctx)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, formatError(err))
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Run 'deep-code -h' for help")
		cancel()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show external commands and publish steps")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all log output")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	rootCmd.Version = versionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.AddGroup(
		&cobra.Group{ID: GroupPublish, Title: "Publish Commands:"},
		&cobra.Group{ID: GroupUtility, Title: "Utility Commands:"},
	)

	rootCmd.AddCommand(newPublishDatasetCmd())
	rootCmd.AddCommand(newPublishWorkflowCmd())

	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())
}
