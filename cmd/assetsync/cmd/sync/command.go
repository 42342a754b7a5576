// Package sync implements the sync command.
package sync

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/assetsync/internal/cmd/application"
	"github.com/agentstation/assetsync/internal/cmd/output"
	"github.com/agentstation/assetsync/pkg/assets"
	pkgsync "github.com/agentstation/assetsync/pkg/sync"
)

// FeedAll runs every configured feed.
const FeedAll = "all"

// Flags holds the sync command flags.
type Flags struct {
	DryRun       bool
	SkipModelAge bool
	Timeout      time.Duration
}

// NewCommand creates the sync command using app context.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:       "sync <casper|sccm|all>",
		GroupID:   "core",
		Short:     "Reconcile a device feed into the registry",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{assets.FeedCasper.String(), assets.FeedSCCM.String(), FeedAll},
		Long: `Sync loads a feed and the registry records tagged with it, plans the
changes that bring the registry in line with the feed, and applies them.

For every feed the run:
• creates registry records for devices the registry does not know
• updates fields that drifted (name, serial, hardware, owner, links)
• reactivates retired records the feed reports again
• deactivates records the feed no longer reports

The Casper run also fills in missing product-model ages. With "all", a
failed feed does not stop the next one; the command fails if any did.`,
		Example: `  assetsync sync casper                 # Reconcile Casper devices
  assetsync sync sccm --dry-run         # Preview SCCM changes
  assetsync sync all -o json            # Run both feeds, JSON results
  assetsync sync casper --skip-model-age`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Execute(cmd, app, args[0], flags)
		},
	}

	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "plan and print changes without calling the registry")
	cmd.Flags().BoolVar(&flags.SkipModelAge, "skip-model-age", false, "do not update product-model ages (casper only)")
	cmd.Flags().DurationVar(&flags.Timeout, "timeout", 0, "abort each feed after this long (0 disables)")

	return cmd
}

// Options converts the flags and feed argument into run options.
func Options(feed string, flags *Flags) []pkgsync.Option {
	opts := []pkgsync.Option{
		pkgsync.WithDryRun(flags.DryRun),
		pkgsync.WithSkipModelAge(flags.SkipModelAge),
		pkgsync.WithTimeout(flags.Timeout),
	}
	if feed != FeedAll {
		opts = append(opts, pkgsync.WithFeeds(assets.Feed(feed)))
	}
	return opts
}

// Execute runs one sync invocation and prints its plans or results. Results
// are printed even when a feed failed.
func Execute(cmd *cobra.Command, app application.Application, feed string, flags *Flags) error {
	ctx := cmd.Context()
	logger := app.Logger()
	format, err := output.Resolve(app.OutputFormat())
	if err != nil {
		return err
	}

	syncer, err := app.Syncer()
	if err != nil {
		return err
	}
	if syncer == nil {
		return fmt.Errorf("syncer is not available")
	}

	opts := Options(feed, flags)
	w := cmd.OutOrStdout()

	if flags.DryRun {
		plans, runErr := syncer.Plan(ctx, opts...)
		if len(plans) > 0 {
			if err := output.FormatPlans(w, format, plans); err != nil {
				return err
			}
		}
		logger.Info().Bool("dry_run", true).Msg("Dry run completed - no changes applied")
		return runErr
	}

	results, runErr := syncer.Sync(ctx, opts...)
	if len(results) > 0 {
		if err := output.FormatResults(w, format, results); err != nil {
			return err
		}
	}
	return runErr
}
