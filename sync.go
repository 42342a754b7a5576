package assetsync

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/agentstation/assetsync/internal/executor"
	"github.com/agentstation/assetsync/internal/export"
	"github.com/agentstation/assetsync/internal/snapshot"
	"github.com/agentstation/assetsync/pkg/assets"
	"github.com/agentstation/assetsync/pkg/errors"
	"github.com/agentstation/assetsync/pkg/logging"
	"github.com/agentstation/assetsync/pkg/reconcile"
	"github.com/agentstation/assetsync/pkg/sync"
)

// Sync implements Syncer.
func (s *syncer) Sync(ctx context.Context, opts ...sync.Option) ([]*sync.Result, error) {
	_, results, err := s.run(ctx, false, opts...)
	return results, err
}

// Plan implements Syncer.
func (s *syncer) Plan(ctx context.Context, opts ...sync.Option) ([]*reconcile.Plan, error) {
	plans, _, err := s.run(ctx, true, opts...)
	return plans, err
}

// run executes the pipeline for every selected feed. planOnly forces a dry
// run regardless of the options.
func (s *syncer) run(ctx context.Context, planOnly bool, opts ...sync.Option) ([]*reconcile.Plan, []*sync.Result, error) {
	// Step 0: Set context
	if ctx == nil {
		ctx = context.Background()
	}

	// Step 1: Parse options, starting from the configured pacing
	options := sync.Defaults()
	options.MutationInterval = s.settings.MutationInterval
	options.Apply(opts...)
	if planOnly {
		options.DryRun = true
	}
	if err := options.Validate(); err != nil {
		return nil, nil, err
	}

	// Step 2: Resolve the requested feeds
	feeds := options.Feeds
	if len(feeds) == 0 {
		feeds = s.Feeds()
	}
	if len(feeds) == 0 {
		return nil, nil, errors.NewConfigError("assetsync", "no feeds are configured", nil)
	}

	// Step 3: Run each feed; a failed feed does not stop the next one
	var (
		plans   []*reconcile.Plan
		results []*sync.Result
		errs    []error
	)
	for _, f := range feeds {
		plan, result, err := s.runFeed(ctx, f, options)
		if plan != nil {
			plans = append(plans, plan)
		}
		results = append(results, result)
		if err != nil {
			errs = append(errs, err)
		}
	}

	// Step 4: Push metrics for real runs
	if !options.DryRun {
		if err := s.metrics.Push(ctx, s.settings.Metrics.PushgatewayURL, s.settings.Metrics.Job); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("metrics push failed")
		}
	}

	return plans, results, errors.Join(errs...)
}

// runFeed loads, plans and, unless this is a dry run, applies one feed. The
// result is always returned, even on failure. The timeout, if any, starts
// with the feed, so an earlier feed never spends a later one's budget.
func (s *syncer) runFeed(ctx context.Context, f assets.Feed, options *sync.Options) (*reconcile.Plan, *sync.Result, error) {
	if options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
		defer cancel()
	}

	start := time.Now()
	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	ctx = logging.WithFeed(ctx, f.String())
	logger := logging.Ctx(ctx)

	result := sync.NewResult(f, runID)
	result.DryRun = options.DryRun

	finish := func(err error) error {
		result.Duration = time.Since(start)
		if !options.DryRun {
			s.metrics.ObserveRun(result, err, time.Now())
		}
		if err != nil {
			logger.Error().Err(err).Dur("duration", result.Duration).Msg("feed run failed")
		} else {
			logger.Info().Dur("duration", result.Duration).Msg(result.Summary())
		}
		return err
	}

	fd, err := s.lookup(f)
	if err != nil {
		return nil, result, finish(err)
	}

	planner, err := s.planner(f, fd.tag)
	if err != nil {
		return nil, result, finish(err)
	}

	var loaderOpts []snapshot.Option
	if planner.Policy().ModelAge && !options.SkipModelAge {
		loaderOpts = append(loaderOpts, snapshot.WithModelAgeReport(s.settings.ModelAgeReportID))
	}
	snap, err := snapshot.New(s.registry, fd.source, fd.reportID, loaderOpts...).Load(ctx)
	if err != nil {
		return nil, result, finish(err)
	}

	plan := planner.Plan(*snap)
	result.Observe(*snap, plan)
	logger.Info().
		Int("creates", len(plan.Creates)).
		Int("updates", len(plan.Updates)).
		Int("model_ages", len(plan.ModelAges)).
		Int("skipped", len(plan.Skipped)).
		Int("in_sync", plan.InSync).
		Bool("dry_run", options.DryRun).
		Msg("plan ready")

	if options.DryRun {
		return plan, result, finish(nil)
	}

	exec := executor.New(s.registry, planner,
		executor.WithInterval(options.MutationInterval),
		executor.WithEventHandler(s.hooks.trigger),
	)
	if err := exec.Apply(ctx, plan, result); err != nil {
		return plan, result, finish(errors.NewSyncError(f.String(), "apply", err))
	}
	return plan, result, finish(nil)
}

func (s *syncer) planner(f assets.Feed, tag string) (*reconcile.Planner, error) {
	policy, ok := reconcile.PolicyFor(f, tag)
	if !ok {
		return nil, errors.NewConfigError(f.String(), "no reconciliation policy for feed", nil)
	}
	return reconcile.NewPlanner(policy, reconcile.WithConfig(s.settings.Reconcile))
}

// discoveryOrder is the order feeds are folded into a discovery, so the
// spreadsheets list SCCM names first.
var discoveryOrder = []assets.Feed{assets.FeedSCCM, assets.FeedCasper}

// Discover implements Syncer.
func (s *syncer) Discover(ctx context.Context) (export.Discovery, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.Ctx(ctx).With().Str("stage", "discover").Logger()

	vendors, err := s.registry.GetVendors(ctx)
	if err != nil {
		return export.Discovery{}, errors.WrapResource("list", "vendors", "", err)
	}
	models, err := s.registry.GetProductModels(ctx)
	if err != nil {
		return export.Discovery{}, errors.WrapResource("list", "product models", "", err)
	}

	d := export.NewDiscoverer(vendors, models, s.settings.Casper.VendorName)
	for _, f := range discoveryOrder {
		fd, ok := s.feeds[f]
		if !ok {
			continue
		}
		recs, err := fd.source.Fetch(ctx)
		if err != nil {
			return export.Discovery{}, errors.NewSyncError(f.String(), "discover", err)
		}
		d.Add(recs)
		logger.Debug().Str("feed", f.String()).Int("records", len(recs)).Msg("feed scanned")
	}

	out := d.Result()
	logger.Info().
		Int("vendors", len(out.Vendors)).
		Int("models", len(out.Models)).
		Msg("discovery complete")
	return out, nil
}

// Export implements Syncer.
func (s *syncer) Export(ctx context.Context, dir string) ([]string, error) {
	d, err := s.Discover(ctx)
	if err != nil {
		return nil, err
	}
	return export.Write(dir, d)
}
