// Package snapshot loads everything one feed's run reads before planning:
// the feed's device records, the registry records tagged with the feed, and
// the registry lookup tables. The fetches are independent and run
// concurrently; any failure aborts the load.
package snapshot

import (
	"context"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/agentstation/assetsync/pkg/assets"
	"github.com/agentstation/assetsync/pkg/constants"
	"github.com/agentstation/assetsync/pkg/errors"
	"github.com/agentstation/assetsync/pkg/logging"
	"github.com/agentstation/assetsync/pkg/sources"
)

// Registry is the read side of the registry client.
type Registry interface {
	GetAssetsReport(ctx context.Context, reportID int) ([]assets.RegistryRecord, error)
	GetModelAgeReport(ctx context.Context, reportID int) ([]assets.ModelAgeRow, error)
	GetVendors(ctx context.Context) ([]assets.Vendor, error)
	GetProductModels(ctx context.Context) ([]assets.ProductModel, error)
	GetUsers(ctx context.Context) ([]assets.User, error)
}

// Option configures a Loader.
type Option func(*Loader)

// WithModelAgeReport also loads the product-model age report. Zero disables it.
func WithModelAgeReport(reportID int) Option {
	return func(l *Loader) {
		l.modelAgeReportID = reportID
	}
}

// WithConcurrency sets how many fetches run at once.
func WithConcurrency(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

// WithClock overrides the load timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Loader) {
		l.now = now
	}
}

// Loader builds snapshots for one feed.
type Loader struct {
	registry         Registry
	source           sources.Source
	reportID         int
	modelAgeReportID int
	concurrency      int
	now              func() time.Time
}

// New creates a loader that reads src and the registry report reportID,
// which lists the registry records tagged with src's feed.
func New(reg Registry, src sources.Source, reportID int, opts ...Option) *Loader {
	l := &Loader{
		registry:    reg,
		source:      src,
		reportID:    reportID,
		concurrency: constants.MaxConcurrentLoads,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches a complete snapshot. The returned error is a *errors.SyncError
// with stage "load".
func (l *Loader) Load(ctx context.Context) (*assets.Snapshot, error) {
	feed := l.source.Feed()
	logger := logging.Ctx(ctx).With().Str("stage", "load").Logger()
	start := time.Now()

	snap := &assets.Snapshot{Feed: feed}

	p := pool.New().
		WithMaxGoroutines(l.concurrency).
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError()

	// Each task writes a distinct field of snap; Wait orders the writes
	// before the reads below.
	p.Go(func(ctx context.Context) error {
		recs, err := l.source.Fetch(ctx)
		snap.Sources = recs
		return err
	})
	p.Go(func(ctx context.Context) error {
		recs, err := l.registry.GetAssetsReport(ctx, l.reportID)
		snap.Registry = recs
		return err
	})
	p.Go(func(ctx context.Context) error {
		vendors, err := l.registry.GetVendors(ctx)
		snap.Vendors = vendors
		return err
	})
	p.Go(func(ctx context.Context) error {
		models, err := l.registry.GetProductModels(ctx)
		snap.Models = models
		return err
	})
	p.Go(func(ctx context.Context) error {
		users, err := l.registry.GetUsers(ctx)
		snap.Users = users
		return err
	})
	if l.modelAgeReportID > 0 {
		p.Go(func(ctx context.Context) error {
			rows, err := l.registry.GetModelAgeReport(ctx, l.modelAgeReportID)
			snap.ModelAges = rows
			return err
		})
	}

	if err := p.Wait(); err != nil {
		logger.Error().Err(err).Msg("snapshot load failed")
		return nil, errors.NewSyncError(feed.String(), "load", err)
	}

	snap.LoadedAt = l.now()
	logger.Info().
		Int("sources", len(snap.Sources)).
		Int("registry", len(snap.Registry)).
		Int("vendors", len(snap.Vendors)).
		Int("models", len(snap.Models)).
		Int("users", len(snap.Users)).
		Int("model_ages", len(snap.ModelAges)).
		Dur("duration", time.Since(start)).
		Msg("snapshot loaded")

	return snap, nil
}
