// Package assetsync reconciles device inventory feeds into the TeamDynamix
// asset registry.
//
// A Syncer runs one pipeline per feed: the snapshot loader reads the feed
// and the registry, the planner decides what has to change, and the
// executor applies the plan one throttled mutation at a time.
package assetsync

import (
	"context"
	"fmt"

	"github.com/agentstation/assetsync/internal/config"
	"github.com/agentstation/assetsync/internal/executor"
	"github.com/agentstation/assetsync/internal/export"
	"github.com/agentstation/assetsync/internal/metrics"
	"github.com/agentstation/assetsync/internal/registry"
	"github.com/agentstation/assetsync/internal/snapshot"
	"github.com/agentstation/assetsync/internal/sources/casper"
	"github.com/agentstation/assetsync/internal/sources/sccm"
	"github.com/agentstation/assetsync/pkg/assets"
	"github.com/agentstation/assetsync/pkg/errors"
	"github.com/agentstation/assetsync/pkg/reconcile"
	"github.com/agentstation/assetsync/pkg/sources"
	"github.com/agentstation/assetsync/pkg/sync"
)

// Syncer reconciles feeds into the registry.
type Syncer interface {
	// Sync runs every selected feed and applies its plan, unless the
	// options ask for a dry run. A feed failure does not stop the feeds
	// after it; the returned error joins every feed error.
	Sync(ctx context.Context, opts ...sync.Option) ([]*sync.Result, error)

	// Plan loads and plans every selected feed without mutating anything.
	Plan(ctx context.Context, opts ...sync.Option) ([]*reconcile.Plan, error)

	// Discover lists feed vendors and models missing from the registry.
	Discover(ctx context.Context) (export.Discovery, error)

	// Export writes the discovery spreadsheets into dir.
	Export(ctx context.Context, dir string) ([]string, error)

	// Feeds returns the configured feeds.
	Feeds() []assets.Feed

	// Metrics returns the run collectors.
	Metrics() *metrics.Metrics

	// OnCreated registers a callback for new registry records
	OnCreated(CreatedHook)

	// OnUpdated registers a callback for field updates
	OnUpdated(UpdatedHook)

	// OnTransition registers a callback for status transitions
	OnTransition(TransitionHook)

	// OnModelAged registers a callback for product-model age updates
	OnModelAged(ModelAgedHook)

	// OnFailed registers a callback for failed mutations
	OnFailed(FailedHook)

	// Close releases feed connections.
	Close() error
}

// Registry is everything the pipeline needs from the registry client.
type Registry interface {
	snapshot.Registry
	executor.Registry
}

// feed is one configured source with its registry-side settings.
type feed struct {
	source   sources.Source
	reportID int
	tag      string
}

// syncer is the internal implementation of the Syncer interface
type syncer struct {
	settings *config.Settings
	registry Registry
	feeds    map[assets.Feed]feed
	sources  *sources.Sources
	metrics  *metrics.Metrics

	// Event hooks
	hooks *hooks
}

// New creates a Syncer from settings. The registry client and the feeds
// are built from settings unless options supply them; a feed whose section
// is not configured is left out.
func New(settings *config.Settings, opts ...Option) (Syncer, error) {
	if settings == nil {
		return nil, errors.NewConfigError("assetsync", "settings are required", nil)
	}

	o := &options{}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("applying options: %w", err)
		}
	}

	s := &syncer{
		settings: settings,
		registry: o.registry,
		feeds:    make(map[assets.Feed]feed),
		sources:  sources.NewSources(),
		metrics:  o.metrics,
		hooks:    newHooks(),
	}

	if s.registry == nil {
		reg, err := registry.New(settings.Registry)
		if err != nil {
			return nil, err
		}
		s.registry = reg
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	s.subscribeMetrics()

	for _, src := range o.sources {
		s.sources.Set(src)
	}
	if err := s.defaultSources(); err != nil {
		return nil, err
	}

	for _, f := range s.sources.Feeds() {
		src, _ := s.sources.Get(f)
		s.feeds[f] = s.feedFor(src)
	}
	return s, nil
}

// defaultSources builds the feeds settings configure and options did not
// supply.
func (s *syncer) defaultSources() error {
	if _, ok := s.sources.Get(assets.FeedCasper); !ok && s.settings.Casper.Client.URL != "" {
		c, err := casper.New(s.settings.Casper.Client)
		if err != nil {
			return err
		}
		s.sources.Set(c)
	}
	if _, ok := s.sources.Get(assets.FeedSCCM); !ok && s.settings.SCCM.Client.DSN != "" {
		c, err := sccm.New(s.settings.SCCM.Client)
		if err != nil {
			return err
		}
		s.sources.Set(c)
	}
	return nil
}

func (s *syncer) feedFor(src sources.Source) feed {
	switch src.Feed() {
	case assets.FeedCasper:
		return feed{source: src, reportID: s.settings.Casper.RegistryReportID, tag: s.settings.Casper.Tag}
	case assets.FeedSCCM:
		return feed{source: src, reportID: s.settings.SCCM.RegistryReportID, tag: s.settings.SCCM.Tag}
	}
	return feed{source: src}
}

// Feeds implements Syncer.
func (s *syncer) Feeds() []assets.Feed {
	return s.sources.Feeds()
}

// Metrics implements Syncer.
func (s *syncer) Metrics() *metrics.Metrics {
	return s.metrics
}

// Close implements Syncer.
func (s *syncer) Close() error {
	return s.sources.Cleanup()
}

func (s *syncer) lookup(f assets.Feed) (feed, error) {
	fd, ok := s.feeds[f]
	if !ok {
		return feed{}, errors.NewConfigError(f.String(), "feed is not configured", nil)
	}
	return fd, nil
}
