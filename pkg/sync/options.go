// Package sync provides options and results for one reconciliation run of a source feed.
package sync

import (
	"fmt"
	"time"

	"github.com/agentstation/assetsync/pkg/assets"
	"github.com/agentstation/assetsync/pkg/constants"
	"github.com/agentstation/assetsync/pkg/errors"
)

// Options controls a single feed run in Syncer.Sync().
type Options struct {
	// Orchestration control
	DryRun  bool          // Plan and report without calling any mutating endpoint
	Timeout time.Duration // Deadline for each feed, starting when that feed starts (0 means none)

	// Mutation pacing
	MutationInterval time.Duration // Delay enforced before every mutating registry call

	// Feature control
	SkipModelAge bool // Do not plan or apply product-model age updates

	// Feed selection
	Feeds []assets.Feed // Which feeds to run (empty means all)
}

// Apply applies the given options to the sync options.
func (s *Options) Apply(opts ...Option) *Options {
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Defaults returns the default sync options.
func Defaults() *Options {
	return &Options{
		DryRun:           false,
		Timeout:          0,
		MutationInterval: constants.DefaultMutationInterval,
		SkipModelAge:     false,
		Feeds:            nil,
	}
}

// Option is a function that configures sync Options.
type Option func(*Options)

// Validate checks if the sync options are valid.
func (s *Options) Validate() error {
	if s.Timeout < 0 {
		return &errors.ValidationError{
			Field:   "Timeout",
			Value:   s.Timeout,
			Message: "timeout must be non-negative",
		}
	}

	if s.MutationInterval < 0 {
		return &errors.ValidationError{
			Field:   "MutationInterval",
			Value:   s.MutationInterval,
			Message: "mutation interval must be non-negative",
		}
	}

	for _, feed := range s.Feeds {
		switch feed {
		case assets.FeedCasper, assets.FeedSCCM:
		default:
			return &errors.ValidationError{
				Field:   "Feeds",
				Value:   feed,
				Message: fmt.Sprintf("feed '%s' is not supported", feed),
			}
		}
	}

	return nil
}

// Includes reports whether feed is selected. An empty selection includes every feed.
func (s *Options) Includes(feed assets.Feed) bool {
	if len(s.Feeds) == 0 {
		return true
	}
	for _, f := range s.Feeds {
		if f == feed {
			return true
		}
	}
	return false
}

// WithDryRun configures dry run mode.
func WithDryRun(dryRun bool) Option {
	return func(opts *Options) {
		opts.DryRun = dryRun
	}
}

// WithTimeout bounds each feed run. Zero means no deadline.
func WithTimeout(timeout time.Duration) Option {
	return func(opts *Options) {
		opts.Timeout = timeout
	}
}

// WithMutationInterval configures the delay before each mutating call.
// Zero disables pacing, which is what tests use.
func WithMutationInterval(interval time.Duration) Option {
	return func(opts *Options) {
		opts.MutationInterval = interval
	}
}

// WithSkipModelAge disables product-model age updates.
func WithSkipModelAge(skip bool) Option {
	return func(opts *Options) {
		opts.SkipModelAge = skip
	}
}

// WithFeeds restricts the run to the given feeds.
func WithFeeds(feeds ...assets.Feed) Option {
	return func(opts *Options) {
		opts.Feeds = feeds
	}
}
